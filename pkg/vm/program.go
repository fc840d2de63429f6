package vm

import (
	"fmt"
	"strconv"
	"strings"

	"minicpp/pkg/interp"
)

// Instr is one decoded instruction. Which operand fields are meaningful
// depends on Op:
//
//	PUSHC  Const
//	PUSHA  Name
//	DECL   Name, Size (-1 for an open array)
//	JMP/JZ Target (instruction index)
type Instr struct {
	Op     Opcode
	Const  interp.Value
	Name   string
	Size   int
	Target int
	Line   int // source line from the last .LINE directive, 0 if none
}

func (in Instr) String() string {
	switch in.Op {
	case OpPUSHC:
		if in.Const.Kind == interp.StringKind {
			return "PUSHC " + strconv.Quote(in.Const.Str)
		}
		return "PUSHC " + in.Const.String()
	case OpPUSHA:
		return "PUSHA " + in.Name
	case OpDECL:
		if in.Size < 0 {
			return "DECL " + in.Name
		}
		return fmt.Sprintf("DECL %s %d", in.Name, in.Size)
	case OpJMP, OpJZ:
		return fmt.Sprintf("%s %d", in.Op, in.Target)
	}
	return in.Op.String()
}

// Program is an assembled instruction list.
type Program struct {
	Code   []Instr
	Labels map[string]int // label → instruction index

	// SourceMap maps instruction index → listing line it was read from.
	SourceMap map[int]int
}

// Disassemble renders one instruction per line, prefixed with its index.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	for i, in := range p.Code {
		fmt.Fprintf(&sb, "%04d  %s\n", i, in)
	}
	return sb.String()
}
