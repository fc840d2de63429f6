package vm

import "fmt"

// Opcode selects one stack machine instruction.
type Opcode uint8

const (
	OpEND Opcode = iota
	OpPUSHC
	OpPUSHA
	OpLOAD
	OpSTORE
	OpPOP
	OpNEG
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpMOD
	OpLT
	OpGT
	OpLE
	OpGE
	OpEQ
	OpNE
	OpINDEX
	OpINC
	OpSIZEOF
	OpDECL
	OpOUTPUT
	OpJMP
	OpJZ
	OpRET
)

var opNames = map[Opcode]string{
	OpEND:    "END",
	OpPUSHC:  "PUSHC",
	OpPUSHA:  "PUSHA",
	OpLOAD:   "LOAD",
	OpSTORE:  "STORE",
	OpPOP:    "POP",
	OpNEG:    "NEG",
	OpADD:    "ADD",
	OpSUB:    "SUB",
	OpMUL:    "MUL",
	OpDIV:    "DIV",
	OpMOD:    "MOD",
	OpLT:     "LT",
	OpGT:     "GT",
	OpLE:     "LE",
	OpGE:     "GE",
	OpEQ:     "EQ",
	OpNE:     "NE",
	OpINDEX:  "INDEX",
	OpINC:    "INC",
	OpSIZEOF: "SIZEOF",
	OpDECL:   "DECL",
	OpOUTPUT: "OUTPUT",
	OpJMP:    "JMP",
	OpJZ:     "JZ",
	OpRET:    "RET",
}

// Mnemonics maps upper-case mnemonics back to opcodes.
var Mnemonics = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

func (op Opcode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}
