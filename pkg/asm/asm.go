package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"minicpp/pkg/interp"
	"minicpp/pkg/vm"
)

var zeroOperandOps = map[string]vm.Opcode{
	"END":    vm.OpEND,
	"LOAD":   vm.OpLOAD,
	"STORE":  vm.OpSTORE,
	"POP":    vm.OpPOP,
	"NEG":    vm.OpNEG,
	"ADD":    vm.OpADD,
	"SUB":    vm.OpSUB,
	"MUL":    vm.OpMUL,
	"DIV":    vm.OpDIV,
	"MOD":    vm.OpMOD,
	"LT":     vm.OpLT,
	"GT":     vm.OpGT,
	"LE":     vm.OpLE,
	"GE":     vm.OpGE,
	"EQ":     vm.OpEQ,
	"NE":     vm.OpNE,
	"INDEX":  vm.OpINDEX,
	"INC":    vm.OpINC,
	"SIZEOF": vm.OpSIZEOF,
	"OUTPUT": vm.OpOUTPUT,
	"RET":    vm.OpRET,
}

var labelOps = map[string]vm.Opcode{
	"JMP": vm.OpJMP,
	"JZ":  vm.OpJZ,
}

type Assembler struct {
	labels map[string]int
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]int),
	}
}

// Assemble turns a listing into a runnable program.
func Assemble(code string) (*vm.Program, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) (*vm.Program, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, err
	}

	return a.pass2(lines)
}

// pass1 assigns an instruction index to every label.
func (a *Assembler) pass1(lines []string) error {
	index := 0

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = index
		}

		if p.mnemonic == "" || strings.HasPrefix(p.mnemonic, ".") {
			continue
		}
		if !isInstruction(p.mnemonic) {
			return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
		}
		index++
	}

	return nil
}

func (a *Assembler) pass2(lines []string) (*vm.Program, error) {
	prog := &vm.Program{
		Labels:    make(map[string]int, len(a.labels)),
		SourceMap: make(map[int]int),
	}
	for k, v := range a.labels {
		prog.Labels[k] = v
	}
	srcLine := 0

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, err
		}
		if p.mnemonic == "" {
			continue
		}

		switch p.mnemonic {
		case ".CODE":
			continue
		case ".LINE":
			if len(p.operands) != 1 {
				return nil, fmt.Errorf(".LINE expects exactly one operand on line %d", lineNo)
			}
			n, err := strconv.Atoi(p.operands[0])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid .LINE value on line %d: %s", lineNo, p.operands[0])
			}
			srcLine = n
			continue
		}
		if strings.HasPrefix(p.mnemonic, ".") {
			return nil, fmt.Errorf("unknown directive on line %d: %s", lineNo, p.mnemonic)
		}

		instr := vm.Instr{Line: srcLine}
		mnemonic := p.mnemonic

		if op, ok := zeroOperandOps[mnemonic]; ok {
			if len(p.operands) != 0 {
				return nil, fmt.Errorf("%s expects no operands on line %d", mnemonic, lineNo)
			}
			instr.Op = op
		} else if op, ok := labelOps[mnemonic]; ok {
			if len(p.operands) != 1 {
				return nil, fmt.Errorf("%s expects a label on line %d", mnemonic, lineNo)
			}
			target, err := a.resolveLabel(p.operands[0], lineNo)
			if err != nil {
				return nil, err
			}
			instr.Op = op
			instr.Target = target
		} else {
			switch mnemonic {
			case "PUSHC":
				if len(p.operands) != 1 {
					return nil, fmt.Errorf("PUSHC expects one constant on line %d", lineNo)
				}
				v, err := parseConstant(p.operands[0], lineNo)
				if err != nil {
					return nil, err
				}
				instr.Op = vm.OpPUSHC
				instr.Const = v
			case "PUSHA":
				if len(p.operands) != 1 || !isIdentifier(p.operands[0]) {
					return nil, fmt.Errorf("PUSHA expects a variable name on line %d", lineNo)
				}
				instr.Op = vm.OpPUSHA
				instr.Name = p.operands[0]
			case "DECL":
				if len(p.operands) < 1 || len(p.operands) > 2 || !isIdentifier(p.operands[0]) {
					return nil, fmt.Errorf("DECL expects a name and an optional size on line %d", lineNo)
				}
				instr.Op = vm.OpDECL
				instr.Name = p.operands[0]
				instr.Size = -1
				if len(p.operands) == 2 {
					n, err := strconv.Atoi(p.operands[1])
					if err != nil || n < 0 {
						return nil, fmt.Errorf("invalid array size on line %d: %s", lineNo, p.operands[1])
					}
					instr.Size = n
				}
			default:
				return nil, fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
			}
		}

		prog.SourceMap[len(prog.Code)] = lineNo
		prog.Code = append(prog.Code, instr)
	}

	return prog, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(raw)
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t;\"") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	line = strings.TrimSpace(stripComments(line))
	if line == "" {
		return p, nil
	}

	mnemonic, rest := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		mnemonic, rest = line[:i], strings.TrimSpace(line[i:])
	}
	p.mnemonic = strings.ToUpper(mnemonic)
	if rest == "" {
		return p, nil
	}

	// A PUSHC constant may be a quoted string containing spaces.
	if p.mnemonic == "PUSHC" {
		p.operands = []string{rest}
	} else {
		p.operands = strings.Fields(rest)
	}
	return p, nil
}

// stripComments drops everything from the first ';' or "//" that is not
// inside a string literal.
func stripComments(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == ';':
			return line[:i]
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i]
		}
	}
	return line
}

func parseConstant(token string, lineNo int) (interp.Value, error) {
	if strings.HasPrefix(token, "\"") {
		s, err := strconv.Unquote(token)
		if err != nil {
			return interp.Value{}, fmt.Errorf("invalid string literal on line %d", lineNo)
		}
		return interp.String(s), nil
	}
	v, err := interp.ParseNumber(token)
	if err != nil {
		return interp.Value{}, fmt.Errorf("invalid constant '%s' on line %d", token, lineNo)
	}
	return v, nil
}

func (a *Assembler) resolveLabel(token string, lineNo int) (int, error) {
	if idx, ok := a.labels[normalizeLabel(token)]; ok {
		return idx, nil
	}
	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}
	return 0, fmt.Errorf("invalid label '%s' on line %d", token, lineNo)
}

func isInstruction(mnemonic string) bool {
	if _, ok := zeroOperandOps[mnemonic]; ok {
		return true
	}
	if _, ok := labelOps[mnemonic]; ok {
		return true
	}
	switch mnemonic {
	case "PUSHC", "PUSHA", "DECL":
		return true
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
