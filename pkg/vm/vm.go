// Package vm executes assembled stack programs. It shares value semantics
// and error messages with the tree-walking interpreter so both produce the
// same output for the same source.
package vm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"minicpp/pkg/compiler"
	"minicpp/pkg/interp"
)

var ErrStackUnderflow = errors.New("stack underflow")

// address names a variable or one element of an array variable.
type address struct {
	name  string
	elem  bool
	index int
}

// cell is a stack slot: a value, or an address pushed by PUSHA/INDEX.
type cell struct {
	val  interp.Value
	addr *address
}

// Machine runs one Program.
type Machine struct {
	Program *Program
	PC      int
	Halted  bool

	// Output receives cout text. Nil means os.Stdout.
	Output io.Writer
	// MaxSteps caps executed instructions. Zero means no limit.
	MaxSteps int

	Steps    int
	stack    []cell
	mem      *interp.Env
	exitCode *interp.Value
}

// New returns a machine ready to run p from its first instruction.
func New(p *Program) *Machine {
	return &Machine{Program: p, mem: interp.NewEnv()}
}

func (m *Machine) outputSink() io.Writer {
	if m.Output != nil {
		return m.Output
	}
	return os.Stdout
}

// Memory is the variable store.
func (m *Machine) Memory() *interp.Env { return m.mem }

// StackDepth is the number of live stack cells.
func (m *Machine) StackDepth() int { return len(m.stack) }

// ExitCode returns the value given to RET, if the program returned.
func (m *Machine) ExitCode() (interp.Value, bool) {
	if m.exitCode == nil {
		return interp.Value{}, false
	}
	return *m.exitCode, true
}

// Line is the source line of the next instruction, or 0.
func (m *Machine) Line() int {
	if m.Program == nil || m.PC < 0 || m.PC >= len(m.Program.Code) {
		return 0
	}
	return m.Program.Code[m.PC].Line
}

func (m *Machine) push(c cell) { m.stack = append(m.stack, c) }

func (m *Machine) pop() (cell, error) {
	if len(m.stack) == 0 {
		return cell{}, ErrStackUnderflow
	}
	c := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return c, nil
}

func (m *Machine) popValue() (interp.Value, error) {
	c, err := m.pop()
	if err != nil {
		return interp.Value{}, err
	}
	if c.addr != nil {
		return interp.Value{}, fmt.Errorf("expected a value, found address of '%s'", c.addr.name)
	}
	return c.val, nil
}

func (m *Machine) popAddr() (*address, error) {
	c, err := m.pop()
	if err != nil {
		return nil, err
	}
	if c.addr == nil {
		return nil, fmt.Errorf("expected an address, found value %s", c.val)
	}
	return c.addr, nil
}

func (m *Machine) load(a *address) (interp.Value, error) {
	if !a.elem {
		return m.mem.Lookup(a.name)
	}
	arr, err := m.mem.Array(a.name)
	if err != nil {
		return interp.Value{}, err
	}
	return arr.Get(a.index), nil
}

var arith = map[Opcode]compiler.TokenType{
	OpADD: compiler.PLUS,
	OpSUB: compiler.MINUS,
	OpMUL: compiler.STAR,
	OpDIV: compiler.SLASH,
	OpMOD: compiler.PERCENT,
}

var relational = map[Opcode]compiler.TokenType{
	OpLT: compiler.LESS,
	OpGT: compiler.GREATER,
	OpLE: compiler.LESS_EQ,
	OpGE: compiler.GREATER_EQ,
	OpEQ: compiler.EQUALS,
	OpNE: compiler.NOT_EQ,
}

// Step executes one instruction. Errors from value operations carry the
// instruction's source line.
func (m *Machine) Step() error {
	if m.Halted {
		return nil
	}
	if m.PC < 0 || m.PC >= len(m.Program.Code) {
		m.Halted = true
		return nil
	}
	m.Steps++
	if m.MaxSteps > 0 && m.Steps > m.MaxSteps {
		m.Halted = true
		return interp.Errorf(interp.ErrStepLimit, "límite de %d pasos excedido", m.MaxSteps)
	}

	in := m.Program.Code[m.PC]
	m.PC++
	if err := m.exec(in); err != nil {
		m.Halted = true
		if in.Line > 0 && errors.Is(err, interp.ErrRuntime) {
			return interp.AtLine(in.Line, err)
		}
		return fmt.Errorf("pc %d (%s): %w", m.PC-1, in, err)
	}
	return nil
}

func (m *Machine) exec(in Instr) error {
	switch in.Op {
	case OpEND:
		m.Halted = true

	case OpPUSHC:
		m.push(cell{val: in.Const})

	case OpPUSHA:
		m.push(cell{addr: &address{name: in.Name}})

	case OpLOAD:
		a, err := m.popAddr()
		if err != nil {
			return err
		}
		v, err := m.load(a)
		if err != nil {
			return err
		}
		m.push(cell{val: v})

	case OpSTORE:
		a, err := m.popAddr()
		if err != nil {
			return err
		}
		v, err := m.popValue()
		if err != nil {
			return err
		}
		if a.elem {
			return m.mem.SetElem(a.name, a.index, v)
		}
		m.mem.Set(a.name, v)

	case OpPOP:
		_, err := m.pop()
		return err

	case OpNEG:
		v, err := m.popValue()
		if err != nil {
			return err
		}
		r, err := interp.Negate(v)
		if err != nil {
			return err
		}
		m.push(cell{val: r})

	case OpADD, OpSUB, OpMUL, OpDIV, OpMOD, OpLT, OpGT, OpLE, OpGE, OpEQ, OpNE:
		b, err := m.popValue()
		if err != nil {
			return err
		}
		a, err := m.popValue()
		if err != nil {
			return err
		}
		var r interp.Value
		if op, ok := arith[in.Op]; ok {
			r, err = interp.BinaryOp(op, a, b)
		} else {
			r, err = interp.Compare(relational[in.Op], a, b)
		}
		if err != nil {
			return err
		}
		m.push(cell{val: r})

	case OpINDEX:
		iv, err := m.popValue()
		if err != nil {
			return err
		}
		a, err := m.popAddr()
		if err != nil {
			return err
		}
		idx, err := interp.Index(iv)
		if err != nil {
			return err
		}
		m.push(cell{addr: &address{name: a.name, elem: true, index: idx}})

	case OpINC:
		a, err := m.popAddr()
		if err != nil {
			return err
		}
		cur, err := m.load(a)
		if err != nil {
			return err
		}
		next, err := interp.BinaryOp(compiler.PLUS, cur, interp.Int(1))
		if err != nil {
			return err
		}
		if a.elem {
			if err := m.mem.SetElem(a.name, a.index, next); err != nil {
				return err
			}
		} else {
			m.mem.Set(a.name, next)
		}
		m.push(cell{val: next})

	case OpSIZEOF:
		a, err := m.popAddr()
		if err != nil {
			return err
		}
		if a.elem {
			m.push(cell{val: interp.Int(4)})
			break
		}
		v, err := m.mem.Lookup(a.name)
		if err != nil {
			return err
		}
		m.push(cell{val: interp.Int(interp.SizeOf(v))})

	case OpDECL:
		m.mem.Set(in.Name, interp.ArrayValue(interp.NewArray(in.Size)))

	case OpOUTPUT:
		v, err := m.popValue()
		if err != nil {
			return err
		}
		s, err := interp.Print(v)
		if err != nil {
			return err
		}
		io.WriteString(m.outputSink(), s)

	case OpJMP:
		m.PC = in.Target

	case OpJZ:
		v, err := m.popValue()
		if err != nil {
			return err
		}
		if !v.Truthy() {
			m.PC = in.Target
		}

	case OpRET:
		v, err := m.popValue()
		if err != nil {
			return err
		}
		m.exitCode = &v
		fmt.Fprintf(m.outputSink(), "\nProgram finished with exit code: %s", v)
		m.Halted = true

	default:
		return fmt.Errorf("unknown opcode %s", in.Op)
	}
	return nil
}

// Run steps until the machine halts or fails.
func (m *Machine) Run() error {
	for !m.Halted {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}
