package vm

import (
	"bytes"
	"errors"
	"testing"

	"minicpp/pkg/interp"
)

func program(code ...Instr) *Program { return &Program{Code: code} }

func TestStackArithmetic(t *testing.T) {
	var out bytes.Buffer
	m := New(program(
		Instr{Op: OpPUSHC, Const: interp.Int(7)},
		Instr{Op: OpPUSHC, Const: interp.Int(2)},
		Instr{Op: OpDIV},
		Instr{Op: OpOUTPUT},
		Instr{Op: OpPUSHC, Const: interp.Float(1.5)},
		Instr{Op: OpNEG},
		Instr{Op: OpOUTPUT},
		Instr{Op: OpEND},
	))
	m.Output = &out
	if err := m.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.String() != "3.5-1.5" {
		t.Errorf("output = %q", out.String())
	}
	if m.StackDepth() != 0 {
		t.Errorf("stack depth = %d, want 0", m.StackDepth())
	}
}

func TestStoreLoadAndIndex(t *testing.T) {
	m := New(program(
		Instr{Op: OpPUSHC, Const: interp.Int(5)},
		Instr{Op: OpPUSHA, Name: "a"},
		Instr{Op: OpPUSHC, Const: interp.Int(3)},
		Instr{Op: OpINDEX},
		Instr{Op: OpSTORE},
		Instr{Op: OpPUSHA, Name: "a"},
		Instr{Op: OpPUSHC, Const: interp.Int(3)},
		Instr{Op: OpINDEX},
		Instr{Op: OpINC},
		Instr{Op: OpPUSHA, Name: "x"},
		Instr{Op: OpSTORE},
	))
	if err := m.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	x, _ := m.Memory().Get("x")
	if x != interp.Int(6) {
		t.Errorf("x = %v, want 6", x)
	}
	arr, err := m.Memory().Array("a")
	if err != nil {
		t.Fatal(err)
	}
	if arr.Len() != 4 || arr.Get(3) != interp.Int(6) {
		t.Errorf("a = len %d, a[3] = %v", arr.Len(), arr.Get(3))
	}
}

func TestJumps(t *testing.T) {
	var out bytes.Buffer
	m := New(program(
		Instr{Op: OpPUSHC, Const: interp.Int(0)},
		Instr{Op: OpJZ, Target: 4},
		Instr{Op: OpPUSHC, Const: interp.String("skipped")},
		Instr{Op: OpOUTPUT},
		Instr{Op: OpPUSHC, Const: interp.String("ok")},
		Instr{Op: OpOUTPUT},
		Instr{Op: OpJMP, Target: 99},
	))
	m.Output = &out
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "ok" || !m.Halted {
		t.Errorf("output = %q, halted = %v", out.String(), m.Halted)
	}
}

func TestReturnPrintsExitCode(t *testing.T) {
	var out bytes.Buffer
	m := New(program(
		Instr{Op: OpPUSHC, Const: interp.Int(3)},
		Instr{Op: OpRET},
		Instr{Op: OpPUSHC, Const: interp.String("unreachable")},
		Instr{Op: OpOUTPUT},
	))
	m.Output = &out
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "\nProgram finished with exit code: 3" {
		t.Errorf("output = %q", out.String())
	}
	if v, ok := m.ExitCode(); !ok || v != interp.Int(3) {
		t.Errorf("ExitCode() = %v, %v", v, ok)
	}
}

func TestErrorsCarryLine(t *testing.T) {
	m := New(program(
		Instr{Op: OpPUSHA, Name: "missing", Line: 4},
		Instr{Op: OpLOAD, Line: 4},
	))
	err := m.Run()
	if !errors.Is(err, interp.ErrName) {
		t.Fatalf("err = %v, want name error", err)
	}
	if err.Error() != "Error Semántico en línea 4: Variable 'missing' no definida" {
		t.Errorf("err = %q", err)
	}
	if !m.Halted {
		t.Error("machine should halt on error")
	}
}

func TestStackUnderflow(t *testing.T) {
	m := New(program(Instr{Op: OpPOP}))
	if err := m.Run(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("err = %v", err)
	}
}

func TestAddressWhereValueExpected(t *testing.T) {
	m := New(program(
		Instr{Op: OpPUSHA, Name: "x"},
		Instr{Op: OpOUTPUT},
	))
	if err := m.Run(); err == nil {
		t.Error("expected error")
	}
}

func TestMaxSteps(t *testing.T) {
	m := New(program(Instr{Op: OpJMP, Target: 0}))
	m.MaxSteps = 50
	err := m.Run()
	if !errors.Is(err, interp.ErrStepLimit) {
		t.Fatalf("err = %v", err)
	}
	if m.Steps != 51 {
		t.Errorf("Steps = %d", m.Steps)
	}
}

func TestDisassemble(t *testing.T) {
	p := program(
		Instr{Op: OpPUSHC, Const: interp.String("a b")},
		Instr{Op: OpDECL, Name: "v", Size: -1},
		Instr{Op: OpDECL, Name: "w", Size: 2},
		Instr{Op: OpJZ, Target: 0},
	)
	want := "0000  PUSHC \"a b\"\n0001  DECL v\n0002  DECL w 2\n0003  JZ 0\n"
	if got := p.Disassemble(); got != want {
		t.Errorf("Disassemble() = %q", got)
	}
	if Opcode(200).String() != "Opcode(200)" {
		t.Error(Opcode(200).String())
	}
	if Mnemonics["SIZEOF"] != OpSIZEOF {
		t.Error("Mnemonics lookup")
	}
}
