package rpn

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input  string
		tokens []string
		idents []string
	}{
		{"3 + 4 * 2", []string{"3", "+", "4", "*", "2"}, nil},
		{"-x ^ 2", []string{"u-", "x", "^", "2"}, []string{"x"}},
		{"a-(-1.5)", []string{"a", "-", "(", "u-", "1.5", ")"}, []string{"a"}},
		{"7 % 3 $ #", []string{"7", "%", "3"}, nil},
	}
	for _, tc := range tests {
		tokens, idents := Tokenize(tc.input)
		if !reflect.DeepEqual(tokens, tc.tokens) {
			t.Errorf("Tokenize(%q) tokens = %q, want %q", tc.input, tokens, tc.tokens)
		}
		if !reflect.DeepEqual(idents, tc.idents) {
			t.Errorf("Tokenize(%q) idents = %q, want %q", tc.input, idents, tc.idents)
		}
	}
}

func TestToRPN(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"3 + 4 * 2", "3 4 2 * +"},
		{"(3 + 4) * 2", "3 4 + 2 *"},
		{"2 ^ 3 ^ 2", "2 3 2 ^ ^"},
		{"8 - 3 - 2", "8 3 - 2 -"},
		{"-2 ^ 2", "2 u- 2 ^"},
		{"10 % 4 + 1", "10 4 % 1 +"},
	}
	for _, tc := range tests {
		tokens, _ := Tokenize(tc.input)
		got, err := ToRPN(tokens)
		if err != nil {
			t.Errorf("ToRPN(%q) error = %v", tc.input, err)
			continue
		}
		if strings.Join(got, " ") != tc.want {
			t.Errorf("ToRPN(%q) = %q, want %q", tc.input, strings.Join(got, " "), tc.want)
		}
	}
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"3 + 4 * 2", 11},
		{"2 ^ 3 ^ 2", 512},
		{"7 / 2", 3.5},
		{"-7 % 3", 2},
		{"-(2 + 3) * 2", -10},
		{"(-8) ^ 2", 64},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			a, err := Analyze(tc.input)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			got, ok := a.Value()
			if !ok || got != tc.want {
				t.Errorf("Value() = %v, %v; want %v", got, ok, tc.want)
			}
		})
	}
}

func TestDerivationsAndOrder(t *testing.T) {
	a, err := Analyze("a + 2 * 3")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Terminal -> a",
		"Terminal -> 2",
		"Terminal -> 3",
		"Binary Expression -> 2 * 3",
		"Binary Expression -> a + (2 * 3)",
	}
	if !reflect.DeepEqual(a.Derivations, want) {
		t.Errorf("Derivations = %q", a.Derivations)
	}
	if a.Tree.Text() != "(a + (2 * 3))" {
		t.Errorf("Text() = %q", a.Tree.Text())
	}
	// Identifiers have no value, so neither does the sum.
	if _, ok := a.Value(); ok {
		t.Error("expected no value")
	}
	if !a.Tree.Right.Known || a.Tree.Right.Result != 6 {
		t.Errorf("2 * 3 = %v, %v", a.Tree.Right.Result, a.Tree.Right.Known)
	}
	if a.Tree.Right.Order != 1 || a.Tree.Order != 2 || a.Tree.Left.Order != 0 {
		t.Errorf("orders = %d %d %d", a.Tree.Right.Order, a.Tree.Order, a.Tree.Left.Order)
	}
	if !reflect.DeepEqual(a.Identifiers, []string{"a"}) {
		t.Errorf("Identifiers = %q", a.Identifiers)
	}
}

func TestUnaryDerivation(t *testing.T) {
	a, err := Analyze("-(1 + 2)")
	if err != nil {
		t.Fatal(err)
	}
	last := a.Derivations[len(a.Derivations)-1]
	if last != "Unary Expression -> u- (1 + 2)" {
		t.Errorf("last derivation = %q", last)
	}
	if a.Tree.Text() != "-((1 + 2))" {
		t.Errorf("Text() = %q", a.Tree.Text())
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "No se encontraron tokens válidos."},
		{"(1 + 2", "Error durante tokenización, RPN o AST: Paréntesis desbalanceados"},
		{"1 + 2)", "Error durante tokenización, RPN o AST: Paréntesis desbalanceados: falta '('"},
		{"1 +", "Error durante tokenización, RPN o AST: Operador binario '+' sin suficientes operandos"},
		{"1 2", "Error durante tokenización, RPN o AST: Expresión inválida: sobran operandos"},
		{"1.2.3", "Error durante tokenización, RPN o AST: Token desconocido: 1.2.3"},
		{"4 / (2 - 2)", "Error durante la evaluación: División por cero"},
		{"(-8) ^ 0.5", "Error durante la evaluación: Potencia de base negativa con exponente no entero"},
	}
	for _, tc := range tests {
		_, err := Analyze(tc.input)
		if err == nil || err.Error() != tc.want {
			t.Errorf("Analyze(%q) error = %v, want %q", tc.input, err, tc.want)
		}
	}

	_, err := Analyze("1/0")
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("errors.Is(ErrDivisionByZero) = false for %v", err)
	}
}
