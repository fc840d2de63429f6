package interp

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"minicpp/pkg/compiler"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	IntKind Kind = iota
	FloatKind
	StringKind
	ArrayKind
)

var kindNames = [...]string{
	IntKind:    "int",
	FloatKind:  "float",
	StringKind: "string",
	ArrayKind:  "array",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Array is a sparse index → value mapping. Unset indices read as 0.
type Array struct {
	Elems map[int]Value
	Size  int  // nominal element count, meaningful when Sized
	Sized bool // false for an open [] declaration or an array created by assignment
}

// NewArray returns an empty array. A negative size leaves it unsized.
func NewArray(size int) *Array {
	a := &Array{Elems: make(map[int]Value)}
	if size >= 0 {
		a.Size = size
		a.Sized = true
	}
	return a
}

// Get returns the element at i, or 0 when unset.
func (a *Array) Get(i int) Value {
	if v, ok := a.Elems[i]; ok {
		return v
	}
	return Int(0)
}

func (a *Array) Set(i int, v Value) { a.Elems[i] = v }

// Len is the nominal size for a sized array, otherwise one past the highest
// index written so far.
func (a *Array) Len() int {
	if a.Sized {
		return a.Size
	}
	n := 0
	for i := range a.Elems {
		if i+1 > n {
			n = i + 1
		}
	}
	return n
}

// Value is a scalar (int, float, string) or an array. Arrays are shared by
// reference.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	Arr   *Array
}

func Int(n int64) Value         { return Value{Kind: IntKind, Int: n} }
func Float(f float64) Value     { return Value{Kind: FloatKind, Float: f} }
func String(s string) Value     { return Value{Kind: StringKind, Str: s} }
func ArrayValue(a *Array) Value { return Value{Kind: ArrayKind, Arr: a} }

// Bool maps a Go bool to Int(1) or Int(0).
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

func (v Value) IsNumber() bool { return v.Kind == IntKind || v.Kind == FloatKind }

// Number returns a numeric value widened to float64.
func (v Value) Number() float64 {
	if v.Kind == IntKind {
		return float64(v.Int)
	}
	return v.Float
}

// Truthy reports whether v counts as true in a condition.
func (v Value) Truthy() bool {
	switch v.Kind {
	case IntKind:
		return v.Int != 0
	case FloatKind:
		return v.Float != 0
	case StringKind:
		return v.Str != ""
	case ArrayKind:
		return len(v.Arr.Elems) > 0
	}
	return false
}

// String renders v the way cout prints it.
func (v Value) String() string {
	switch v.Kind {
	case IntKind:
		return strconv.FormatInt(v.Int, 10)
	case FloatKind:
		return formatFloat(v.Float)
	case StringKind:
		return v.Str
	case ArrayKind:
		return "<array>"
	}
	return ""
}

// Print renders v for cout. Arrays cannot be printed.
func Print(v Value) (string, error) {
	if v.Kind == ArrayKind {
		return "", failf(ErrType, "no se puede imprimir un arreglo con cout")
	}
	return v.String(), nil
}

// formatFloat prints whole floats with a trailing ".0" and switches to
// exponent form for very large or very small magnitudes.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// ParseNumber converts a NUMBER lexeme: a '.' anywhere makes it a float.
func ParseNumber(text string) (Value, error) {
	if strings.ContainsRune(text, '.') {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, failf(ErrType, "número inválido: %s", text)
		}
		return Float(f), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Value{}, failf(ErrType, "número fuera de rango: %s", text)
	}
	return Int(n), nil
}

// SizeOf is the byte size of a scalar: 4 for ints, 8 for floats, the
// character count for strings. A sized array is its declared size times 4;
// an unsized one falls back to 4.
func SizeOf(v Value) int64 {
	switch v.Kind {
	case IntKind:
		return 4
	case FloatKind:
		return 8
	case StringKind:
		return int64(utf8.RuneCountInString(v.Str))
	case ArrayKind:
		if v.Arr.Sized {
			return int64(v.Arr.Size) * 4
		}
	}
	return 4
}

// Index converts v to an array index.
func Index(v Value) (int, error) {
	switch v.Kind {
	case IntKind:
		if v.Int < 0 {
			return 0, failf(ErrType, "índice negativo: %d", v.Int)
		}
		return int(v.Int), nil
	case FloatKind:
		if v.Float != math.Trunc(v.Float) || v.Float < 0 {
			return 0, failf(ErrType, "índice inválido: %s", formatFloat(v.Float))
		}
		return int(v.Float), nil
	}
	return 0, failf(ErrType, "índice inválido de tipo %s", v.Kind)
}

// Negate is unary minus.
func Negate(v Value) (Value, error) {
	switch v.Kind {
	case IntKind:
		return Int(-v.Int), nil
	case FloatKind:
		return Float(-v.Float), nil
	}
	return Value{}, failf(ErrType, "operador '-' no aplicable a %s", v.Kind)
}

// BinaryOp applies an arithmetic operator. '/' is true division and always
// yields a float; '%' is floored, so the result takes the divisor's sign.
// Otherwise two ints stay int and any float operand makes the result float.
// Strings only support '+'.
func BinaryOp(op compiler.TokenType, a, b Value) (Value, error) {
	sym := compiler.OpText(op)
	if a.Kind == StringKind && b.Kind == StringKind && op == compiler.PLUS {
		return String(a.Str + b.Str), nil
	}
	if !a.IsNumber() || !b.IsNumber() {
		return Value{}, failf(ErrType, "tipos incompatibles para '%s': %s y %s", sym, a.Kind, b.Kind)
	}

	if a.Kind == IntKind && b.Kind == IntKind {
		x, y := a.Int, b.Int
		switch op {
		case compiler.PLUS:
			return Int(x + y), nil
		case compiler.MINUS:
			return Int(x - y), nil
		case compiler.STAR:
			return Int(x * y), nil
		case compiler.SLASH:
			if y == 0 {
				return Value{}, failf(ErrDivisionByZero, "división entre cero")
			}
			return Float(float64(x) / float64(y)), nil
		case compiler.PERCENT:
			if y == 0 {
				return Value{}, failf(ErrDivisionByZero, "módulo entre cero")
			}
			r := x % y
			if r != 0 && (r < 0) != (y < 0) {
				r += y
			}
			return Int(r), nil
		}
		return Value{}, failf(ErrType, "operador desconocido %s", op)
	}

	x, y := a.Number(), b.Number()
	switch op {
	case compiler.PLUS:
		return Float(x + y), nil
	case compiler.MINUS:
		return Float(x - y), nil
	case compiler.STAR:
		return Float(x * y), nil
	case compiler.SLASH:
		if y == 0 {
			return Value{}, failf(ErrDivisionByZero, "división entre cero")
		}
		return Float(x / y), nil
	case compiler.PERCENT:
		if y == 0 {
			return Value{}, failf(ErrDivisionByZero, "módulo entre cero")
		}
		r := math.Mod(x, y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return Float(r), nil
	}
	return Value{}, failf(ErrType, "operador desconocido %s", op)
}

// Compare applies a relational operator and returns Int(1) or Int(0).
// Numbers compare numerically and strings lexically. A string never equals
// a number; ordering them is an error.
func Compare(op compiler.TokenType, a, b Value) (Value, error) {
	var c int
	switch {
	case a.IsNumber() && b.IsNumber():
		if a.Kind == IntKind && b.Kind == IntKind {
			c = cmpInt(a.Int, b.Int)
		} else {
			c = cmpFloat(a.Number(), b.Number())
		}
	case a.Kind == StringKind && b.Kind == StringKind:
		c = strings.Compare(a.Str, b.Str)
	case op == compiler.EQUALS && a.Kind != ArrayKind && b.Kind != ArrayKind:
		return Int(0), nil
	case op == compiler.NOT_EQ && a.Kind != ArrayKind && b.Kind != ArrayKind:
		return Int(1), nil
	default:
		return Value{}, failf(ErrType, "no se puede comparar %s con %s usando '%s'", a.Kind, b.Kind, compiler.OpText(op))
	}

	switch op {
	case compiler.LESS:
		return Bool(c < 0), nil
	case compiler.GREATER:
		return Bool(c > 0), nil
	case compiler.LESS_EQ:
		return Bool(c <= 0), nil
	case compiler.GREATER_EQ:
		return Bool(c >= 0), nil
	case compiler.EQUALS:
		return Bool(c == 0), nil
	case compiler.NOT_EQ:
		return Bool(c != 0), nil
	}
	return Value{}, failf(ErrType, "operador desconocido %s", op)
}

func cmpInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// cmpFloat treats NaN as unequal to everything by reporting it as greater.
func cmpFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x == y:
		return 0
	}
	return 1
}
