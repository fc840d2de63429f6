// Package rpn is a standalone arithmetic evaluator: shunting-yard to
// reverse Polish notation, then an expression tree evaluated in float64.
// It is separate from the interpreter and shares none of its semantics.
package rpn

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode"
)

var (
	ErrNoTokens       = errors.New("No se encontraron tokens válidos.")
	ErrDivisionByZero = errors.New("División por cero")
)

type opInfo struct {
	prec       int
	rightAssoc bool
}

// UnaryMinus is the token a leading or operator-following '-' becomes.
const UnaryMinus = "u-"

var operators = map[string]opInfo{
	UnaryMinus: {5, true},
	"^":        {4, true},
	"*":        {3, false},
	"/":        {3, false},
	"%":        {3, false},
	"+":        {2, false},
	"-":        {2, false},
}

// Tokenize splits expr into numbers, identifiers, operators and
// parentheses. Unknown characters are skipped. Identifiers are also
// returned separately in order of appearance.
func Tokenize(expr string) (tokens []string, idents []string) {
	src := []rune(expr)
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case unicode.IsSpace(c):
			i++

		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(src) && (unicode.IsLetter(src[i]) || unicode.IsDigit(src[i]) || src[i] == '_') {
				i++
			}
			id := string(src[start:i])
			tokens = append(tokens, id)
			idents = append(idents, id)

		case unicode.IsDigit(c) || c == '.':
			start := i
			for i < len(src) && (unicode.IsDigit(src[i]) || src[i] == '.') {
				i++
			}
			tokens = append(tokens, string(src[start:i]))

		case c == '-':
			if len(tokens) == 0 || isUnaryContext(tokens[len(tokens)-1]) {
				tokens = append(tokens, UnaryMinus)
			} else {
				tokens = append(tokens, "-")
			}
			i++

		case c == '+' || c == '*' || c == '/' || c == '^' || c == '%' || c == '(' || c == ')':
			tokens = append(tokens, string(c))
			i++

		default:
			i++
		}
	}
	return tokens, idents
}

func isUnaryContext(prev string) bool {
	switch prev {
	case "(", "+", "-", "*", "/", "^", "%", UnaryMinus:
		return true
	}
	return false
}

func isNumber(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

func isIdentifier(tok string) bool {
	for i, r := range tok {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return tok != ""
}

// ToRPN reorders tokens into reverse Polish notation.
func ToRPN(tokens []string) ([]string, error) {
	var out, stack []string
	for _, tok := range tokens {
		switch {
		case isNumber(tok) || isIdentifier(tok):
			out = append(out, tok)

		case tok == "(":
			stack = append(stack, tok)

		case tok == ")":
			for len(stack) > 0 && stack[len(stack)-1] != "(" {
				out = append(out, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return nil, errors.New("Paréntesis desbalanceados: falta '('")
			}
			stack = stack[:len(stack)-1]

		default:
			info, ok := operators[tok]
			if !ok {
				return nil, fmt.Errorf("Token desconocido: %s", tok)
			}
			for len(stack) > 0 {
				top, isOp := operators[stack[len(stack)-1]]
				if !isOp {
					break
				}
				if (!info.rightAssoc && info.prec <= top.prec) || (info.rightAssoc && info.prec < top.prec) {
					out = append(out, stack[len(stack)-1])
					stack = stack[:len(stack)-1]
					continue
				}
				break
			}
			stack = append(stack, tok)
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top == "(" || top == ")" {
			return nil, errors.New("Paréntesis desbalanceados")
		}
		out = append(out, top)
	}
	return out, nil
}

// Node is an expression tree node. Leaves carry Value; operators carry Op
// and their operands (Right is nil for unary minus).
type Node struct {
	Value       string
	Op          string
	Left, Right *Node

	// Result is valid when Known. Identifiers have no value, and neither
	// does anything computed from one.
	Result float64
	Known  bool
	// Order is the post-order position in which an operator was evaluated,
	// starting at 1. Leaves keep 0.
	Order int
}

func (n *Node) IsLeaf() bool { return n.Op == "" }

// Text renders the subexpression fully parenthesised.
func (n *Node) Text() string {
	switch {
	case n.IsLeaf():
		return n.Value
	case n.Op == UnaryMinus:
		return "-(" + n.Left.Text() + ")"
	}
	return "(" + n.Left.Text() + " " + n.Op + " " + n.Right.Text() + ")"
}

// BuildTree turns RPN into a tree and records one derivation line per
// reduction.
func BuildTree(rpn []string) (*Node, []string, error) {
	var stack []*Node
	var derivations []string
	for _, tok := range rpn {
		switch {
		case isNumber(tok) || isIdentifier(tok):
			stack = append(stack, &Node{Value: tok})
			derivations = append(derivations, "Terminal -> "+tok)

		case tok == UnaryMinus:
			if len(stack) == 0 {
				return nil, nil, errors.New("Operador unario sin operando")
			}
			child := stack[len(stack)-1]
			stack[len(stack)-1] = &Node{Op: UnaryMinus, Left: child}
			derivations = append(derivations, "Unary Expression -> u- "+child.Text())

		default:
			if len(stack) < 2 {
				return nil, nil, fmt.Errorf("Operador binario '%s' sin suficientes operandos", tok)
			}
			left, right := stack[len(stack)-2], stack[len(stack)-1]
			stack = append(stack[:len(stack)-2], &Node{Op: tok, Left: left, Right: right})
			derivations = append(derivations, fmt.Sprintf("Binary Expression -> %s %s %s", left.Text(), tok, right.Text()))
		}
	}
	if len(stack) != 1 {
		return nil, nil, errors.New("Expresión inválida: sobran operandos")
	}
	return stack[0], derivations, nil
}

// Evaluate computes every node's Result bottom-up and numbers the operators
// in evaluation order.
func Evaluate(root *Node) error {
	counter := 0
	return evaluate(root, &counter)
}

func evaluate(n *Node, counter *int) error {
	if n.IsLeaf() {
		f, err := strconv.ParseFloat(n.Value, 64)
		n.Result, n.Known = f, err == nil
		return nil
	}

	if err := evaluate(n.Left, counter); err != nil {
		return err
	}
	if n.Op == UnaryMinus {
		n.Result, n.Known = -n.Left.Result, n.Left.Known
	} else {
		if err := evaluate(n.Right, counter); err != nil {
			return err
		}
		if n.Left.Known && n.Right.Known {
			r, err := apply(n.Op, n.Left.Result, n.Right.Result)
			if err != nil {
				return err
			}
			n.Result, n.Known = r, true
		}
	}
	*counter++
	n.Order = *counter
	return nil
}

func apply(op string, a, b float64) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, errors.New("Módulo por cero")
		}
		// Result takes the sign of the divisor.
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return r, nil
	case "^":
		if a < 0 && b != math.Trunc(b) {
			return 0, errors.New("Potencia de base negativa con exponente no entero")
		}
		return math.Pow(a, b), nil
	}
	return 0, fmt.Errorf("Token desconocido: %s", op)
}

// Analysis is everything Analyze produces for one expression.
type Analysis struct {
	Tokens      []string
	RPN         []string
	Tree        *Node
	Identifiers []string
	Derivations []string
}

// Value returns the final result, if the expression has one.
func (a *Analysis) Value() (float64, bool) { return a.Tree.Result, a.Tree.Known }

// Analyze runs every stage on expr.
func Analyze(expr string) (*Analysis, error) {
	tokens, idents := Tokenize(expr)
	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}
	rpn, err := ToRPN(tokens)
	if err != nil {
		return nil, fmt.Errorf("Error durante tokenización, RPN o AST: %w", err)
	}
	tree, derivations, err := BuildTree(rpn)
	if err != nil {
		return nil, fmt.Errorf("Error durante tokenización, RPN o AST: %w", err)
	}
	if err := Evaluate(tree); err != nil {
		return nil, fmt.Errorf("Error durante la evaluación: %w", err)
	}
	return &Analysis{
		Tokens:      tokens,
		RPN:         rpn,
		Tree:        tree,
		Identifiers: idents,
		Derivations: derivations,
	}, nil
}
