// Package check is a static pre-pass over the syntax tree. It reports
// likely mistakes without stopping at the first one and never changes how a
// program runs.
package check

import (
	"fmt"
	"strconv"

	"minicpp/pkg/compiler"
)

// IssueLevel represents severity of a pre-pass issue.
type IssueLevel string

const (
	// IssueError marks code that will fail when run.
	IssueError IssueLevel = "error"
	// IssueWarning marks suspicious code that still runs.
	IssueWarning IssueLevel = "warning"
)

// Issue codes.
const (
	CodeUndeclared       = "undeclared"
	CodeImplicit         = "implicit_declaration"
	CodeRedeclared       = "redeclared"
	CodeNotArray         = "not_array"
	CodeDivisionByZero   = "division_by_zero"
	CodeForNoDeclaration = "for_no_declaration"
	CodeNoRelational     = "no_relational"
)

// Issue represents a pre-pass finding.
type Issue struct {
	Level   IssueLevel `json:"level"`
	Code    string     `json:"code,omitempty"`
	Message string     `json:"message"`
	Line    int        `json:"line"`
}

func (i Issue) String() string {
	return fmt.Sprintf("línea %d: %s [%s] %s", i.Line, i.Level, i.Code, i.Message)
}

// HasErrors reports whether any issue is error-level.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Level == IssueError {
			return true
		}
	}
	return false
}

type checker struct {
	syms   *SymbolTable
	issues []Issue
	seen   map[string]bool // code|name|line, so one line reports a name once
}

// Check walks root in source order and returns every issue found. Loop
// bodies are visited once; names declared anywhere stay visible afterwards.
func Check(root compiler.Node) []Issue {
	issues, _ := CheckWithSymbols(root)
	return issues
}

// CheckWithSymbols is Check that also returns the final symbol table.
func CheckWithSymbols(root compiler.Node) ([]Issue, *SymbolTable) {
	c := &checker{syms: NewSymbolTable(), seen: make(map[string]bool)}
	if root != nil {
		c.stmt(root, false)
	}
	return c.issues, c.syms
}

func (c *checker) report(level IssueLevel, code string, line int, name string, format string, args ...any) {
	key := fmt.Sprintf("%s|%s|%d", code, name, line)
	if name != "" && c.seen[key] {
		return
	}
	c.seen[key] = true
	c.issues = append(c.issues, Issue{Level: level, Code: code, Message: fmt.Sprintf(format, args...), Line: line})
}

func (c *checker) stmt(n compiler.Node, inHeader bool) {
	switch n := n.(type) {
	case *compiler.Block:
		for _, s := range n.Stmts {
			c.stmt(s, false)
		}

	case *compiler.Declaration:
		c.declaration(n, inHeader)

	case *compiler.If:
		c.condition(n.Cond, "if")
		c.stmt(n.Body, false)

	case *compiler.While:
		c.condition(n.Cond, "while")
		c.stmt(n.Body, false)

	case *compiler.For:
		if _, ok := n.Init.(*compiler.Declaration); !ok {
			c.report(IssueWarning, CodeForNoDeclaration, n.Line(), "",
				"el ciclo for debería declarar su variable de control (int x = 0)")
		}
		if n.Init != nil {
			c.stmt(n.Init, true)
		}
		c.condition(n.Cond, "for")
		c.stmt(n.Body, false)
		if n.Update != nil {
			c.stmt(n.Update, true)
		}

	case *compiler.Switch:
		c.expr(n.Subject)
		for cs := n.First; cs != nil; cs = cs.Next {
			if cs.Body != nil {
				c.stmt(cs.Body, false)
			}
		}

	case *compiler.Break:

	case *compiler.Return:
		c.expr(n.Value)

	case *compiler.Cout:
		for _, item := range n.Items {
			c.expr(item)
		}

	case *compiler.Assign:
		c.assign(n)

	default:
		c.expr(n)
	}
}

func (c *checker) declaration(d *compiler.Declaration, inHeader bool) {
	for _, v := range d.Vars {
		lit := ""
		switch init := v.Init.(type) {
		case nil:
			if !v.IsArray {
				lit = "0"
			}
		case *compiler.InitList:
			for _, e := range init.Elems {
				c.expr(e)
			}
		default:
			c.expr(init)
			lit = literalText(init)
		}

		kind := KindVariable
		if v.IsArray {
			kind = KindArray
		}
		next := Symbol{Name: v.Name, Kind: kind, Type: d.Type, Size: v.Size, Line: v.Line(), Literal: lit}
		if old, exists := c.syms.Allocate(next); exists {
			// for headers redeclare their control variable on purpose.
			if !inHeader && old.Type != "" {
				c.report(IssueWarning, CodeRedeclared, v.Line(), v.Name,
					"'%s' ya fue declarado en la línea %d", v.Name, old.Line)
			}
			c.syms.Redefine(next)
		}
	}
}

func (c *checker) assign(n *compiler.Assign) {
	c.expr(n.Value)
	switch t := n.Target.(type) {
	case *compiler.Identifier:
		if _, ok := c.syms.Lookup(t.Name); !ok {
			c.report(IssueWarning, CodeImplicit, t.Line(), t.Name,
				"variable '%s' asignada sin declarar", t.Name)
			c.syms.Allocate(Symbol{Name: t.Name, Size: -1, Line: t.Line()})
		}
		c.syms.SetLiteral(t.Name, literalText(n.Value))

	case *compiler.ArrayAccess:
		c.expr(t.Index)
		sym, ok := c.syms.Lookup(t.Array.Name)
		switch {
		case !ok:
			c.report(IssueWarning, CodeImplicit, t.Line(), t.Array.Name,
				"arreglo '%s' asignado sin declarar", t.Array.Name)
			c.syms.Allocate(Symbol{Name: t.Array.Name, Kind: KindArray, Size: -1, Line: t.Line()})
		case sym.Kind != KindArray:
			c.report(IssueError, CodeNotArray, t.Line(), t.Array.Name, "'%s' no es un arreglo", t.Array.Name)
		}
	}
}

// condition flags if/while/for conditions that are not comparisons.
func (c *checker) condition(cond compiler.Node, stmt string) {
	if _, ok := cond.(*compiler.RelOp); !ok && cond != nil {
		c.report(IssueWarning, CodeNoRelational, cond.Line(), "",
			"falta operador relacional en la condición del %s", stmt)
	}
	c.expr(cond)
}

func (c *checker) use(id *compiler.Identifier) (Symbol, bool) {
	sym, ok := c.syms.Lookup(id.Name)
	if !ok {
		c.report(IssueError, CodeUndeclared, id.Line(), id.Name, "variable '%s' usada sin declarar", id.Name)
	}
	return sym, ok
}

func (c *checker) expr(n compiler.Node) {
	switch n := n.(type) {
	case nil, *compiler.Literal:

	case *compiler.Identifier:
		c.use(n)

	case *compiler.ArrayAccess:
		c.expr(n.Index)
		sym, ok := c.syms.Lookup(n.Array.Name)
		switch {
		case !ok:
			c.report(IssueError, CodeUndeclared, n.Line(), n.Array.Name, "arreglo '%s' usado sin declarar", n.Array.Name)
		case sym.Kind != KindArray:
			c.report(IssueError, CodeNotArray, n.Line(), n.Array.Name, "'%s' no es un arreglo", n.Array.Name)
		}

	case *compiler.Increment:
		c.expr(n.Target)
		if id, ok := n.Target.(*compiler.Identifier); ok {
			c.syms.SetLiteral(id.Name, "")
		}

	case *compiler.Assign:
		c.assign(n)

	case *compiler.BinOp:
		c.expr(n.Left)
		c.expr(n.Right)
		if n.Op == compiler.SLASH || n.Op == compiler.PERCENT {
			c.divisor(n)
		}

	case *compiler.RelOp:
		c.expr(n.Left)
		c.expr(n.Right)

	case *compiler.Negate:
		c.expr(n.Operand)

	case *compiler.SizeOf:
		if id, ok := n.Operand.(*compiler.Identifier); ok {
			c.use(id)
		}

	case *compiler.InitList:
		for _, e := range n.Elems {
			c.expr(e)
		}
	}
}

func (c *checker) divisor(n *compiler.BinOp) {
	switch r := n.Right.(type) {
	case *compiler.Literal:
		if isZero(r.Text) && r.Kind == compiler.NUMBER {
			c.report(IssueError, CodeDivisionByZero, n.Line(), "", "división por cero")
		}
	case *compiler.Identifier:
		if sym, ok := c.syms.Lookup(r.Name); ok && isZero(sym.Literal) {
			c.report(IssueWarning, CodeDivisionByZero, n.Line(), r.Name,
				"división por cero (variable '%s' con valor 0)", r.Name)
		}
	}
}

// literalText returns the text of a numeric literal, allowing one leading
// minus, or "" for anything else.
func literalText(n compiler.Node) string {
	switch n := n.(type) {
	case *compiler.Literal:
		if n.Kind == compiler.NUMBER {
			return n.Text
		}
	case *compiler.Negate:
		if s := literalText(n.Operand); s != "" {
			return "-" + s
		}
	}
	return ""
}

func isZero(lit string) bool {
	if lit == "" {
		return false
	}
	f, err := strconv.ParseFloat(lit, 64)
	return err == nil && f == 0
}
