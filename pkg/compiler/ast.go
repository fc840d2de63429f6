package compiler

import (
	"fmt"
	"strings"
)

// Node is implemented by every AST variant. The set of variants is closed:
// consumers switch on the concrete type and treat anything else as a bug.
type Node interface {
	node()
	Line() int
	String() string
}

// Pos is the 1-based source line a node was built from. It is embedded in
// every variant so Line comes for free.
type Pos int

func (p Pos) Line() int { return int(p) }

//  Statements

// Block is an ordered list of statements.
//
//	{ int x = 1; cout << x; }
//	  ^^^^^^^^^^ ^^^^^^^^^^  Stmts[0], Stmts[1]
type Block struct {
	Pos
	Stmts []Node
}

func (*Block) node() {}
func (b *Block) String() string {
	parts := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// DeclVar is one name introduced by a Declaration.
//
//	int a[3] = {1, 2, 3};
//	    ^ ^    ^^^^^^^^^
//	    | |    Init (*InitList)
//	    | Size 3
//	    Name
type DeclVar struct {
	Pos
	Name    string
	IsArray bool
	Size    int  // declared element count; -1 for an open [] with no list
	Init    Node // nil, a scalar expression, or *InitList
}

func (v DeclVar) String() string {
	var sb strings.Builder
	sb.WriteString(v.Name)
	if v.IsArray {
		if v.Size >= 0 {
			fmt.Fprintf(&sb, "[%d]", v.Size)
		} else {
			sb.WriteString("[]")
		}
	}
	if v.Init != nil {
		sb.WriteString(" = " + v.Init.String())
	}
	return sb.String()
}

// Declaration introduces one or more variables of the same type.
//
//	int i = 0, n[4];
type Declaration struct {
	Pos
	Type string // int, float, char or string
	Vars []DeclVar
}

func (*Declaration) node() {}
func (d *Declaration) String() string {
	parts := make([]string, len(d.Vars))
	for i, v := range d.Vars {
		parts[i] = v.String()
	}
	return d.Type + " " + strings.Join(parts, ", ") + ";"
}

// InitList is the brace-enclosed element list of an array declaration.
// It only ever appears as DeclVar.Init.
type InitList struct {
	Pos
	Elems []Node
}

func (*InitList) node() {}
func (l *InitList) String() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// If runs Body once when Cond is truthy. There is no else branch.
type If struct {
	Pos
	Cond Node
	Body *Block
}

func (*If) node()            {}
func (s *If) String() string { return fmt.Sprintf("if (%s) %s", s.Cond, s.Body) }

// While re-evaluates Cond before every iteration of Body.
type While struct {
	Pos
	Cond Node
	Body *Block
}

func (*While) node()            {}
func (s *While) String() string { return fmt.Sprintf("while (%s) %s", s.Cond, s.Body) }

// For is a counted loop. Init, Cond and Update are already in execution
// order, whichever order the header was written in.
//
//	for (int i = 0; i < n; i++) { ... }
//	     ^^^^^^^^^  ^^^^^  ^^^
//	     Init       Cond   Update
type For struct {
	Pos
	Init   Node
	Cond   Node
	Update Node
	Body   *Block
}

func (*For) node() {}
func (s *For) String() string {
	return fmt.Sprintf("for (%s; %s; %s) %s", s.Init, s.Cond, s.Update, s.Body)
}

// Switch names a variable and a chain of cases. Case selection is not
// performed: the subject is looked up and no case body runs.
type Switch struct {
	Pos
	Subject *Identifier
	First   *Case // head of the case chain, nil for an empty switch
}

func (*Switch) node() {}
func (s *Switch) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "switch (%s) {", s.Subject)
	for c := s.First; c != nil; c = c.Next {
		sb.WriteString(" " + c.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

// Case is one link of a switch's case chain. Cases carry no value.
//
//	case: x = 2; break;
//	      ^^^^^^ ^^^^^^
//	      Body   HasBreak
type Case struct {
	Pos
	Body     Node
	HasBreak bool
	Next     *Case
}

func (*Case) node() {}
func (c *Case) String() string {
	s := "case: " + c.Body.String()
	if c.HasBreak {
		s += " break;"
	}
	return s
}

// Break leaves the innermost while, for or switch.
type Break struct {
	Pos
}

func (*Break) node()          {}
func (*Break) String() string { return "break;" }

// Return ends the whole program with Value as its exit code.
type Return struct {
	Pos
	Value Node
}

func (*Return) node()            {}
func (r *Return) String() string { return fmt.Sprintf("return %s;", r.Value) }

// Cout prints each item in order with no separator.
//
//	cout << a << " " << endl;
//	        ^    ^^^    ^^^^  Items
type Cout struct {
	Pos
	Items []Node
}

func (*Cout) node() {}
func (c *Cout) String() string {
	var sb strings.Builder
	sb.WriteString("cout")
	for _, it := range c.Items {
		sb.WriteString(" << " + it.String())
	}
	return sb.String() + ";"
}

// Assign stores Value into Target, an *Identifier or *ArrayAccess.
// Assignment is a statement form only; it never nests inside an expression.
type Assign struct {
	Pos
	Target Node
	Value  Node
}

func (*Assign) node()            {}
func (a *Assign) String() string { return fmt.Sprintf("%s = %s", a.Target, a.Value) }

//  Expressions

// ArrayAccess reads or addresses one array element.
//
//	a[i + 1]
//	^ ^^^^^
//	| Index
//	Array
type ArrayAccess struct {
	Pos
	Array *Identifier
	Index Node
}

func (*ArrayAccess) node()            {}
func (a *ArrayAccess) String() string { return fmt.Sprintf("%s[%s]", a.Array, a.Index) }

// Increment is postfix ++ on a variable or array element. Its value is the
// incremented value.
type Increment struct {
	Pos
	Target Node
}

func (*Increment) node()            {}
func (i *Increment) String() string { return i.Target.String() + "++" }

// BinOp is an arithmetic operation: PLUS, MINUS, STAR, SLASH or PERCENT.
//
//	x + 1
//	^ ^ ^
//	| | Right
//	| Op
//	Left
type BinOp struct {
	Pos
	Op    TokenType
	Left  Node
	Right Node
}

func (*BinOp) node() {}
func (b *BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, opText[b.Op], b.Right)
}

// Negate is unary minus.
type Negate struct {
	Pos
	Operand Node
}

func (*Negate) node()            {}
func (n *Negate) String() string { return fmt.Sprintf("(-%s)", n.Operand) }

// RelOp is a comparison producing 1 or 0.
type RelOp struct {
	Pos
	Op    TokenType
	Left  Node
	Right Node
}

func (*RelOp) node() {}
func (r *RelOp) String() string {
	return fmt.Sprintf("(%s %s %s)", r.Left, opText[r.Op], r.Right)
}

// SizeOf is sizeof(expr).
type SizeOf struct {
	Pos
	Operand Node
}

func (*SizeOf) node()            {}
func (s *SizeOf) String() string { return fmt.Sprintf("sizeof(%s)", s.Operand) }

// Literal is a NUMBER or STRING constant. Text is the raw lexeme; for
// strings it excludes the quotes.
type Literal struct {
	Pos
	Kind TokenType
	Text string
}

func (*Literal) node() {}
func (l *Literal) String() string {
	if l.Kind == STRING {
		return fmt.Sprintf("%q", l.Text)
	}
	return l.Text
}

// Identifier is a read of a named variable.
type Identifier struct {
	Pos
	Name string
}

func (*Identifier) node()             {}
func (id *Identifier) String() string { return id.Name }

// opText maps operator token types to their source spelling.
var opText = map[TokenType]string{
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	PERCENT:    "%",
	LESS:       "<",
	GREATER:    ">",
	LESS_EQ:    "<=",
	GREATER_EQ: ">=",
	EQUALS:     "==",
	NOT_EQ:     "!=",
}

// OpText returns the source spelling of an operator token type.
func OpText(tt TokenType) string { return opText[tt] }
