package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// CodeGen walks an AST and emits stack machine assembly text.
//
// Every value-producing expression leaves exactly one cell on the stack.
// Statements leave the stack as they found it.
type CodeGen struct {
	out       strings.Builder
	nextLabel int
	loopStack []string // end labels of the enclosing loops
	endLabel  string
	lastLine  int
}

func newCodeGen() *CodeGen {
	return &CodeGen{}
}

func (cg *CodeGen) newLabel() string {
	l := fmt.Sprintf("L%d", cg.nextLabel)
	cg.nextLabel++
	return l
}

// emit writes one instruction, preceded by a .LINE directive whenever the
// source line changes.
func (cg *CodeGen) emit(line int, format string, args ...any) {
	if line > 0 && line != cg.lastLine {
		fmt.Fprintf(&cg.out, "    .LINE %d\n", line)
		cg.lastLine = line
	}
	fmt.Fprintf(&cg.out, "    "+format+"\n", args...)
}

func (cg *CodeGen) label(l string) {
	fmt.Fprintf(&cg.out, "%s:\n", l)
}

func (cg *CodeGen) comment(format string, args ...any) {
	fmt.Fprintf(&cg.out, "    ; "+format+"\n", args...)
}

var opMnemonic = map[TokenType]string{
	PLUS:       "ADD",
	MINUS:      "SUB",
	STAR:       "MUL",
	SLASH:      "DIV",
	PERCENT:    "MOD",
	LESS:       "LT",
	GREATER:    "GT",
	LESS_EQ:    "LE",
	GREATER_EQ: "GE",
	EQUALS:     "EQ",
	NOT_EQ:     "NE",
}

// genAddress pushes the address of an assignable target.
func (cg *CodeGen) genAddress(n Node) error {
	switch n := n.(type) {
	case *Identifier:
		cg.emit(n.Line(), "PUSHA %s", n.Name)
		return nil
	case *ArrayAccess:
		cg.emit(n.Line(), "PUSHA %s", n.Array.Name)
		if err := cg.genExpr(n.Index); err != nil {
			return err
		}
		cg.emit(n.Line(), "INDEX")
		return nil
	}
	return fmt.Errorf("line %d: %T is not assignable", n.Line(), n)
}

func (cg *CodeGen) genExpr(n Node) error {
	switch n := n.(type) {
	case *Literal:
		if n.Kind == STRING {
			cg.emit(n.Line(), "PUSHC %s", strconv.Quote(n.Text))
		} else {
			cg.emit(n.Line(), "PUSHC %s", n.Text)
		}

	case *Identifier:
		cg.emit(n.Line(), "PUSHA %s", n.Name)
		cg.emit(n.Line(), "LOAD")

	case *ArrayAccess:
		if err := cg.genAddress(n); err != nil {
			return err
		}
		cg.emit(n.Line(), "LOAD")

	case *Increment:
		if err := cg.genAddress(n.Target); err != nil {
			return err
		}
		cg.emit(n.Line(), "INC")

	case *Assign:
		// Value first, like the interpreter; STORE consumes it, so reload.
		if err := cg.genAssign(n); err != nil {
			return err
		}
		if err := cg.genAddress(n.Target); err != nil {
			return err
		}
		cg.emit(n.Line(), "LOAD")

	case *BinOp:
		if err := cg.genExpr(n.Left); err != nil {
			return err
		}
		if err := cg.genExpr(n.Right); err != nil {
			return err
		}
		cg.emit(n.Line(), "%s", opMnemonic[n.Op])

	case *RelOp:
		if err := cg.genExpr(n.Left); err != nil {
			return err
		}
		if err := cg.genExpr(n.Right); err != nil {
			return err
		}
		cg.emit(n.Line(), "%s", opMnemonic[n.Op])

	case *Negate:
		if err := cg.genExpr(n.Operand); err != nil {
			return err
		}
		cg.emit(n.Line(), "NEG")

	case *SizeOf:
		if id, ok := n.Operand.(*Identifier); ok {
			cg.emit(n.Line(), "PUSHA %s", id.Name)
			cg.emit(n.Line(), "SIZEOF")
		} else {
			cg.emit(n.Line(), "PUSHC 4")
		}

	default:
		return fmt.Errorf("line %d: cannot generate %T as an expression", n.Line(), n)
	}
	return nil
}

func (cg *CodeGen) genAssign(n *Assign) error {
	if err := cg.genExpr(n.Value); err != nil {
		return err
	}
	if err := cg.genAddress(n.Target); err != nil {
		return err
	}
	cg.emit(n.Line(), "STORE")
	return nil
}

func (cg *CodeGen) genDeclaration(d *Declaration) error {
	for _, v := range d.Vars {
		if !v.IsArray {
			if v.Init != nil {
				if err := cg.genExpr(v.Init); err != nil {
					return err
				}
			} else {
				cg.emit(v.Line(), "PUSHC 0")
			}
			cg.emit(v.Line(), "PUSHA %s", v.Name)
			cg.emit(v.Line(), "STORE")
			continue
		}

		var elems []Node
		if init, ok := v.Init.(*InitList); ok {
			elems = init.Elems
		}
		// Elements are evaluated before the array exists, then stored from
		// the top of the stack down.
		for _, e := range elems {
			if err := cg.genExpr(e); err != nil {
				return err
			}
		}
		if v.Size < 0 {
			cg.emit(v.Line(), "DECL %s", v.Name)
		} else {
			cg.emit(v.Line(), "DECL %s %d", v.Name, v.Size)
		}
		for i := len(elems) - 1; i >= 0; i-- {
			cg.emit(v.Line(), "PUSHA %s", v.Name)
			cg.emit(v.Line(), "PUSHC %d", i)
			cg.emit(v.Line(), "INDEX")
			cg.emit(v.Line(), "STORE")
		}
	}
	return nil
}

func (cg *CodeGen) genLoop(line int, init Node, cond Node, update Node, body *Block) error {
	if init != nil {
		if err := cg.genStmt(init); err != nil {
			return err
		}
	}
	start, end := cg.newLabel(), cg.newLabel()
	cg.label(start)
	if err := cg.genExpr(cond); err != nil {
		return err
	}
	cg.emit(line, "JZ %s", end)

	cg.loopStack = append(cg.loopStack, end)
	if err := cg.genStmt(body); err != nil {
		return err
	}
	cg.loopStack = cg.loopStack[:len(cg.loopStack)-1]

	if update != nil {
		if err := cg.genStmt(update); err != nil {
			return err
		}
	}
	cg.emit(line, "JMP %s", start)
	cg.label(end)
	return nil
}

func (cg *CodeGen) genStmt(n Node) error {
	switch n := n.(type) {
	case *Block:
		for _, s := range n.Stmts {
			if err := cg.genStmt(s); err != nil {
				return err
			}
		}

	case *Declaration:
		return cg.genDeclaration(n)

	case *If:
		if err := cg.genExpr(n.Cond); err != nil {
			return err
		}
		end := cg.newLabel()
		cg.emit(n.Line(), "JZ %s", end)
		if err := cg.genStmt(n.Body); err != nil {
			return err
		}
		cg.label(end)

	case *While:
		return cg.genLoop(n.Line(), nil, n.Cond, nil, n.Body)

	case *For:
		return cg.genLoop(n.Line(), n.Init, n.Cond, n.Update, n.Body)

	case *Switch:
		cg.comment("switch (%s): cases are never selected", n.Subject.Name)
		cg.emit(n.Line(), "PUSHA %s", n.Subject.Name)
		cg.emit(n.Line(), "LOAD")
		cg.emit(n.Line(), "POP")

	case *Break:
		target := cg.endLabel
		if len(cg.loopStack) > 0 {
			target = cg.loopStack[len(cg.loopStack)-1]
		}
		cg.emit(n.Line(), "JMP %s", target)

	case *Return:
		if err := cg.genExpr(n.Value); err != nil {
			return err
		}
		cg.emit(n.Line(), "RET")

	case *Cout:
		for _, item := range n.Items {
			if err := cg.genExpr(item); err != nil {
				return err
			}
			cg.emit(item.Line(), "OUTPUT")
		}

	case *Assign:
		return cg.genAssign(n)

	default:
		if err := cg.genExpr(n); err != nil {
			return err
		}
		cg.emit(n.Line(), "POP")
	}
	return nil
}

// Generate emits the assembly listing for root. A nil root produces an
// empty program.
func Generate(root Node) (string, error) {
	cg := newCodeGen()
	cg.out.WriteString(".CODE\n")
	cg.endLabel = cg.newLabel()

	if root != nil {
		if err := cg.genStmt(root); err != nil {
			return "", err
		}
	}

	cg.label(cg.endLabel)
	cg.out.WriteString("    END\n")
	return cg.out.String(), nil
}
