package compiler

import (
	"fmt"
	"strings"
)

// Dump renders an AST as an indented tree, one node per line, children
// indented two spaces under their parent.
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	return sb.String()
}

func dump(sb *strings.Builder, n Node, level int) {
	indent := strings.Repeat("  ", level)
	line := func(format string, args ...any) {
		sb.WriteString(indent)
		fmt.Fprintf(sb, format, args...)
		sb.WriteByte('\n')
	}
	// labelled writes a child under a label line.
	labelled := func(label string, child Node) {
		fmt.Fprintf(sb, "%s %s:\n", indent, label)
		dump(sb, child, level+2)
	}

	switch n := n.(type) {
	case nil:
		line("<nil>")
	case *Block:
		line("Block:")
		for _, s := range n.Stmts {
			dump(sb, s, level+1)
		}
	case *Declaration:
		parts := make([]string, len(n.Vars))
		for i, v := range n.Vars {
			parts[i] = v.String()
		}
		line("Declaration (%s): %s", n.Type, strings.Join(parts, ", "))
	case *InitList:
		line("Lista: %s", n)
	case *If:
		line("If:")
		labelled("Cond", n.Cond)
		labelled("Body", n.Body)
	case *While:
		line("While:")
		labelled("Cond", n.Cond)
		labelled("Body", n.Body)
	case *For:
		line("For:")
		labelled("Init", n.Init)
		labelled("Cond", n.Cond)
		labelled("Update", n.Update)
		labelled("Body", n.Body)
	case *Switch:
		line("Switch: %s", n.Subject.Name)
		for c := n.First; c != nil; c = c.Next {
			dump(sb, c, level+1)
		}
	case *Case:
		line("Case:")
		dump(sb, n.Body, level+1)
		if n.HasBreak {
			line("  Break")
		}
	case *Break:
		line("Break")
	case *Return:
		line("Return:")
		dump(sb, n.Value, level+1)
	case *Cout:
		line("Cout:")
		for _, it := range n.Items {
			dump(sb, it, level+1)
		}
	case *Assign:
		line("Operador: =")
		labelled("L", n.Target)
		labelled("R", n.Value)
	case *ArrayAccess:
		line("Operador: []")
		labelled("L", n.Array)
		labelled("R", n.Index)
	case *Increment:
		line("Operador: ++")
		labelled("L", n.Target)
	case *BinOp:
		line("Operador: %s", opText[n.Op])
		labelled("L", n.Left)
		labelled("R", n.Right)
	case *Negate:
		line("Operador: -")
		labelled("L", n.Operand)
	case *RelOp:
		line("Operador: %s", opText[n.Op])
		labelled("L", n.Left)
		labelled("R", n.Right)
	case *SizeOf:
		line("Sizeof:")
		dump(sb, n.Operand, level+1)
	case *Literal:
		if n.Kind == STRING {
			line("Cadena: %q", n.Text)
		} else {
			line("Numero: %s", n.Text)
		}
	case *Identifier:
		line("Identificador: %s", n.Name)
	default:
		line("%T", n)
	}
}
