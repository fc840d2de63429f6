package check

import (
	"fmt"
	"sort"
	"strings"
)

type SymbolKind int

const (
	KindVariable SymbolKind = iota
	KindArray
)

func (k SymbolKind) String() string {
	if k == KindArray {
		return "array"
	}
	return "variable"
}

type Symbol struct {
	Name string
	Kind SymbolKind
	Type string // declared type; empty when created by assignment
	Size int    // declared array size, -1 when open or unknown
	Line int    // line of the declaration

	// Literal is the text of the last numeric literal assigned, or empty
	// when the current value is not statically known.
	Literal string
}

// SymbolTable maps names to what the pre-pass knows about them. There is a
// single scope, like the interpreter's environment.
type SymbolTable struct {
	symbols map[string]Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols: map[string]Symbol{
			"endl": {Name: "endl", Type: "string", Size: -1},
		},
	}
}

// Allocate records sym. If the name is already known the existing symbol is
// returned together with true and the table is left unchanged.
func (s *SymbolTable) Allocate(sym Symbol) (Symbol, bool) {
	if old, ok := s.symbols[sym.Name]; ok {
		return old, true
	}
	s.symbols[sym.Name] = sym
	return sym, false
}

// Redefine replaces the symbol unconditionally.
func (s *SymbolTable) Redefine(sym Symbol) { s.symbols[sym.Name] = sym }

// Lookup returns the symbol and whether it was found.
func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// SetLiteral records the statically known value of name ("" forgets it).
func (s *SymbolTable) SetLiteral(name, lit string) {
	if sym, ok := s.symbols[name]; ok {
		sym.Literal = lit
		s.symbols[name] = sym
	}
}

func (s *SymbolTable) Len() int { return len(s.symbols) }

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	names := make([]string, 0, len(s.symbols))
	for name := range s.symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Symbols:\n")
	for _, name := range names {
		sym := s.symbols[name]
		fmt.Fprintf(&sb, "  %-20s  %s (Type: %s, Size: %d, Line: %d)", name, sym.Kind, sym.Type, sym.Size, sym.Line)
		if sym.Literal != "" {
			fmt.Fprintf(&sb, " = %s", sym.Literal)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
