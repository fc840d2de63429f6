package interp

import (
	"fmt"
	"sort"
	"strings"
)

// Env is the single flat variable store of a run. There are no nested
// scopes: a name declared anywhere stays visible until the run ends.
type Env struct {
	vars map[string]Value
}

// NewEnv returns an environment with endl pre-bound to "\n".
func NewEnv() *Env {
	return &Env{vars: map[string]Value{"endl": String("\n")}}
}

// Get returns the value bound to name and whether it was found.
func (e *Env) Get(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Lookup is Get with a name error for unbound names.
func (e *Env) Lookup(name string) (Value, error) {
	if v, ok := e.vars[name]; ok {
		return v, nil
	}
	return Value{}, failf(ErrName, "Variable '%s' no definida", name)
}

func (e *Env) Set(name string, v Value) { e.vars[name] = v }

// Array returns the array bound to name.
func (e *Env) Array(name string) (*Array, error) {
	v, ok := e.vars[name]
	if !ok || v.Kind != ArrayKind {
		return nil, failf(ErrName, "Arreglo '%s' no definido o acceso inválido", name)
	}
	return v.Arr, nil
}

// SetElem writes one array element. An unbound name becomes a fresh unsized
// array; a bound scalar is an error.
func (e *Env) SetElem(name string, idx int, v Value) error {
	cur, ok := e.vars[name]
	if !ok {
		cur = ArrayValue(NewArray(-1))
		e.vars[name] = cur
	}
	if cur.Kind != ArrayKind {
		return failf(ErrType, "'%s' no es un arreglo", name)
	}
	cur.Arr.Set(idx, v)
	return nil
}

// Names returns the bound names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a deterministically ordered dump of the environment.
func (e *Env) String() string {
	var sb strings.Builder
	for _, name := range e.Names() {
		v := e.vars[name]
		switch v.Kind {
		case ArrayKind:
			idx := make([]int, 0, len(v.Arr.Elems))
			for i := range v.Arr.Elems {
				idx = append(idx, i)
			}
			sort.Ints(idx)
			parts := make([]string, len(idx))
			for j, i := range idx {
				parts[j] = fmt.Sprintf("%d:%s", i, v.Arr.Elems[i])
			}
			fmt.Fprintf(&sb, "  %-20s  array (Len: %d) {%s}\n", name, v.Arr.Len(), strings.Join(parts, ", "))
		case StringKind:
			fmt.Fprintf(&sb, "  %-20s  %s %q\n", name, v.Kind, v.Str)
		default:
			fmt.Fprintf(&sb, "  %-20s  %s %s\n", name, v.Kind, v)
		}
	}
	return sb.String()
}
