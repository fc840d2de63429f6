// Package interp executes a parsed program by walking its syntax tree
// against a single flat environment.
package interp

import (
	"fmt"

	"minicpp/pkg/compiler"
)

type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlBreak
	ctrlReturn
)

// ctrl is how a statement finished. Loops and switch consume ctrlBreak;
// only Interpret consumes ctrlReturn.
type ctrl struct {
	kind  ctrlKind
	value Value // return value when kind == ctrlReturn
}

// Interpreter runs one program at a time. Every call to Interpret starts
// from a fresh environment.
type Interpreter struct {
	opts     Options
	env      *Env
	steps    int
	exitCode *Value
}

// New returns an interpreter configured by opts, which may be nil.
func New(opts *Options) *Interpreter {
	return &Interpreter{opts: opts.normalize(), env: NewEnv()}
}

// Env exposes the environment left behind by the last run.
func (in *Interpreter) Env() *Env { return in.env }

// ExitCode returns the value of the return statement that ended the last
// run, if any.
func (in *Interpreter) ExitCode() (Value, bool) {
	if in.exitCode == nil {
		return Value{}, false
	}
	return *in.exitCode, true
}

// Interpret executes root. A return anywhere ends the run and prints the
// exit code message to the output sink.
func (in *Interpreter) Interpret(root compiler.Node) error {
	in.env = NewEnv()
	in.steps = 0
	in.exitCode = nil
	if root == nil {
		return nil
	}

	c, err := in.exec(root)
	if err != nil {
		return err
	}
	if c.kind == ctrlReturn {
		v := c.value
		in.exitCode = &v
		in.opts.Output(fmt.Sprintf("\nProgram finished with exit code: %s", v))
	}
	return nil
}

// Run parses src and interprets it.
func Run(src string, opts *Options) (*Interpreter, error) {
	root, err := compiler.Parse(src)
	if err != nil {
		return nil, err
	}
	in := New(opts)
	return in, in.Interpret(root)
}

func (in *Interpreter) step() error {
	in.steps++
	if in.opts.MaxSteps > 0 && in.steps > in.opts.MaxSteps {
		return failf(ErrStepLimit, "límite de %d pasos excedido", in.opts.MaxSteps)
	}
	return nil
}

// exec runs a statement. Errors are tagged with the line of the innermost
// node that failed.
func (in *Interpreter) exec(n compiler.Node) (ctrl, error) {
	c, err := in.execNode(n)
	if err != nil {
		return ctrl{}, atLine(n.Line(), err)
	}
	return c, nil
}

func (in *Interpreter) execNode(n compiler.Node) (ctrl, error) {
	if err := in.step(); err != nil {
		return ctrl{}, err
	}

	switch n := n.(type) {
	case *compiler.Block:
		for _, s := range n.Stmts {
			c, err := in.exec(s)
			if err != nil || c.kind != ctrlNone {
				return c, err
			}
		}
		return ctrl{}, nil

	case *compiler.Declaration:
		return ctrl{}, in.declare(n)

	case *compiler.If:
		cond, err := in.eval(n.Cond)
		if err != nil {
			return ctrl{}, err
		}
		if cond.Truthy() {
			return in.exec(n.Body)
		}
		return ctrl{}, nil

	case *compiler.While:
		for {
			cond, err := in.eval(n.Cond)
			if err != nil {
				return ctrl{}, err
			}
			if !cond.Truthy() {
				return ctrl{}, nil
			}
			c, err := in.exec(n.Body)
			if err != nil {
				return ctrl{}, err
			}
			switch c.kind {
			case ctrlBreak:
				return ctrl{}, nil
			case ctrlReturn:
				return c, nil
			}
		}

	case *compiler.For:
		return in.execFor(n)

	case *compiler.Switch:
		// The subject must exist; no case is selected.
		if _, err := in.eval(n.Subject); err != nil {
			return ctrl{}, err
		}
		return ctrl{}, nil

	case *compiler.Break:
		return ctrl{kind: ctrlBreak}, nil

	case *compiler.Return:
		v, err := in.eval(n.Value)
		if err != nil {
			return ctrl{}, err
		}
		return ctrl{kind: ctrlReturn, value: v}, nil

	case *compiler.Cout:
		for _, item := range n.Items {
			v, err := in.eval(item)
			if err != nil {
				return ctrl{}, err
			}
			s, err := Print(v)
			if err != nil {
				return ctrl{}, atLine(item.Line(), err)
			}
			in.opts.Output(s)
		}
		return ctrl{}, nil
	}

	// Anything else is an expression statement.
	_, err := in.evalNode(n)
	return ctrl{}, err
}

func (in *Interpreter) execFor(n *compiler.For) (ctrl, error) {
	if n.Init != nil {
		if _, err := in.exec(n.Init); err != nil {
			return ctrl{}, err
		}
	}
	for {
		cond, err := in.eval(n.Cond)
		if err != nil {
			return ctrl{}, err
		}
		if !cond.Truthy() {
			return ctrl{}, nil
		}
		c, err := in.exec(n.Body)
		if err != nil {
			return ctrl{}, err
		}
		switch c.kind {
		case ctrlBreak:
			return ctrl{}, nil
		case ctrlReturn:
			return c, nil
		}
		if n.Update != nil {
			if _, err := in.exec(n.Update); err != nil {
				return ctrl{}, err
			}
		}
	}
}

func (in *Interpreter) declare(d *compiler.Declaration) error {
	for _, v := range d.Vars {
		if !v.IsArray {
			val := Int(0)
			if v.Init != nil {
				var err error
				if val, err = in.eval(v.Init); err != nil {
					return err
				}
			}
			in.env.Set(v.Name, val)
			continue
		}

		// A scalar initializer on an array is ignored and never evaluated.
		arr := NewArray(v.Size)
		if init, ok := v.Init.(*compiler.InitList); ok {
			for i, e := range init.Elems {
				val, err := in.eval(e)
				if err != nil {
					return err
				}
				arr.Set(i, val)
			}
		}
		in.env.Set(v.Name, ArrayValue(arr))
	}
	return nil
}

// Eval evaluates a single expression against the current environment.
func (in *Interpreter) Eval(n compiler.Node) (Value, error) {
	return in.eval(n)
}

func (in *Interpreter) eval(n compiler.Node) (Value, error) {
	v, err := in.evalNode(n)
	if err != nil {
		return Value{}, atLine(n.Line(), err)
	}
	return v, nil
}

func (in *Interpreter) evalNode(n compiler.Node) (Value, error) {
	switch n := n.(type) {
	case *compiler.Literal:
		if n.Kind == compiler.STRING {
			return String(n.Text), nil
		}
		return ParseNumber(n.Text)

	case *compiler.Identifier:
		return in.env.Lookup(n.Name)

	case *compiler.ArrayAccess:
		arr, idx, err := in.element(n)
		if err != nil {
			return Value{}, err
		}
		return arr.Get(idx), nil

	case *compiler.Assign:
		return in.assign(n)

	case *compiler.Increment:
		return in.increment(n)

	case *compiler.BinOp:
		l, err := in.eval(n.Left)
		if err != nil {
			return Value{}, err
		}
		r, err := in.eval(n.Right)
		if err != nil {
			return Value{}, err
		}
		return BinaryOp(n.Op, l, r)

	case *compiler.Negate:
		v, err := in.eval(n.Operand)
		if err != nil {
			return Value{}, err
		}
		return Negate(v)

	case *compiler.RelOp:
		l, err := in.eval(n.Left)
		if err != nil {
			return Value{}, err
		}
		r, err := in.eval(n.Right)
		if err != nil {
			return Value{}, err
		}
		return Compare(n.Op, l, r)

	case *compiler.SizeOf:
		return in.sizeOf(n)

	case *compiler.InitList:
		return Value{}, failf(ErrType, "lista de inicialización fuera de una declaración")
	}
	return Value{}, failf(ErrType, "no se puede evaluar %T como expresión", n)
}

// element resolves an array access to an existing array and an index.
func (in *Interpreter) element(n *compiler.ArrayAccess) (*Array, int, error) {
	iv, err := in.eval(n.Index)
	if err != nil {
		return nil, 0, err
	}
	idx, err := Index(iv)
	if err != nil {
		return nil, 0, err
	}
	arr, err := in.env.Array(n.Array.Name)
	if err != nil {
		return nil, 0, err
	}
	return arr, idx, nil
}

// assign evaluates the value before the target index. Writing an element of
// an unbound name creates the array on demand.
func (in *Interpreter) assign(n *compiler.Assign) (Value, error) {
	val, err := in.eval(n.Value)
	if err != nil {
		return Value{}, err
	}

	switch t := n.Target.(type) {
	case *compiler.Identifier:
		in.env.Set(t.Name, val)
		return val, nil

	case *compiler.ArrayAccess:
		iv, err := in.eval(t.Index)
		if err != nil {
			return Value{}, err
		}
		idx, err := Index(iv)
		if err != nil {
			return Value{}, err
		}
		if err := in.env.SetElem(t.Array.Name, idx, val); err != nil {
			return Value{}, err
		}
		return val, nil
	}
	return Value{}, failf(ErrType, "destino de asignación inválido")
}

// increment adds one in place and yields the new value.
func (in *Interpreter) increment(n *compiler.Increment) (Value, error) {
	switch t := n.Target.(type) {
	case *compiler.Identifier:
		cur, err := in.env.Lookup(t.Name)
		if err != nil {
			return Value{}, err
		}
		next, err := BinaryOp(compiler.PLUS, cur, Int(1))
		if err != nil {
			return Value{}, err
		}
		in.env.Set(t.Name, next)
		return next, nil

	case *compiler.ArrayAccess:
		arr, idx, err := in.element(t)
		if err != nil {
			return Value{}, err
		}
		next, err := BinaryOp(compiler.PLUS, arr.Get(idx), Int(1))
		if err != nil {
			return Value{}, err
		}
		arr.Set(idx, next)
		return next, nil
	}
	return Value{}, failf(ErrType, "operando de '++' inválido")
}

// sizeOf never evaluates its operand beyond a name lookup.
func (in *Interpreter) sizeOf(n *compiler.SizeOf) (Value, error) {
	switch op := n.Operand.(type) {
	case *compiler.ArrayAccess:
		return Int(4), nil
	case *compiler.Identifier:
		v, err := in.env.Lookup(op.Name)
		if err != nil {
			return Value{}, err
		}
		return Int(SizeOf(v)), nil
	}
	return Int(4), nil
}
