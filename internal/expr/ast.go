// Package expr provides the small arithmetic expression language used by
// particle envelopes.
//
// Expressions have exactly one free variable, the looped frame index
// (written "frame_index" or "t" in source form), plus placeholder references
// ("@ENV_0@", "@ENV_1@", ...) that are bound to the values of nested
// envelopes at evaluation time. Expressions are parsed once into a tree of
// Node values and evaluated directly every frame; nothing is re-parsed or
// formatted while an animation runs.
//
// Trees can be produced by Parse or assembled in code with the builder
// helpers (Add, Sub, Mul, Div, Call, Number, Frame, Placeholder), which is
// how the linear and trigonometric envelopes synthesize their formulas.
package expr

import (
	"fmt"
	"math"
	"strconv"
)

// VariableName is the canonical source name of the frame index variable.
const VariableName = "frame_index"

// Env supplies the values an expression reads while it is evaluated.
type Env interface {
	// Frame returns the value bound to the frame index variable.
	Frame() float64
	// Ref returns the value bound to placeholder i.
	Ref(i int) float64
}

// Node is one element of a parsed expression tree.
type Node interface {
	Eval(env Env) float64
	String() string
}

// Num is a numeric literal.
type Num float64

func (n Num) Eval(Env) float64 { return float64(n) }

func (n Num) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }

// Var is the frame index variable.
type Var struct{}

func (Var) Eval(env Env) float64 { return env.Frame() }

func (Var) String() string { return VariableName }

// Ref is a placeholder bound to the nested envelope with the same ordinal.
type Ref int

func (r Ref) Eval(env Env) float64 { return env.Ref(int(r)) }

func (r Ref) String() string { return fmt.Sprintf("@ENV_%d@", int(r)) }

// Neg is unary negation.
type Neg struct {
	X Node
}

func (n Neg) Eval(env Env) float64 { return -n.X.Eval(env) }

func (n Neg) String() string { return "(-" + n.X.String() + ")" }

// Binary is an infix operation. Op is one of + - * / % ^.
type Binary struct {
	Op   byte
	L, R Node
}

func (b Binary) Eval(env Env) float64 {
	l := b.L.Eval(env)
	r := b.R.Eval(env)
	switch b.Op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	case '%':
		return math.Mod(l, r)
	case '^':
		return math.Pow(l, r)
	}
	panic(fmt.Sprintf("expr: unknown operator %q", b.Op))
}

func (b Binary) String() string {
	return "(" + b.L.String() + " " + string(b.Op) + " " + b.R.String() + ")"
}

// CallNode applies a named function from the built-in function table.
type CallNode struct {
	Name string
	Args []Node
	fn   function
}

func (c CallNode) Eval(env Env) float64 {
	switch len(c.Args) {
	case 1:
		return c.fn.unary(c.Args[0].Eval(env))
	case 2:
		return c.fn.binary(c.Args[0].Eval(env), c.Args[1].Eval(env))
	}
	panic(fmt.Sprintf("expr: %s called with %d arguments", c.Name, len(c.Args)))
}

func (c CallNode) String() string {
	s := c.Name + "("
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

// Curve applies a Go function to its argument. It is used for curves that
// have no closed form in the expression language (keyframe tables, easing
// functions). Its String form is informational and does not parse back.
type Curve struct {
	Name string
	F    func(float64) float64
	X    Node
}

func (c Curve) Eval(env Env) float64 { return c.F(c.X.Eval(env)) }

func (c Curve) String() string { return "<" + c.Name + ">(" + c.X.String() + ")" }

// Builder helpers

// Number returns a literal node.
func Number(v float64) Node { return Num(v) }

// Frame returns the frame index variable node.
func Frame() Node { return Var{} }

// Placeholder returns a reference to nested envelope i.
func Placeholder(i int) Node { return Ref(i) }

// Add returns l + r.
func Add(l, r Node) Node { return Binary{Op: '+', L: l, R: r} }

// Sub returns l - r.
func Sub(l, r Node) Node { return Binary{Op: '-', L: l, R: r} }

// Mul returns l * r.
func Mul(l, r Node) Node { return Binary{Op: '*', L: l, R: r} }

// Div returns l / r.
func Div(l, r Node) Node { return Binary{Op: '/', L: l, R: r} }

// Call returns a call of the named built-in function.
// It fails when the name is unknown or the argument count does not match.
func Call(name string, args ...Node) (Node, error) {
	fn, ok := functions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	if fn.arity != len(args) {
		return nil, fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrArity, name, fn.arity, len(args))
	}
	return CallNode{Name: name, Args: args, fn: fn}, nil
}

// MustCall is like Call but panics on error. Intended for formulas built
// from fixed function names.
func MustCall(name string, args ...Node) Node {
	n, err := Call(name, args...)
	if err != nil {
		panic(err)
	}
	return n
}

// Walk visits n and all of its descendants in depth-first order.
func Walk(n Node, visit func(Node)) {
	visit(n)
	switch v := n.(type) {
	case Neg:
		Walk(v.X, visit)
	case Binary:
		Walk(v.L, visit)
		Walk(v.R, visit)
	case CallNode:
		for _, a := range v.Args {
			Walk(a, visit)
		}
	case Curve:
		Walk(v.X, visit)
	}
}

// MaxRef returns the highest placeholder ordinal referenced by n, or -1 when
// the expression has no placeholders.
func MaxRef(n Node) int {
	max := -1
	Walk(n, func(node Node) {
		if r, ok := node.(Ref); ok && int(r) > max {
			max = int(r)
		}
	})
	return max
}

// CheckRefs verifies that every placeholder in n can be bound to one of
// count nested values.
func CheckRefs(n Node, count int) error {
	if max := MaxRef(n); max >= count {
		return fmt.Errorf("%w: @ENV_%d@ with %d nested value(s)", ErrUnresolvedPlaceholder, max, count)
	}
	return nil
}

// FrameEnv is an Env without placeholders, useful for plain formulas.
type FrameEnv float64

func (f FrameEnv) Frame() float64 { return float64(f) }

func (f FrameEnv) Ref(i int) float64 {
	panic(fmt.Sprintf("expr: placeholder @ENV_%d@ evaluated without nested values", i))
}
