package envelope

import (
	"fmt"
	"math"
	"strings"

	"github.com/gonewx/partigon/internal/expr"
	"github.com/gonewx/partigon/pkg/loop"
)

// TrigFunc selects the function of a TrigonometricEnvelope.
type TrigFunc int

const (
	Sin TrigFunc = iota
	Cos
	Tan
	Cot
	Cosec
	Sec
)

// function names understood by internal/expr
var trigNames = [...]string{Sin: "sin", Cos: "cos", Tan: "tan", Cot: "cot", Cosec: "cosec", Sec: "sec"}

func (f TrigFunc) String() string {
	if f < 0 || int(f) >= len(trigNames) {
		return fmt.Sprintf("TrigFunc(%d)", int(f))
	}
	return strings.ToUpper(trigNames[f])
}

// ParseTrigFunc parses "SIN", "cos", ... case-insensitively.
func ParseTrigFunc(s string) (TrigFunc, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for i, name := range trigNames {
		if name == lower {
			return TrigFunc(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown trig function %q", ErrInvalidEnvelope, s)
}

// TrigonometricEnvelope eases between two envelopes with a trig function.
//
// With completion 1 the argument runs from 0 to pi over the envelope
// duration: SIN goes out to `to` and back, COS goes from `from` through `to`
// to the mirrored point. Combining SIN and COS envelopes on two axes with
// completion 4 draws a full circle.
//
// Expression (SIN, TAN, COT, COSEC, SEC):
//
//	@ENV_0@ + (@ENV_1@ - @ENV_0@) * f(pi * frame_index / (duration-1) * completion)
//
// COS swaps the endpoints so it also starts at @ENV_0@:
//
//	@ENV_1@ + (@ENV_0@ - @ENV_1@) * cos(pi * frame_index / (duration-1) * completion)
type TrigonometricEnvelope struct {
	*BasicEnvelope
	from, to Envelope
	fn       TrigFunc
}

// NewTrigonometric creates a trigonometric envelope.
// The loop's envelope duration must be above 1.
func NewTrigonometric(pt PropertyType, from, to Envelope, fn TrigFunc, l loop.Loop, completion float64) (*TrigonometricEnvelope, error) {
	if fn < 0 || int(fn) >= len(trigNames) {
		return nil, fmt.Errorf("%w: unknown trig function %d", ErrInvalidEnvelope, int(fn))
	}
	steps, err := interpolationSteps(l)
	if err != nil {
		return nil, err
	}

	arg := expr.Mul(expr.Number(math.Pi), progress(steps, completion))
	call := expr.MustCall(trigNames[fn], arg)

	start, end := expr.Placeholder(0), expr.Placeholder(1)
	if fn == Cos {
		start, end = end, start
	}
	node := expr.Add(start, expr.Mul(expr.Sub(end, start), call))

	b, err := newBasic(pt, node, l, completion, []Envelope{from, to})
	if err != nil {
		return nil, err
	}
	return &TrigonometricEnvelope{BasicEnvelope: b, from: from, to: to, fn: fn}, nil
}

// MustTrigonometric is like NewTrigonometric but panics on error.
func MustTrigonometric(pt PropertyType, from, to Envelope, fn TrigFunc, l loop.Loop, completion float64) *TrigonometricEnvelope {
	return must(NewTrigonometric(pt, from, to, fn, l, completion))
}

// Func returns the trig function.
func (e *TrigonometricEnvelope) Func() TrigFunc { return e.fn }

func (e *TrigonometricEnvelope) WithPropertyType(pt PropertyType) Envelope {
	return &TrigonometricEnvelope{BasicEnvelope: e.copyAs(pt), from: e.from, to: e.to, fn: e.fn}
}
