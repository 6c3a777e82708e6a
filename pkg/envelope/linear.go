package envelope

import (
	"fmt"

	"github.com/gonewx/partigon/internal/expr"
	"github.com/gonewx/partigon/pkg/loop"
)

// LinearEnvelope interpolates linearly from one envelope's value to another's
// over the loop's envelope duration.
//
// Expression: @ENV_0@ + frame_index * ((@ENV_1@ - @ENV_0@) / (duration-1)) * completion
type LinearEnvelope struct {
	*BasicEnvelope
	from, to Envelope
}

// NewLinear creates a linear envelope from `from` to `to`.
// The loop's envelope duration must be above 1.
func NewLinear(pt PropertyType, from, to Envelope, l loop.Loop, completion float64) (*LinearEnvelope, error) {
	steps, err := interpolationSteps(l)
	if err != nil {
		return nil, err
	}

	v0, v1 := expr.Placeholder(0), expr.Placeholder(1)
	slope := expr.Div(expr.Sub(v1, v0), expr.Number(steps))
	node := expr.Add(v0, expr.Mul(expr.Mul(expr.Frame(), slope), expr.Number(completion)))

	b, err := newBasic(pt, node, l, completion, []Envelope{from, to})
	if err != nil {
		return nil, err
	}
	return &LinearEnvelope{BasicEnvelope: b, from: from, to: to}, nil
}

// MustLinear is like NewLinear but panics on error.
func MustLinear(pt PropertyType, from, to Envelope, l loop.Loop, completion float64) *LinearEnvelope {
	return must(NewLinear(pt, from, to, l, completion))
}

func (e *LinearEnvelope) WithPropertyType(pt PropertyType) Envelope {
	return &LinearEnvelope{BasicEnvelope: e.copyAs(pt), from: e.from, to: e.to}
}

// interpolationSteps returns envelopeDuration-1, the divisor used to turn a
// looped frame index into progress.
func interpolationSteps(l loop.Loop) (float64, error) {
	if l == nil {
		return 0, fmt.Errorf("%w: nil loop", ErrInvalidEnvelope)
	}
	d := l.EnvelopeDuration()
	if d <= 1 {
		return 0, fmt.Errorf("%w: got %d", ErrDegenerateDuration, d)
	}
	return float64(d - 1), nil
}

// progress builds frame_index / steps * completion.
func progress(steps, completion float64) expr.Node {
	return expr.Mul(expr.Div(expr.Frame(), expr.Number(steps)), expr.Number(completion))
}
