// Package envelope provides the value functions that drive particle
// properties over time.
//
// An envelope maps a frame index to a number. The frame index is first
// remapped by the envelope's loop, then the envelope's expression is
// evaluated with the looped index bound to frame_index and with each
// placeholder @ENV_i@ bound to the value of nested envelope i. Nested
// envelopes receive the unlooped frame index and apply their own loops.
//
// Position and offset envelopes can be collected into a Group. Once a group
// has rotations, ValueAt returns the rotated coordinate of the group's joint
// 3D point instead of the envelope's own scalar; RawValueAt always returns the
// unrotated value.
package envelope

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gonewx/partigon/internal/expr"
	"github.com/gonewx/partigon/pkg/loop"
	"github.com/gonewx/partigon/pkg/rotation"
)

var (
	// ErrAlreadyGrouped reports an envelope that already belongs to a group.
	ErrAlreadyGrouped = errors.New("envelope: already assigned to a group")
	// ErrGroupAxisMismatch reports a group slot holding the wrong property.
	ErrGroupAxisMismatch = errors.New("envelope: property does not match group axis")
	// ErrDegenerateDuration reports a loop too short to interpolate over.
	ErrDegenerateDuration = errors.New("envelope: envelope duration must be > 1")
	// ErrNoneProperty reports a NONE envelope used where a property is required.
	ErrNoneProperty = errors.New("envelope: NONE property used as a top-level property")
	// ErrInvalidEnvelope reports any other construction problem.
	ErrInvalidEnvelope = errors.New("envelope: invalid envelope")
)

// Envelope is a value function of the frame index.
//
// The only implementation is BasicEnvelope; the typed envelopes in this
// package embed it. ValueAt makes every envelope a rotation.Source, so
// envelopes can animate rotation angles and pivots.
type Envelope interface {
	rotation.Source

	PropertyType() PropertyType
	// Expression is the parsed formula evaluated every frame.
	Expression() expr.Node
	Loop() loop.Loop
	// Completion scales animation progress. 1 plays the whole envelope once.
	Completion() float64
	// Nested returns the envelopes bound to placeholders, in placeholder order.
	Nested() []Envelope
	// Group returns the group this envelope belongs to, or nil.
	Group() *Group
	// RawValueAt evaluates the envelope without group rotations.
	RawValueAt(frameIndex int) float64
	// WithPropertyType returns an ungrouped copy bound to another property.
	// The copy shares the loop, expression and nested envelopes.
	WithPropertyType(pt PropertyType) Envelope

	basic() *BasicEnvelope
}

// BasicEnvelope evaluates an arbitrary expression.
type BasicEnvelope struct {
	propertyType PropertyType
	expression   expr.Node
	loop         loop.Loop
	completion   float64
	nested       []Envelope

	mu    sync.Mutex
	group *Group
}

// NewBasic parses source and creates an envelope evaluating it.
//
// Parameters:
//   - pt: the driven property, None for nested envelopes
//   - source: formula over frame_index (alias t) with placeholders @ENV_i@
//   - l: loop applied to the frame index before evaluation
//   - completion: progress scale, must be >= 0
//   - nested: envelopes bound to @ENV_0@, @ENV_1@, ...
//
// Returns an error if source does not parse or references a placeholder with
// no matching nested envelope.
func NewBasic(pt PropertyType, source string, l loop.Loop, completion float64, nested ...Envelope) (*BasicEnvelope, error) {
	node, err := expr.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse envelope expression %q: %w", source, err)
	}
	return newBasic(pt, node, l, completion, nested)
}

// NewBasicFromNode creates an envelope from an already built expression.
func NewBasicFromNode(pt PropertyType, node expr.Node, l loop.Loop, completion float64, nested ...Envelope) (*BasicEnvelope, error) {
	return newBasic(pt, node, l, completion, nested)
}

// MustBasic is like NewBasic but panics on error.
func MustBasic(pt PropertyType, source string, l loop.Loop, completion float64, nested ...Envelope) *BasicEnvelope {
	return must(NewBasic(pt, source, l, completion, nested...))
}

func newBasic(pt PropertyType, node expr.Node, l loop.Loop, completion float64, nested []Envelope) (*BasicEnvelope, error) {
	if node == nil {
		return nil, fmt.Errorf("%w: nil expression", ErrInvalidEnvelope)
	}
	if l == nil {
		return nil, fmt.Errorf("%w: nil loop", ErrInvalidEnvelope)
	}
	if completion < 0 {
		return nil, fmt.Errorf("%w: completion must be >= 0, got %g", ErrInvalidEnvelope, completion)
	}
	for i, n := range nested {
		if n == nil {
			return nil, fmt.Errorf("%w: nested envelope %d is nil", ErrInvalidEnvelope, i)
		}
	}
	if err := expr.CheckRefs(node, len(nested)); err != nil {
		return nil, err
	}
	return &BasicEnvelope{
		propertyType: pt,
		expression:   node,
		loop:         l,
		completion:   completion,
		nested:       append([]Envelope(nil), nested...),
	}, nil
}

func (b *BasicEnvelope) PropertyType() PropertyType { return b.propertyType }
func (b *BasicEnvelope) Expression() expr.Node      { return b.expression }
func (b *BasicEnvelope) Loop() loop.Loop            { return b.loop }
func (b *BasicEnvelope) Completion() float64        { return b.completion }
func (b *BasicEnvelope) basic() *BasicEnvelope      { return b }

func (b *BasicEnvelope) Nested() []Envelope {
	return append([]Envelope(nil), b.nested...)
}

func (b *BasicEnvelope) Group() *Group {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.group
}

// setGroup assigns the group back-reference. It can only succeed once.
func (b *BasicEnvelope) setGroup(g *Group) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.group != nil {
		return ErrAlreadyGrouped
	}
	b.group = g
	return nil
}

func (b *BasicEnvelope) WithPropertyType(pt PropertyType) Envelope {
	return b.copyAs(pt)
}

func (b *BasicEnvelope) copyAs(pt PropertyType) *BasicEnvelope {
	return &BasicEnvelope{
		propertyType: pt,
		expression:   b.expression,
		loop:         b.loop,
		completion:   b.completion,
		nested:       b.nested,
	}
}

// ValueAt returns the value at frameIndex, rotated by the group's rotations
// when the envelope is grouped.
func (b *BasicEnvelope) ValueAt(frameIndex int) float64 {
	return b.valueAt(frameIndex, false)
}

// RawValueAt returns the value at frameIndex ignoring group rotations.
func (b *BasicEnvelope) RawValueAt(frameIndex int) float64 {
	return b.valueAt(frameIndex, true)
}

func (b *BasicEnvelope) valueAt(frameIndex int, raw bool) float64 {
	looped := b.loop.Apply(frameIndex)

	if !raw {
		if g := b.Group(); g != nil {
			if rots := g.Rotations(); len(rots) > 0 {
				// 旋转需要三个轴的值：兄弟包络在循环后的帧上取原始值，旋转使用未循环的帧
				p := rotation.ApplyRotations(g.RawPoint(looped), rots, frameIndex)
				switch b.propertyType.Axis() {
				case 0:
					return p.X
				case 1:
					return p.Y
				case 2:
					return p.Z
				}
			}
		}
	}

	env := evalEnv{frame: float64(looped)}
	if len(b.nested) > 0 {
		env.refs = make([]float64, len(b.nested))
		for i, n := range b.nested {
			env.refs[i] = n.ValueAt(frameIndex)
		}
	}
	return b.expression.Eval(env)
}

func (b *BasicEnvelope) String() string {
	return fmt.Sprintf("%s[%s]", b.propertyType, b.expression)
}

type evalEnv struct {
	frame float64
	refs  []float64
}

func (e evalEnv) Frame() float64    { return e.frame }
func (e evalEnv) Ref(i int) float64 { return e.refs[i] }

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
