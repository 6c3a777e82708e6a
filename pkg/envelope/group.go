package envelope

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gonewx/partigon/pkg/rotation"
)

// GroupKind selects which three properties a group holds.
type GroupKind int

const (
	GroupPosition GroupKind = iota
	GroupOffset
)

func (k GroupKind) String() string {
	switch k {
	case GroupPosition:
		return "POSITION"
	case GroupOffset:
		return "OFFSET"
	}
	return fmt.Sprintf("GroupKind(%d)", int(k))
}

// Axes returns the X, Y and Z properties of the kind.
func (k GroupKind) Axes() [3]PropertyType {
	if k == GroupOffset {
		return [3]PropertyType{OffsetX, OffsetY, OffsetZ}
	}
	return [3]PropertyType{PosX, PosY, PosZ}
}

// Group ties the X, Y and Z envelopes of a position or offset together so
// rotations apply to their joint 3D point.
//
// An envelope can belong to at most one group, for its whole lifetime.
// Rotations can be appended after construction (animations append their
// group rotations when built) but never removed.
type Group struct {
	kind      GroupKind
	envelopes [3]Envelope

	mu        sync.RWMutex
	rotations []rotation.Options
}

// NewGroup creates a group of x, y and z.
//
// Returns:
//   - ErrGroupAxisMismatch if a slot does not carry the matching axis of kind
//   - ErrAlreadyGrouped if any of the envelopes is already grouped; in that
//     case none of the envelopes is modified
func NewGroup(kind GroupKind, x, y, z Envelope, rotations ...rotation.Options) (*Group, error) {
	if kind != GroupPosition && kind != GroupOffset {
		return nil, fmt.Errorf("%w: unknown group kind %d", ErrInvalidEnvelope, int(kind))
	}
	envelopes := [3]Envelope{x, y, z}
	axes := kind.Axes()
	for i, e := range envelopes {
		if e == nil {
			return nil, fmt.Errorf("%w: %s group slot %d is nil", ErrGroupAxisMismatch, kind, i)
		}
		if e.Group() != nil {
			return nil, fmt.Errorf("%w: %s envelope", ErrAlreadyGrouped, e.PropertyType())
		}
		if e.PropertyType() != axes[i] {
			return nil, fmt.Errorf("%w: %s group slot %d needs %s, got %s",
				ErrGroupAxisMismatch, kind, i, axes[i], e.PropertyType())
		}
	}

	g := &Group{
		kind:      kind,
		envelopes: envelopes,
		rotations: append([]rotation.Options(nil), rotations...),
	}
	for _, e := range envelopes {
		if err := e.basic().setGroup(g); err != nil {
			return nil, fmt.Errorf("%w: %s envelope", err, e.PropertyType())
		}
	}
	return g, nil
}

// MustGroup is like NewGroup but panics on error.
func MustGroup(kind GroupKind, x, y, z Envelope, rotations ...rotation.Options) *Group {
	return must(NewGroup(kind, x, y, z, rotations...))
}

func (g *Group) Kind() GroupKind { return g.kind }

// Envelopes returns the X, Y and Z envelopes.
func (g *Group) Envelopes() [3]Envelope { return g.envelopes }

// Rotations returns the group rotations in application order.
// The returned slice must not be modified.
func (g *Group) Rotations() []rotation.Options {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotations
}

// AddRotations appends rotations after the existing ones.
func (g *Group) AddRotations(rotations ...rotation.Options) {
	if len(rotations) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	// 复制后追加，已经返回给调用者的切片保持不变
	next := make([]rotation.Options, 0, len(g.rotations)+len(rotations))
	next = append(next, g.rotations...)
	g.rotations = append(next, rotations...)
}

// RawPoint returns the unrotated point of the three envelopes at frameIndex.
func (g *Group) RawPoint(frameIndex int) r3.Vec {
	return r3.Vec{
		X: g.envelopes[0].RawValueAt(frameIndex),
		Y: g.envelopes[1].RawValueAt(frameIndex),
		Z: g.envelopes[2].RawValueAt(frameIndex),
	}
}

// Point returns the point of the three envelopes at frameIndex with the
// group rotations applied.
func (g *Group) Point(frameIndex int) r3.Vec {
	return r3.Vec{
		X: g.envelopes[0].ValueAt(frameIndex),
		Y: g.envelopes[1].ValueAt(frameIndex),
		Z: g.envelopes[2].ValueAt(frameIndex),
	}
}
