// Package rotation applies ordered, time-varying 3D rotations to points.
//
// A rotation is described by Options: an axis, an angle that may change with
// the frame index, and a pivot point that may also move. ApplyRotations
// composes a list of Options in order.
package rotation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Source is anything that produces a value for a frame index. Envelopes
// satisfy it, so rotation angles and pivots can be animated.
type Source interface {
	ValueAt(frameIndex int) float64
}

// Constant is a Source with a fixed value.
type Constant float64

func (c Constant) ValueAt(int) float64 { return float64(c) }

// Axes
var (
	AxisX = r3.Vec{X: 1}
	AxisY = r3.Vec{Y: 1}
	AxisZ = r3.Vec{Z: 1}
)

// Options describes a single rotation.
type Options struct {
	// Axis is the rotation axis. It does not need to be normalized but must
	// not be the zero vector.
	Axis r3.Vec
	// Angle is the rotation angle, in degrees unless Radians is set.
	Angle Source
	// Pivot is the point rotated around. Nil components are 0.
	Pivot [3]Source
	// Radians interprets Angle in radians.
	Radians bool
}

// Around creates Options rotating by angle degrees around axis through the
// origin.
func Around(axis r3.Vec, angle Source) Options {
	return Options{Axis: axis, Angle: angle}
}

// AroundX rotates around the X axis.
func AroundX(angle Source) Options { return Around(AxisX, angle) }

// AroundY rotates around the Y axis.
func AroundY(angle Source) Options { return Around(AxisY, angle) }

// AroundZ rotates around the Z axis.
func AroundZ(angle Source) Options { return Around(AxisZ, angle) }

// WithPivot returns a copy of o rotating around the given pivot.
func (o Options) WithPivot(x, y, z Source) Options {
	o.Pivot = [3]Source{x, y, z}
	return o
}

// AngleAt returns the rotation angle in radians at frameIndex.
func (o Options) AngleAt(frameIndex int) float64 {
	if o.Angle == nil {
		return 0
	}
	a := o.Angle.ValueAt(frameIndex)
	if o.Radians {
		return a
	}
	return a * math.Pi / 180
}

// PivotAt returns the pivot position at frameIndex.
func (o Options) PivotAt(frameIndex int) r3.Vec {
	var p [3]float64
	for i, s := range o.Pivot {
		if s != nil {
			p[i] = s.ValueAt(frameIndex)
		}
	}
	return r3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

// Apply rotates point p by o at frameIndex.
func (o Options) Apply(p r3.Vec, frameIndex int) r3.Vec {
	alpha := o.AngleAt(frameIndex)
	if alpha == 0 || o.Axis == (r3.Vec{}) {
		return p
	}
	pivot := o.PivotAt(frameIndex)
	rot := r3.NewRotation(alpha, r3.Unit(o.Axis))
	return r3.Add(rot.Rotate(r3.Sub(p, pivot)), pivot)
}

// ApplyRotations applies every rotation in opts to p, in list order, using
// frameIndex as the time parameter of each rotation.
func ApplyRotations(p r3.Vec, opts []Options, frameIndex int) r3.Vec {
	for _, o := range opts {
		p = o.Apply(p, frameIndex)
	}
	return p
}
