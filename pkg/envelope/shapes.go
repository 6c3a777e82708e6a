package envelope

import (
	"fmt"
	"strings"

	"github.com/gonewx/partigon/pkg/loop"
	"github.com/gonewx/partigon/pkg/rotation"
)

// Triple holds one envelope per axis, used as a shape endpoint.
type Triple struct {
	X, Y, Z Envelope
}

// ConstTriple creates a Triple of constants.
func ConstTriple(x, y, z float64) Triple {
	return Triple{X: Const(x), Y: Const(y), Z: Const(z)}
}

func (t Triple) axis(i int) Envelope {
	switch i {
	case 0:
		return t.X
	case 1:
		return t.Y
	}
	return t.Z
}

// LinearGroup draws a straight line from one point to another.
func LinearGroup(kind GroupKind, from, to Triple, l loop.Loop, completion float64, rotations ...rotation.Options) (*Group, error) {
	var envs [3]Envelope
	for i, pt := range kind.Axes() {
		e, err := NewLinear(pt, from.axis(i), to.axis(i), l, completion)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s line envelope: %w", pt, err)
		}
		envs[i] = e
	}
	return NewGroup(kind, envs[0], envs[1], envs[2], rotations...)
}

// CurveOrientation places a curve relative to the line from the first point
// to the second, seen from the first point facing the second.
type CurveOrientation int

const (
	CurveRight CurveOrientation = iota
	CurveLeft
	CurveAbove
	CurveBelow
	CurveRightAbove
	CurveRightBelow
	CurveLeftAbove
	CurveLeftBelow
)

var curveNames = [...]string{
	CurveRight:      "RIGHT",
	CurveLeft:       "LEFT",
	CurveAbove:      "ABOVE",
	CurveBelow:      "BELOW",
	CurveRightAbove: "RIGHT_ABOVE",
	CurveRightBelow: "RIGHT_BELOW",
	CurveLeftAbove:  "LEFT_ABOVE",
	CurveLeftBelow:  "LEFT_BELOW",
}

func (o CurveOrientation) String() string {
	if o < 0 || int(o) >= len(curveNames) {
		return fmt.Sprintf("CurveOrientation(%d)", int(o))
	}
	return curveNames[o]
}

// ParseCurveOrientation parses names such as "RIGHT_ABOVE".
func ParseCurveOrientation(s string) (CurveOrientation, error) {
	i, ok := lookupName(curveNames[:], s)
	if !ok {
		return 0, fmt.Errorf("%w: unknown curve orientation %q", ErrInvalidEnvelope, s)
	}
	return CurveOrientation(i), nil
}

// CurveFunc returns the trig function drawing axis (0=X, 1=Y, 2=Z) of a
// curve with orientation o. ok is false when the orientation leaves that
// axis flat (Y of RIGHT and LEFT).
func CurveFunc(o CurveOrientation, axis int) (fn TrigFunc, ok bool) {
	switch o {
	case CurveAbove:
		return pick(axis, Cos, Sin, Cos), true
	case CurveBelow:
		return pick(axis, Sin, Cos, Sin), true
	}

	left := o == CurveLeft || o == CurveLeftAbove || o == CurveLeftBelow
	switch axis {
	case 0:
		if left {
			return Sin, true
		}
		return Cos, true
	case 2:
		if left {
			return Cos, true
		}
		return Sin, true
	}
	switch o {
	case CurveRightBelow, CurveLeftBelow:
		return Sin, true
	case CurveRightAbove, CurveLeftAbove:
		return Cos, true
	}
	return 0, false
}

// NewCurve creates the envelope for one axis of a curve. pt must be a
// position or offset property; it selects the axis.
func NewCurve(pt PropertyType, from, to Envelope, o CurveOrientation, l loop.Loop, completion float64) (Envelope, error) {
	if o < 0 || int(o) >= len(curveNames) {
		return nil, fmt.Errorf("%w: unknown curve orientation %d", ErrInvalidEnvelope, int(o))
	}
	axis := pt.Axis()
	if axis < 0 {
		return nil, fmt.Errorf("%w: curves need a position or offset property, got %s", ErrInvalidEnvelope, pt)
	}
	fn, ok := CurveFunc(o, axis)
	if !ok {
		// 二维曲线的 Y 轴直接连线
		return checked(NewLinear(pt, from, to, l, completion))
	}
	return checked(NewTrigonometric(pt, from, to, fn, l, completion))
}

// CurveGroup draws a curve between two points.
//
// completion 1 draws the curve once, 2 a half ellipse, 4 a full ellipse.
func CurveGroup(kind GroupKind, from, to Triple, o CurveOrientation, l loop.Loop, completion float64, rotations ...rotation.Options) (*Group, error) {
	var envs [3]Envelope
	for i, pt := range kind.Axes() {
		e, err := NewCurve(pt, from.axis(i), to.axis(i), o, l, completion)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s curve envelope: %w", pt, err)
		}
		envs[i] = e
	}
	return NewGroup(kind, envs[0], envs[1], envs[2], rotations...)
}

// CircleOrientation places a circle relative to the line from the first
// point to the second, like CurveOrientation.
type CircleOrientation int

const (
	CircleRight CircleOrientation = iota
	CircleLeft
	CircleRightUp
	CircleRightDown
	CircleLeftUp
	CircleLeftDown
)

var circleNames = [...]string{
	CircleRight:     "RIGHT",
	CircleLeft:      "LEFT",
	CircleRightUp:   "RIGHT_UP",
	CircleRightDown: "RIGHT_DOWN",
	CircleLeftUp:    "LEFT_UP",
	CircleLeftDown:  "LEFT_DOWN",
}

func (o CircleOrientation) String() string {
	if o < 0 || int(o) >= len(circleNames) {
		return fmt.Sprintf("CircleOrientation(%d)", int(o))
	}
	return circleNames[o]
}

// ParseCircleOrientation parses names such as "LEFT_UP".
func ParseCircleOrientation(s string) (CircleOrientation, error) {
	i, ok := lookupName(circleNames[:], s)
	if !ok {
		return 0, fmt.Errorf("%w: unknown circle orientation %q", ErrInvalidEnvelope, s)
	}
	return CircleOrientation(i), nil
}

// CircleFunc returns the trig function drawing axis (0=X, 1=Y, 2=Z) of a
// circle with orientation o. ok is false for Y of RIGHT and LEFT.
func CircleFunc(o CircleOrientation, axis int) (fn TrigFunc, ok bool) {
	left := o == CircleLeft || o == CircleLeftUp || o == CircleLeftDown
	switch axis {
	case 0:
		if left {
			return Sin, true
		}
		return Cos, true
	case 2:
		if left {
			return Cos, true
		}
		return Sin, true
	}
	switch o {
	case CircleRightDown, CircleLeftDown:
		return Sin, true
	case CircleRightUp, CircleLeftUp:
		return Cos, true
	}
	return 0, false
}

// NewCircle creates the envelope for one axis of a circle. completion 1
// draws the whole circle over the envelope duration.
func NewCircle(pt PropertyType, from, to Envelope, o CircleOrientation, l loop.Loop, completion float64) (Envelope, error) {
	if o < 0 || int(o) >= len(circleNames) {
		return nil, fmt.Errorf("%w: unknown circle orientation %d", ErrInvalidEnvelope, int(o))
	}
	axis := pt.Axis()
	if axis < 0 {
		return nil, fmt.Errorf("%w: circles need a position or offset property, got %s", ErrInvalidEnvelope, pt)
	}
	fn, ok := CircleFunc(o, axis)
	if !ok {
		return checked(NewLinear(pt, from, to, l, completion))
	}
	return checked(NewTrigonometric(pt, from, to, fn, l, completion*4))
}

// CircleGroup draws a circle through two points.
func CircleGroup(kind GroupKind, from, to Triple, o CircleOrientation, l loop.Loop, completion float64, rotations ...rotation.Options) (*Group, error) {
	var envs [3]Envelope
	for i, pt := range kind.Axes() {
		e, err := NewCircle(pt, from.axis(i), to.axis(i), o, l, completion)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s circle envelope: %w", pt, err)
		}
		envs[i] = e
	}
	return NewGroup(kind, envs[0], envs[1], envs[2], rotations...)
}

func pick(axis int, x, y, z TrigFunc) TrigFunc {
	switch axis {
	case 0:
		return x
	case 1:
		return y
	}
	return z
}

func lookupName(names []string, s string) (int, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range names {
		if name == upper {
			return i, true
		}
	}
	return 0, false
}

// checked keeps a typed nil pointer out of the Envelope interface.
func checked[T Envelope](e T, err error) (Envelope, error) {
	if err != nil {
		return nil, err
	}
	return e, nil
}
