// Package animation drives particle emissions from envelopes.
//
// An Animation owns one envelope per emission property, advances a frame
// index on every scheduler tick, sums the envelope values into an Emission
// and hands it to a Sink. A MultiAnimation drives several animations from a
// single task so they stay in lockstep.
package animation

import (
	"context"
	"errors"
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrMissingOrigin reports a Builder without an Origin.
	ErrMissingOrigin = errors.New("animation: origin location must be set")
	// ErrMissingSink reports a Builder without a Sink.
	ErrMissingSink = errors.New("animation: sink must be set")
	// ErrInvalidOption reports an out of range Builder field.
	ErrInvalidOption = errors.New("animation: invalid option")
	// ErrNoScope reports Resume without a context and without a previous Start.
	ErrNoScope = errors.New("animation: a context must be provided to resume")
	// ErrOwned reports Resume of an animation a running MultiAnimation draws.
	ErrOwned = errors.New("animation: animation is drawn by a multi animation")
	// ErrEmptyMulti reports a MultiAnimation with no animations.
	ErrEmptyMulti = errors.New("animation: multi animation must contain at least one animation")
)

// DefaultParticle is the particle kind used when a Builder leaves it empty.
const DefaultParticle = "END_ROD"

// Verbose enables a log line per emission.
var Verbose bool

// Location is a point in a named world.
type Location struct {
	World string
	Pos   r3.Vec
}

// Origin supplies the base location of every emission.
type Origin interface {
	Location(frameIndex int) Location
}

type staticOrigin Location

func (o staticOrigin) Location(int) Location { return Location(o) }

// Static returns an Origin that never moves.
func Static(loc Location) Origin { return staticOrigin(loc) }

// At returns a static Origin at (x, y, z) in world.
func At(world string, x, y, z float64) Origin {
	return Static(Location{World: world, Pos: r3.Vec{X: x, Y: y, Z: z}})
}

// OriginFunc adapts a function to an Origin, for moving origins.
type OriginFunc func(frameIndex int) Location

func (f OriginFunc) Location(frameIndex int) Location { return f(frameIndex) }

// Style is passed through to the sink untouched (dust color and size).
type Style struct {
	Color color.RGBA
	Size  float64
}

// Emission is one resolved frame of an animation.
type Emission struct {
	Particle   string
	World      string
	Location   r3.Vec
	Count      int
	Offset     r3.Vec
	Extra      float64
	Style      *Style
	FrameIndex int
}

// Sink performs emissions. Emit is called while the animation is locked;
// it must not block or call back into the animation.
type Sink interface {
	Emit(e Emission)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(e Emission)

func (f SinkFunc) Emit(e Emission) { f(e) }

// Player is implemented by Animation and MultiAnimation.
type Player interface {
	// Start restarts from the first frame.
	Start(ctx context.Context)
	// Stop pauses, keeping the frame index.
	Stop()
	// Resume continues from the current frame. A nil ctx reuses the last one.
	Resume(ctx context.Context) error
	// Running reports whether the player has a live task.
	Running() bool
}
