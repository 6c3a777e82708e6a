package animation

import (
	"fmt"
	"math"
	"time"

	"github.com/gonewx/partigon/pkg/envelope"
	"github.com/gonewx/partigon/pkg/rotation"
	"github.com/gonewx/partigon/pkg/scheduler"
	"github.com/gonewx/partigon/pkg/ticks"
)

// Builder configures an Animation. Zero fields take defaults in Build.
//
// Slot envelopes (PositionX ... Extra) are copied and bound to their slot's
// property, so the copies are never grouped. Grouped envelopes must be added
// with AddGroup to keep their group rotations.
type Builder struct {
	// Origin is required.
	Origin Origin
	// Particle defaults to DefaultParticle.
	Particle string
	// Envelopes are aggregated in addition to the slot envelopes. Each must
	// carry a property other than None.
	Envelopes []envelope.Envelope

	// Slot envelopes. Nil means a constant 0.
	PositionX, PositionY, PositionZ envelope.Envelope
	OffsetX, OffsetY, OffsetZ       envelope.Envelope
	Count                           envelope.Envelope
	Extra                           envelope.Envelope

	Style *Style
	// MaximumDuration bounds the animation. 0 means it never completes.
	MaximumDuration time.Duration
	// FramesPerDraw is the number of frames drawn per draw. Defaults to 1.
	FramesPerDraw int
	// AnimationInterval is the number of ticks between draws. Defaults to 1.
	AnimationInterval int

	// Rotations apply to the final location and offset.
	Rotations []rotation.Options
	// GroupRotations are appended to every group among Envelopes.
	GroupRotations []rotation.Options

	// Scheduler defaults to a Ticker with ticks.Period.
	Scheduler scheduler.Scheduler
	// Sink is required.
	Sink Sink
}

// Add appends envelopes.
func (b *Builder) Add(envs ...envelope.Envelope) *Builder {
	b.Envelopes = append(b.Envelopes, envs...)
	return b
}

// AddGroup appends the X, Y and Z envelopes of each group.
func (b *Builder) AddGroup(groups ...*envelope.Group) *Builder {
	for _, g := range groups {
		envs := g.Envelopes()
		b.Envelopes = append(b.Envelopes, envs[:]...)
	}
	return b
}

// AddRotation appends final rotations.
func (b *Builder) AddRotation(opts ...rotation.Options) *Builder {
	b.Rotations = append(b.Rotations, opts...)
	return b
}

// AddGroupRotation appends rotations applied to every group.
func (b *Builder) AddGroupRotation(opts ...rotation.Options) *Builder {
	b.GroupRotations = append(b.GroupRotations, opts...)
	return b
}

// Build validates the configuration and creates the Animation.
//
// Build appends GroupRotations to the groups of Envelopes, so building the
// same Builder twice applies them twice.
func (b *Builder) Build() (*Animation, error) {
	if b.Origin == nil {
		return nil, ErrMissingOrigin
	}
	if b.Sink == nil {
		return nil, ErrMissingSink
	}

	framesPerDraw, err := positiveOrDefault("frames per draw", b.FramesPerDraw)
	if err != nil {
		return nil, err
	}
	interval, err := positiveOrDefault("animation interval", b.AnimationInterval)
	if err != nil {
		return nil, err
	}

	maximumFrames := math.MaxInt
	switch {
	case b.MaximumDuration < 0:
		return nil, fmt.Errorf("%w: maximum duration must be >= 0, got %s", ErrInvalidOption, b.MaximumDuration)
	case b.MaximumDuration > 0:
		maximumFrames = ticks.FromDuration(b.MaximumDuration)
	}

	envelopes := make([]envelope.Envelope, 0, len(b.Envelopes)+8)
	for i, e := range b.Envelopes {
		if e == nil {
			return nil, fmt.Errorf("%w: envelope %d is nil", ErrInvalidOption, i)
		}
		if e.PropertyType() == envelope.None {
			return nil, fmt.Errorf("%w: envelope %d", envelope.ErrNoneProperty, i)
		}
		envelopes = append(envelopes, e)
	}

	slots := []struct {
		env envelope.Envelope
		pt  envelope.PropertyType
	}{
		{b.Count, envelope.Count},
		{b.PositionX, envelope.PosX},
		{b.PositionY, envelope.PosY},
		{b.PositionZ, envelope.PosZ},
		{b.OffsetX, envelope.OffsetX},
		{b.OffsetY, envelope.OffsetY},
		{b.OffsetZ, envelope.OffsetZ},
		{b.Extra, envelope.Extra},
	}
	for _, s := range slots {
		if s.env == nil {
			envelopes = append(envelopes, envelope.NewConstant(s.pt, 0))
			continue
		}
		envelopes = append(envelopes, s.env.WithPropertyType(s.pt))
	}

	if len(b.GroupRotations) > 0 {
		seen := make(map[*envelope.Group]bool)
		for _, e := range envelopes {
			g := e.Group()
			if g == nil || seen[g] {
				continue
			}
			seen[g] = true
			g.AddRotations(b.GroupRotations...)
		}
	}

	sched := b.Scheduler
	if sched == nil {
		sched = scheduler.NewTicker(ticks.Period)
	}
	particle := b.Particle
	if particle == "" {
		particle = DefaultParticle
	}

	return &Animation{
		origin:        b.Origin,
		particle:      particle,
		envelopes:     envelopes,
		style:         b.Style,
		maximumFrames: maximumFrames,
		framesPerDraw: framesPerDraw,
		interval:      interval,
		rotations:     append([]rotation.Options(nil), b.Rotations...),
		scheduler:     sched,
		sink:          b.Sink,
		frameIndex:    -1,
		delay:         interval,
	}, nil
}

func positiveOrDefault(name string, v int) (int, error) {
	switch {
	case v < 0:
		return 0, fmt.Errorf("%w: %s must be >= 1, got %d", ErrInvalidOption, name, v)
	case v == 0:
		return 1, nil
	}
	return v, nil
}
