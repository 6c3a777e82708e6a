package animation

import (
	"context"
	"image/color"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gonewx/partigon/pkg/envelope"
	"github.com/gonewx/partigon/pkg/loop"
	"github.com/gonewx/partigon/pkg/rotation"
	"github.com/gonewx/partigon/pkg/scheduler"
)

// recorder is a Sink remembering every emission.
type recorder struct {
	mu        sync.Mutex
	emissions []Emission
}

func (r *recorder) Emit(e Emission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emissions = append(r.emissions, e)
}

func (r *recorder) all() []Emission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Emission(nil), r.emissions...)
}

func (r *recorder) frames() []int {
	var frames []int
	for _, e := range r.all() {
		frames = append(frames, e.FrameIndex)
	}
	return frames
}

func assertVec(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "X")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "Y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "Z")
}

func newTestAnimation(t *testing.T, b Builder) (*Animation, *recorder, *scheduler.Stepper) {
	t.Helper()
	rec := &recorder{}
	stepper := scheduler.NewStepper()
	if b.Origin == nil {
		b.Origin = At("world", 0, 0, 0)
	}
	b.Sink = rec
	b.Scheduler = stepper
	a, err := b.Build()
	require.NoError(t, err)
	return a, rec, stepper
}

// TestBuild_Errors tests builder validation
func TestBuild_Errors(t *testing.T) {
	sink := SinkFunc(func(Emission) {})
	origin := At("world", 0, 0, 0)

	tests := []struct {
		name    string
		builder Builder
		wantErr error
	}{
		{"Missing origin", Builder{Sink: sink}, ErrMissingOrigin},
		{"Missing sink", Builder{Origin: origin}, ErrMissingSink},
		{"Negative frames per draw", Builder{Origin: origin, Sink: sink, FramesPerDraw: -1}, ErrInvalidOption},
		{"Negative interval", Builder{Origin: origin, Sink: sink, AnimationInterval: -2}, ErrInvalidOption},
		{"Negative duration", Builder{Origin: origin, Sink: sink, MaximumDuration: -time.Second}, ErrInvalidOption},
		{"None envelope", Builder{Origin: origin, Sink: sink, Envelopes: []envelope.Envelope{envelope.Const(1)}}, envelope.ErrNoneProperty},
		{"Nil envelope", Builder{Origin: origin, Sink: sink, Envelopes: []envelope.Envelope{nil}}, ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := tt.builder.Build()
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, a)
		})
	}
}

// TestBuild_Defaults tests default values and the first emission
func TestBuild_Defaults(t *testing.T) {
	a, rec, stepper := newTestAnimation(t, Builder{Origin: At("overworld", 1, 2, 3)})

	assert.Equal(t, -1, a.FrameIndex())
	assert.Equal(t, math.MaxInt, a.MaximumFrames())
	assert.False(t, a.IsComplete())
	assert.False(t, a.Running())

	a.Start(context.Background())
	stepper.Step()

	emissions := rec.all()
	require.Len(t, emissions, 1, "first tick draws immediately")
	e := emissions[0]
	assert.Equal(t, DefaultParticle, e.Particle)
	assert.Equal(t, "overworld", e.World)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, e.Location)
	assert.Equal(t, r3.Vec{}, e.Offset)
	assert.Equal(t, 0, e.Count)
	assert.Equal(t, 0.0, e.Extra)
	assert.Nil(t, e.Style)
	assert.Equal(t, 0, e.FrameIndex)
}

// TestAnimation_TrigRepeat draws 80 frames of a sine on X over a repeat loop of 80
func TestAnimation_TrigRepeat(t *testing.T) {
	x := envelope.MustTrigonometric(envelope.None, envelope.Const(0), envelope.Const(5), envelope.Sin, loop.MustRepeat(80), 1)
	a, rec, stepper := newTestAnimation(t, Builder{PositionX: x})

	a.Start(context.Background())
	stepper.Steps(80)

	assert.Equal(t, 79, a.FrameIndex(), "advanced by 80 from -1")
	emissions := rec.all()
	require.Len(t, emissions, 80)

	xs := make([]float64, len(emissions))
	peak := 0.0
	for i, e := range emissions {
		xs[i] = e.Location.X
		peak = math.Max(peak, xs[i])
	}
	for f := range xs {
		assert.InDelta(t, xs[f], xs[79-f], 1e-9, "symmetric at frame %d", f)
	}
	assert.InDelta(t, 0, xs[0], 1e-9)
	assert.InDelta(t, 5, peak, 1e-2)
	assert.InDelta(t, peak, xs[40], 1e-9)
}

// TestAnimation_Aggregation tests that envelopes add onto the matching fields
func TestAnimation_Aggregation(t *testing.T) {
	style := &Style{Color: color.RGBA{R: 255, A: 255}, Size: 1.5}
	b := Builder{
		Origin:    At("w", 1, 2, 3),
		Particle:  "FLAME",
		Style:     style,
		PositionX: envelope.Const(1),
		OffsetY:   envelope.Const(4),
		Count:     envelope.Const(1),
		Extra:     envelope.Const(0.5),
	}
	b.Add(
		envelope.NewConstant(envelope.PosX, 2),
		envelope.NewConstant(envelope.Count, 2.9),
		envelope.NewConstant(envelope.Count, 1.5),
		envelope.NewConstant(envelope.Extra, 0.25),
	)
	a, rec, stepper := newTestAnimation(t, b)

	a.Start(context.Background())
	stepper.Step()

	e := rec.all()[0]
	assert.Equal(t, "FLAME", e.Particle)
	assert.Equal(t, r3.Vec{X: 4, Y: 2, Z: 3}, e.Location)
	assert.Equal(t, r3.Vec{Y: 4}, e.Offset)
	assert.Equal(t, 4, e.Count, "each count value is truncated")
	assert.InDelta(t, 0.75, e.Extra, 1e-12)
	assert.Same(t, style, e.Style)
}

// TestAnimation_FinalRotations tests rotations applied to location and offset
func TestAnimation_FinalRotations(t *testing.T) {
	b := Builder{Origin: At("w", 1, 0, 0), OffsetX: envelope.Const(2)}
	b.AddRotation(rotation.AroundZ(rotation.Constant(90)))
	a, rec, stepper := newTestAnimation(t, b)

	a.Start(context.Background())
	stepper.Step()

	e := rec.all()[0]
	assertVec(t, r3.Vec{Y: 1}, e.Location)
	assertVec(t, r3.Vec{Y: 2}, e.Offset)
}

// TestAnimation_GroupRotations tests rotations appended to added groups
func TestAnimation_GroupRotations(t *testing.T) {
	g := envelope.MustGroup(envelope.GroupPosition,
		envelope.NewConstant(envelope.PosX, 1),
		envelope.NewConstant(envelope.PosY, 0),
		envelope.NewConstant(envelope.PosZ, 0))

	b := Builder{}
	b.AddGroup(g).AddGroupRotation(rotation.AroundZ(rotation.Constant(90)))
	a, rec, stepper := newTestAnimation(t, b)
	require.Len(t, g.Rotations(), 1)

	a.Start(context.Background())
	stepper.Step()
	assertVec(t, r3.Vec{Y: 1}, rec.all()[0].Location)
}

// TestAnimation_SlotCopiesAreUngrouped tests that slot envelopes lose their group
func TestAnimation_SlotCopiesAreUngrouped(t *testing.T) {
	x := envelope.NewConstant(envelope.PosX, 1)
	envelope.MustGroup(envelope.GroupPosition, x,
		envelope.NewConstant(envelope.PosY, 0),
		envelope.NewConstant(envelope.PosZ, 0),
		rotation.AroundZ(rotation.Constant(90)))
	assert.InDelta(t, 0, x.ValueAt(0), 1e-9, "grouped value is rotated")

	a, rec, stepper := newTestAnimation(t, Builder{PositionX: x})
	a.Start(context.Background())
	stepper.Step()
	assertVec(t, r3.Vec{X: 1}, rec.all()[0].Location)
}

// TestAnimation_IntervalAndFramesPerDraw tests draw throttling and catch-up frames
func TestAnimation_IntervalAndFramesPerDraw(t *testing.T) {
	a, rec, stepper := newTestAnimation(t, Builder{AnimationInterval: 3, FramesPerDraw: 2})

	a.Start(context.Background())
	stepper.Step()
	assert.Equal(t, []int{0, 1}, rec.frames())

	stepper.Steps(2)
	assert.Equal(t, 1, a.FrameIndex(), "no draw before the interval elapses")

	stepper.Step()
	assert.Equal(t, []int{0, 1, 2, 3}, rec.frames())
	assert.Equal(t, 3, a.FrameIndex())
}

// TestAnimation_MovingOrigin tests origins that change with the frame
func TestAnimation_MovingOrigin(t *testing.T) {
	origin := OriginFunc(func(frameIndex int) Location {
		return Location{World: "w", Pos: r3.Vec{X: float64(frameIndex)}}
	})
	a, rec, stepper := newTestAnimation(t, Builder{Origin: origin})

	a.Start(context.Background())
	stepper.Steps(3)
	for i, e := range rec.all() {
		assert.Equal(t, float64(i), e.Location.X)
	}
}

// TestAnimation_Completes tests that a self-contained animation stops itself
func TestAnimation_Completes(t *testing.T) {
	a, rec, stepper := newTestAnimation(t, Builder{MaximumDuration: 150 * time.Millisecond})
	assert.Equal(t, 3, a.MaximumFrames())

	a.Start(context.Background())
	stepper.Steps(10)

	assert.True(t, a.IsComplete())
	assert.False(t, a.Running())
	assert.Equal(t, 3, a.FrameIndex())
	assert.Equal(t, []int{0, 1, 2, 3}, rec.frames())
	assert.Equal(t, 0, stepper.Len())
	assert.NoError(t, a.Err())
}

// TestAnimation_StopResume tests pausing without losing the frame index
func TestAnimation_StopResume(t *testing.T) {
	a, _, stepper := newTestAnimation(t, Builder{})

	a.Start(context.Background())
	stepper.Steps(3)
	assert.Equal(t, 2, a.FrameIndex())
	assert.True(t, a.Running())

	a.Stop()
	a.Stop()
	stepper.Steps(3)
	assert.Equal(t, 2, a.FrameIndex())
	assert.False(t, a.Running())

	require.NoError(t, a.Resume(nil))
	stepper.Steps(2)
	assert.Equal(t, 4, a.FrameIndex())

	// resuming a running animation does not add a second clock
	require.NoError(t, a.Resume(context.Background()))
	stepper.Step()
	assert.Equal(t, 5, a.FrameIndex())
	assert.Equal(t, 1, stepper.Len())

	a.Start(context.Background())
	assert.Equal(t, -1, a.FrameIndex())
	stepper.Step()
	assert.Equal(t, 0, a.FrameIndex())
}

// TestAnimation_ResumeWithoutScope tests resume before any start
func TestAnimation_ResumeWithoutScope(t *testing.T) {
	a, _, stepper := newTestAnimation(t, Builder{})

	assert.ErrorIs(t, a.Resume(nil), ErrNoScope)
	assert.False(t, a.Running())
	assert.Equal(t, 0, stepper.Len())

	require.NoError(t, a.Resume(context.Background()))
	stepper.Step()
	assert.Equal(t, 0, a.FrameIndex())
}

// TestAnimation_RestartCancelsPreviousTask tests that two starts leave one clock
func TestAnimation_RestartCancelsPreviousTask(t *testing.T) {
	a, rec, stepper := newTestAnimation(t, Builder{})

	a.Start(context.Background())
	a.Start(context.Background())
	stepper.Step()

	assert.Equal(t, 0, a.FrameIndex())
	assert.Len(t, rec.all(), 1)
	assert.Equal(t, 1, stepper.Len())
}

// TestAnimation_ContextCancel tests that cancelling the scope stops drawing
func TestAnimation_ContextCancel(t *testing.T) {
	a, _, stepper := newTestAnimation(t, Builder{})
	ctx, cancel := context.WithCancel(context.Background())

	a.Start(ctx)
	stepper.Step()
	cancel()
	stepper.Steps(3)
	assert.Equal(t, 0, a.FrameIndex())
	assert.False(t, a.Running())
}

// TestAnimation_ResumeAfterScopeCancel tests that an animation whose scope
// ended resumes from its frame with a new scope
func TestAnimation_ResumeAfterScopeCancel(t *testing.T) {
	a, rec, stepper := newTestAnimation(t, Builder{})
	ctx, cancel := context.WithCancel(context.Background())

	a.Start(ctx)
	stepper.Steps(3)
	cancel()
	stepper.Step()
	assert.Equal(t, 2, a.FrameIndex())
	assert.False(t, a.Running())
	assert.Equal(t, 0, stepper.Len())

	// the last scope is gone, so it cannot be reused
	assert.ErrorIs(t, a.Resume(nil), context.Canceled)
	assert.False(t, a.Running())

	require.NoError(t, a.Resume(context.Background()))
	assert.True(t, a.Running())
	stepper.Steps(3)
	assert.Equal(t, 5, a.FrameIndex())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, rec.frames())
	assert.Equal(t, 1, stepper.Len())
}

// TestAnimation_NonePropertyStops tests that a NONE envelope stops the animation
func TestAnimation_NonePropertyStops(t *testing.T) {
	a, rec, stepper := newTestAnimation(t, Builder{})
	a.envelopes = append(a.envelopes, envelope.Const(1))

	a.Start(context.Background())
	stepper.Steps(3)

	assert.ErrorIs(t, a.Err(), envelope.ErrNoneProperty)
	assert.False(t, a.Running())
	assert.Empty(t, rec.all())
	assert.Equal(t, 0, stepper.Len())
}

// TestAnimation_Ticker runs an animation on the wall clock scheduler
func TestAnimation_Ticker(t *testing.T) {
	rec := &recorder{}
	a, err := (&Builder{
		Origin:          At("w", 0, 0, 0),
		Sink:            rec,
		Scheduler:       scheduler.NewTicker(time.Millisecond),
		MaximumDuration: 100 * time.Millisecond,
	}).Build()
	require.NoError(t, err)

	a.Start(context.Background())
	require.Eventually(t, func() bool { return a.IsComplete() && !a.Running() }, 5*time.Second, time.Millisecond)
	assert.Equal(t, []int{0, 1, 2}, rec.frames())
}
