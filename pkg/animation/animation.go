package animation

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gonewx/partigon/pkg/envelope"
	"github.com/gonewx/partigon/pkg/rotation"
	"github.com/gonewx/partigon/pkg/scheduler"
)

// Animation emits one aggregated particle frame per draw.
//
// The frame index starts at -1 and is incremented before each frame is
// drawn, so the first emitted frame is 0. Every AnimationInterval ticks the
// animation draws FramesPerDraw consecutive frames, one emission each.
//
// All mutable state is guarded by one mutex held for the whole tick, so an
// emission is never built from a half updated frame.
type Animation struct {
	origin        Origin
	particle      string
	envelopes     []envelope.Envelope
	style         *Style
	maximumFrames int
	framesPerDraw int
	interval      int
	rotations     []rotation.Options
	scheduler     scheduler.Scheduler
	sink          Sink

	mu         sync.Mutex
	frameIndex int
	delay      int
	ctx        context.Context
	task       scheduler.Task
	generation int
	owner      scheduler.Task
	err        error
}

var _ Player = (*Animation)(nil)

// Start cancels any running task, resets the frame index and starts
// drawing on the scheduler. It does nothing while a MultiAnimation draws
// the animation.
func (a *Animation) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if live(a.ctx, a.owner) {
		log.Printf("[Animation] ignoring Start of %s: drawn by a multi animation", a.particle)
		return
	}
	a.begin(ctx, true, true)
}

// Stop cancels the running task. The frame index is kept.
func (a *Animation) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancel()
}

// Resume continues from the current frame index. A nil ctx reuses the
// context of the last Start or Resume. Resuming an animation whose task is
// still live does nothing.
func (a *Animation) Resume(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if live(a.ctx, a.owner) {
		return ErrOwned
	}
	if live(a.ctx, a.task) {
		return nil
	}
	if ctx == nil {
		if a.ctx == nil {
			return ErrNoScope
		}
		ctx = a.ctx
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("resume %s: %w", a.particle, err)
	}
	a.begin(ctx, false, true)
	return nil
}

// Running reports whether the animation is driven by its own live task.
func (a *Animation) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return live(a.ctx, a.task)
}

// live reports whether task will still call its function. The context is
// checked directly since a scheduler may close Done after the context ends.
func live(ctx context.Context, task scheduler.Task) bool {
	if task == nil || ctx == nil || ctx.Err() != nil {
		return false
	}
	select {
	case <-task.Done():
		return false
	default:
		return true
	}
}

// FrameIndex returns the last drawn frame, -1 before the first draw.
func (a *Animation) FrameIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameIndex
}

// MaximumFrames returns the frame count after which the animation is complete.
func (a *Animation) MaximumFrames() int { return a.maximumFrames }

// IsComplete reports whether the frame index reached the maximum frames.
func (a *Animation) IsComplete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameIndex >= a.maximumFrames
}

// Err returns the error that stopped the animation, if any.
func (a *Animation) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// DrawFrame advances the animation by one tick: it draws FramesPerDraw frames
// when AnimationInterval ticks have passed since the previous draw.
func (a *Animation) DrawFrame() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draw()
}

// attach hands the animation over to the task of a MultiAnimation: its own
// task is cancelled and owner draws it instead until release or until ctx
// ends.
func (a *Animation) attach(ctx context.Context, restart bool, owner scheduler.Task) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.begin(ctx, restart, false)
	a.owner = owner
}

// release gives the animation back to its own Start and Resume.
func (a *Animation) release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.owner = nil
}

// begin must be called with a.mu held.
func (a *Animation) begin(ctx context.Context, restart, selfContained bool) {
	a.cancel()
	a.ctx = ctx
	a.owner = nil
	if restart {
		a.frameIndex = -1
		a.delay = a.interval
		a.err = nil
	}
	if !selfContained {
		return
	}

	generation := a.generation
	a.task = a.scheduler.Repeat(ctx, func() bool {
		return a.tick(generation)
	})
	log.Printf("[Animation] started %s at frame %d", a.particle, a.frameIndex)
}

// cancel must be called with a.mu held.
func (a *Animation) cancel() {
	if a.task != nil {
		a.task.Cancel()
		a.task = nil
	}
	// 旧任务在取消前可能已经进入 tick，用代数让它失效
	a.generation++
}

func (a *Animation) tick(generation int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if generation != a.generation {
		return false
	}
	if err := a.draw(); err != nil {
		log.Printf("[Animation] %s stopped at frame %d: %v", a.particle, a.frameIndex, err)
		a.err = err
		a.task = nil
		return false
	}
	if a.frameIndex >= a.maximumFrames {
		log.Printf("[Animation] %s completed after %d frames", a.particle, a.frameIndex)
		a.task = nil
		return false
	}
	return true
}

func (a *Animation) draw() error {
	a.delay++
	if a.delay < a.interval {
		return nil
	}
	a.delay = 0
	for i := 0; i < a.framesPerDraw; i++ {
		a.frameIndex++
		if err := a.emit(a.frameIndex); err != nil {
			return err
		}
	}
	return nil
}

// emit aggregates every envelope at frameIndex and sends the result to the sink.
func (a *Animation) emit(frameIndex int) error {
	origin := a.origin.Location(frameIndex)
	location := origin.Pos
	var offset r3.Vec
	count := 0
	extra := 0.0

	for _, e := range a.envelopes {
		v := e.ValueAt(frameIndex)
		switch e.PropertyType() {
		case envelope.PosX:
			location.X += v
		case envelope.PosY:
			location.Y += v
		case envelope.PosZ:
			location.Z += v
		case envelope.OffsetX:
			offset.X += v
		case envelope.OffsetY:
			offset.Y += v
		case envelope.OffsetZ:
			offset.Z += v
		case envelope.Count:
			count += int(v)
		case envelope.Extra:
			extra += v
		default:
			return fmt.Errorf("%w: %s", envelope.ErrNoneProperty, e.PropertyType())
		}
	}

	emission := Emission{
		Particle:   a.particle,
		World:      origin.World,
		Location:   rotation.ApplyRotations(location, a.rotations, frameIndex),
		Count:      count,
		Offset:     rotation.ApplyRotations(offset, a.rotations, frameIndex),
		Extra:      extra,
		Style:      a.style,
		FrameIndex: frameIndex,
	}
	if Verbose {
		log.Printf("[Animation] frame %d: %s at (%.3f, %.3f, %.3f) count=%d extra=%.3f",
			frameIndex, a.particle, emission.Location.X, emission.Location.Y, emission.Location.Z,
			emission.Count, emission.Extra)
	}
	a.sink.Emit(emission)
	return nil
}
