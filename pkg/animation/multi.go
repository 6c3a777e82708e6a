package animation

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gonewx/partigon/pkg/scheduler"
	"github.com/gonewx/partigon/pkg/ticks"
)

// MultiAnimation draws several animations from one task.
//
// Each tick draws every active animation in insertion order, then drops the
// completed ones. The task ends once no animation is left, or on the first
// draw error, which Err then returns. While the multi draws an animation,
// that animation's own Start is ignored and its Resume returns ErrOwned.
type MultiAnimation struct {
	scheduler  scheduler.Scheduler
	animations []*Animation

	mu         sync.Mutex
	active     []*Animation
	ctx        context.Context
	task       scheduler.Task
	generation int
	err        error
}

var _ Player = (*MultiAnimation)(nil)

// NewMulti creates a MultiAnimation. A nil scheduler means a Ticker with
// ticks.Period.
func NewMulti(s scheduler.Scheduler, animations ...*Animation) (*MultiAnimation, error) {
	if len(animations) == 0 {
		return nil, ErrEmptyMulti
	}
	for i, a := range animations {
		if a == nil {
			return nil, fmt.Errorf("%w: animation %d is nil", ErrInvalidOption, i)
		}
	}
	if s == nil {
		s = scheduler.NewTicker(ticks.Period)
	}
	return &MultiAnimation{
		scheduler:  s,
		animations: append([]*Animation(nil), animations...),
		active:     append([]*Animation(nil), animations...),
	}, nil
}

// Start restarts every animation, including those removed by an earlier run.
func (m *MultiAnimation) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancel()
	m.active = append(m.active[:0], m.animations...)
	m.err = nil
	m.begin(ctx, true)
}

// Stop cancels the task. Frame indices are kept.
func (m *MultiAnimation) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancel()
}

// Resume continues the active animations from their current frames.
func (m *MultiAnimation) Resume(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if live(m.ctx, m.task) {
		return nil
	}
	if ctx == nil {
		if m.ctx == nil {
			return ErrNoScope
		}
		ctx = m.ctx
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("resume multi animation: %w", err)
	}
	m.begin(ctx, false)
	return nil
}

// Running reports whether the task is live.
func (m *MultiAnimation) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return live(m.ctx, m.task)
}

// Err returns the draw error that stopped the multi, if any.
func (m *MultiAnimation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Active returns the animations that are still drawn, in drawing order.
func (m *MultiAnimation) Active() []*Animation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Animation(nil), m.active...)
}

// begin must be called with m.mu held.
func (m *MultiAnimation) begin(ctx context.Context, restart bool) {
	m.cancel()
	m.ctx = ctx

	// tick waits for m.mu, so the members are attached before the first draw
	generation := m.generation
	m.task = m.scheduler.Repeat(ctx, func() bool {
		return m.tick(generation)
	})
	for _, a := range m.active {
		a.attach(ctx, restart, m.task)
	}
	log.Printf("[MultiAnimation] started with %d animation(s)", len(m.active))
}

// cancel must be called with m.mu held.
func (m *MultiAnimation) cancel() {
	if m.task != nil {
		m.task.Cancel()
		m.task = nil
	}
	m.generation++
	m.releaseAll()
}

// releaseAll must be called with m.mu held.
func (m *MultiAnimation) releaseAll() {
	for _, a := range m.active {
		a.release()
	}
}

func (m *MultiAnimation) tick(generation int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		return false
	}

	// 单次遍历：先绘制，再原地压缩掉已完成的动画
	remaining := m.active[:0]
	for i, a := range m.active {
		if err := a.DrawFrame(); err != nil {
			log.Printf("[MultiAnimation] %s failed, stopping: %v", a.particle, err)
			a.mu.Lock()
			a.err = err
			a.mu.Unlock()
			m.err = fmt.Errorf("draw %s: %w", a.particle, err)
			// 保留未绘制的动画，Resume 时从当前帧继续
			remaining = append(remaining, m.active[i:]...)
			clear(m.active[len(remaining):])
			m.active = remaining
			m.releaseAll()
			m.task = nil
			return false
		}
		if a.IsComplete() {
			a.release()
			continue
		}
		remaining = append(remaining, a)
	}
	clear(m.active[len(remaining):])
	m.active = remaining

	if len(m.active) == 0 {
		log.Printf("[MultiAnimation] all animations completed")
		m.task = nil
		return false
	}
	return true
}
