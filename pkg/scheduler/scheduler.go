// Package scheduler runs cooperative periodic tasks.
//
// A task is a function called once per tick until it returns false, its
// context is cancelled, or Cancel is called on its handle. Cancellation is
// observed between calls; a call already in progress always completes.
//
// Ticker drives tasks from wall-clock time. Stepper drives them by hand, one
// tick per Step call, which is how the ebiten viewer advances animations from
// its Update loop and how tests make timing deterministic.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/gonewx/partigon/pkg/ticks"
)

// Scheduler starts periodic tasks.
type Scheduler interface {
	// Repeat calls fn once per tick while fn returns true and ctx is live.
	Repeat(ctx context.Context, fn func() bool) Task
}

// Task is the handle of a running periodic task.
type Task interface {
	// Cancel stops the task. Calling it more than once is a no-op.
	Cancel()
	// Done is closed once the task will not call its function again.
	Done() <-chan struct{}
}

type task struct {
	once   sync.Once
	done   chan struct{}
	cancel context.CancelFunc
}

func newTask(cancel context.CancelFunc) *task {
	return &task{done: make(chan struct{}), cancel: cancel}
}

func (t *task) Cancel() { t.cancel() }

func (t *task) Done() <-chan struct{} { return t.done }

func (t *task) finish() { t.once.Do(func() { close(t.done) }) }

// Ticker runs each task on its own goroutine with a time.Ticker.
type Ticker struct {
	// Period is the tick length. Zero means ticks.Period (50ms).
	Period time.Duration
}

// NewTicker creates a Ticker with the given period.
func NewTicker(period time.Duration) *Ticker {
	return &Ticker{Period: period}
}

// Repeat calls fn immediately, then once per period.
func (s *Ticker) Repeat(ctx context.Context, fn func() bool) Task {
	period := s.Period
	if period <= 0 {
		period = ticks.Period
	}

	ctx, cancel := context.WithCancel(ctx)
	t := newTask(cancel)

	go func() {
		defer t.finish()
		defer cancel()

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			if ctx.Err() != nil || !fn() {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return t
}

// Stepper runs tasks synchronously when Step is called.
//
// Tasks run in registration order. A task registered during a Step first
// runs on the next Step.
type Stepper struct {
	mu    sync.Mutex
	tasks []*stepTask
}

type stepTask struct {
	*task
	ctx context.Context
	fn  func() bool
}

// NewStepper creates an empty Stepper.
func NewStepper() *Stepper {
	return &Stepper{}
}

// Repeat registers fn. It first runs on the next Step.
func (s *Stepper) Repeat(ctx context.Context, fn func() bool) Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &stepTask{task: newTask(cancel), ctx: ctx, fn: fn}
	// 上下文取消时立即关闭 Done，不必等到下一次 Step
	context.AfterFunc(ctx, t.finish)

	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	return t
}

// Step advances every live task by one tick and returns how many ran.
func (s *Stepper) Step() int {
	s.mu.Lock()
	tasks := append([]*stepTask(nil), s.tasks...)
	s.mu.Unlock()

	ran := 0
	for _, t := range tasks {
		if t.ctx.Err() != nil {
			continue
		}
		ran++
		if !t.fn() {
			t.Cancel()
		}
	}

	s.mu.Lock()
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ctx.Err() == nil {
			live = append(live, t)
		}
	}
	clear(s.tasks[len(live):])
	s.tasks = live
	s.mu.Unlock()
	return ran
}

// Steps calls Step n times.
func (s *Stepper) Steps(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// Len returns the number of live tasks.
func (s *Stepper) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if t.ctx.Err() == nil {
			n++
		}
	}
	return n
}
