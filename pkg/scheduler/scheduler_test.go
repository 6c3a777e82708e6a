package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStepper_Order tests that tasks run once per step in registration order
func TestStepper_Order(t *testing.T) {
	s := NewStepper()
	var order []string
	s.Repeat(context.Background(), func() bool { order = append(order, "a"); return true })
	s.Repeat(context.Background(), func() bool { order = append(order, "b"); return true })

	assert.Equal(t, 0, len(order), "nothing runs before the first step")
	assert.Equal(t, 2, s.Step())
	s.Step()
	assert.Equal(t, []string{"a", "b", "a", "b"}, order)
	assert.Equal(t, 2, s.Len())
}

// TestStepper_StopByReturn tests tasks that end themselves
func TestStepper_StopByReturn(t *testing.T) {
	s := NewStepper()
	calls := 0
	task := s.Repeat(context.Background(), func() bool {
		calls++
		return calls < 3
	})

	s.Steps(10)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Step())

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task should be done")
	}
}

// TestStepper_Cancel tests cancellation through the handle and the context
func TestStepper_Cancel(t *testing.T) {
	s := NewStepper()
	ctx, cancel := context.WithCancel(context.Background())

	var a, b int
	taskA := s.Repeat(context.Background(), func() bool { a++; return true })
	s.Repeat(ctx, func() bool { b++; return true })

	s.Step()
	taskA.Cancel()
	taskA.Cancel()
	cancel()
	s.Steps(3)

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 0, s.Len())
	<-taskA.Done()
}

// TestStepper_CancelDuringStep tests that a task cancelled by an earlier task
// in the same step does not run
func TestStepper_CancelDuringStep(t *testing.T) {
	s := NewStepper()
	var victim Task
	ran := false
	s.Repeat(context.Background(), func() bool { victim.Cancel(); return true })
	victim = s.Repeat(context.Background(), func() bool { ran = true; return true })

	assert.Equal(t, 1, s.Step())
	assert.False(t, ran)
}

// TestStepper_RegisterDuringStep tests that new tasks wait for the next step
func TestStepper_RegisterDuringStep(t *testing.T) {
	s := NewStepper()
	inner := 0
	registered := false
	s.Repeat(context.Background(), func() bool {
		if !registered {
			registered = true
			s.Repeat(context.Background(), func() bool { inner++; return true })
		}
		return true
	})

	assert.Equal(t, 1, s.Step())
	assert.Equal(t, 0, inner)
	assert.Equal(t, 2, s.Step())
	assert.Equal(t, 1, inner)
}

// TestTicker_RunsUntilFalse tests the wall clock scheduler
func TestTicker_RunsUntilFalse(t *testing.T) {
	var calls atomic.Int32
	task := NewTicker(time.Millisecond).Repeat(context.Background(), func() bool {
		return calls.Add(1) < 5
	})

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("ticker task did not finish")
	}
	assert.Equal(t, int32(5), calls.Load())
}

// TestTicker_Cancel tests that cancelling stops further calls
func TestTicker_Cancel(t *testing.T) {
	var calls atomic.Int32
	task := NewTicker(time.Millisecond).Repeat(context.Background(), func() bool {
		calls.Add(1)
		return true
	})

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, time.Millisecond)
	task.Cancel()
	<-task.Done()

	n := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, calls.Load())
}

// TestTicker_DefaultPeriod tests the default 50ms tick and the immediate first call
func TestTicker_DefaultPeriod(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan struct{}, 1)
	task := (&Ticker{}).Repeat(ctx, func() bool {
		select {
		case first <- struct{}{}:
		default:
		}
		return true
	})

	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("first call should be immediate")
	}
	cancel()
	<-task.Done()
}
