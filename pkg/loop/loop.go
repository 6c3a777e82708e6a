// Package loop provides frame index remapping policies for envelopes.
//
// A Loop maps the global frame index of an animation to the "looped" frame
// index an envelope is evaluated at. Loops are immutable; Apply is a pure
// function and may be called with frame indices in any order.
package loop

import (
	"errors"
	"fmt"
	"time"

	"github.com/gonewx/partigon/pkg/ticks"
)

// ErrInvalidDuration reports a loop constructed with an unsupported duration.
var ErrInvalidDuration = errors.New("loop: invalid duration")

// ErrUnknownKind reports an unknown loop kind name.
var ErrUnknownKind = errors.New("loop: unknown kind")

// Loop maps a frame index to the frame index used for envelope evaluation.
type Loop interface {
	// Duration is the configured length of the loop in frames.
	Duration() int
	// EnvelopeDuration is the number of frames an envelope spends going from
	// its first value to its second value within one loop.
	EnvelopeDuration() int
	// Apply maps frameIndex to the looped frame index.
	Apply(frameIndex int) int
}

// mod returns the non-negative remainder of a / b (b > 0).
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Continue does not affect the frame index. Nothing changes when the loop
// reaches its end; the animation continues past it.
type Continue struct {
	duration int
}

// NewContinue creates a Continue loop. The duration is only used for
// envelope calculations and may be 0.
func NewContinue(duration int) (*Continue, error) {
	if duration < 0 {
		return nil, fmt.Errorf("%w: continue loop duration must be >= 0, got %d", ErrInvalidDuration, duration)
	}
	return &Continue{duration: duration}, nil
}

func (l *Continue) Duration() int         { return l.duration }
func (l *Continue) EnvelopeDuration() int { return l.duration }
func (l *Continue) Apply(frameIndex int) int {
	return frameIndex
}

// Repeat restarts at the first frame when the loop reaches its end.
type Repeat struct {
	duration int
}

// NewRepeat creates a Repeat loop. The duration must be above 0.
func NewRepeat(duration int) (*Repeat, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: repeat loop duration must be > 0, got %d", ErrInvalidDuration, duration)
	}
	return &Repeat{duration: duration}, nil
}

func (l *Repeat) Duration() int         { return l.duration }
func (l *Repeat) EnvelopeDuration() int { return l.duration }
func (l *Repeat) Apply(frameIndex int) int {
	return mod(frameIndex, l.duration)
}

// Reverse plays the envelope forwards during the first half of the loop and
// backwards during the second half, so values ping-pong between the two
// endpoints. The duration covers both directions.
//
// Both halves are duration/2 frames long (integer division). For odd
// durations the one remaining frame at the end of each loop holds the
// first frame (looped index 0), so the loop stays periodic in duration.
type Reverse struct {
	duration int
	half     int
}

// NewReverse creates a Reverse loop. The duration must be at least 2 so that
// each direction has at least one frame.
func NewReverse(duration int) (*Reverse, error) {
	if duration < 2 {
		return nil, fmt.Errorf("%w: reverse loop duration must be >= 2, got %d", ErrInvalidDuration, duration)
	}
	return &Reverse{duration: duration, half: duration / 2}, nil
}

func (l *Reverse) Duration() int         { return l.duration }
func (l *Reverse) EnvelopeDuration() int { return l.half }

// Apply maps 0,1,2,3,4,5 to 0,1,2,2,1,0 for a duration of 6.
func (l *Reverse) Apply(frameIndex int) int {
	loopIndex := mod(frameIndex, l.duration)
	switch {
	case loopIndex < l.half:
		return loopIndex
	case loopIndex < 2*l.half:
		return 2*l.half - 1 - loopIndex
	}
	// trailing frame of an odd duration
	return 0
}

// SingleIteration plays one iteration, then halts at the last index.
type SingleIteration struct {
	duration int
}

// NewSingleIteration creates a SingleIteration loop. The duration must be
// >= 0.
func NewSingleIteration(duration int) (*SingleIteration, error) {
	if duration < 0 {
		return nil, fmt.Errorf("%w: single iteration duration must be >= 0, got %d", ErrInvalidDuration, duration)
	}
	return &SingleIteration{duration: duration}, nil
}

func (l *SingleIteration) Duration() int         { return l.duration }
func (l *SingleIteration) EnvelopeDuration() int { return l.duration }
func (l *SingleIteration) Apply(frameIndex int) int {
	return min(frameIndex, l.duration)
}

// Duration based constructors

// ContinueFor creates a Continue loop lasting d.
func ContinueFor(d time.Duration) (*Continue, error) { return NewContinue(ticks.FromDuration(d)) }

// RepeatFor creates a Repeat loop lasting d.
func RepeatFor(d time.Duration) (*Repeat, error) { return NewRepeat(ticks.FromDuration(d)) }

// ReverseFor creates a Reverse loop lasting d, both directions included.
func ReverseFor(d time.Duration) (*Reverse, error) { return NewReverse(ticks.FromDuration(d)) }

// SingleIterationFor creates a SingleIteration loop lasting d.
func SingleIterationFor(d time.Duration) (*SingleIteration, error) {
	return NewSingleIteration(ticks.FromDuration(d))
}

// Must helpers for literal configuration

// MustContinue is like NewContinue but panics on error.
func MustContinue(duration int) *Continue { return must(NewContinue(duration)) }

// MustRepeat is like NewRepeat but panics on error.
func MustRepeat(duration int) *Repeat { return must(NewRepeat(duration)) }

// MustReverse is like NewReverse but panics on error.
func MustReverse(duration int) *Reverse { return must(NewReverse(duration)) }

// MustSingleIteration is like NewSingleIteration but panics on error.
func MustSingleIteration(duration int) *SingleIteration {
	return must(NewSingleIteration(duration))
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// New creates a loop by kind name: "continue", "repeat", "reverse" or
// "single". Used by preset loading.
func New(kind string, duration int) (Loop, error) {
	var (
		l   Loop
		err error
	)
	switch kind {
	case "continue":
		l, err = checked(NewContinue(duration))
	case "repeat":
		l, err = checked(NewRepeat(duration))
	case "reverse":
		l, err = checked(NewReverse(duration))
	case "single", "single_iteration":
		l, err = checked(NewSingleIteration(duration))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return l, err
}

// checked keeps a typed nil pointer out of the Loop interface.
func checked[T Loop](l T, err error) (Loop, error) {
	if err != nil {
		return nil, err
	}
	return l, nil
}
