package loop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConstructors_Validation tests eager duration validation
func TestConstructors_Validation(t *testing.T) {
	tests := []struct {
		name    string
		create  func() error
		wantErr bool
	}{
		{"Continue zero", func() error { _, err := NewContinue(0); return err }, false},
		{"Continue negative", func() error { _, err := NewContinue(-1); return err }, true},
		{"Repeat one", func() error { _, err := NewRepeat(1); return err }, false},
		{"Repeat zero", func() error { _, err := NewRepeat(0); return err }, true},
		{"Reverse two", func() error { _, err := NewReverse(2); return err }, false},
		{"Reverse one", func() error { _, err := NewReverse(1); return err }, true},
		{"Reverse zero", func() error { _, err := NewReverse(0); return err }, true},
		{"Single zero", func() error { _, err := NewSingleIteration(0); return err }, false},
		{"Single negative", func() error { _, err := NewSingleIteration(-5); return err }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.create()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDuration)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Panics(t, func() { MustRepeat(0) })
}

// TestContinue tests the identity mapping
func TestContinue(t *testing.T) {
	l := MustContinue(10)
	assert.Equal(t, 10, l.EnvelopeDuration())
	for _, f := range []int{0, 5, 10, 500} {
		assert.Equal(t, f, l.Apply(f))
	}
}

// TestRepeat_Periodicity tests applyLoop(f) == applyLoop(f + d)
func TestRepeat_Periodicity(t *testing.T) {
	for _, d := range []int{1, 2, 7, 80} {
		l := MustRepeat(d)
		assert.Equal(t, d, l.EnvelopeDuration())
		for f := 0; f < 3*d+5; f++ {
			assert.Equal(t, l.Apply(f), l.Apply(f+d), "d=%d f=%d", d, f)
			assert.Less(t, l.Apply(f), d)
		}
	}
	assert.Equal(t, 3, MustRepeat(4).Apply(-1), "negative frames wrap")
}

// TestReverse_PingPong tests the forward then backward trajectory
func TestReverse_PingPong(t *testing.T) {
	l := MustReverse(6)
	assert.Equal(t, 3, l.EnvelopeDuration())

	var got []int
	for f := 0; f < 12; f++ {
		got = append(got, l.Apply(f))
	}
	assert.Equal(t, []int{0, 1, 2, 2, 1, 0, 0, 1, 2, 2, 1, 0}, got)
}

// TestReverse_Properties tests bounds, symmetry and periodicity for many durations
func TestReverse_Properties(t *testing.T) {
	for d := 2; d <= 41; d++ {
		l := MustReverse(d)
		half := d / 2
		require.Equal(t, half, l.EnvelopeDuration())

		for f := 0; f < d; f++ {
			v := l.Apply(f)
			assert.GreaterOrEqual(t, v, 0, "d=%d f=%d", d, f)
			assert.LessOrEqual(t, v, half-1, "d=%d f=%d", d, f)
			assert.Equal(t, v, l.Apply(f+d), "periodic d=%d f=%d", d, f)
		}
		for f := 0; f < half; f++ {
			assert.Equal(t, f, l.Apply(f), "forward d=%d", d)
			// second half mirrors the first
			assert.Equal(t, l.Apply(f), l.Apply(2*half-1-f), "mirror d=%d f=%d", d, f)
		}
	}
}

// TestReverse_OddDuration tests the rounding rule for odd durations
func TestReverse_OddDuration(t *testing.T) {
	l := MustReverse(5)
	assert.Equal(t, 2, l.EnvelopeDuration())

	var got []int
	for f := 0; f < 10; f++ {
		got = append(got, l.Apply(f))
	}
	assert.Equal(t, []int{0, 1, 1, 0, 0, 0, 1, 1, 0, 0}, got)
}

// TestSingleIteration tests halting at the last frame
func TestSingleIteration(t *testing.T) {
	l := MustSingleIteration(10)
	for f := 0; f < 10; f++ {
		assert.Equal(t, f, l.Apply(f))
	}
	for f := 10; f < 30; f++ {
		assert.Equal(t, 10, l.Apply(f))
	}
}

// TestDurationConstructors tests time based constructors
func TestDurationConstructors(t *testing.T) {
	r, err := RepeatFor(4 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 80, r.Duration())

	_, err = ReverseFor(50 * time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	s, err := SingleIterationFor(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 20, s.Duration())

	c, err := ContinueFor(1500 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 30, c.Duration())
	assert.Equal(t, 30, c.EnvelopeDuration())
	assert.Equal(t, 45, c.Apply(45))

	_, err = ContinueFor(-time.Second)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

// TestNew tests construction by kind name
func TestNew(t *testing.T) {
	l, err := New("reverse", 10)
	require.NoError(t, err)
	assert.Equal(t, 5, l.EnvelopeDuration())

	l, err = New("repeat", 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
	assert.Nil(t, l)

	_, err = New("bounce", 10)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
