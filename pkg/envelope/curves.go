package envelope

import (
	"fmt"
	"math"
	"sort"

	"github.com/tanema/gween/ease"

	"github.com/gonewx/partigon/internal/expr"
	"github.com/gonewx/partigon/internal/particle"
	"github.com/gonewx/partigon/pkg/loop"
)

// KeyframeEnvelope follows a keyframe curve such as "0,2 0.5,8 1,2 EaseOut".
//
// Progress is frame_index / (duration-1) * completion, clamped to [0, 1], and
// keyframe times are in that progress unit. Ranges ("[1 3]") are resolved
// once, when the envelope is created.
type KeyframeEnvelope struct {
	*BasicEnvelope
	keyframes     []particle.Keyframe
	interpolation string
}

// NewKeyframe parses keyframes and creates an envelope following them.
// The loop's envelope duration must be above 1.
func NewKeyframe(pt PropertyType, keyframes string, l loop.Loop, completion float64) (*KeyframeEnvelope, error) {
	frames, interpolation, err := particle.ParseKeyframes(keyframes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse keyframes: %w", err)
	}
	steps, err := interpolationSteps(l)
	if err != nil {
		return nil, err
	}

	node := expr.Curve{
		Name: "keyframes",
		F: func(p float64) float64 {
			return particle.EvaluateKeyframes(frames, p, interpolation)
		},
		X: progress(steps, completion),
	}
	b, err := newBasic(pt, node, l, completion, nil)
	if err != nil {
		return nil, err
	}
	return &KeyframeEnvelope{BasicEnvelope: b, keyframes: frames, interpolation: interpolation}, nil
}

// MustKeyframe is like NewKeyframe but panics on error.
func MustKeyframe(pt PropertyType, keyframes string, l loop.Loop, completion float64) *KeyframeEnvelope {
	return must(NewKeyframe(pt, keyframes, l, completion))
}

// Keyframes returns the resolved keyframes.
func (e *KeyframeEnvelope) Keyframes() []particle.Keyframe {
	return append([]particle.Keyframe(nil), e.keyframes...)
}

func (e *KeyframeEnvelope) WithPropertyType(pt PropertyType) Envelope {
	return &KeyframeEnvelope{BasicEnvelope: e.copyAs(pt), keyframes: e.keyframes, interpolation: e.interpolation}
}

// Easing functions usable by EasingEnvelope, by name.
var easings = map[string]ease.TweenFunc{
	"Linear":     ease.Linear,
	"InQuad":     ease.InQuad,
	"OutQuad":    ease.OutQuad,
	"InOutQuad":  ease.InOutQuad,
	"InCubic":    ease.InCubic,
	"OutCubic":   ease.OutCubic,
	"InOutCubic": ease.InOutCubic,
	"InSine":     ease.InSine,
	"OutSine":    ease.OutSine,
	"InOutSine":  ease.InOutSine,
	"InExpo":     ease.InExpo,
	"OutExpo":    ease.OutExpo,
	"InOutExpo":  ease.InOutExpo,
	"InCirc":     ease.InCirc,
	"OutCirc":    ease.OutCirc,
	"InBack":     ease.InBack,
	"OutBack":    ease.OutBack,
	"InBounce":   ease.InBounce,
	"OutBounce":  ease.OutBounce,
	"InElastic":  ease.InElastic,
	"OutElastic": ease.OutElastic,
}

// EasingNames returns the names accepted by NewEasing, sorted.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EasingEnvelope eases from one envelope's value to another's with a named
// tween function.
//
// Expression: @ENV_0@ + (@ENV_1@ - @ENV_0@) * ease(clamp(frame_index / (duration-1) * completion))
type EasingEnvelope struct {
	*BasicEnvelope
	from, to Envelope
	easing   string
}

// NewEasing creates an easing envelope using the easing function called
// name (see EasingNames). The loop's envelope duration must be above 1.
func NewEasing(pt PropertyType, from, to Envelope, name string, l loop.Loop, completion float64) (*EasingEnvelope, error) {
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown easing %q", ErrInvalidEnvelope, name)
	}
	steps, err := interpolationSteps(l)
	if err != nil {
		return nil, err
	}

	curve := expr.Curve{
		Name: name,
		F: func(p float64) float64 {
			p = math.Max(0, math.Min(1, p))
			return float64(fn(float32(p), 0, 1, 1))
		},
		X: progress(steps, completion),
	}
	v0, v1 := expr.Placeholder(0), expr.Placeholder(1)
	node := expr.Add(v0, expr.Mul(expr.Sub(v1, v0), curve))

	b, err := newBasic(pt, node, l, completion, []Envelope{from, to})
	if err != nil {
		return nil, err
	}
	return &EasingEnvelope{BasicEnvelope: b, from: from, to: to, easing: name}, nil
}

// MustEasing is like NewEasing but panics on error.
func MustEasing(pt PropertyType, from, to Envelope, name string, l loop.Loop, completion float64) *EasingEnvelope {
	return must(NewEasing(pt, from, to, name, l, completion))
}

// Easing returns the easing function name.
func (e *EasingEnvelope) Easing() string { return e.easing }

func (e *EasingEnvelope) WithPropertyType(pt PropertyType) Envelope {
	return &EasingEnvelope{BasicEnvelope: e.copyAs(pt), from: e.from, to: e.to, easing: e.easing}
}
