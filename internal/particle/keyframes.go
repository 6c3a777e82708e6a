// Package particle parses keyframe value strings used by keyframe envelopes.
//
// A keyframe string describes a curve over normalized progress (0-1):
//   - Fixed value: "1500" → one keyframe, constant curve
//   - Range: "[0.7 0.9]" → one keyframe with a value picked randomly in the range
//   - Double range: "[0.4 0.6] [0.8 1.2]" → random start value to random end value
//   - Keyframes: "0,2 0.5,2 1,21" → time,value pairs
//   - Interpolation keyword anywhere: "0,0 EaseIn 1,100"
//
// Ranges are resolved once, when the string is parsed, so an envelope built
// from the result evaluates deterministically.
package particle

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/tanema/gween/ease"
)

// ErrInvalidKeyframes reports a keyframe string that cannot be parsed.
var ErrInvalidKeyframes = errors.New("particle: invalid keyframes")

// Keyframe represents a single keyframe in an animation curve.
type Keyframe struct {
	Time  float64 // Normalized time (0-1)
	Value float64 // Value at this keyframe
}

// Interpolation modes understood by EvaluateKeyframes.
const (
	Linear        = "Linear"
	EaseIn        = "EaseIn"
	EaseOut       = "EaseOut"
	FastInOutWeak = "FastInOutWeak"
)

var interpolationKeywords = []string{Linear, EaseIn, EaseOut, FastInOutWeak}

// easings maps the curved interpolation keywords to quadratic tweens.
var easings = map[string]ease.TweenFunc{
	EaseIn:        ease.InQuad,
	EaseOut:       ease.OutQuad,
	FastInOutWeak: ease.InOutQuad,
}

// ParseKeyframes parses a keyframe string.
//
// Returns:
//   - keyframes: sorted by Time, never empty on success
//   - interpolation: the interpolation keyword found in s, or "" (linear)
//   - error: wraps ErrInvalidKeyframes when s is empty or malformed
func ParseKeyframes(s string) ([]Keyframe, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", fmt.Errorf("%w: empty string", ErrInvalidKeyframes)
	}

	// 插值关键字可以出现在任意位置，先提取出来
	interpolation := ""
	for _, keyword := range interpolationKeywords {
		if strings.Contains(s, keyword) {
			interpolation = keyword
			s = strings.TrimSpace(strings.ReplaceAll(s, keyword, ""))
			break
		}
	}

	// 双范围格式 "[min1 max1] [min2 max2]"：随机起始值到随机结束值
	if strings.Count(s, "[") == 2 && strings.Count(s, "]") == 2 {
		first, rest, _ := strings.Cut(s, "]")
		start, err := parseRange(first + "]")
		if err != nil {
			return nil, "", err
		}
		end, err := parseRange(strings.TrimSpace(rest))
		if err != nil {
			return nil, "", err
		}
		return []Keyframe{{Time: 0, Value: start}, {Time: 1, Value: end}}, interpolation, nil
	}

	// 单范围格式 "[min max]" 或 "[value]"
	if strings.HasPrefix(s, "[") {
		v, err := parseRange(s)
		if err != nil {
			return nil, "", err
		}
		return []Keyframe{{Time: 0, Value: v}}, interpolation, nil
	}

	parts := strings.Fields(s)
	keyframes := make([]Keyframe, 0, len(parts))
	for _, part := range parts {
		timeStr, valueStr, isPair := strings.Cut(part, ",")
		if !isPair {
			// 单独的值：作为 t=0 的初始值（仅允许出现在最前面）
			value, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, "", fmt.Errorf("%w: bad value %q", ErrInvalidKeyframes, part)
			}
			if len(keyframes) > 0 {
				return nil, "", fmt.Errorf("%w: bare value %q after keyframes", ErrInvalidKeyframes, part)
			}
			keyframes = append(keyframes, Keyframe{Time: 0, Value: value})
			continue
		}
		t, err1 := strconv.ParseFloat(timeStr, 64)
		value, err2 := strconv.ParseFloat(valueStr, 64)
		if err1 != nil || err2 != nil {
			return nil, "", fmt.Errorf("%w: bad keyframe %q", ErrInvalidKeyframes, part)
		}
		keyframes = append(keyframes, Keyframe{Time: t, Value: value})
	}

	sort.SliceStable(keyframes, func(i, j int) bool { return keyframes[i].Time < keyframes[j].Time })
	return keyframes, interpolation, nil
}

// MustParseKeyframes is like ParseKeyframes but panics on error.
func MustParseKeyframes(s string) ([]Keyframe, string) {
	keyframes, interpolation, err := ParseKeyframes(s)
	if err != nil {
		panic(err)
	}
	return keyframes, interpolation
}

func parseRange(s string) (float64, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return 0, fmt.Errorf("%w: bad range %q", ErrInvalidKeyframes, s)
	}
	parts := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad range %q", ErrInvalidKeyframes, s)
		}
		return v, nil
	case 2:
		min, err1 := strconv.ParseFloat(parts[0], 64)
		max, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return 0, fmt.Errorf("%w: bad range %q", ErrInvalidKeyframes, s)
		}
		return RandomInRange(min, max), nil
	}
	return 0, fmt.Errorf("%w: bad range %q", ErrInvalidKeyframes, s)
}

// EvaluateKeyframes calculates the interpolated value at time t (0-1)
// using the provided keyframes and interpolation mode.
//
// Parameters:
//   - keyframes: Array of keyframes (must be sorted by Time)
//   - t: Normalized time (0-1), clamped
//   - interpolation: Interpolation mode ("Linear", "EaseIn", etc.)
//
// Returns the interpolated value at time t.
func EvaluateKeyframes(keyframes []Keyframe, t float64, interpolation string) float64 {
	if len(keyframes) == 0 {
		return 0
	}
	if len(keyframes) == 1 {
		return keyframes[0].Value
	}

	t = math.Max(0, math.Min(1, t))

	if t < keyframes[0].Time {
		return keyframes[0].Value
	}

	for i := 0; i < len(keyframes)-1; i++ {
		k0 := keyframes[i]
		k1 := keyframes[i+1]

		if t >= k0.Time && t <= k1.Time {
			duration := k1.Time - k0.Time
			if duration <= 0 {
				return k0.Value
			}
			ratio := (t - k0.Time) / duration

			if fn, ok := easings[interpolation]; ok {
				ratio = float64(fn(float32(ratio), 0, 1, 1))
			}
			return k0.Value + ratio*(k1.Value-k0.Value)
		}
	}

	// If t is beyond the last keyframe, return the last value
	return keyframes[len(keyframes)-1].Value
}

// RandomInRange returns a random float64 in the range [min, max].
func RandomInRange(min, max float64) float64 {
	if min >= max {
		return min
	}
	return min + rand.Float64()*(max-min)
}
