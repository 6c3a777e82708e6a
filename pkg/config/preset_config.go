package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPreset 预设文件内容无效
var ErrInvalidPreset = errors.New("config: invalid preset")

// PresetFile 预设文件的顶层结构
// 一个文件可以包含多个预设
type PresetFile struct {
	Presets []PresetConfig `yaml:"presets"`
}

// PresetConfig 单个预设
// 只有一个动画时构建为 Animation，多个时构建为 MultiAnimation
type PresetConfig struct {
	// Name 预设名称（代码和命令行中引用）
	Name string `yaml:"name"`

	// Description 描述（用于查看器显示）
	Description string `yaml:"description,omitempty"`

	// Animations 动画列表，至少一个
	Animations []AnimationConfig `yaml:"animations"`
}

// AnimationConfig 对应 animation.Builder 的字段
type AnimationConfig struct {
	Particle string `yaml:"particle,omitempty"`
	World    string `yaml:"world,omitempty"`

	// Origin 原点 [x, y, z]，省略时为 (0, 0, 0)
	Origin []float64 `yaml:"origin,omitempty"`

	// MaximumDuration 最大持续时间（如 "4s"），省略时永不结束
	MaximumDuration time.Duration `yaml:"maximum_duration,omitempty"`

	FramesPerDraw     int `yaml:"frames_per_draw,omitempty"`
	AnimationInterval int `yaml:"animation_interval,omitempty"`

	Style *StyleConfig `yaml:"style,omitempty"`

	// Slots 按属性名（POS_X, OFFSET_Y, COUNT ...）指定的槽位包络
	Slots map[string]*EnvelopeConfig `yaml:"slots,omitempty"`

	// Envelopes 额外的包络，必须指定 property
	Envelopes []*EnvelopeConfig `yaml:"envelopes,omitempty"`

	// Groups 包络组，保留组旋转
	Groups []GroupConfig `yaml:"groups,omitempty"`

	Rotations      []RotationConfig `yaml:"rotations,omitempty"`
	GroupRotations []RotationConfig `yaml:"group_rotations,omitempty"`
}

// StyleConfig 粒子样式
type StyleConfig struct {
	// Color 十六进制颜色，如 "#ff8800" 或 "#ff880080"
	Color string  `yaml:"color"`
	Size  float64 `yaml:"size,omitempty"`
}

// LoopConfig 循环配置
// Frames 与 Duration 二选一，Duration 按 tick 换算
type LoopConfig struct {
	Kind     string        `yaml:"kind"`
	Frames   int           `yaml:"frames,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`
}

// EnvelopeConfig 包络配置
//
// Type 取值：
//   - constant: Value
//   - expression: Expression + Nested，占位符写作 @ENV_0@
//   - linear: From, To
//   - trigonometric: From, To, Func
//   - keyframe: Keyframes
//   - easing: From, To, Easing
//   - curve / circle: From, To, Orientation
//
// 纯数字节点（如 `from: 3`）等价于 constant 包络。
type EnvelopeConfig struct {
	Type        string            `yaml:"type"`
	Property    string            `yaml:"property,omitempty"`
	Value       float64           `yaml:"value,omitempty"`
	Expression  string            `yaml:"expression,omitempty"`
	Nested      []*EnvelopeConfig `yaml:"nested,omitempty"`
	From        *EnvelopeConfig   `yaml:"from,omitempty"`
	To          *EnvelopeConfig   `yaml:"to,omitempty"`
	Func        string            `yaml:"func,omitempty"`
	Easing      string            `yaml:"easing,omitempty"`
	Keyframes   string            `yaml:"keyframes,omitempty"`
	Orientation string            `yaml:"orientation,omitempty"`
	Loop        *LoopConfig       `yaml:"loop,omitempty"`
	Completion  *float64          `yaml:"completion,omitempty"`
}

// UnmarshalYAML 支持用纯数字表示常量包络
func (e *EnvelopeConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var v float64
		if err := value.Decode(&v); err != nil {
			return fmt.Errorf("line %d: envelope must be a number or a mapping: %w", value.Line, err)
		}
		*e = EnvelopeConfig{Type: "constant", Value: v}
		return nil
	}
	// 使用别名类型避免递归调用 UnmarshalYAML
	type plain EnvelopeConfig
	return value.Decode((*plain)(e))
}

// GroupConfig 包络组配置
//
// Shape 取值：
//   - explicit: X, Y, Z 三个包络
//   - linear: From, To 各三个值
//   - curve / circle: From, To, Orientation
type GroupConfig struct {
	Kind        string            `yaml:"kind"`
	Shape       string            `yaml:"shape"`
	X           *EnvelopeConfig   `yaml:"x,omitempty"`
	Y           *EnvelopeConfig   `yaml:"y,omitempty"`
	Z           *EnvelopeConfig   `yaml:"z,omitempty"`
	From        []*EnvelopeConfig `yaml:"from,omitempty"`
	To          []*EnvelopeConfig `yaml:"to,omitempty"`
	Orientation string            `yaml:"orientation,omitempty"`
	Loop        *LoopConfig       `yaml:"loop,omitempty"`
	Completion  *float64          `yaml:"completion,omitempty"`
	Rotations   []RotationConfig  `yaml:"rotations,omitempty"`
}

// RotationConfig 旋转配置
// Axis 为 "x"、"y"、"z" 或三维向量 [x, y, z]
type RotationConfig struct {
	Axis    AxisConfig        `yaml:"axis"`
	Angle   *EnvelopeConfig   `yaml:"angle"`
	Pivot   []*EnvelopeConfig `yaml:"pivot,omitempty"`
	Radians bool              `yaml:"radians,omitempty"`
}

// AxisConfig 旋转轴，接受名称或向量
type AxisConfig struct {
	Name   string
	Vector []float64
}

// UnmarshalYAML 解析 "y" 或 [0, 1, 0]
func (a *AxisConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		a.Name = strings.ToLower(strings.TrimSpace(value.Value))
		return nil
	}
	return value.Decode(&a.Vector)
}

// LoadPresetFile 从 YAML 文件加载预设
//
// 参数：
//   - path: 预设文件路径
//
// 返回：
//   - *PresetFile: 解析并验证后的预设
//   - error: 加载、解析或验证错误
func LoadPresetFile(path string) (*PresetFile, error) {
	// 1. 读取文件
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file %s: %w", path, err)
	}

	// 2. 解析并验证
	file, err := ParsePresets(data)
	if err != nil {
		return nil, fmt.Errorf("preset file %s: %w", path, err)
	}
	return file, nil
}

// ParsePresets 解析预设内容并验证
// 验证会试构建每个预设，所以包络、循环、旋转的参数错误都在这里暴露
func ParsePresets(data []byte) (*PresetFile, error) {
	var file PresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	if err := validateConfig(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

// validateConfig 验证预设的完整性和正确性
func validateConfig(file *PresetFile) error {
	if len(file.Presets) == 0 {
		return fmt.Errorf("%w: no presets defined", ErrInvalidPreset)
	}

	names := make(map[string]bool)
	for i := range file.Presets {
		p := &file.Presets[i]
		// 验证名称
		if p.Name == "" {
			return fmt.Errorf("%w: preset #%d is missing 'name'", ErrInvalidPreset, i)
		}
		if names[p.Name] {
			return fmt.Errorf("%w: duplicate preset name %q", ErrInvalidPreset, p.Name)
		}
		names[p.Name] = true

		// 验证动画列表
		if len(p.Animations) == 0 {
			return fmt.Errorf("%w: preset %q has no animations", ErrInvalidPreset, p.Name)
		}

		// 试构建
		for j := range p.Animations {
			if err := p.Animations[j].validate(); err != nil {
				return fmt.Errorf("preset %q animation #%d: %w", p.Name, j, err)
			}
		}
	}
	return nil
}

// parseHexColor 解析 #rrggbb 或 #rrggbbaa
func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	c := color.RGBA{A: 0xff}
	var err error
	switch len(s) {
	case 6:
		_, err = fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B)
	case 8:
		_, err = fmt.Sscanf(s, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = errors.New("expected #rrggbb or #rrggbbaa")
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q: %v", ErrInvalidPreset, "#"+s, err)
	}
	return c, nil
}
