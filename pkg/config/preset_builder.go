package config

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gonewx/partigon/pkg/animation"
	"github.com/gonewx/partigon/pkg/envelope"
	"github.com/gonewx/partigon/pkg/loop"
	"github.com/gonewx/partigon/pkg/rotation"
	"github.com/gonewx/partigon/pkg/scheduler"
	"github.com/gonewx/partigon/pkg/ticks"
)

// DefaultWorld 预设未指定 world 时使用
const DefaultWorld = "world"

// Build 构建预设
// 单个动画返回 *animation.Animation，多个动画返回 *animation.MultiAnimation，
// 两者共用同一个调度器
func (p *PresetConfig) Build(sink animation.Sink, s scheduler.Scheduler) (animation.Player, error) {
	if s == nil {
		s = scheduler.NewTicker(ticks.Period)
	}
	anims := make([]*animation.Animation, 0, len(p.Animations))
	for i := range p.Animations {
		b, err := p.Animations[i].Builder()
		if err != nil {
			return nil, fmt.Errorf("preset %q animation #%d: %w", p.Name, i, err)
		}
		b.Sink = sink
		b.Scheduler = s
		a, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("preset %q animation #%d: %w", p.Name, i, err)
		}
		anims = append(anims, a)
	}
	if len(anims) == 1 {
		return anims[0], nil
	}
	return animation.NewMulti(s, anims...)
}

// Builder 把配置转换为 animation.Builder，Sink 和 Scheduler 留空由调用方设置
// 每次调用都会创建新的包络，所以同一配置可以重复构建
func (c *AnimationConfig) Builder() (*animation.Builder, error) {
	b := &animation.Builder{
		Particle:          c.Particle,
		MaximumDuration:   c.MaximumDuration,
		FramesPerDraw:     c.FramesPerDraw,
		AnimationInterval: c.AnimationInterval,
	}

	// 原点
	world := c.World
	if world == "" {
		world = DefaultWorld
	}
	switch len(c.Origin) {
	case 0:
		b.Origin = animation.At(world, 0, 0, 0)
	case 3:
		b.Origin = animation.At(world, c.Origin[0], c.Origin[1], c.Origin[2])
	default:
		return nil, fmt.Errorf("%w: origin must have 3 components, got %d", ErrInvalidPreset, len(c.Origin))
	}

	// 样式
	if c.Style != nil {
		col, err := parseHexColor(c.Style.Color)
		if err != nil {
			return nil, err
		}
		b.Style = &animation.Style{Color: col, Size: c.Style.Size}
	}

	// 槽位包络
	for name, ec := range c.Slots {
		pt, err := envelope.ParsePropertyType(name)
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", name, err)
		}
		env, err := ec.Build(pt)
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", name, err)
		}
		if err := assignSlot(b, pt, env); err != nil {
			return nil, err
		}
	}

	// 额外包络
	for i, ec := range c.Envelopes {
		if ec == nil || ec.Property == "" {
			return nil, fmt.Errorf("%w: envelope #%d is missing 'property'", ErrInvalidPreset, i)
		}
		env, err := ec.Build(envelope.None)
		if err != nil {
			return nil, fmt.Errorf("envelope #%d: %w", i, err)
		}
		b.Add(env)
	}

	// 包络组
	for i := range c.Groups {
		g, err := c.Groups[i].Build()
		if err != nil {
			return nil, fmt.Errorf("group #%d: %w", i, err)
		}
		b.AddGroup(g)
	}

	// 旋转
	rots, err := buildRotations(c.Rotations)
	if err != nil {
		return nil, fmt.Errorf("rotations: %w", err)
	}
	b.AddRotation(rots...)
	groupRots, err := buildRotations(c.GroupRotations)
	if err != nil {
		return nil, fmt.Errorf("group rotations: %w", err)
	}
	b.AddGroupRotation(groupRots...)

	return b, nil
}

// validate 用空 sink 试构建一次，不启动任何任务
func (c *AnimationConfig) validate() error {
	b, err := c.Builder()
	if err != nil {
		return err
	}
	b.Sink = animation.SinkFunc(func(animation.Emission) {})
	b.Scheduler = scheduler.NewStepper()
	_, err = b.Build()
	return err
}

func assignSlot(b *animation.Builder, pt envelope.PropertyType, env envelope.Envelope) error {
	switch pt {
	case envelope.PosX:
		b.PositionX = env
	case envelope.PosY:
		b.PositionY = env
	case envelope.PosZ:
		b.PositionZ = env
	case envelope.OffsetX:
		b.OffsetX = env
	case envelope.OffsetY:
		b.OffsetY = env
	case envelope.OffsetZ:
		b.OffsetZ = env
	case envelope.Count:
		b.Count = env
	case envelope.Extra:
		b.Extra = env
	default:
		return fmt.Errorf("%w: slot %s", envelope.ErrNoneProperty, pt)
	}
	return nil
}

// Build 构建循环，nil 配置返回 nil
func (c *LoopConfig) Build() (loop.Loop, error) {
	if c == nil {
		return nil, nil
	}
	frames := c.Frames
	if c.Duration > 0 {
		frames = ticks.FromDuration(c.Duration)
	}
	return loop.New(strings.ToLower(strings.TrimSpace(c.Kind)), frames)
}

func completionOf(c *float64) float64 {
	if c == nil {
		return 1
	}
	return *c
}

// Build 构建包络
// def 是未指定 property 时使用的属性，嵌套包络和端点使用 None
func (c *EnvelopeConfig) Build(def envelope.PropertyType) (envelope.Envelope, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: missing envelope", ErrInvalidPreset)
	}
	pt := def
	if c.Property != "" {
		var err error
		if pt, err = envelope.ParsePropertyType(c.Property); err != nil {
			return nil, err
		}
	}
	l, err := c.Loop.Build()
	if err != nil {
		return nil, err
	}
	completion := completionOf(c.Completion)

	kind := strings.ToLower(strings.TrimSpace(c.Type))
	if kind == "" {
		kind = "constant"
		if c.Expression != "" {
			kind = "expression"
		}
	}

	switch kind {
	case "constant":
		return envelope.NewConstant(pt, c.Value), nil

	case "expression":
		nested := make([]envelope.Envelope, len(c.Nested))
		for i, nc := range c.Nested {
			if nested[i], err = nc.Build(envelope.None); err != nil {
				return nil, fmt.Errorf("nested #%d: %w", i, err)
			}
		}
		if l == nil {
			l = loop.MustContinue(0)
		}
		return envelopeOf(envelope.NewBasic(pt, c.Expression, l, completion, nested...))

	case "keyframe", "keyframes":
		return envelopeOf(envelope.NewKeyframe(pt, c.Keyframes, l, completion))
	}

	// 以下类型都需要起止端点
	from, err := c.From.Build(envelope.None)
	if err != nil {
		return nil, fmt.Errorf("%s 'from': %w", kind, err)
	}
	to, err := c.To.Build(envelope.None)
	if err != nil {
		return nil, fmt.Errorf("%s 'to': %w", kind, err)
	}

	switch kind {
	case "linear":
		return envelopeOf(envelope.NewLinear(pt, from, to, l, completion))
	case "trigonometric", "trig":
		fn, err := envelope.ParseTrigFunc(c.Func)
		if err != nil {
			return nil, err
		}
		return envelopeOf(envelope.NewTrigonometric(pt, from, to, fn, l, completion))
	case "easing":
		return envelopeOf(envelope.NewEasing(pt, from, to, c.Easing, l, completion))
	case "curve":
		o, err := envelope.ParseCurveOrientation(c.Orientation)
		if err != nil {
			return nil, err
		}
		return envelope.NewCurve(pt, from, to, o, l, completion)
	case "circle":
		o, err := envelope.ParseCircleOrientation(c.Orientation)
		if err != nil {
			return nil, err
		}
		return envelope.NewCircle(pt, from, to, o, l, completion)
	}
	return nil, fmt.Errorf("%w: unknown envelope type %q", ErrInvalidPreset, c.Type)
}

// envelopeOf 避免把带类型的 nil 指针放进接口
func envelopeOf[T envelope.Envelope](e T, err error) (envelope.Envelope, error) {
	if err != nil {
		return nil, err
	}
	return e, nil
}

func parseGroupKind(s string) (envelope.GroupKind, error) {
	for _, k := range []envelope.GroupKind{envelope.GroupPosition, envelope.GroupOffset} {
		if strings.EqualFold(strings.TrimSpace(s), k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown group kind %q (want position or offset)", ErrInvalidPreset, s)
}

// Build 构建包络组
func (c *GroupConfig) Build() (*envelope.Group, error) {
	kind, err := parseGroupKind(c.Kind)
	if err != nil {
		return nil, err
	}
	rots, err := buildRotations(c.Rotations)
	if err != nil {
		return nil, err
	}
	l, err := c.Loop.Build()
	if err != nil {
		return nil, err
	}
	completion := completionOf(c.Completion)

	shape := strings.ToLower(strings.TrimSpace(c.Shape))
	if shape == "" || shape == "explicit" {
		axes := kind.Axes()
		var envs [3]envelope.Envelope
		for i, ec := range []*EnvelopeConfig{c.X, c.Y, c.Z} {
			if envs[i], err = ec.Build(axes[i]); err != nil {
				return nil, fmt.Errorf("axis %s: %w", axes[i], err)
			}
		}
		return envelope.NewGroup(kind, envs[0], envs[1], envs[2], rots...)
	}

	from, err := buildTriple(c.From)
	if err != nil {
		return nil, fmt.Errorf("'from': %w", err)
	}
	to, err := buildTriple(c.To)
	if err != nil {
		return nil, fmt.Errorf("'to': %w", err)
	}

	switch shape {
	case "linear":
		return envelope.LinearGroup(kind, from, to, l, completion, rots...)
	case "curve":
		o, err := envelope.ParseCurveOrientation(c.Orientation)
		if err != nil {
			return nil, err
		}
		return envelope.CurveGroup(kind, from, to, o, l, completion, rots...)
	case "circle":
		o, err := envelope.ParseCircleOrientation(c.Orientation)
		if err != nil {
			return nil, err
		}
		return envelope.CircleGroup(kind, from, to, o, l, completion, rots...)
	}
	return nil, fmt.Errorf("%w: unknown group shape %q", ErrInvalidPreset, c.Shape)
}

func buildTriple(cs []*EnvelopeConfig) (envelope.Triple, error) {
	if len(cs) != 3 {
		return envelope.Triple{}, fmt.Errorf("%w: expected 3 values, got %d", ErrInvalidPreset, len(cs))
	}
	var envs [3]envelope.Envelope
	for i, ec := range cs {
		var err error
		if envs[i], err = ec.Build(envelope.None); err != nil {
			return envelope.Triple{}, err
		}
	}
	return envelope.Triple{X: envs[0], Y: envs[1], Z: envs[2]}, nil
}

// Build 构建旋转，角度和支点都可以是包络
func (c *RotationConfig) Build() (rotation.Options, error) {
	var axis r3.Vec
	switch {
	case c.Axis.Name == "x":
		axis = rotation.AxisX
	case c.Axis.Name == "y":
		axis = rotation.AxisY
	case c.Axis.Name == "z":
		axis = rotation.AxisZ
	case c.Axis.Name == "" && len(c.Axis.Vector) == 3:
		axis = r3.Vec{X: c.Axis.Vector[0], Y: c.Axis.Vector[1], Z: c.Axis.Vector[2]}
	default:
		return rotation.Options{}, fmt.Errorf("%w: axis must be x, y, z or [x, y, z]", ErrInvalidPreset)
	}

	angle, err := c.Angle.Build(envelope.None)
	if err != nil {
		return rotation.Options{}, fmt.Errorf("angle: %w", err)
	}
	opts := rotation.Around(axis, angle)
	opts.Radians = c.Radians

	switch len(c.Pivot) {
	case 0:
	case 3:
		p, err := buildTriple(c.Pivot)
		if err != nil {
			return rotation.Options{}, fmt.Errorf("pivot: %w", err)
		}
		opts = opts.WithPivot(p.X, p.Y, p.Z)
	default:
		return rotation.Options{}, fmt.Errorf("%w: pivot must have 3 components, got %d", ErrInvalidPreset, len(c.Pivot))
	}
	return opts, nil
}

func buildRotations(cs []RotationConfig) ([]rotation.Options, error) {
	opts := make([]rotation.Options, 0, len(cs))
	for i := range cs {
		o, err := cs[i].Build()
		if err != nil {
			return nil, fmt.Errorf("rotation #%d: %w", i, err)
		}
		opts = append(opts, o)
	}
	return opts, nil
}
