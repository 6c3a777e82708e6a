// Package settings 持久化查看器的偏好设置
package settings

import (
	"fmt"
	"log"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ViewerSettings 查看器设置
type ViewerSettings struct {
	// LastPreset 上次播放的预设，下次启动时自动选中
	LastPreset string `yaml:"lastPreset"`

	// Zoom 每个世界单位对应的像素数
	Zoom float64 `yaml:"zoom"`

	// Yaw 视角绕 Y 轴的角度（度）
	Yaw float64 `yaml:"yaw"`

	// Trail 粒子残留的 tick 数
	Trail int `yaml:"trail"`

	// ShowAxes 是否绘制坐标轴
	ShowAxes bool `yaml:"showAxes"`
}

// 取值范围
const (
	MinZoom  = 4.0
	MaxZoom  = 200.0
	MaxTrail = 200
)

// DefaultSettings 返回默认设置
func DefaultSettings() *ViewerSettings {
	return &ViewerSettings{
		Zoom:     40,
		Yaw:      30,
		Trail:    20,
		ShowAxes: true,
	}
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// Manager 设置管理器
// 负责设置的加载、保存和内存管理
type Manager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）

	mu       sync.RWMutex
	settings ViewerSettings
}

// Open 打开应用的 gdata 存储并加载设置
// 存储不可用时退回到仅内存的降级模式
func Open(appName string) *Manager {
	gm, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[Settings] Warning: storage unavailable: %v (settings will not persist)", err)
		gm = nil
	}
	m, _ := NewManager(gm)
	return m
}

// NewManager 创建设置管理器
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *Manager: 设置管理器实例
//   - error: 加载失败时返回错误（管理器仍然可用，使用默认设置）
func NewManager(gdataManager *gdata.Manager) (*Manager, error) {
	m := &Manager{
		gdataManager: gdataManager,
		settings:     *DefaultSettings(),
	}

	// 尝试加载已保存的设置
	if err := m.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[Settings] Warning: failed to load settings: %v (using defaults)", err)
		return m, err
	}
	return m, nil
}

// Load 从 gdata 加载设置
// gdataManager 为 nil 或数据不存在时使用默认设置
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = *DefaultSettings()

	// 降级模式或尚未保存过
	if m.gdataManager == nil || !m.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}

	data, err := m.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 在默认值上解码，缺失的字段保持默认
	loaded := *DefaultSettings()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	m.settings = sanitize(loaded)
	log.Printf("[Settings] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
// gdataManager 为 nil 时什么都不做
func (m *Manager) Save() error {
	if m.gdataManager == nil {
		return nil
	}

	m.mu.RLock()
	data, err := yaml.Marshal(m.settings)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := m.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	log.Printf("[Settings] Settings saved successfully")
	return nil
}

// Get 返回当前设置的副本
func (m *Manager) Get() ViewerSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Update 修改设置，修改后的值会被限制在合法范围内
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (m *Manager) Update(fn func(s *ViewerSettings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.settings
	fn(&s)
	m.settings = sanitize(s)
}

// sanitize 把设置限制在合法范围内
func sanitize(s ViewerSettings) ViewerSettings {
	switch {
	case s.Zoom < MinZoom:
		s.Zoom = MinZoom
	case s.Zoom > MaxZoom:
		s.Zoom = MaxZoom
	}
	switch {
	case s.Trail < 1:
		s.Trail = 1
	case s.Trail > MaxTrail:
		s.Trail = MaxTrail
	}
	return s
}
