package config

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/gonewx/partigon/pkg/embedded"
)

// DefaultPresetDir 嵌入的预设目录
const DefaultPresetDir = "data/presets"

// ErrPresetNotFound 预设不存在
var ErrPresetNotFound = errors.New("config: preset not found")

// PresetManager 预设管理器
// 负责加载和按名称索引全部预设
type PresetManager struct {
	presets map[string]*PresetConfig // 按名称索引
	order   []string                 // 加载顺序
	mu      sync.RWMutex             // 读写锁（并发安全）
}

// NewPresetManager 从嵌入资源加载预设
//
// 参数：
//   - path: 文件路径或目录路径
//   - 如果是文件路径（如 "data/presets/basic.yaml"），只加载该文件
//   - 如果是目录路径（如 "data/presets"），加载目录中所有 YAML 文件
//
// 返回：
//   - *PresetManager: 管理器实例
//   - error: 加载、解析或验证错误，以及预设名称重复
func NewPresetManager(path string) (*PresetManager, error) {
	var files []string
	if _, err := embedded.ReadDir(path); err == nil {
		// 是目录
		if files, err = embedded.Glob(path + "/*.yaml"); err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: no preset files in %s", ErrInvalidPreset, path)
		}
	} else if embedded.Exists(path) {
		files = []string{path}
	} else {
		return nil, fmt.Errorf("cannot access path %s", path)
	}

	m := &PresetManager{presets: make(map[string]*PresetConfig)}
	for _, file := range files {
		data, err := embedded.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read preset file %s: %w", file, err)
		}
		parsed, err := ParsePresets(data)
		if err != nil {
			return nil, fmt.Errorf("preset file %s: %w", file, err)
		}
		if err := m.add(parsed); err != nil {
			return nil, fmt.Errorf("preset file %s: %w", file, err)
		}
	}

	log.Printf("[Presets] loaded %d preset(s) from %d file(s)", len(m.order), len(files))
	return m, nil
}

// NewPresetManagerFromFile 用已解析的预设文件创建管理器（磁盘上的预设文件）
func NewPresetManagerFromFile(file *PresetFile) (*PresetManager, error) {
	m := &PresetManager{presets: make(map[string]*PresetConfig)}
	if err := m.add(file); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PresetManager) add(file *PresetFile) error {
	for i := range file.Presets {
		p := &file.Presets[i]
		if _, exists := m.presets[p.Name]; exists {
			return fmt.Errorf("%w: duplicate preset name %q", ErrInvalidPreset, p.Name)
		}
		m.presets[p.Name] = p
		m.order = append(m.order, p.Name)
	}
	return nil
}

// Get 获取预设
//
// 参数：
//   - name: 预设名称
//
// 返回：
//   - *PresetConfig: 预设配置
//   - error: 预设不存在时返回 ErrPresetNotFound
func (m *PresetManager) Get(name string) (*PresetConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.presets[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return p, nil
}

// Names 返回加载顺序的预设名称
func (m *PresetManager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// SortedNames 返回按字典序排列的预设名称
func (m *PresetManager) SortedNames() []string {
	names := m.Names()
	sort.Strings(names)
	return names
}

// Len 返回预设数量
func (m *PresetManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
