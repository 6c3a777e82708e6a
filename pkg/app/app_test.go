package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/partigon/pkg/embedded"
	"github.com/gonewx/partigon/pkg/settings"
)

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	embedded.Init(os.DirFS("../.."))
	t.Cleanup(func() { embedded.Init(nil) })

	if cfg.Settings == nil {
		sm, err := settings.NewManager(nil)
		require.NoError(t, err)
		cfg.Settings = sm
	}
	cfg.Verbose = true

	a, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// TestNewApp 测试查看器初始化
func TestNewApp(t *testing.T) {
	a := newTestApp(t, Config{Preset: "pulse"})

	assert.Equal(t, "pulse", a.Session().Name())
	assert.Equal(t, "pulse", a.settings.Get().LastPreset)
	assert.Equal(t, settings.DefaultSettings().Zoom, a.Canvas().Camera.Zoom)
	assert.Equal(t, settings.DefaultSettings().Trail, a.Canvas().Lifetime())

	w, h := a.Layout(0, 0)
	assert.Equal(t, ScreenWidth, w)
	assert.Equal(t, ScreenHeight, h)
}

// TestNewApp_LastPreset 测试从设置恢复上次的预设
func TestNewApp_LastPreset(t *testing.T) {
	sm, err := settings.NewManager(nil)
	require.NoError(t, err)
	sm.Update(func(s *settings.ViewerSettings) { s.LastPreset = "spiral" })

	a := newTestApp(t, Config{Settings: sm})
	assert.Equal(t, "spiral", a.Session().Name())
}

// TestNewApp_Filter 测试初始过滤
func TestNewApp_Filter(t *testing.T) {
	a := newTestApp(t, Config{Filter: "orbit"})
	assert.Equal(t, "twin_orbits", a.Session().Name())
	assert.Equal(t, 1, a.catalog.Len())
}

// TestNewApp_PresetFile 测试磁盘上的预设文件
func TestNewApp_PresetFile(t *testing.T) {
	a := newTestApp(t, Config{PresetFile: filepath.Join("..", "config", "testdata", "presets_valid.yaml")})
	assert.Equal(t, 2, a.catalog.Total())
	assert.Equal(t, "wave", a.Session().Name())
}

// TestNewApp_Errors 测试初始化错误
func TestNewApp_Errors(t *testing.T) {
	embedded.Init(nil)
	sm, err := settings.NewManager(nil)
	require.NoError(t, err)

	_, err = NewApp(Config{Verbose: true, Settings: sm})
	assert.Error(t, err)

	_, err = NewApp(Config{Verbose: true, Settings: sm, PresetFile: "missing.yaml"})
	assert.Error(t, err)
}

// TestApp_Step 测试动画推进和绘制
func TestApp_Step(t *testing.T) {
	a := newTestApp(t, Config{Preset: "sine_wave"})

	for i := 0; i < 10; i++ {
		a.Step()
	}
	assert.Equal(t, 10, a.Canvas().Emitted())
	assert.NotEmpty(t, a.Canvas().Points())

	screen := ebiten.NewImage(ScreenWidth, ScreenHeight)
	a.Draw(screen) // Should not panic

	a.togglePause()
	assert.True(t, a.Session().Paused())
	a.Step()
	assert.Equal(t, 10, a.Canvas().Emitted())
	a.togglePause()
	a.Step()
	assert.Equal(t, 11, a.Canvas().Emitted())
}

// TestApp_Navigate 测试切换预设
func TestApp_Navigate(t *testing.T) {
	a := newTestApp(t, Config{Preset: "sine_wave"})
	a.Step()

	a.navigate(a.catalog.Next)
	assert.Equal(t, "pulse", a.Session().Name())
	assert.Empty(t, a.Canvas().Points(), "switching clears the canvas")
	assert.Equal(t, "pulse", a.settings.Get().LastPreset)

	a.navigate(a.catalog.Prev)
	assert.Equal(t, "sine_wave", a.Session().Name())
}

// TestApp_UpdateSettings 测试视角设置
func TestApp_UpdateSettings(t *testing.T) {
	a := newTestApp(t, Config{})

	a.updateSettings(func(s *settings.ViewerSettings) { s.Zoom = 1000; s.Yaw = 45; s.Trail = 3 })
	assert.Equal(t, settings.MaxZoom, a.Canvas().Camera.Zoom)
	assert.Equal(t, 45.0, a.Canvas().Camera.Yaw)
	assert.Equal(t, 3, a.Canvas().Lifetime())

	a.updateSettings(func(s *settings.ViewerSettings) { s.ShowAxes = false })
	assert.False(t, a.Canvas().ShowAxes)
}
