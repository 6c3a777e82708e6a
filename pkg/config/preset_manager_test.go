package config

import (
	"context"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/partigon/pkg/embedded"
	"github.com/gonewx/partigon/pkg/scheduler"
)

const presetA = `
presets:
  - name: alpha
    animations: [{slots: {POS_X: 1}}]
  - name: beta
    animations: [{slots: {POS_X: 2}}]
`

const presetB = `
presets:
  - name: gamma
    animations: [{slots: {POS_X: 3}}]
`

func initFS(t *testing.T, files fstest.MapFS) {
	t.Helper()
	embedded.Init(files)
	t.Cleanup(func() { embedded.Init(nil) })
}

// TestNewPresetManager_Directory 测试从目录加载所有预设
func TestNewPresetManager_Directory(t *testing.T) {
	initFS(t, fstest.MapFS{
		"data/presets/a.yaml":   {Data: []byte(presetA)},
		"data/presets/b.yaml":   {Data: []byte(presetB)},
		"data/presets/notes.md": {Data: []byte("ignored")},
	})

	m, err := NewPresetManager("data/presets")
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, m.Names())

	p, err := m.Get("gamma")
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.Animations[0].Slots["POS_X"].Value)

	_, err = m.Get("delta")
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

// TestNewPresetManager_File 测试单文件模式
func TestNewPresetManager_File(t *testing.T) {
	initFS(t, fstest.MapFS{
		"data/presets/a.yaml": {Data: []byte(presetA)},
		"data/presets/b.yaml": {Data: []byte(presetB)},
	})

	m, err := NewPresetManager("data/presets/b.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma"}, m.Names())
}

// TestNewPresetManager_Errors 测试加载错误
func TestNewPresetManager_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   fstest.MapFS
		path    string
		wantErr error
	}{
		{"Missing path", fstest.MapFS{}, "data/presets", nil},
		{"Empty directory", fstest.MapFS{"data/presets/readme.txt": {}}, "data/presets", ErrInvalidPreset},
		{"Duplicate across files", fstest.MapFS{
			"data/presets/a.yaml": {Data: []byte(presetA)},
			"data/presets/b.yaml": {Data: []byte(presetA)},
		}, "data/presets", ErrInvalidPreset},
		{"Invalid file", fstest.MapFS{
			"data/presets/a.yaml": {Data: []byte("presets: []")},
		}, "data/presets", ErrInvalidPreset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initFS(t, tt.files)
			_, err := NewPresetManager(tt.path)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// TestNewPresetManagerFromFile 测试用磁盘文件创建管理器
func TestNewPresetManagerFromFile(t *testing.T) {
	file, err := LoadPresetFile("testdata/presets_valid.yaml")
	require.NoError(t, err)

	m, err := NewPresetManagerFromFile(file)
	require.NoError(t, err)
	assert.Equal(t, []string{"multi", "wave"}, m.SortedNames())
}

// TestBundledPresets 测试项目自带的预设都能加载并运行
func TestBundledPresets(t *testing.T) {
	if _, err := os.Stat("../../data/presets"); err != nil {
		t.Skip("bundled presets not found")
	}
	embedded.Init(os.DirFS("../.."))
	t.Cleanup(func() { embedded.Init(nil) })

	m, err := NewPresetManager(DefaultPresetDir)
	require.NoError(t, err)
	require.NotZero(t, m.Len())

	for _, name := range m.Names() {
		t.Run(name, func(t *testing.T) {
			p, err := m.Get(name)
			require.NoError(t, err)

			rec := &recorder{}
			stepper := scheduler.NewStepper()
			player, err := p.Build(rec, stepper)
			require.NoError(t, err)

			player.Start(context.Background())
			stepper.Steps(40)
			assert.NotEmpty(t, rec.emissions)
			for _, e := range rec.emissions {
				assert.False(t, e.Location.X != e.Location.X, "NaN location in frame %d", e.FrameIndex)
			}
		})
	}
}
