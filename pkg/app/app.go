// Package app 提供预设查看器的核心包装器
//
// 桌面端 main.go 通过 NewApp() 创建 ebiten 查看器，cmd/particles 终端查看器
// 复用同一套 Catalog、Session 和预设加载逻辑。
package app

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gonewx/partigon/pkg/config"
	"github.com/gonewx/partigon/pkg/render"
	"github.com/gonewx/partigon/pkg/scheduler"
	"github.com/gonewx/partigon/pkg/settings"
	"github.com/gonewx/partigon/pkg/ticks"
)

// 窗口尺寸
const (
	ScreenWidth  = 960
	ScreenHeight = 720
)

const (
	// AppName gdata 存储使用的应用名
	AppName = "partigon"
	// DefaultPitch 视角绕 X 轴的角度（度）
	DefaultPitch = 20.0
	// AutoPlayDelay 自动播放模式下切换预设的间隔
	AutoPlayDelay = 5 * time.Second

	updatesPerTick = 60 / ticks.PerSecond
	yawStep        = 15.0
	zoomFactor     = 1.25
	trailStep      = 5
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Preset 启动时选中的预设，为空则使用上次播放的预设
	Preset string
	// Filter 初始过滤关键字
	Filter string
	// PresetFile 磁盘上的预设文件，为空则使用嵌入的预设目录
	PresetFile string
	// AutoPlay 每隔 AutoPlayDelay 自动切换到下一个预设
	AutoPlay bool
	// Settings 设置管理器，为 nil 时打开 AppName 的 gdata 存储
	Settings *settings.Manager
}

// LoadPresets 加载磁盘上的预设文件，file 为空时加载嵌入的预设目录
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func LoadPresets(file string) (*config.PresetManager, error) {
	if file == "" {
		return config.NewPresetManager(config.DefaultPresetDir)
	}
	parsed, err := config.LoadPresetFile(file)
	if err != nil {
		return nil, err
	}
	return config.NewPresetManagerFromFile(parsed)
}

// App 是预设查看器的核心包装器，实现 ebiten.Game 接口
//
// 动画由 Stepper 驱动：每 updatesPerTick 次 Update 推进一个 tick，
// 所以 60 TPS 下动画按每秒 20 tick 播放，且全部在 ebiten 的更新线程内完成。
type App struct {
	catalog  *Catalog
	session  *Session
	stepper  *scheduler.Stepper
	canvas   *render.Canvas
	settings *settings.Manager

	updates       int
	searchMode    bool
	autoPlay      bool
	lastSwitch    time.Time
	statusMessage string
}

// NewApp 创建并初始化查看器
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	presets, err := LoadPresets(cfg.PresetFile)
	if err != nil {
		return nil, fmt.Errorf("预设加载失败: %w", err)
	}
	if presets.Len() == 0 {
		return nil, fmt.Errorf("no presets found")
	}

	sm := cfg.Settings
	if sm == nil {
		sm = settings.Open(AppName)
	}
	s := sm.Get()

	start := cfg.Preset
	if start == "" {
		start = s.LastPreset
	}

	a := &App{
		catalog:    NewCatalog(presets.Names(), cfg.Filter, start),
		stepper:    scheduler.NewStepper(),
		canvas:     render.NewCanvas(render.NewCamera(s.Zoom, s.Yaw, DefaultPitch), s.Trail),
		settings:   sm,
		autoPlay:   cfg.AutoPlay,
		lastSwitch: time.Now(),
	}
	a.session = NewSession(presets, a.canvas, a.stepper)
	a.applySettings()

	log.Printf("[App] Viewer initialized: %d presets, %d after filter", a.catalog.Total(), a.catalog.Len())
	a.playCurrent()
	return a, nil
}

// Update 更新查看器逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if a.searchMode {
		a.updateSearchMode()
	} else if err := a.updateNormalMode(); err != nil {
		return err
	}

	a.updates++
	if a.updates%updatesPerTick == 0 {
		a.Step()
	}

	if a.autoPlay && time.Since(a.lastSwitch) > AutoPlayDelay {
		a.catalog.Next()
		a.playCurrent()
	}
	return nil
}

// Step 推进一个动画 tick：先让已有粒子老化，再绘制新的一帧
// 预设自然结束后从头循环播放
func (a *App) Step() {
	a.canvas.Tick()
	a.stepper.Step()
	if a.session.Finished() {
		if err := a.session.Restart(); err != nil {
			a.statusMessage = fmt.Sprintf("Error: %v", err)
		}
	}
}

// updateSearchMode handles input when in search mode
func (a *App) updateSearchMode() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.searchMode = false
		a.statusMessage = fmt.Sprintf("Search: %q (%d results)", a.catalog.Query(), a.catalog.Len())
		a.playCurrent()
		return
	}

	query := a.catalog.Query()
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if len(query) > 0 {
			a.catalog.SetQuery(query[:len(query)-1])
		}
		return
	}

	runes := ebiten.AppendInputChars(nil)
	if len(runes) == 0 {
		return
	}
	for _, r := range runes {
		if isSearchRune(r) {
			query += string(r)
		}
	}
	a.catalog.SetQuery(query)
}

// isSearchRune accepts alphanumeric and some special characters
func isSearchRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
}

// updateNormalMode handles input when in normal mode
func (a *App) updateNormalMode() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF) || inpututil.IsKeyJustPressed(ebiten.KeySlash) {
		a.searchMode = true
		a.statusMessage = "Search mode: Type to filter presets..."
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.togglePause()
		return nil
	}

	// Navigation
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		a.navigate(a.catalog.Prev)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		a.navigate(a.catalog.Next)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		a.navigate(func() { a.catalog.Jump(-10) })
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		a.navigate(func() { a.catalog.Jump(10) })
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		a.navigate(a.catalog.First)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		a.navigate(a.catalog.Last)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		a.playCurrent()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		a.canvas.Clear()
		a.statusMessage = "Cleared all particles"
	}

	// View
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		a.updateSettings(func(s *settings.ViewerSettings) { s.Zoom *= zoomFactor })
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		a.updateSettings(func(s *settings.ViewerSettings) { s.Zoom /= zoomFactor })
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		a.updateSettings(func(s *settings.ViewerSettings) { s.Yaw -= yawStep })
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		a.updateSettings(func(s *settings.ViewerSettings) { s.Yaw += yawStep })
	case inpututil.IsKeyJustPressed(ebiten.KeyComma):
		a.updateSettings(func(s *settings.ViewerSettings) { s.Trail -= trailStep })
	case inpututil.IsKeyJustPressed(ebiten.KeyPeriod):
		a.updateSettings(func(s *settings.ViewerSettings) { s.Trail += trailStep })
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		a.updateSettings(func(s *settings.ViewerSettings) { s.ShowAxes = !s.ShowAxes })
	}
	return nil
}

// navigate moves the selection and plays the new preset
func (a *App) navigate(move func()) {
	move()
	a.playCurrent()
}

// playCurrent starts the selected preset from its first frame
func (a *App) playCurrent() {
	a.lastSwitch = time.Now()
	name, ok := a.catalog.Current()
	if !ok {
		a.statusMessage = "No presets to play"
		return
	}
	a.canvas.Clear()
	if err := a.session.Play(name); err != nil {
		log.Printf("[App] Failed to play preset %s: %v", name, err)
		a.statusMessage = fmt.Sprintf("Error: %v", err)
		return
	}
	a.settings.Update(func(s *settings.ViewerSettings) { s.LastPreset = name })
	a.statusMessage = fmt.Sprintf("Playing: %s", name)
}

func (a *App) togglePause() {
	paused, err := a.session.TogglePause()
	switch {
	case err != nil:
		a.statusMessage = fmt.Sprintf("Error: %v", err)
	case paused:
		a.statusMessage = "PAUSED - Press P to resume"
	default:
		a.statusMessage = "Resumed"
	}
}

func (a *App) updateSettings(fn func(s *settings.ViewerSettings)) {
	a.settings.Update(fn)
	a.applySettings()
	s := a.settings.Get()
	a.statusMessage = fmt.Sprintf("Zoom %.0f  Yaw %.0f°  Trail %d", s.Zoom, s.Yaw, s.Trail)
}

// applySettings copies the viewer settings to the canvas
func (a *App) applySettings() {
	s := a.settings.Get()
	a.canvas.Camera.Zoom = s.Zoom
	a.canvas.Camera.Yaw = s.Yaw
	a.canvas.SetLifetime(s.Trail)
	a.canvas.ShowAxes = s.ShowAxes
}

// Draw 绘制查看器画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.canvas.Draw(screen)
	a.drawUI(screen)
}

// drawUI draws the overlay UI with preset info and controls
func (a *App) drawUI(screen *ebiten.Image) {
	name, ok := a.catalog.Current()
	if !ok {
		ebitenutil.DebugPrintAt(screen, "No presets match current filter", 10, 10)
	} else {
		title := fmt.Sprintf("Partigon Viewer - Preset %d/%d: %s", a.catalog.Index()+1, a.catalog.Len(), name)
		ebitenutil.DebugPrintAt(screen, title, 10, 10)
	}

	if a.catalog.Query() != "" {
		filter := fmt.Sprintf("Filter: %q (%d/%d presets)", a.catalog.Query(), a.catalog.Len(), a.catalog.Total())
		ebitenutil.DebugPrintAt(screen, filter, 10, 30)
	}

	info := fmt.Sprintf("Particles: %d  Emissions: %d", len(a.canvas.Points()), a.canvas.Emitted())
	ebitenutil.DebugPrintAt(screen, info, 10, 50)

	if a.searchMode {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("SEARCH: %s_", a.catalog.Query()), 10, 70)
		ebitenutil.DebugPrintAt(screen, "(Type to filter, Backspace to delete, Enter/Esc to exit)", 10, 90)
	} else if a.statusMessage != "" {
		ebitenutil.DebugPrintAt(screen, a.statusMessage, 10, 70)
	}

	controls := []string{
		"Navigation: <-/-> = Prev/Next  PgUp/PgDn = Jump 10  Home/End = First/Last  F or / = Search",
		"Actions:    Space = Restart  P = Pause  R = Clear  Q = Quit",
		"View:       +/- = Zoom  [/] = Yaw  ,/. = Trail  A = Axes",
	}
	y := ScreenHeight - len(controls)*20 - 10
	for i, line := range controls {
		ebitenutil.DebugPrintAt(screen, line, 10, y+i*20)
	}

	if a.session.Paused() {
		ebitenutil.DebugPrintAt(screen, "PAUSED (Press P to resume)", ScreenWidth-220, 10)
	} else if a.autoPlay {
		ebitenutil.DebugPrintAt(screen, "AUTO-PLAY MODE", ScreenWidth-140, 10)
	}
}

// Layout 返回查看器的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Close 停止播放并保存设置
func (a *App) Close() error {
	a.session.Close()
	return a.settings.Save()
}

// Session 返回当前播放会话
func (a *App) Session() *Session {
	return a.session
}

// Canvas 返回画布
func (a *App) Canvas() *render.Canvas {
	return a.canvas
}
