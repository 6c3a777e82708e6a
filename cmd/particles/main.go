// Package main provides a terminal preset viewer for checking animations
// without a window.
//
// Usage:
//
//	go run ./cmd/particles [flags]
//
// Flags:
//
//	--data <dir>          Directory containing data/presets (default: current directory)
//	--file <path>         Load presets from a YAML file instead of data/presets
//	--filter <keyword>    Initial filter by name (e.g., --filter=orbit)
//	--preset <name>       Start with specific preset (e.g., --preset=spiral)
//	--auto-play           Automatically cycle through presets
//	--verbose             Enable verbose logging to stderr (redirect it, e.g. 2>viewer.log)
//
// Controls:
//
//	Left/Right Arrow  - Switch to previous/next preset
//	Page Up/Down      - Jump 10 presets forward/backward
//	Home/End          - Jump to first/last preset
//	Space             - Restart preset
//	P                 - Toggle pause
//	R                 - Clear all particles
//	+/-               - Zoom in/out
//	[ / ]             - Turn view by 15°
//	A                 - Toggle axes
//	/                 - Enter search mode
//	Q/Escape          - Quit
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gonewx/partigon/pkg/app"
	"github.com/gonewx/partigon/pkg/config"
	"github.com/gonewx/partigon/pkg/embedded"
	"github.com/gonewx/partigon/pkg/render"
	"github.com/gonewx/partigon/pkg/scheduler"
	"github.com/gonewx/partigon/pkg/settings"
	"github.com/gonewx/partigon/pkg/ticks"
)

const (
	// 终端单元格比像素大得多，缩放按比例换算
	cellScale  = 0.25
	yawStep    = 15.0
	zoomFactor = 1.25
)

var (
	dataFlag     = flag.String("data", ".", "Directory containing data/presets")
	fileFlag     = flag.String("file", "", "Preset YAML file on disk")
	filterFlag   = flag.String("filter", "", "Initial filter by name keyword")
	presetFlag   = flag.String("preset", "", "Start with specific preset name")
	autoPlayFlag = flag.Bool("auto-play", false, "Auto cycle through presets")
	verboseFlag  = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

// viewer plays presets on a tcell screen
type viewer struct {
	screen   tcell.Screen
	term     *render.Terminal
	catalog  *app.Catalog
	session  *app.Session
	settings *settings.Manager

	autoPlay   bool
	lastSwitch time.Time
	searchMode bool
	status     string
}

// newViewer creates a viewer and starts the selected preset. A nil scheduler
// plays every preset on its own real time ticker.
func newViewer(screen tcell.Screen, presets *config.PresetManager, sm *settings.Manager, s scheduler.Scheduler, filter, start string, autoPlay bool) *viewer {
	cfg := sm.Get()
	if start == "" {
		start = cfg.LastPreset
	}
	v := &viewer{
		screen:   screen,
		term:     render.NewTerminal(screen, render.NewCamera(cfg.Zoom*cellScale, cfg.Yaw, app.DefaultPitch), cfg.Trail),
		catalog:  app.NewCatalog(presets.Names(), filter, start),
		settings: sm,
		autoPlay: autoPlay,
	}
	v.session = app.NewSession(presets, v.term, s)
	v.playCurrent()
	return v
}

// playCurrent starts the selected preset from its first frame
func (v *viewer) playCurrent() {
	v.lastSwitch = time.Now()
	name, ok := v.catalog.Current()
	if !ok {
		v.status = "No presets match current filter"
		return
	}
	v.term.Clear()
	if err := v.session.Play(name); err != nil {
		log.Printf("[Viewer] Failed to play preset %s: %v", name, err)
		v.status = fmt.Sprintf("Error: %v", err)
		return
	}
	v.settings.Update(func(s *settings.ViewerSettings) { s.LastPreset = name })
	v.status = fmt.Sprintf("Playing: %s", name)
}

// handleInput returns false when the viewer should quit
func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if v.searchMode {
			v.handleSearchKey(ev)
			return true
		}
		return v.handleKey(ev)
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) handleSearchKey(ev *tcell.EventKey) {
	query := v.catalog.Query()
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyEnter:
		v.searchMode = false
		v.status = fmt.Sprintf("Search: %q (%d results)", query, v.catalog.Len())
		v.playCurrent()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(query) > 0 {
			v.catalog.SetQuery(query[:len(query)-1])
		}
	case tcell.KeyRune:
		v.catalog.SetQuery(query + string(ev.Rune()))
	}
}

func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.navigate(v.catalog.Prev)
	case tcell.KeyRight:
		v.navigate(v.catalog.Next)
	case tcell.KeyPgUp:
		v.navigate(func() { v.catalog.Jump(-10) })
	case tcell.KeyPgDn:
		v.navigate(func() { v.catalog.Jump(10) })
	case tcell.KeyHome:
		v.navigate(v.catalog.First)
	case tcell.KeyEnd:
		v.navigate(v.catalog.Last)
	case tcell.KeyRune:
		return v.handleRune(ev.Rune())
	}
	return true
}

func (v *viewer) handleRune(r rune) bool {
	switch r {
	case 'q', 'Q':
		return false
	case ' ':
		v.playCurrent()
	case 'p', 'P':
		paused, err := v.session.TogglePause()
		switch {
		case err != nil:
			v.status = fmt.Sprintf("Error: %v", err)
		case paused:
			v.status = "PAUSED - Press P to resume"
		default:
			v.status = "Resumed"
		}
	case 'r', 'R':
		v.term.Clear()
		v.status = "Cleared all particles"
	case '/':
		v.searchMode = true
		v.status = "Search mode: Type to filter presets..."
	case '+', '=':
		v.updateSettings(func(s *settings.ViewerSettings) { s.Zoom *= zoomFactor })
	case '-':
		v.updateSettings(func(s *settings.ViewerSettings) { s.Zoom /= zoomFactor })
	case '[':
		v.updateSettings(func(s *settings.ViewerSettings) { s.Yaw -= yawStep })
	case ']':
		v.updateSettings(func(s *settings.ViewerSettings) { s.Yaw += yawStep })
	case 'a', 'A':
		v.updateSettings(func(s *settings.ViewerSettings) { s.ShowAxes = !s.ShowAxes })
	}
	return true
}

func (v *viewer) navigate(move func()) {
	move()
	v.playCurrent()
}

func (v *viewer) updateSettings(fn func(s *settings.ViewerSettings)) {
	v.settings.Update(fn)
	s := v.settings.Get()
	v.term.Camera.Zoom = s.Zoom * cellScale
	v.term.Camera.Yaw = s.Yaw
	v.status = fmt.Sprintf("Zoom %.0f  Yaw %.0f°", s.Zoom, s.Yaw)
}

// tick ages the trail, loops finished presets and handles auto-play
func (v *viewer) tick() {
	v.term.Tick()
	if v.session.Finished() {
		if err := v.session.Restart(); err != nil {
			v.status = fmt.Sprintf("Error: %v", err)
		}
	}
	if v.autoPlay && time.Since(v.lastSwitch) > app.AutoPlayDelay {
		v.catalog.Next()
		v.playCurrent()
	}
}

func (v *viewer) draw() {
	v.term.Draw()

	if v.settings.Get().ShowAxes {
		v.drawOrigin()
	}

	title := "No presets"
	if name, ok := v.catalog.Current(); ok {
		title = fmt.Sprintf("Preset %d/%d: %s", v.catalog.Index()+1, v.catalog.Len(), name)
	}
	v.drawText(0, 0, tcell.StyleDefault.Bold(true), title)
	v.drawText(0, 1, tcell.StyleDefault, fmt.Sprintf("Particles: %d  Emissions: %d", len(v.term.Points()), v.term.Emitted()))
	if v.searchMode {
		v.drawText(0, 2, tcell.StyleDefault.Reverse(true), fmt.Sprintf("SEARCH: %s_", v.catalog.Query()))
	} else {
		v.drawText(0, 2, tcell.StyleDefault.Dim(true), v.status)
	}

	_, h := v.screen.Size()
	v.drawText(0, h-1, tcell.StyleDefault.Dim(true), "<-/-> preset  space restart  p pause  r clear  +/- zoom  [/] yaw  / search  q quit")
	v.screen.Show()
}

// drawOrigin marks the world origin
func (v *viewer) drawOrigin() {
	w, h := v.screen.Size()
	x, y, _ := v.term.Camera.Project(r3.Vec{}, w, h)
	cx, cy := int(x), int(y)
	if cx < 0 || cy < 0 || cx >= w || cy >= h {
		return
	}
	if r, _, _, _ := v.screen.GetContent(cx, cy); r == ' ' {
		v.screen.SetContent(cx, cy, '+', nil, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}
}

func (v *viewer) drawText(x, y int, style tcell.Style, text string) {
	for _, r := range text {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (v *viewer) run() {
	ticker := time.NewTicker(ticks.Period)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	v.draw()
	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return
			}
			v.draw()
		case <-ticker.C:
			v.tick()
			v.draw()
		}
	}
}

func (v *viewer) close() error {
	v.session.Close()
	return v.settings.Save()
}

func main() {
	flag.Parse()

	// 默认静音运行；日志会破坏终端画面，需要时用 --verbose 并重定向 stderr
	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	embedded.Init(os.DirFS(*dataFlag))
	presets, err := app.LoadPresets(*fileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load presets: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}

	v := newViewer(screen, presets, settings.Open(app.AppName), nil, *filterFlag, *presetFlag, *autoPlayFlag)
	v.run()
	screen.Fini()

	if err := v.close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save settings: %v\n", err)
	}
	log.Println("[Viewer] Terminal viewer closed")
}
