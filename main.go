// Package main is the desktop preset viewer.
//
// Usage:
//
//	go run . [flags]
//
// Flags:
//
//	--preset <name>     Start with a specific preset (e.g., --preset=spiral)
//	--filter <keyword>  Initial filter by name (e.g., --filter=orbit)
//	--file <path>       Load presets from a YAML file instead of the bundled ones
//	--auto-play         Automatically cycle through presets
//	--verbose           Enable verbose logging
package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/partigon/pkg/app"
	"github.com/gonewx/partigon/pkg/embedded"
)

var (
	presetFlag   = flag.String("preset", "", "Start with specific preset name")
	filterFlag   = flag.String("filter", "", "Initial filter by name keyword")
	fileFlag     = flag.String("file", "", "Preset YAML file on disk (default: bundled presets)")
	autoPlayFlag = flag.Bool("auto-play", false, "Auto cycle through presets")
	verboseFlag  = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源
	embedded.Init(dataFS)

	viewer, err := app.NewApp(app.Config{
		Verbose:    *verboseFlag,
		Preset:     *presetFlag,
		Filter:     *filterFlag,
		PresetFile: *fileFlag,
		AutoPlay:   *autoPlayFlag,
	})
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("Failed to initialize viewer: %v", err)
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Partigon Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(viewer)
	if err := viewer.Close(); err != nil {
		log.Printf("[Main] Failed to save settings: %v", err)
	}
	if runErr != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(runErr)
	}
	log.Println("[Main] Viewer closed")
}
