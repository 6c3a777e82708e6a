package render

import (
	"sort"

	"github.com/gdamore/tcell/v2"
)

// glyphs by age, fresh to old
var glyphs = []rune{'●', '•', '·'}

// Terminal draws a Trail on a tcell screen.
type Terminal struct {
	*Trail
	Camera Camera
	Screen tcell.Screen
}

// NewTerminal creates a Terminal with its own Trail. The camera is switched
// to half height cells.
func NewTerminal(screen tcell.Screen, camera Camera, lifetime int) *Terminal {
	camera.AspectY = 0.5
	return &Terminal{Trail: NewTrail(lifetime), Camera: camera, Screen: screen}
}

// Draw renders every visible particle into cells, nearest particle on top.
// It does not call Show.
func (t *Terminal) Draw() {
	w, h := t.Screen.Size()
	t.Screen.Clear()

	points := t.Points()
	type cell struct {
		x, y  int
		depth float64
		p     Point
	}
	cells := make([]cell, 0, len(points))
	for _, p := range points {
		x, y, depth := t.Camera.Project(p.Pos, w, h)
		cx, cy := int(x), int(y)
		if cx < 0 || cy < 0 || cx >= w || cy >= h {
			continue
		}
		cells = append(cells, cell{cx, cy, depth, p})
	}
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].depth > cells[j].depth })

	lifetime := t.Lifetime()
	for _, c := range cells {
		clr := faded(c.p.Color, t.Fade(c.p.Age))
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(clr.R), int32(clr.G), int32(clr.B)))
		t.Screen.SetContent(c.x, c.y, glyphFor(c.p.Age, lifetime), nil, style)
	}
}

func glyphFor(age, lifetime int) rune {
	i := age * len(glyphs) / max(lifetime, 1)
	return glyphs[min(i, len(glyphs)-1)]
}
