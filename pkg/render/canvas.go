package render

import (
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"gonum.org/v1/gonum/spatial/r3"
)

// 画布颜色
var (
	BackgroundColor = color.RGBA{R: 25, G: 25, B: 38, A: 255}
	axisColors      = [3]color.RGBA{
		{R: 200, G: 60, B: 60, A: 255},
		{R: 60, G: 200, B: 60, A: 255},
		{R: 60, G: 100, B: 220, A: 255},
	}
)

// Canvas draws a Trail on an ebiten image.
type Canvas struct {
	*Trail
	Camera   Camera
	ShowAxes bool
}

// NewCanvas creates a Canvas with its own Trail.
func NewCanvas(camera Camera, lifetime int) *Canvas {
	return &Canvas{Trail: NewTrail(lifetime), Camera: camera, ShowAxes: true}
}

// Draw renders every visible particle, farthest first.
func (c *Canvas) Draw(screen *ebiten.Image) {
	screen.Fill(BackgroundColor)
	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if c.ShowAxes {
		c.drawAxes(screen, w, h)
	}

	type projected struct {
		x, y, depth float64
		p           Point
	}
	points := c.Points()
	list := make([]projected, 0, len(points))
	for _, p := range points {
		x, y, depth := c.Camera.Project(p.Pos, w, h)
		list = append(list, projected{x, y, depth, p})
	}
	// 画家算法：远处的先画
	sort.SliceStable(list, func(i, j int) bool { return list[i].depth > list[j].depth })

	for _, pr := range list {
		size := float32(max(pr.p.Size*c.Camera.Zoom/10, 2))
		clr := faded(pr.p.Color, c.Fade(pr.p.Age))
		vector.DrawFilledRect(screen, float32(pr.x)-size/2, float32(pr.y)-size/2, size, size, clr, true)
	}
}

// drawAxes draws the unit X, Y and Z axes from the origin.
func (c *Canvas) drawAxes(screen *ebiten.Image, w, h int) {
	ox, oy, _ := c.Camera.Project(r3.Vec{}, w, h)
	for i, axis := range []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
		x, y, _ := c.Camera.Project(axis, w, h)
		vector.StrokeLine(screen, float32(ox), float32(oy), float32(x), float32(y), 1, axisColors[i], true)
	}
}
