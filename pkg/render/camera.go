// Package render draws animation emissions.
//
// Emissions are collected into a Trail, which keeps every particle for a few
// ticks so motion is visible. Canvas draws a Trail on an ebiten image and
// Terminal draws it on a tcell screen. Both implement animation.Sink.
package render

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gonewx/partigon/pkg/rotation"
)

// Camera projects world coordinates to screen coordinates. The view turns
// Yaw degrees around Y, then Pitch degrees around X, and looks down -Z.
type Camera struct {
	// Zoom is the number of pixels (or cells) per world unit on X.
	Zoom float64
	// AspectY scales Y relative to X. Terminal cells are about twice as tall
	// as they are wide, so terminals use 0.5.
	AspectY float64
	Yaw     float64
	Pitch   float64
}

// NewCamera returns a camera with square pixels.
func NewCamera(zoom, yaw, pitch float64) Camera {
	return Camera{Zoom: zoom, AspectY: 1, Yaw: yaw, Pitch: pitch}
}

// View returns p in view space.
func (c Camera) View(p r3.Vec) r3.Vec {
	p = rotation.AroundY(rotation.Constant(-c.Yaw)).Apply(p, 0)
	return rotation.AroundX(rotation.Constant(c.Pitch)).Apply(p, 0)
}

// Project maps p onto a width x height screen centered on the world origin.
// Screen Y grows downwards. depth grows away from the viewer.
func (c Camera) Project(p r3.Vec, width, height int) (x, y, depth float64) {
	v := c.View(p)
	aspect := c.AspectY
	if aspect == 0 {
		aspect = 1
	}
	x = float64(width)/2 + v.X*c.Zoom
	y = float64(height)/2 - v.Y*c.Zoom*aspect
	return x, y, -v.Z
}
