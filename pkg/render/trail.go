package render

import (
	"image/color"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gonewx/partigon/internal/particle"
	"github.com/gonewx/partigon/pkg/animation"
)

// DefaultColor is used for emissions without a Style.
var DefaultColor = color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}

// MaxCount caps the particles shown for a single emission.
const MaxCount = 1000

// Point is one visible particle.
type Point struct {
	Pos   r3.Vec
	Color color.RGBA
	Size  float64
	Age   int
}

// Trail keeps emitted particles alive for Lifetime ticks. It is safe for
// concurrent use, so a Ticker driven animation may emit while a UI
// goroutine draws.
type Trail struct {
	mu       sync.Mutex
	lifetime int
	points   []Point
	emitted  int
}

var _ animation.Sink = (*Trail)(nil)

// NewTrail creates a Trail. A lifetime below 1 keeps particles for one tick.
func NewTrail(lifetime int) *Trail {
	return &Trail{lifetime: max(lifetime, 1)}
}

// SetLifetime changes how many ticks particles stay visible.
func (t *Trail) SetLifetime(lifetime int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lifetime = max(lifetime, 1)
}

// Lifetime returns the particle lifetime in ticks.
func (t *Trail) Lifetime() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lifetime
}

// Emit adds the particles of e. A count of 0 or less shows one particle at
// the location. A positive count shows that many particles spread randomly
// within the offset around the location, at most MaxCount of them.
func (t *Trail) Emit(e animation.Emission) {
	clr, size := DefaultColor, 1.0
	if e.Style != nil {
		clr = e.Style.Color
		if e.Style.Size > 0 {
			size = e.Style.Size
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitted++
	if e.Count <= 0 {
		t.points = append(t.points, Point{Pos: e.Location, Color: clr, Size: size})
		return
	}
	spread := r3.Vec{X: math.Abs(e.Offset.X), Y: math.Abs(e.Offset.Y), Z: math.Abs(e.Offset.Z)}
	for i := 0; i < min(e.Count, MaxCount); i++ {
		pos := r3.Vec{
			X: e.Location.X + particle.RandomInRange(-spread.X, spread.X),
			Y: e.Location.Y + particle.RandomInRange(-spread.Y, spread.Y),
			Z: e.Location.Z + particle.RandomInRange(-spread.Z, spread.Z),
		}
		t.points = append(t.points, Point{Pos: pos, Color: clr, Size: size})
	}
}

// Tick ages every particle by one tick and drops expired ones.
func (t *Trail) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	live := t.points[:0]
	for _, p := range t.points {
		p.Age++
		if p.Age < t.lifetime {
			live = append(live, p)
		}
	}
	clear(t.points[len(live):])
	t.points = live
}

// Points returns a copy of the visible particles, oldest first.
func (t *Trail) Points() []Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Point(nil), t.points...)
}

// Emitted returns the number of emissions received so far.
func (t *Trail) Emitted() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.emitted
}

// Clear removes every particle.
func (t *Trail) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.points)
	t.points = t.points[:0]
}

// Fade returns how visible a particle of the given age is, from 1 for a
// fresh particle down towards 0.
func (t *Trail) Fade(age int) float64 {
	lifetime := t.Lifetime()
	return 1 - float64(age)/float64(lifetime)
}

// faded scales the alpha of c by f.
func faded(c color.RGBA, f float64) color.RGBA {
	f = min(max(f, 0), 1)
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: uint8(float64(c.A) * f),
	}
}
