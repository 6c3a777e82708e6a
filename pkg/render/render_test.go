package render

import (
	"image/color"
	"sync"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gonewx/partigon/pkg/animation"
)

// TestCamera_Project 测试投影
func TestCamera_Project(t *testing.T) {
	tests := []struct {
		name         string
		camera       Camera
		p            r3.Vec
		wantX, wantY float64
		wantDepth    float64
	}{
		{"Origin", NewCamera(10, 0, 0), r3.Vec{}, 50, 40, 0},
		{"X axis", NewCamera(10, 0, 0), r3.Vec{X: 1}, 60, 40, 0},
		{"Y axis goes up", NewCamera(10, 0, 0), r3.Vec{Y: 2}, 50, 20, 0},
		{"Z axis is depth", NewCamera(10, 0, 0), r3.Vec{Z: 1}, 50, 40, -1},
		{"Yaw 90", NewCamera(10, 90, 0), r3.Vec{Z: 1}, 40, 40, 0},
		{"Pitch 90", NewCamera(10, 0, 90), r3.Vec{Z: 1}, 50, 50, 0},
		{"Half height cells", Camera{Zoom: 10, AspectY: 0.5}, r3.Vec{Y: 2}, 50, 30, 0},
		{"Zero aspect means square", Camera{Zoom: 10}, r3.Vec{Y: 1}, 50, 30, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, depth := tt.camera.Project(tt.p, 100, 80)
			assert.InDelta(t, tt.wantX, x, 1e-9)
			assert.InDelta(t, tt.wantY, y, 1e-9)
			assert.InDelta(t, tt.wantDepth, depth, 1e-9)
		})
	}
}

// TestTrail_EmitAndAge 测试粒子的添加和老化
func TestTrail_EmitAndAge(t *testing.T) {
	trail := NewTrail(3)
	trail.Emit(animation.Emission{Location: r3.Vec{X: 1}})
	trail.Emit(animation.Emission{
		Location: r3.Vec{Y: 2},
		Style:    &animation.Style{Color: color.RGBA{R: 255, A: 255}, Size: 2},
	})

	points := trail.Points()
	require.Len(t, points, 2)
	assert.Equal(t, DefaultColor, points[0].Color)
	assert.Equal(t, 1.0, points[0].Size)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, points[1].Color)
	assert.Equal(t, 2.0, points[1].Size)
	assert.Equal(t, 2, trail.Emitted())

	trail.Tick()
	trail.Tick()
	points = trail.Points()
	require.Len(t, points, 2)
	assert.Equal(t, 2, points[0].Age)
	assert.InDelta(t, 1.0/3, trail.Fade(points[0].Age), 1e-9)

	trail.Tick()
	assert.Empty(t, trail.Points())
	assert.Equal(t, 2, trail.Emitted())
}

// TestTrail_Count 测试数量和偏移范围
func TestTrail_Count(t *testing.T) {
	trail := NewTrail(10)
	trail.Emit(animation.Emission{
		Location: r3.Vec{X: 5, Y: 5, Z: 5},
		Count:    50,
		Offset:   r3.Vec{X: 1, Y: -0.5, Z: 0},
	})

	points := trail.Points()
	require.Len(t, points, 50)
	for _, p := range points {
		assert.InDelta(t, 5, p.Pos.X, 1)
		assert.InDelta(t, 5, p.Pos.Y, 0.5)
		assert.Equal(t, 5.0, p.Pos.Z)
	}

	trail.Clear()
	assert.Empty(t, trail.Points())
}

// TestTrail_CountLimit 测试单次发射的数量上限
func TestTrail_CountLimit(t *testing.T) {
	trail := NewTrail(10)
	trail.Emit(animation.Emission{Count: 1 << 30})
	assert.Len(t, trail.Points(), MaxCount)
	assert.Equal(t, 1, trail.Emitted())

	trail.Emit(animation.Emission{Count: MaxCount - 1})
	assert.Len(t, trail.Points(), 2*MaxCount-1)
}

// TestTrail_Lifetime 测试生命周期下限
func TestTrail_Lifetime(t *testing.T) {
	trail := NewTrail(0)
	assert.Equal(t, 1, trail.Lifetime())
	trail.SetLifetime(7)
	assert.Equal(t, 7, trail.Lifetime())
	trail.SetLifetime(-2)
	assert.Equal(t, 1, trail.Lifetime())
}

// TestTrail_Concurrent 测试并发发射和绘制
func TestTrail_Concurrent(t *testing.T) {
	trail := NewTrail(5)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				trail.Emit(animation.Emission{})
				_ = trail.Points()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, trail.Emitted())
}

// TestFaded 测试颜色淡出
func TestFaded(t *testing.T) {
	c := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	assert.Equal(t, c, faded(c, 1))
	assert.Equal(t, color.RGBA{R: 100, G: 50, B: 25, A: 127}, faded(c, 0.5))
	assert.Equal(t, color.RGBA{}, faded(c, -1))
	assert.Equal(t, c, faded(c, 2))
}

// TestTerminal_Draw 测试终端绘制
func TestTerminal_Draw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(40, 20)

	term := NewTerminal(screen, NewCamera(4, 0, 0), 6)
	assert.Equal(t, 0.5, term.Camera.AspectY)

	term.Emit(animation.Emission{Location: r3.Vec{X: 1, Y: 2}})
	term.Emit(animation.Emission{Location: r3.Vec{X: 100}}) // off screen
	term.Draw()

	// x = 20 + 1*4, y = 10 - 2*4*0.5
	mainc, _, _, _ := screen.GetContent(24, 6)
	assert.Equal(t, '●', mainc)

	term.Tick()
	term.Tick()
	term.Tick()
	term.Tick()
	term.Draw()
	mainc, _, _, _ = screen.GetContent(24, 6)
	assert.Equal(t, '·', mainc)
}

// TestGlyphFor 测试按年龄选择字符
func TestGlyphFor(t *testing.T) {
	tests := []struct {
		age      int
		lifetime int
		want     rune
	}{
		{0, 6, '●'},
		{1, 6, '●'},
		{2, 6, '•'},
		{4, 6, '·'},
		{9, 6, '·'},
		{0, 0, '●'},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, glyphFor(tt.age, tt.lifetime), "age %d of %d", tt.age, tt.lifetime)
	}
}

// TestCanvas_Draw 测试画布绘制不会出错
func TestCanvas_Draw(t *testing.T) {
	canvas := NewCanvas(NewCamera(40, 30, 20), 4)
	canvas.Emit(animation.Emission{Location: r3.Vec{X: 1, Y: 1, Z: 1}})
	canvas.Emit(animation.Emission{Location: r3.Vec{X: -1}, Count: 3, Offset: r3.Vec{X: 0.2}})
	assert.Len(t, canvas.Points(), 4)

	screen := ebiten.NewImage(320, 240)
	canvas.Draw(screen) // Should not panic
	canvas.ShowAxes = false
	canvas.Draw(screen)
}
