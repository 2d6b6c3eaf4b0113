package gui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/sphsim/internal/body"
)

func (a *App) drawGrid() {
	half := float32(a.extent)
	step := half / 5
	y := a.center.Y - float32(0.6*a.extent)
	for i := -5; i <= 5; i++ {
		off := float32(i) * step
		rl.DrawLine3D(
			rl.NewVector3(a.center.X-half, y, a.center.Z+off),
			rl.NewVector3(a.center.X+half, y, a.center.Z+off),
			colGrid)
		rl.DrawLine3D(
			rl.NewVector3(a.center.X+off, y, a.center.Z-half),
			rl.NewVector3(a.center.X+off, y, a.center.Z+half),
			colGrid)
	}
}

func (a *App) drawBodies() {
	for _, b := range a.eng.Bodies() {
		radius := float32(0.35 * b.Spacing)
		for i := range b.Pos {
			pos := rl.NewVector3(float32(b.Pos[i][0]), float32(b.Pos[i][1]), float32(b.Pos[i][2]))
			rl.DrawSphere(pos, radius, particleColor(b, i))
		}
	}
}

func particleColor(b *body.Body, i int) rl.Color {
	if b.Rigid {
		return rl.NewColor(220, 220, 220, 255)
	}
	speed := b.Vel[i].Len()
	val := uint8(math.Min(100+speed*60, 255))
	return rl.NewColor(val, val, val, 255)
}

func (a *App) drawHUD() {
	t := a.eng.Time()

	rl.DrawText(a.scene.Name, 20, 20, 20, colBright)
	rl.DrawText(a.status(), 20, 48, 20, a.statusColor())
	rl.DrawText(fmt.Sprintf("t %.4f / %.4f", t.Now, a.scene.EndTime), 20, 76, 20, colText)
	rl.DrawText(fmt.Sprintf("step %d  dt %.2e", t.Step, a.eng.Dt()), 20, 100, 20, colText)

	y := int32(140)
	for _, b := range a.eng.Bodies() {
		kind := "elastic"
		if b.Rigid {
			kind = "rigid"
		}
		rl.DrawText(fmt.Sprintf("%s  %d particles  %s", b.Name, b.Len(), kind), 20, y, 18, colTextDim)
		y += 24
	}

	if a.err != nil {
		rl.DrawText(a.err.Error(), 20, 690, 18, colError)
	} else {
		rl.DrawText("[SPACE] PAUSE  [R] RESET  [W/A/S/D] PAN  [WHEEL] ZOOM  [Q] QUIT", 20, 690, 18, colTextDim)
	}

	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 1200, 20, 20, colTextDim)
}

func (a *App) status() string {
	switch {
	case a.err != nil:
		return "FAILED"
	case a.eng.Done():
		return "DONE"
	case a.running:
		return "RUNNING"
	default:
		return "PAUSED"
	}
}

func (a *App) statusColor() rl.Color {
	if a.err != nil {
		return colError
	}
	return colText
}
