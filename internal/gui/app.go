// Package gui is the raylib viewer: particles drawn as spheres colored
// by speed, with a pannable camera and pause/reset controls.
package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/engine"
)

var (
	colBg      = rl.NewColor(10, 10, 10, 255)
	colText    = rl.NewColor(140, 140, 140, 255)
	colTextDim = rl.NewColor(60, 60, 60, 255)
	colBright  = rl.NewColor(255, 255, 255, 255)
	colError   = rl.NewColor(220, 70, 70, 255)
	colGrid    = rl.NewColor(30, 30, 30, 255)
)

type App struct {
	scene *config.Scene
	eng   *engine.Engine
	err   error

	camera rl.Camera3D
	center rl.Vector3
	extent float64

	running bool
	quit    bool
}

// Run opens the window and drives the scene until the window closes.
func Run(scene *config.Scene) error {
	app, err := newApp(scene)
	if err != nil {
		return err
	}

	rl.InitWindow(1280, 720, "sphsim")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)

	for !rl.WindowShouldClose() && !app.quit {
		app.update()
		app.draw()
	}
	return nil
}

func newApp(scene *config.Scene) (*App, error) {
	a := &App{scene: scene}
	if err := a.load(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) load() error {
	eng, err := engine.FromScene(a.scene.Clone())
	if err != nil {
		return err
	}
	a.eng = eng
	a.err = nil
	a.running = true
	a.frame()
	return nil
}

// frame fits the camera to the scene extent.
func (a *App) frame() {
	minP := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxP := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, b := range a.eng.Bodies() {
		for _, p := range b.Pos {
			for k := 0; k < 3; k++ {
				minP[k] = math.Min(minP[k], p[k])
				maxP[k] = math.Max(maxP[k], p[k])
			}
		}
	}
	a.extent = 0
	for k := 0; k < 3; k++ {
		a.extent = math.Max(a.extent, maxP[k]-minP[k])
	}
	if a.extent == 0 {
		a.extent = 1
	}
	a.center = rl.NewVector3(
		float32((minP[0]+maxP[0])/2),
		float32((minP[1]+maxP[1])/2),
		float32((minP[2]+maxP[2])/2))

	dist := float32(2.2 * a.extent)
	a.camera = rl.NewCamera3D(
		rl.NewVector3(a.center.X, a.center.Y+0.3*dist, a.center.Z+dist),
		a.center,
		rl.NewVector3(0, 1, 0),
		45.0,
		rl.CameraPerspective,
	)
}

func (a *App) update() {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		a.quit = true
		return
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.running = !a.running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.load(); err != nil {
			a.err = err
		}
	}

	a.moveCamera()

	if a.running && a.err == nil && !a.eng.Done() {
		if err := a.eng.Advance(a.scene.OutputInterval); err != nil {
			a.err = err
		}
	}
}

func (a *App) moveCamera() {
	pan := float32(0.01 * a.extent)
	if rl.IsKeyDown(rl.KeyW) {
		a.camera.Position.Y += pan
		a.camera.Target.Y += pan
	}
	if rl.IsKeyDown(rl.KeyS) {
		a.camera.Position.Y -= pan
		a.camera.Target.Y -= pan
	}
	if rl.IsKeyDown(rl.KeyA) {
		a.camera.Position.X -= pan
		a.camera.Target.X -= pan
	}
	if rl.IsKeyDown(rl.KeyD) {
		a.camera.Position.X += pan
		a.camera.Target.X += pan
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		a.camera.Position.X -= delta.X * pan * 0.4
		a.camera.Target.X -= delta.X * pan * 0.4
		a.camera.Position.Y += delta.Y * pan * 0.4
		a.camera.Target.Y += delta.Y * pan * 0.4
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		diff := rl.Vector3Subtract(a.camera.Target, a.camera.Position)
		dist := rl.Vector3Length(diff)
		step := wheel * float32(0.08*a.extent)
		if dist-step > float32(0.2*a.extent) || step < 0 {
			dir := rl.Vector3Normalize(diff)
			a.camera.Position = rl.Vector3Add(a.camera.Position, rl.Vector3Scale(dir, step))
		}
	}
}

func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(colBg)

	rl.BeginMode3D(a.camera)
	a.drawGrid()
	a.drawBodies()
	rl.EndMode3D()

	a.drawHUD()
	rl.EndDrawing()
}
