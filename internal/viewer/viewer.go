// Package viewer implements the render loop that drives the mesh viewer:
// a loading phase that shows parse progress, then camera-driven rendering.
package viewer

import (
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/splatworks/splatview/internal/config"
	"github.com/splatworks/splatview/internal/engine/camera"
	"github.com/splatworks/splatview/internal/engine/input"
	"github.com/splatworks/splatview/internal/engine/mesh"
	"github.com/splatworks/splatview/internal/engine/renderer"
	"github.com/splatworks/splatview/internal/engine/window"
	"github.com/splatworks/splatview/internal/logger"
	"github.com/splatworks/splatview/pkg/formats"
	"github.com/splatworks/splatview/pkg/math"
)

// phase is the render loop state. Transitions: loading -> ready on
// successful upload, loading -> failed on a fatal parse error, any -> done
// on the exit signal.
type phase int

const (
	phaseLoading phase = iota
	phaseReady
	phaseFailed
	phaseDone
)

// parseResult carries the one-time mesh handoff from the parsing goroutine
// to the render goroutine.
type parseResult struct {
	mesh *formats.Mesh
	err  error
}

// Viewer owns the window, renderer, camera and the loop over them.
type Viewer struct {
	cfg *config.Config

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	cam      *camera.FlyCamera

	// Fixed per-mesh orientation correction, composed into the model
	// transform. Not part of the dynamic camera state.
	model math.Mat4

	buffer *mesh.Buffer

	phase    phase
	progress *formats.Progress
	result   chan parseResult
	loadErr  error
}

// New creates the viewer: window with GL context, renderer, input handler
// and camera. Must run on the main goroutine (the GL context binds to it).
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:      cfg,
		phase:    phaseLoading,
		progress: formats.NewProgress(),
		result:   make(chan parseResult, 1),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "splatview - loading",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	v.renderer, err = renderer.New(renderer.Config{
		Width:     cfg.Graphics.Width,
		Height:    cfg.Graphics.Height,
		FOV:       cfg.Graphics.FOV,
		NearPlane: cfg.Graphics.NearPlane,
		FarPlane:  cfg.Graphics.FarPlane,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	v.input = input.New()

	pos := cfg.Camera.Position
	v.cam = camera.New(
		math.Vec3{X: pos[0], Y: pos[1], Z: pos[2]},
		cfg.Camera.Yaw, cfg.Camera.Pitch,
		cfg.Camera.Speed, cfg.Camera.Sensitivity,
	)

	v.model = camera.Orientation{
		Pitch: cfg.Mesh.Orientation.Pitch,
		Yaw:   cfg.Mesh.Orientation.Yaw,
		Roll:  cfg.Mesh.Orientation.Roll,
	}.ModelMatrix()

	v.window.CaptureMouse(true)

	return v, nil
}

// Run parses the configured mesh on a background goroutine while the loop
// keeps presenting frames, then renders the mesh until the exit signal.
// Returns nil on a clean exit, or the fatal error when loading failed.
func (v *Viewer) Run() error {
	logger.Info("loading mesh", zap.String("path", v.cfg.Mesh.Path))

	// Parsing must not run on the render goroutine or the loading screen
	// would freeze for the whole load. The mesh is handed over once,
	// whole, through the result channel; progress is the only state the
	// two goroutines share while the parse is in flight.
	go func(path string, progress *formats.Progress) {
		m, err := formats.ParseOFFFile(path, progress)
		v.result <- parseResult{mesh: m, err: err}
	}(v.cfg.Mesh.Path, v.progress)

	var frameDur time.Duration
	if v.cfg.Graphics.FPSLimit > 0 {
		frameDur = time.Second / time.Duration(v.cfg.Graphics.FPSLimit)
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	for v.phase != phaseDone {
		frameStart := time.Now()
		dt := frameStart.Sub(lastTime).Seconds()
		lastTime = frameStart

		if v.input.Update() {
			v.phase = phaseDone
			break
		}
		for _, event := range v.input.Events() {
			switch event.Type {
			case input.EventWindowResize:
				v.renderer.Resize(event.Width, event.Height)
			case input.EventKeyDown:
				if event.Key == sdl.SCANCODE_ESCAPE {
					v.phase = phaseDone
				}
			}
		}
		if v.phase == phaseDone {
			break
		}

		// The parse result is polled without blocking; a stalled
		// progress value still renders as a normal frame.
		if v.phase == phaseLoading {
			select {
			case res := <-v.result:
				v.onParseDone(res)
			default:
			}
		}

		switch v.phase {
		case phaseLoading:
			v.renderer.DrawLoadingScreen(v.progress.Fraction())
		case phaseReady:
			v.updateCamera(float32(dt))
			v.renderer.DrawScene(v.buffer, v.model, v.cam.ViewMatrix())
		case phaseFailed:
			v.renderer.DrawErrorScreen()
		}

		v.window.SwapBuffers()

		frameCount++
		if v.cfg.Graphics.ShowFPS && time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("frames", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}

		// Frame pacing when vsync is not doing it for us.
		if frameDur > 0 && !v.cfg.Graphics.VSync {
			if elapsed := time.Since(frameStart); elapsed < frameDur {
				time.Sleep(frameDur - elapsed)
			}
		}
	}

	if v.loadErr != nil {
		return fmt.Errorf("loading %s: %w", v.cfg.Mesh.Path, v.loadErr)
	}
	return nil
}

// onParseDone performs the loading -> ready (or failed) transition exactly
// once. Truncated input keeps the partial mesh; anything else fatal drops
// into the error display until the user exits.
func (v *Viewer) onParseDone(res parseResult) {
	if res.err != nil && !errors.Is(res.err, formats.ErrTruncatedOFF) {
		logger.Error("mesh load failed", zap.Error(res.err))
		v.loadErr = res.err
		v.phase = phaseFailed
		return
	}
	if res.err != nil {
		logger.Warn("mesh file truncated, showing partial mesh", zap.Error(res.err))
	}
	if res.mesh.DroppedFaces > 0 {
		logger.Warn("dropped faces with out-of-range indices",
			zap.Int("count", res.mesh.DroppedFaces))
	}

	buf, err := mesh.Upload(res.mesh)
	if err != nil {
		logger.Error("mesh upload failed", zap.Error(err))
		v.loadErr = err
		v.phase = phaseFailed
		return
	}

	logger.Info("mesh ready",
		zap.Int("vertices", res.mesh.VertexCount()),
		zap.Int("triangles", res.mesh.TriangleCount()),
	)
	v.buffer = buf
	v.phase = phaseReady
	v.window.SetTitle("splatview")
}

// updateCamera applies the frame's accumulated input to the camera.
func (v *Viewer) updateCamera(dt float32) {
	if dx, dy := v.input.MouseDelta(); dx != 0 || dy != 0 {
		v.cam.ApplyLookDelta(dx, dy)
	}

	if v.input.IsKeyHeld(sdl.SCANCODE_W) {
		v.cam.Move(camera.MoveForward, dt)
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_S) {
		v.cam.Move(camera.MoveBackward, dt)
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_A) {
		v.cam.Move(camera.MoveLeft, dt)
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_D) {
		v.cam.Move(camera.MoveRight, dt)
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_SPACE) {
		v.cam.Move(camera.MoveUp, dt)
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_LCTRL) || v.input.IsKeyHeld(sdl.SCANCODE_LSHIFT) {
		v.cam.Move(camera.MoveDown, dt)
	}
}

// Close releases GPU resources and tears down the window. There is no
// cooperative shutdown of an in-flight parse; process exit ends it.
func (v *Viewer) Close() {
	if v.buffer != nil {
		v.buffer.Release()
		v.buffer = nil
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
