// Package viewer implements the interactive sky viewer loop.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sky/internal/config"
	"github.com/Faultbox/midgard-sky/internal/engine/camera"
	"github.com/Faultbox/midgard-sky/internal/engine/debug"
	"github.com/Faultbox/midgard-sky/internal/engine/input"
	"github.com/Faultbox/midgard-sky/internal/engine/lighting"
	"github.com/Faultbox/midgard-sky/internal/engine/renderer"
	skyrender "github.com/Faultbox/midgard-sky/internal/engine/sky"
	"github.com/Faultbox/midgard-sky/internal/engine/window"
	"github.com/Faultbox/midgard-sky/internal/logger"
	"github.com/Faultbox/midgard-sky/internal/sky"
)

const title = "Midgard Sky"

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.LookCamera

	sun     *sunControl
	origin  mgl64.Vec3
	cache   *sky.Sky // static mode only
	sky     *skyrender.Renderer
	capture *debug.ScreenshotCapture
}

// New creates the window, GL state and sky for cfg. cfg must be validated.
func New(cfg *config.Config) (*Viewer, error) {
	mode := cfg.SkyMode()
	logger.Info("initializing viewer",
		zap.Stringer("mode", mode),
		zap.Int("width", cfg.Viewer.Width),
		zap.Int("height", cfg.Viewer.Height),
	)

	format, err := sky.ParseFormat(cfg.Bake.Format)
	if err != nil {
		return nil, err
	}

	cycle := lighting.NewDayCycle(cfg.Sun.StartHour)
	if cfg.Sun.DayLength > 0 {
		cycle.DayLength = cfg.Sun.DayLength
	}

	v := &Viewer{
		cfg:     cfg,
		camera:  camera.NewLookCamera(float32(cfg.Viewer.FOV)),
		sun:     newSunControl(cycle, cfg.Sun.Azimuth, cfg.Sun.Elevation, cfg.Sun.Animate),
		origin:  cfg.Atmosphere.ObserverOrigin(cfg.Observer.Height),
		capture: debug.NewScreenshotCapture(cfg.Bake.OutputDir, "screenshot", format),
	}

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := v.window.GetSize()
	v.renderer, err = renderer.New(renderer.Config{Width: width, Height: height})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.sky, err = skyrender.New(mode, cfg.AtmosphereModel(), cfg.ToneMap())
	if err != nil {
		v.renderer.Close()
		v.window.Close()
		return nil, fmt.Errorf("failed to create sky renderer: %w", err)
	}

	if mode == sky.Static {
		baker := sky.NewBaker(cfg.Bake.Workers)
		baker.Model = cfg.AtmosphereModel()
		v.cache = sky.New(sky.Static, cfg.Sky.CubemapSize, baker)
	}

	v.input = input.New()

	logger.Info("viewer initialized successfully")
	return v, nil
}

// Run starts the main loop and returns when the window closes or ctx ends.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for v.running {
		if err := ctx.Err(); err != nil {
			return nil
		}

		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleInput()

		if err := v.update(ctx, dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		v.render()

		if v.input.IsKeyPressed(sdl.SCANCODE_F12) {
			v.screenshot()
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(fmt.Sprintf("%s - %s - %s - %d fps", title, v.sky.Mode(), v.sun.label(), frameCount))
			logger.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.sky != nil {
		v.sky.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) handleInput() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(event.Width, event.Height)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_SPACE:
				v.sun.toggle()
				logger.Info("day cycle toggled", zap.Bool("animating", v.sun.animating()))
			case sdl.SCANCODE_LEFTBRACKET:
				v.nudgeSun(-1)
			case sdl.SCANCODE_RIGHTBRACKET:
				v.nudgeSun(1)
			}
		}
	}

	if dx, dy := v.input.Drag(); dx != 0 || dy != 0 {
		v.camera.HandleDrag(float32(dx), float32(dy))
	}
	if w := v.input.Wheel(); w != 0 {
		v.camera.HandleZoom(float32(w))
	}
}

func (v *Viewer) nudgeSun(steps float64) {
	v.sun.nudge(steps)
	// A static sky only changes on request.
	if v.cache != nil {
		v.cache.Invalidate()
	}
	logger.Debug("sun moved",
		zap.Float64("elevation", lighting.Elevation(v.sun.direction())),
		zap.String("clock", v.sun.label()),
	)
}

func (v *Viewer) snapshot() sky.Snapshot {
	return sky.Snapshot{
		Params: v.cfg.Atmosphere,
		Origin: v.origin,
		Sun:    v.sun.direction(),
	}
}

func (v *Viewer) update(ctx context.Context, dt float64) error {
	v.sun.update(dt)
	snap := v.snapshot()

	if v.cache == nil {
		v.sky.SetSnapshot(snap)
		return nil
	}

	rebaked, err := v.cache.Update(ctx, snap)
	if err != nil {
		return err
	}
	if rebaked {
		return v.sky.UploadCubemap(v.cache.Cubemap())
	}
	return nil
}

func (v *Viewer) render() {
	v.renderer.Begin()
	v.sky.Draw(v.camera.ViewMatrix(), v.camera.ProjectionMatrix(v.renderer.Aspect()))
	v.renderer.End()
}

func (v *Viewer) screenshot() {
	path, err := v.capture.Capture(v.renderer.ReadPixels())
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}
