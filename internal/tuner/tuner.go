// Package tuner implements an interactive editor for the atmosphere
// parameters with a live GPU preview and background bakes.
package tuner

import (
	"context"
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sky/internal/config"
	"github.com/Faultbox/midgard-sky/internal/engine/camera"
	"github.com/Faultbox/midgard-sky/internal/engine/debug"
	"github.com/Faultbox/midgard-sky/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-sky/internal/engine/lighting"
	skyrender "github.com/Faultbox/midgard-sky/internal/engine/sky"
	"github.com/Faultbox/midgard-sky/internal/engine/ui"
	"github.com/Faultbox/midgard-sky/internal/logger"
	"github.com/Faultbox/midgard-sky/internal/sky"
	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
)

const (
	title           = "Midgard Sky Tuner"
	settingsWidth   = 360
	statusBarHeight = 32
)

var errorColor = imgui.NewVec4(1, 0.4, 0.3, 1)

// dialogResult carries a path picked in a native dialog back to the UI thread.
type dialogResult struct {
	path string
	save bool
}

// App is the tuner application state.
type App struct {
	ctx context.Context
	cfg *config.Config

	backend *ui.Backend
	fb      *framebuffer.Framebuffer
	sky     *skyrender.Renderer
	camera  *camera.LookCamera
	cycle   *lighting.DayCycle

	edit    *editor
	hour    float32
	animate bool
	job     bakeJob

	invalid   error // last validation failure, nil when the preview is current
	status    statusLine
	lastFrame time.Time
	lastMouse imgui.Vec2
	dialogs   chan dialogResult
}

// New opens the tuner window. cfg must be validated.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		ctx:     ctx,
		cfg:     cfg,
		camera:  camera.NewLookCamera(float32(cfg.Viewer.FOV)),
		cycle:   lighting.NewDayCycle(cfg.Sun.StartHour),
		edit:    newEditor(cfg),
		animate: cfg.Sun.Animate,
		dialogs: make(chan dialogResult, 1),
	}
	if cfg.Sun.DayLength > 0 {
		app.cycle.DayLength = cfg.Sun.DayLength
	}
	app.hour = float32(app.cycle.Hour)

	var err error
	app.backend, err = ui.NewBackend(title, cfg.Viewer.Width, cfg.Viewer.Height)
	if err != nil {
		return nil, err
	}

	app.fb, err = framebuffer.New(int32(cfg.Viewer.Width-settingsWidth), int32(cfg.Viewer.Height))
	if err != nil {
		return nil, err
	}

	app.sky, err = skyrender.New(sky.Dynamic, cfg.AtmosphereModel(), cfg.ToneMap())
	if err != nil {
		app.fb.Destroy()
		return nil, err
	}

	app.lastFrame = time.Now()
	logger.Info("tuner initialized")
	return app, nil
}

// Run starts the frame loop.
func (app *App) Run() {
	app.backend.Run(app.frame)
}

// Close releases GPU resources and waits for a running bake.
func (app *App) Close() {
	app.job.wait()
	if app.sky != nil {
		app.sky.Close()
	}
	if app.fb != nil {
		app.fb.Destroy()
	}
}

func (app *App) snapshot() sky.Snapshot {
	return sky.Snapshot{
		Params: app.cfg.Atmosphere,
		Origin: app.cfg.Atmosphere.ObserverOrigin(app.cfg.Observer.Height),
		Sun:    app.cycle.SunDirection(),
	}
}

func (app *App) frame() {
	now := time.Now()
	dt := now.Sub(app.lastFrame).Seconds()
	app.lastFrame = now

	app.cycle.Paused = !app.animate
	if app.cycle.Update(dt) {
		app.hour = float32(app.cycle.Hour)
	}
	app.handleDialogs()

	pos, size := ui.Viewport()
	contentHeight := size.Y - statusBarHeight
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	imgui.SetNextWindowPos(pos)
	imgui.SetNextWindowSize(imgui.NewVec2(settingsWidth, contentHeight))
	if imgui.BeginV("Settings", nil, flags) {
		app.renderSettings()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(pos.X+settingsWidth, pos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(size.X-settingsWidth, contentHeight))
	if imgui.BeginV("Preview", nil, flags|imgui.WindowFlagsNoScrollbar) {
		app.renderPreview()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(pos.X, pos.Y+contentHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(size.X, statusBarHeight))
	if imgui.BeginV("##StatusBar", nil, flags|imgui.WindowFlagsNoTitleBar|imgui.WindowFlagsNoScrollbar) {
		app.renderStatusBar()
	}
	imgui.End()

	if ui.IsKeyPressed(imgui.KeyF12) {
		app.screenshot()
	}
}

func (app *App) renderSettings() {
	changed := false
	slider := func(label string, v *float32, lo, hi float32, format string) {
		imgui.SetNextItemWidth(-120)
		if imgui.SliderFloatV(label, v, lo, hi, format, imgui.SliderFlagsNone) {
			changed = true
		}
	}

	imgui.Text("Planet")
	imgui.Separator()
	slider("Radius (km)", &app.edit.PlanetRadius, 1000, 10000, "%.0f")
	slider("Atmosphere (km)", &app.edit.AtmosphereDepth, 10, 300, "%.0f")
	slider("Observer (m)", &app.edit.ObserverHeight, 0, 50000, "%.0f")

	imgui.Spacing()
	imgui.Text("Rayleigh (1e-6/m)")
	imgui.Separator()
	slider("Red", &app.edit.Rayleigh[0], 0.1, 60, "%.2f")
	slider("Green", &app.edit.Rayleigh[1], 0.1, 60, "%.2f")
	slider("Blue", &app.edit.Rayleigh[2], 0.1, 60, "%.2f")
	slider("Scale height (km)", &app.edit.RayleighScale, 0.5, 30, "%.2f")

	imgui.Spacing()
	imgui.Text("Mie")
	imgui.Separator()
	slider("Coefficient", &app.edit.Mie, 0, 200, "%.1f")
	slider("Scale (km)", &app.edit.MieScale, 0.1, 10, "%.2f")
	slider("Direction g", &app.edit.MieDirection, -0.99, 0.99, "%.3f")

	imgui.Spacing()
	imgui.Text("Sun")
	imgui.Separator()
	slider("Intensity", &app.edit.SunIntensity, 0, 100, "%.1f")
	imgui.SetNextItemWidth(-120)
	if imgui.SliderFloatV("Hour", &app.hour, 0, 23.99, "%.2f", imgui.SliderFlagsNone) {
		app.cycle.SetHour(float64(app.hour))
	}
	imgui.Checkbox("Day cycle", &app.animate)
	imgui.SameLine()
	imgui.TextDisabled(fmt.Sprintf("%s, %.1f deg", app.cycle.Label(), app.cycle.Elevation()))

	imgui.Spacing()
	imgui.Text("Display")
	imgui.Separator()
	slider("Exposure", &app.edit.Exposure, 0.05, 10, "%.2f")
	slider("Gamma", &app.edit.Gamma, 1, 3, "%.2f")

	if changed {
		app.applyEdits()
	}

	imgui.Spacing()
	imgui.Separator()
	if imgui.ButtonV("Reset to Earth", imgui.NewVec2(-1, 0)) {
		app.cfg.Atmosphere = atmosphere.Earth()
		app.edit.load(app.cfg)
		app.applyEdits()
	}
	if imgui.ButtonV("Bake cubemap", imgui.NewVec2(-1, 0)) {
		app.startBake()
	}
	if imgui.ButtonV("Save config...", imgui.NewVec2(-1, 0)) {
		app.pickFile(true)
	}
	if imgui.ButtonV("Load config...", imgui.NewVec2(-1, 0)) {
		app.pickFile(false)
	}

	if app.invalid != nil {
		imgui.Spacing()
		imgui.TextColored(errorColor, app.invalid.Error())
	}
}

// applyEdits pushes the editor into the config. The preview keeps the last
// valid parameters while the editor is invalid.
func (app *App) applyEdits() {
	if err := app.edit.apply(app.cfg); err != nil {
		app.invalid = err
		return
	}
	app.invalid = nil
	app.sky.SetToneMap(app.edit.toneMap())
}

func (app *App) renderPreview() {
	avail := imgui.ContentRegionAvail()
	app.fb.Resize(int32(avail.X), int32(avail.Y))

	app.sky.SetSnapshot(app.snapshot())

	restore := app.fb.BindWithViewport()
	app.fb.Clear(0, 0, 0, 1)
	gl.Disable(gl.SCISSOR_TEST)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	app.sky.Draw(app.camera.ViewMatrix(), app.camera.ProjectionMatrix(app.fb.Aspect()))
	restore()

	w, h := app.fb.Size()
	ui.Texture(app.fb.ColorTexture(), float32(w), float32(h))

	if imgui.IsItemHovered() {
		mouse := imgui.MousePos()
		if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
			app.camera.HandleDrag(mouse.X-app.lastMouse.X, mouse.Y-app.lastMouse.Y)
		}
		app.lastMouse = mouse

		if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
			app.camera.HandleZoom(wheel)
		}
	}
}

func (app *App) renderStatusBar() {
	if app.job.running.Load() {
		imgui.ProgressBarV(app.job.progress(), imgui.NewVec2(200, 0), "")
		imgui.SameLine()
	}
	app.status.set(app.job.latest())
	if status, err := app.job.result(); err != nil && status == app.status.text {
		imgui.TextColored(errorColor, app.status.text)
		return
	}
	imgui.Text(app.status.text)
}

func (app *App) setMessage(text string) {
	app.status.set(text, time.Now())
}

func (app *App) startBake() {
	if app.invalid != nil {
		app.setMessage("fix the settings before baking")
		return
	}
	if !app.job.start(app.ctx, *app.cfg, app.snapshot()) {
		app.setMessage("a bake is already running")
	}
}

// pickFile opens a native dialog off the UI thread. The choice is handled
// on the next frame.
func (app *App) pickFile(save bool) {
	go func() {
		d := dialog.File().Filter("YAML config", "yaml", "yml").Title("Sky config")
		var (
			path string
			err  error
		)
		if save {
			path, err = d.Save()
		} else {
			path, err = d.Load()
		}
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		app.dialogs <- dialogResult{path: path, save: save}
	}()
}

func (app *App) handleDialogs() {
	select {
	case r := <-app.dialogs:
		if r.save {
			app.saveConfig(r.path)
		} else {
			app.loadConfig(r.path)
		}
	default:
	}
}

func (app *App) saveConfig(path string) {
	app.cfg.Sun.StartHour = app.cycle.Hour
	app.cfg.Sun.Animate = app.animate
	if err := app.cfg.SaveTo(path); err != nil {
		app.setMessage("save failed: " + err.Error())
		logger.Error("saving config", zap.Error(err))
		return
	}
	app.setMessage("saved " + path)
	logger.Info("config saved", zap.String("path", path))
}

func (app *App) loadConfig(path string) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		app.setMessage("load failed: " + err.Error())
		logger.Error("loading config", zap.Error(err))
		return
	}
	*app.cfg = *cfg
	app.edit.load(app.cfg)
	app.cycle.SetHour(cfg.Sun.StartHour)
	app.hour = float32(app.cycle.Hour)
	app.animate = cfg.Sun.Animate
	app.applyEdits()
	app.setMessage("loaded " + path)
}

func (app *App) screenshot() {
	format, err := sky.ParseFormat(app.cfg.Bake.Format)
	if err != nil {
		app.setMessage(err.Error())
		return
	}
	capture := debug.NewScreenshotCapture(app.cfg.Bake.OutputDir, "tuner", format)
	path, err := capture.Capture(app.fb.ReadImage())
	if err != nil {
		app.setMessage(err.Error())
		return
	}
	app.setMessage("screenshot " + path)
}
