package tuner

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/midgard-sky/internal/config"
	"github.com/Faultbox/midgard-sky/internal/sky"
	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
)

const (
	km    = 1e3
	micro = 1e-6
)

// editor is the working copy behind the sliders. Values are float32 in
// slider friendly units: kilometres and 1e-6/m.
type editor struct {
	PlanetRadius    float32 // km
	AtmosphereDepth float32 // km above the surface
	Rayleigh        [3]float32
	RayleighScale   float32 // km
	Mie             float32
	MieScale        float32 // km
	MieDirection    float32
	SunIntensity    float32

	ObserverHeight float32 // m
	Exposure       float32
	Gamma          float32
}

func newEditor(cfg *config.Config) *editor {
	e := &editor{}
	e.load(cfg)
	return e
}

// load copies cfg into the editor.
func (e *editor) load(cfg *config.Config) {
	p := cfg.Atmosphere
	e.PlanetRadius = float32(p.PlanetRadius / km)
	e.AtmosphereDepth = float32((p.AtmosphereRadius - p.PlanetRadius) / km)
	for i := range e.Rayleigh {
		e.Rayleigh[i] = float32(p.RayleighCoefficient[i] / micro)
	}
	e.RayleighScale = float32(p.RayleighScaleHeight / km)
	e.Mie = float32(p.MieCoefficient / micro)
	e.MieScale = float32(p.MieScaleHeight / km)
	e.MieDirection = float32(p.MieDirection)
	e.SunIntensity = float32(p.SunIntensity)

	e.ObserverHeight = float32(cfg.Observer.Height)
	e.Exposure = float32(cfg.Bake.Exposure)
	e.Gamma = float32(cfg.Bake.Gamma)
}

// parameters converts the sliders back to model units.
func (e *editor) parameters() atmosphere.Parameters {
	planet := float64(e.PlanetRadius) * km
	return atmosphere.Parameters{
		PlanetRadius:     planet,
		AtmosphereRadius: planet + float64(e.AtmosphereDepth)*km,
		RayleighCoefficient: mgl64.Vec3{
			float64(e.Rayleigh[0]) * micro,
			float64(e.Rayleigh[1]) * micro,
			float64(e.Rayleigh[2]) * micro,
		},
		RayleighScaleHeight: float64(e.RayleighScale) * km,
		MieCoefficient:      float64(e.Mie) * micro,
		MieScaleHeight:      float64(e.MieScale) * km,
		MieDirection:        float64(e.MieDirection),
		SunIntensity:        float64(e.SunIntensity),
	}
}

func (e *editor) toneMap() sky.ToneMap {
	return sky.ToneMap{Exposure: float64(e.Exposure), Gamma: float64(e.Gamma)}
}

// apply validates the editor and writes it into cfg. cfg is untouched when
// validation fails.
func (e *editor) apply(cfg *config.Config) error {
	next := *cfg
	next.Atmosphere = e.parameters()
	next.Observer.Height = float64(e.ObserverHeight)
	next.Bake.Exposure = float64(e.Exposure)
	next.Bake.Gamma = float64(e.Gamma)
	if err := next.Validate(); err != nil {
		return err
	}
	*cfg = next
	return nil
}
