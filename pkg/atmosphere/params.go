// Package atmosphere implements a single-scattering Rayleigh and Mie sky model.
//
// The model is a pure function: given atmosphere parameters and a view ray it
// returns the linear RGB radiance an observer sees along that ray. It keeps no
// state and may be called concurrently from any number of goroutines.
package atmosphere

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Validation errors returned by Parameters.Validate.
var (
	ErrRadii     = errors.New("atmosphere radius must exceed planet radius > 0")
	ErrRayleigh  = errors.New("rayleigh coefficients and scale height must be positive")
	ErrMie       = errors.New("mie coefficient must be >= 0 and scale height positive")
	ErrAsymmetry = errors.New("mie direction must lie strictly within (-1, 1)")
	ErrIntensity = errors.New("sun intensity must be >= 0")
)

// Parameters describes the planet and its scattering shell. Distances are in
// metres, coefficients in 1/m.
type Parameters struct {
	PlanetRadius        float64    `yaml:"planet_radius"`
	AtmosphereRadius    float64    `yaml:"atmosphere_radius"`
	RayleighCoefficient mgl64.Vec3 `yaml:"rayleigh_coefficient"`
	RayleighScaleHeight float64    `yaml:"rayleigh_scale_height"`
	MieCoefficient      float64    `yaml:"mie_coefficient"`
	MieScaleHeight      float64    `yaml:"mie_scale_height"`
	MieDirection        float64    `yaml:"mie_direction"` // Henyey-Greenstein g
	SunIntensity        float64    `yaml:"sun_intensity"`
}

// Earth returns parameters approximating Earth's atmosphere.
func Earth() Parameters {
	return Parameters{
		PlanetRadius:        6371e3,
		AtmosphereRadius:    6471e3,
		RayleighCoefficient: mgl64.Vec3{5.5e-6, 13.0e-6, 22.4e-6},
		RayleighScaleHeight: 8e3,
		MieCoefficient:      21e-6,
		MieScaleHeight:      1.2e3,
		MieDirection:        0.758,
		SunIntensity:        22.0,
	}
}

// Validate checks the preconditions Evaluate relies on. Call it once when the
// parameters are configured; Evaluate itself never checks.
func (p Parameters) Validate() error {
	if !(p.PlanetRadius > 0) || !(p.AtmosphereRadius > p.PlanetRadius) {
		return fmt.Errorf("%w: planet %g, atmosphere %g", ErrRadii, p.PlanetRadius, p.AtmosphereRadius)
	}
	for i, k := range p.RayleighCoefficient {
		if !(k > 0) {
			return fmt.Errorf("%w: coefficient[%d] = %g", ErrRayleigh, i, k)
		}
	}
	if !(p.RayleighScaleHeight > 0) {
		return fmt.Errorf("%w: scale height %g", ErrRayleigh, p.RayleighScaleHeight)
	}
	if !(p.MieCoefficient >= 0) || !(p.MieScaleHeight > 0) {
		return fmt.Errorf("%w: coefficient %g, scale height %g", ErrMie, p.MieCoefficient, p.MieScaleHeight)
	}
	if !(p.MieDirection > -1 && p.MieDirection < 1) {
		return fmt.Errorf("%w: got %g", ErrAsymmetry, p.MieDirection)
	}
	if !(p.SunIntensity >= 0) {
		return fmt.Errorf("%w: got %g", ErrIntensity, p.SunIntensity)
	}
	return nil
}

// ObserverOrigin returns a point height metres above the surface, straight up
// the +Y axis from the planet centre.
func (p Parameters) ObserverOrigin(height float64) mgl64.Vec3 {
	return mgl64.Vec3{0, p.PlanetRadius + height, 0}
}
