package atmosphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Radiance is linear RGB. It is not clamped and can exceed 1.
type Radiance = mgl64.Vec3

// Query is one view ray. Origin is relative to the planet centre; Direction
// and SunDirection must be unit vectors.
type Query struct {
	Origin       mgl64.Vec3
	Direction    mgl64.Vec3
	SunDirection mgl64.Vec3 // towards the sun
}

// Model holds the tuning constants of the integrator. A Model value is fixed
// for a batch of evaluations so every call stays deterministic.
type Model struct {
	PrimarySteps  int     // samples along the view ray
	LightSteps    int     // samples along each ray towards the sun
	MieExtinction float64 // empirical Mie absorption factor
}

// DefaultModel returns the real-time defaults: 16 view samples, 8 light
// samples and a Mie extinction factor of 1.1.
func DefaultModel() Model {
	return Model{
		PrimarySteps:  16,
		LightSteps:    8,
		MieExtinction: 1.1,
	}
}

// Evaluate computes the sky radiance along q with the default model.
func Evaluate(p Parameters, q Query) Radiance {
	return DefaultModel().Evaluate(p, q)
}

// Evaluate integrates single scattering along the view ray in q.
func (m Model) Evaluate(p Parameters, q Query) Radiance {
	near, far, ok := raySphere(q.Origin, q.Direction, p.AtmosphereRadius)
	if !ok || far <= 0 {
		return Radiance{}
	}
	near = math.Max(near, 0)

	// The ground occludes everything behind it, including for an observer
	// standing on the surface (gNear == 0).
	if gNear, gFar, hit := raySphere(q.Origin, q.Direction, p.PlanetRadius); hit && gFar > 0 {
		far = math.Min(far, math.Max(gNear, 0))
	}
	if far <= near {
		return Radiance{}
	}

	step := (far - near) / float64(m.PrimarySteps)
	kR := p.RayleighCoefficient
	kM := p.MieCoefficient * m.MieExtinction

	var sumR, sumM mgl64.Vec3
	var odR, odM float64

	for i := 0; i < m.PrimarySteps; i++ {
		pos := q.Origin.Add(q.Direction.Mul(near + step*(float64(i)+0.5)))
		height := pos.Len() - p.PlanetRadius

		dR := math.Exp(-height/p.RayleighScaleHeight) * step
		dM := math.Exp(-height/p.MieScaleHeight) * step
		odR += dR
		odM += dM

		lightR, lightM, lit := m.lightDepth(p, pos, q.SunDirection)
		if !lit {
			continue
		}

		for c := 0; c < 3; c++ {
			attn := math.Exp(-(kR[c]*(odR+lightR) + kM*(odM+lightM)))
			sumR[c] += dR * attn
			sumM[c] += dM * attn
		}
	}

	mu := q.Direction.Dot(q.SunDirection)
	phaseR := RayleighPhase(mu)
	phaseM := MiePhase(mu, p.MieDirection)

	var out Radiance
	for c := 0; c < 3; c++ {
		out[c] = p.SunIntensity * (sumR[c]*kR[c]*phaseR + sumM[c]*p.MieCoefficient*phaseM)
	}
	return out
}

// lightDepth returns the Rayleigh and Mie optical depth from pos to the top
// of the atmosphere towards the sun. lit is false when the planet blocks the
// sun from pos.
func (m Model) lightDepth(p Parameters, pos, sun mgl64.Vec3) (depthR, depthM float64, lit bool) {
	if _, gFar, hit := raySphere(pos, sun, p.PlanetRadius); hit && gFar > 0 {
		return 0, 0, false
	}
	_, exit, ok := raySphere(pos, sun, p.AtmosphereRadius)
	if !ok || exit <= 0 {
		return 0, 0, true
	}

	step := exit / float64(m.LightSteps)
	for j := 0; j < m.LightSteps; j++ {
		height := pos.Add(sun.Mul(step*(float64(j)+0.5))).Len() - p.PlanetRadius
		depthR += math.Exp(-height/p.RayleighScaleHeight) * step
		depthM += math.Exp(-height/p.MieScaleHeight) * step
	}
	return depthR, depthM, true
}

// raySphere intersects a ray with a sphere centred at the origin. dir must be
// normalized. near <= far when ok.
func raySphere(origin, dir mgl64.Vec3, radius float64) (near, far float64, ok bool) {
	b := dir.Dot(origin)
	c := origin.Dot(origin) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, 0, false
	}
	s := math.Sqrt(disc)
	return -b - s, -b + s, true
}
