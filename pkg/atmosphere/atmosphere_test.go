package atmosphere

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

var up = mgl64.Vec3{0, 1, 0}

// elevated returns a unit vector in the XY plane at the given elevation (degrees).
func elevated(deg float64) mgl64.Vec3 {
	rad := deg * math.Pi / 180
	return mgl64.Vec3{math.Cos(rad), math.Sin(rad), 0}
}

func sum(r Radiance) float64 {
	return r[0] + r[1] + r[2]
}

func TestEarthIsValid(t *testing.T) {
	if err := Earth().Validate(); err != nil {
		t.Fatalf("Earth().Validate() = %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Parameters)
		want   error
	}{
		{"zero planet", func(p *Parameters) { p.PlanetRadius = 0 }, ErrRadii},
		{"inverted radii", func(p *Parameters) { p.AtmosphereRadius = p.PlanetRadius - 1 }, ErrRadii},
		{"equal radii", func(p *Parameters) { p.AtmosphereRadius = p.PlanetRadius }, ErrRadii},
		{"nan radius", func(p *Parameters) { p.AtmosphereRadius = math.NaN() }, ErrRadii},
		{"zero rayleigh", func(p *Parameters) { p.RayleighCoefficient[1] = 0 }, ErrRayleigh},
		{"rayleigh scale height", func(p *Parameters) { p.RayleighScaleHeight = -1 }, ErrRayleigh},
		{"negative mie", func(p *Parameters) { p.MieCoefficient = -1e-6 }, ErrMie},
		{"mie scale height", func(p *Parameters) { p.MieScaleHeight = 0 }, ErrMie},
		{"g = 1", func(p *Parameters) { p.MieDirection = 1 }, ErrAsymmetry},
		{"g = -1", func(p *Parameters) { p.MieDirection = -1 }, ErrAsymmetry},
		{"negative sun", func(p *Parameters) { p.SunIntensity = -1 }, ErrIntensity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Earth()
			tt.modify(&p)
			err := p.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateAcceptsZeroMie(t *testing.T) {
	p := Earth()
	p.MieCoefficient = 0
	p.SunIntensity = 0
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestObserverOrigin(t *testing.T) {
	p := Earth()
	got := p.ObserverOrigin(1000)
	want := mgl64.Vec3{0, 6372e3, 0}
	if got != want {
		t.Errorf("ObserverOrigin(1000) = %v, want %v", got, want)
	}
}

func TestRaySphere(t *testing.T) {
	near, far, ok := raySphere(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 10)
	if !ok || near != -10 || far != 10 {
		t.Errorf("raySphere from centre = (%v, %v, %v), want (-10, 10, true)", near, far, ok)
	}

	near, far, ok = raySphere(mgl64.Vec3{-20, 0, 0}, mgl64.Vec3{1, 0, 0}, 10)
	if !ok || near != 10 || far != 30 {
		t.Errorf("raySphere from outside = (%v, %v, %v), want (10, 30, true)", near, far, ok)
	}

	if _, _, ok := raySphere(mgl64.Vec3{0, 20, 0}, mgl64.Vec3{1, 0, 0}, 10); ok {
		t.Error("raySphere should miss a sphere it passes above")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	p := Earth()
	q := Query{
		Origin:       p.ObserverOrigin(1000),
		Direction:    elevated(20),
		SunDirection: elevated(35),
	}

	first := Evaluate(p, q)
	for i := 0; i < 10; i++ {
		if got := Evaluate(p, q); got != first {
			t.Fatalf("evaluation %d = %v, want %v", i, got, first)
		}
	}
}

func TestEvaluateMissIsZero(t *testing.T) {
	p := Earth()
	origin := mgl64.Vec3{0, 7e6, 0}
	dir := mgl64.Vec3{1, 0, 0}

	for _, d := range []mgl64.Vec3{dir, dir.Mul(-1)} {
		got := Evaluate(p, Query{Origin: origin, Direction: d, SunDirection: up})
		if got != (Radiance{}) {
			t.Errorf("Evaluate(%v) = %v, want zero", d, got)
		}
	}
}

func TestEvaluateAtmosphereBehindRay(t *testing.T) {
	p := Earth()
	// Outside the shell looking away from the planet.
	got := Evaluate(p, Query{Origin: mgl64.Vec3{0, 7e6, 0}, Direction: up, SunDirection: up})
	if got != (Radiance{}) {
		t.Errorf("Evaluate looking into space = %v, want zero", got)
	}
}

func TestEvaluateFromSpace(t *testing.T) {
	p := Earth()
	got := Evaluate(p, Query{Origin: mgl64.Vec3{0, 7e6, 0}, Direction: mgl64.Vec3{0, -1, 0}, SunDirection: up})
	for c, v := range got {
		if !(v > 0) || math.IsInf(v, 0) {
			t.Errorf("channel %d = %v, want finite positive", c, v)
		}
	}
}

func TestMiddaySkyIsBlue(t *testing.T) {
	p := Earth()
	got := Evaluate(p, Query{Origin: p.ObserverOrigin(1000), Direction: up, SunDirection: up})

	if got[2] <= got[1] || got[2] <= got[0] {
		t.Errorf("zenith radiance %v: blue should dominate", got)
	}
	if got[2] <= 1.5*got[0] {
		t.Errorf("zenith radiance %v: blue should exceed 1.5x red", got)
	}
}

func TestSunsetTowardsSunIsRed(t *testing.T) {
	p := Earth()
	origin := p.ObserverOrigin(1000)

	for _, deg := range []float64{1, 2, 3, 5} {
		sun := elevated(deg)
		got := Evaluate(p, Query{Origin: origin, Direction: sun, SunDirection: sun})
		if got[0] <= got[2] || got[0] <= got[1] {
			t.Errorf("sun at %v deg: radiance %v, red should dominate", deg, got)
		}
	}
}

func TestSunAlignment(t *testing.T) {
	p := Earth()
	origin := p.ObserverOrigin(1000)

	toward := Evaluate(p, Query{Origin: origin, Direction: up, SunDirection: up})
	across := Evaluate(p, Query{Origin: origin, Direction: mgl64.Vec3{1, 0, 0}, SunDirection: up})

	if sum(toward) <= sum(across) {
		t.Errorf("radiance towards sun %v should exceed radiance 90 deg away %v", toward, across)
	}
}

func TestZenithBluerThanHorizon(t *testing.T) {
	p := Earth()
	origin := p.ObserverOrigin(1000)

	zenith := Evaluate(p, Query{Origin: origin, Direction: up, SunDirection: up})
	horizon := Evaluate(p, Query{Origin: origin, Direction: mgl64.Vec3{1, 0, 0}, SunDirection: up})

	zr := zenith[2] / zenith[0]
	hr := horizon[2] / horizon[0]
	if zr <= hr {
		t.Errorf("blue/red at zenith %.3f should exceed horizon %.3f", zr, hr)
	}
}

func TestHorizonContinuity(t *testing.T) {
	p := Earth()
	const height = 1000.0
	origin := p.ObserverOrigin(height)
	dip := math.Acos(p.PlanetRadius / (p.PlanetRadius + height))

	at := func(eps float64) Radiance {
		a := -dip + eps
		dir := mgl64.Vec3{math.Cos(a), math.Sin(a), 0}
		return Evaluate(p, Query{Origin: origin, Direction: dir, SunDirection: up})
	}

	// Rays below the horizon converge on the grazing ray.
	a, b := at(-1e-5), at(-1e-7)
	for c := 0; c < 3; c++ {
		rel := math.Abs(a[c]-b[c]) / b[c]
		if rel > 0.01 {
			t.Errorf("channel %d jumps %.2f%% approaching the horizon (%v vs %v)", c, rel*100, a, b)
		}
	}
}

func TestGroundOccludes(t *testing.T) {
	p := Earth()
	origin := p.ObserverOrigin(1000)
	down := mgl64.Vec3{0, -1, 0}

	short := Evaluate(p, Query{Origin: origin, Direction: down, SunDirection: up})
	long := Evaluate(p, Query{Origin: origin, Direction: mgl64.Vec3{1, 0, 0}, SunDirection: up})
	if !(sum(short) > 0) || sum(short) >= sum(long) {
		t.Errorf("1km ray to the ground %v should be dimmer than the horizon %v", short, long)
	}
}

func TestCoefficientScalingStaysFinite(t *testing.T) {
	base := Earth()
	origin := base.ObserverOrigin(1000)

	for _, scale := range []float64{0, 0.5, 1, 2, 10, 100, 1000} {
		p := base
		p.RayleighCoefficient = base.RayleighCoefficient.Mul(scale)
		p.MieCoefficient = base.MieCoefficient * scale

		for _, dir := range []mgl64.Vec3{up, mgl64.Vec3{1, 0, 0}, elevated(-10)} {
			got := Evaluate(p, Query{Origin: origin, Direction: dir, SunDirection: elevated(30)})
			for c, v := range got {
				if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
					t.Errorf("scale %v dir %v: channel %d = %v", scale, dir, c, v)
				}
			}
		}
	}
}

func TestSunBelowHorizonIsDark(t *testing.T) {
	p := Earth()
	origin := p.ObserverOrigin(0)
	// Sun on the far side of the planet: every sample is in shadow.
	got := Evaluate(p, Query{Origin: origin, Direction: up, SunDirection: mgl64.Vec3{0, -1, 0}})
	if got != (Radiance{}) {
		t.Errorf("night zenith = %v, want zero", got)
	}
}

func TestSurfaceObserverGround(t *testing.T) {
	p := Earth()
	sun := elevated(30)

	for _, deg := range []float64{-90, -45, -1} {
		surface := Evaluate(p, Query{Origin: p.ObserverOrigin(0), Direction: elevated(deg), SunDirection: sun})
		if surface != (Radiance{}) {
			t.Errorf("surface observer at %v deg = %v, want zero", deg, surface)
		}

		above := Evaluate(p, Query{Origin: p.ObserverOrigin(1), Direction: elevated(deg), SunDirection: sun})
		for c, v := range above {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1e-2 {
				t.Errorf("observer at 1m, %v deg: channel %d = %v", deg, c, v)
			}
		}
	}

	sky := Evaluate(p, Query{Origin: p.ObserverOrigin(0), Direction: elevated(1), SunDirection: sun})
	if !(sum(sky) > 0) {
		t.Errorf("surface observer above the horizon = %v, want light", sky)
	}
}

func TestModelSampleCounts(t *testing.T) {
	p := Earth()
	q := Query{Origin: p.ObserverOrigin(1000), Direction: elevated(10), SunDirection: elevated(40)}

	coarse := Model{PrimarySteps: 4, LightSteps: 2, MieExtinction: 1.1}.Evaluate(p, q)
	fine := Model{PrimarySteps: 64, LightSteps: 32, MieExtinction: 1.1}.Evaluate(p, q)
	def := Evaluate(p, q)

	for c := 0; c < 3; c++ {
		if math.Abs(def[c]-fine[c]) > math.Abs(coarse[c]-fine[c])+1e-9 {
			t.Errorf("channel %d: default %v further from converged %v than coarse %v", c, def[c], fine[c], coarse[c])
		}
	}
}

func TestRayleighPhase(t *testing.T) {
	want := 3.0 / (16.0 * math.Pi)
	if got := RayleighPhase(0); math.Abs(got-want) > 1e-15 {
		t.Errorf("RayleighPhase(0) = %v, want %v", got, want)
	}
	if RayleighPhase(1) != RayleighPhase(-1) {
		t.Error("RayleighPhase should be symmetric")
	}
}

func TestMiePhaseIsotropicLimit(t *testing.T) {
	for _, mu := range []float64{-1, -0.5, 0, 0.3, 1} {
		if got, want := MiePhase(mu, 0), RayleighPhase(mu); math.Abs(got-want) > 1e-12 {
			t.Errorf("MiePhase(%v, 0) = %v, want %v", mu, got, want)
		}
	}
}

func TestPhaseNormalized(t *testing.T) {
	const n = 20000
	for _, g := range []float64{0, 0.5, 0.758, -0.3} {
		var total float64
		for i := 0; i < n; i++ {
			mu := -1 + (float64(i)+0.5)*2/n
			total += MiePhase(mu, g) * 2 / n
		}
		total *= 2 * math.Pi
		if math.Abs(total-1) > 1e-3 {
			t.Errorf("MiePhase(g=%v) integrates to %v over the sphere, want 1", g, total)
		}
	}
}

func TestMiePhaseForwardPeak(t *testing.T) {
	g := Earth().MieDirection
	if MiePhase(1, g) <= MiePhase(0, g) || MiePhase(1, g) <= MiePhase(-1, g) {
		t.Errorf("MiePhase should peak forward: f(1)=%v f(0)=%v f(-1)=%v", MiePhase(1, g), MiePhase(0, g), MiePhase(-1, g))
	}
}

func BenchmarkEvaluate(b *testing.B) {
	p := Earth()
	q := Query{Origin: p.ObserverOrigin(1000), Direction: elevated(10), SunDirection: elevated(40)}
	for i := 0; i < b.N; i++ {
		Evaluate(p, q)
	}
}
