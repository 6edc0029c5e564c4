package sky

import (
	bakery "github.com/Faultbox/midgard-sky/internal/sky"
	"github.com/Faultbox/midgard-sky/pkg/math"
)

type vec3Uniform struct {
	name  string
	value [3]float32
}

type floatUniform struct {
	name  string
	value float32
}

// atmosphereUniforms is a snapshot flattened to shader uniform values.
type atmosphereUniforms struct {
	vectors []vec3Uniform
	scalars []floatUniform
}

func uniformsFor(snap bakery.Snapshot) atmosphereUniforms {
	p := snap.Params
	return atmosphereUniforms{
		vectors: []vec3Uniform{
			{"uOrigin", math.FromFloat64(snap.Origin).Array()},
			{"uSunDirection", math.FromFloat64(snap.Sun).Array()},
			{"uRayleigh", math.FromFloat64(p.RayleighCoefficient).Array()},
		},
		scalars: []floatUniform{
			{"uSunIntensity", float32(p.SunIntensity)},
			{"uPlanetRadius", float32(p.PlanetRadius)},
			{"uAtmosphereRadius", float32(p.AtmosphereRadius)},
			{"uRayleighScale", float32(p.RayleighScaleHeight)},
			{"uMie", float32(p.MieCoefficient)},
			{"uMieScale", float32(p.MieScaleHeight)},
			{"uMieDirection", float32(p.MieDirection)},
		},
	}
}
