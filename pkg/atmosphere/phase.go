package atmosphere

import "math"

// RayleighPhase is the Rayleigh phase function for the cosine mu of the
// scattering angle.
func RayleighPhase(mu float64) float64 {
	return 3.0 / (16.0 * math.Pi) * (1.0 + mu*mu)
}

// MiePhase is the Cornette-Shanks form of the Henyey-Greenstein phase
// function. g must lie strictly within (-1, 1).
func MiePhase(mu, g float64) float64 {
	gg := g * g
	denom := (2.0 + gg) * math.Pow(1.0+gg-2.0*g*mu, 1.5)
	return 3.0 / (8.0 * math.Pi) * ((1.0 - gg) * (1.0 + mu*mu)) / denom
}
