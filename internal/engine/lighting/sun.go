// Package lighting drives the sun that lights the sky.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SunDirection converts azimuth/elevation angles (degrees) to a unit vector
// pointing towards the sun. Azimuth rotates around +Y starting at +Z;
// elevation is measured up from the horizon. Y is up.
func SunDirection(azimuth, elevation float64) mgl64.Vec3 {
	az := mgl64.DegToRad(azimuth)
	el := mgl64.DegToRad(elevation)

	return mgl64.Vec3{
		math.Cos(el) * math.Sin(az),
		math.Sin(el),
		math.Cos(el) * math.Cos(az),
	}
}

// Elevation returns the sun elevation in degrees for a unit direction.
func Elevation(dir mgl64.Vec3) float64 {
	return mgl64.RadToDeg(math.Asin(mgl64.Clamp(dir.Y(), -1, 1)))
}
