package lighting

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DayCycle moves the sun across the sky over a simulated day. It decides
// when the sky needs recomputing: every Update that advances time changes
// the sun direction.
type DayCycle struct {
	Hour         float64 // 0..24, 12 is solar noon
	DayLength    float64 // real seconds per simulated day
	MaxElevation float64 // noon elevation in degrees
	Paused       bool
}

// NewDayCycle returns a cycle starting at the given hour with a two minute day.
func NewDayCycle(hour float64) *DayCycle {
	dc := &DayCycle{
		DayLength:    120,
		MaxElevation: 70,
	}
	dc.SetHour(hour)
	return dc
}

// SetHour jumps to an hour, wrapping into [0, 24).
func (dc *DayCycle) SetHour(hour float64) {
	hour = math.Mod(hour, 24)
	if hour < 0 {
		hour += 24
	}
	dc.Hour = hour
}

// Update advances the clock by dt real seconds. It reports whether the sun moved.
func (dc *DayCycle) Update(dt float64) bool {
	if dc.Paused || dt <= 0 || dc.DayLength <= 0 {
		return false
	}
	dc.SetHour(dc.Hour + dt*24/dc.DayLength)
	return true
}

// Elevation returns the sun elevation in degrees: zero at 06:00 and 18:00,
// MaxElevation at noon and negative at night.
func (dc *DayCycle) Elevation() float64 {
	return dc.MaxElevation * math.Sin(math.Pi*(dc.Hour-6)/12)
}

// Azimuth returns the sun azimuth in degrees: east (90) at 06:00, west (270) at 18:00.
func (dc *DayCycle) Azimuth() float64 {
	return math.Mod(90+(dc.Hour-6)*15+360, 360)
}

// SunDirection returns the unit vector towards the sun.
func (dc *DayCycle) SunDirection() mgl64.Vec3 {
	return SunDirection(dc.Azimuth(), dc.Elevation())
}

// Label formats the clock as HH:MM.
func (dc *DayCycle) Label() string {
	minutes := int(dc.Hour*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
