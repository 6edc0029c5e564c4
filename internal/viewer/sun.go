package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/midgard-sky/internal/engine/lighting"
)

const (
	nudgeHours   = 0.25
	nudgeDegrees = 1.0
	minElevation = -10.0
	maxElevation = 90.0
)

// sunControl owns the sun position. While the day cycle runs the sun follows
// the clock; otherwise it stays at a fixed azimuth and elevation.
type sunControl struct {
	cycle     *lighting.DayCycle
	azimuth   float64
	elevation float64
}

func newSunControl(cycle *lighting.DayCycle, azimuth, elevation float64, animate bool) *sunControl {
	cycle.Paused = !animate
	return &sunControl{
		cycle:     cycle,
		azimuth:   azimuth,
		elevation: elevation,
	}
}

func (s *sunControl) animating() bool {
	return !s.cycle.Paused
}

// toggle starts or stops the day cycle. Stopping freezes the sun where the
// cycle left it.
func (s *sunControl) toggle() {
	if s.animating() {
		s.azimuth = s.cycle.Azimuth()
		s.elevation = s.cycle.Elevation()
	}
	s.cycle.Paused = !s.cycle.Paused
}

// nudge moves the sun by steps. Positive steps move it forward in time while
// animating, or up while fixed.
func (s *sunControl) nudge(steps float64) {
	if s.animating() {
		s.cycle.SetHour(s.cycle.Hour + steps*nudgeHours)
		return
	}
	s.elevation = math.Max(minElevation, math.Min(maxElevation, s.elevation+steps*nudgeDegrees))
}

// update advances the clock. Reports whether the sun moved.
func (s *sunControl) update(dt float64) bool {
	return s.cycle.Update(dt)
}

func (s *sunControl) direction() mgl64.Vec3 {
	if s.animating() {
		return s.cycle.SunDirection()
	}
	return lighting.SunDirection(s.azimuth, s.elevation)
}

func (s *sunControl) label() string {
	if s.animating() {
		return s.cycle.Label()
	}
	return "fixed"
}
