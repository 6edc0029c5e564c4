// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/Faultbox/midgard-sky/pkg/math"
)

// LookCamera rotates in place at the observer position. The sky is drawn
// around it, so it has orientation and field of view but no position.
type LookCamera struct {
	Yaw   float32 // Horizontal angle, radians. 0 looks down +Z.
	Pitch float32 // Vertical angle, radians. Positive looks up.
	FOV   float32 // Vertical field of view, radians

	// Constraints
	MinPitch float32
	MaxPitch float32
	MinFOV   float32
	MaxFOV   float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewLookCamera creates a camera facing +Z, slightly above the horizon.
func NewLookCamera(fovDegrees float32) *LookCamera {
	return &LookCamera{
		Yaw:             0.0,
		Pitch:           0.15,
		FOV:             fovDegrees * gomath.Pi / 180,
		MinPitch:        -1.55,
		MaxPitch:        1.55,
		MinFOV:          0.2,
		MaxFOV:          2.0,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.05,
	}
}

// Forward returns the unit view direction.
func (c *LookCamera) Forward() math.Vec3 {
	cp := gomath.Cos(float64(c.Pitch))
	return math.Vec3{
		X: float32(cp * gomath.Sin(float64(c.Yaw))),
		Y: float32(gomath.Sin(float64(c.Pitch))),
		Z: float32(cp * gomath.Cos(float64(c.Yaw))),
	}
}

// ViewMatrix returns a view matrix with the camera at the origin.
func (c *LookCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(math.Vec3{}, c.Forward(), up)
}

// ProjectionMatrix returns the perspective projection for the given aspect.
func (c *LookCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FOV, aspect, 0.1, 10.0)
}

// HandleDrag updates yaw and pitch from a mouse drag delta.
func (c *LookCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch -= deltaY * c.DragSensitivity

	// Clamp pitch short of the poles so LookAt keeps a valid up vector
	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
}

// HandleZoom narrows or widens the field of view from a scroll wheel delta.
func (c *LookCamera) HandleZoom(delta float32) {
	c.FOV -= delta * c.FOV * c.ZoomSensitivity
	if c.FOV < c.MinFOV {
		c.FOV = c.MinFOV
	}
	if c.FOV > c.MaxFOV {
		c.FOV = c.MaxFOV
	}
}
