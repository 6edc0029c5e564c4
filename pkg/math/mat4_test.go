package math

import (
	"math"
	"testing"
)

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1.0, 0.1, 100.0)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAtForward(t *testing.T) {
	eye := Vec3{0, 0, 5}
	m := LookAt(eye, Vec3{0, 0, 0}, Vec3{0, 1, 0})

	// Camera looks down -Z, so the third row is -forward = (0, 0, 1).
	if abs(m[2]) > 1e-5 || abs(m[6]) > 1e-5 || abs(m[10]-1) > 1e-5 {
		t.Errorf("view z row = (%f, %f, %f), want (0, 0, 1)", m[2], m[6], m[10])
	}
	if abs(m[14]+5) > 1e-5 {
		t.Errorf("view z translation = %f, want -5", m[14])
	}
}

func TestRotationOnly(t *testing.T) {
	m := LookAt(Vec3{10, 20, 30}, Vec3{10, 20, 0}, Vec3{0, 1, 0})
	r := m.RotationOnly()

	if r[12] != 0 || r[13] != 0 || r[14] != 0 {
		t.Errorf("RotationOnly kept translation (%f, %f, %f)", r[12], r[13], r[14])
	}
	for _, i := range []int{0, 1, 2, 4, 5, 6, 8, 9, 10} {
		if r[i] != m[i] {
			t.Errorf("RotationOnly changed rotation element %d", i)
		}
	}
	if r[15] != 1 {
		t.Errorf("RotationOnly [15] = %f, want 1", r[15])
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
