// Package sky evaluates the atmosphere model into environment images and
// caches them between frames.
package sky

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// HDRImage is a linear, unclamped RGB float image. Rows run top to bottom.
type HDRImage struct {
	Width  int
	Height int
	Pix    []float32 // 3 floats per pixel
}

// NewHDRImage allocates a black image.
func NewHDRImage(width, height int) *HDRImage {
	return &HDRImage{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*3),
	}
}

// At returns the radiance stored at (x, y).
func (img *HDRImage) At(x, y int) mgl64.Vec3 {
	i := (y*img.Width + x) * 3
	return mgl64.Vec3{float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2])}
}

// Set stores radiance at (x, y).
func (img *HDRImage) Set(x, y int, c mgl64.Vec3) {
	i := (y*img.Width + x) * 3
	img.Pix[i] = float32(c[0])
	img.Pix[i+1] = float32(c[1])
	img.Pix[i+2] = float32(c[2])
}

// Face identifies one side of a cubemap, in OpenGL upload order.
type Face int

const (
	PositiveX Face = iota
	NegativeX
	PositiveY
	NegativeY
	PositiveZ
	NegativeZ
)

// Faces lists every face in upload order.
var Faces = [6]Face{PositiveX, NegativeX, PositiveY, NegativeY, PositiveZ, NegativeZ}

var faceNames = [6]string{"px", "nx", "py", "ny", "pz", "nz"}

func (f Face) String() string {
	if f < 0 || int(f) >= len(faceNames) {
		return "invalid"
	}
	return faceNames[f]
}

// Direction maps face coordinates u, v in [-1, 1] (u right, v down) to a unit
// view direction, following the OpenGL cubemap convention.
func (f Face) Direction(u, v float64) mgl64.Vec3 {
	var d mgl64.Vec3
	switch f {
	case PositiveX:
		d = mgl64.Vec3{1, -v, -u}
	case NegativeX:
		d = mgl64.Vec3{-1, -v, u}
	case PositiveY:
		d = mgl64.Vec3{u, 1, v}
	case NegativeY:
		d = mgl64.Vec3{u, -1, -v}
	case PositiveZ:
		d = mgl64.Vec3{u, -v, 1}
	case NegativeZ:
		d = mgl64.Vec3{-u, -v, -1}
	}
	return d.Normalize()
}

// texelDirection returns the direction through the centre of texel (x, y).
func (f Face) texelDirection(x, y, size int) mgl64.Vec3 {
	u := 2*(float64(x)+0.5)/float64(size) - 1
	v := 2*(float64(y)+0.5)/float64(size) - 1
	return f.Direction(u, v)
}

// Cubemap holds six square faces of equal size.
type Cubemap struct {
	Size  int
	Faces [6]*HDRImage
}

// NewCubemap allocates a black cubemap.
func NewCubemap(size int) *Cubemap {
	cm := &Cubemap{Size: size}
	for i := range cm.Faces {
		cm.Faces[i] = NewHDRImage(size, size)
	}
	return cm
}

// Face returns the image for one face.
func (cm *Cubemap) Face(f Face) *HDRImage {
	return cm.Faces[f]
}

// panoramaDirection maps an equirectangular texel to a direction. Columns
// sweep azimuth from +Z through +X; row 0 is the zenith.
func panoramaDirection(x, y, width, height int) mgl64.Vec3 {
	az := 2 * math.Pi * (float64(x) + 0.5) / float64(width)
	el := math.Pi/2 - math.Pi*(float64(y)+0.5)/float64(height)
	return mgl64.Vec3{
		math.Cos(el) * math.Sin(az),
		math.Sin(el),
		math.Cos(el) * math.Cos(az),
	}
}
