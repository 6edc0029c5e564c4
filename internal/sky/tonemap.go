package sky

import (
	"image"
	"image/color"
	"math"
)

// ToneMap converts linear radiance to display values with an exponential
// curve followed by gamma encoding.
type ToneMap struct {
	Exposure float64
	Gamma    float64
}

// DefaultToneMap returns exposure 1 and gamma 2.2.
func DefaultToneMap() ToneMap {
	return ToneMap{Exposure: 1, Gamma: 2.2}
}

// Apply maps one linear channel to [0, 1].
func (tm ToneMap) Apply(c float64) float64 {
	if !(c > 0) {
		return 0
	}
	v := 1 - math.Exp(-c*tm.Exposure)
	if tm.Gamma > 0 {
		v = math.Pow(v, 1/tm.Gamma)
	}
	return math.Min(v, 1)
}

// ToRGBA64 tone maps img into a 16-bit image.
func (tm ToneMap) ToRGBA64(img *HDRImage) *image.RGBA64 {
	out := image.NewRGBA64(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			out.SetRGBA64(x, y, tm.color(img, x, y))
		}
	}
	return out
}

func (tm ToneMap) color(img *HDRImage, x, y int) color.RGBA64 {
	c := img.At(x, y)
	return color.RGBA64{
		R: uint16(math.Round(tm.Apply(c[0]) * 0xffff)),
		G: uint16(math.Round(tm.Apply(c[1]) * 0xffff)),
		B: uint16(math.Round(tm.Apply(c[2]) * 0xffff)),
		A: 0xffff,
	}
}
