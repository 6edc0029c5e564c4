// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// SkyVertexShader draws the unit cube around the camera at the far plane.
//
//go:embed sky.vert
var SkyVertexShader string

// CubemapFragmentShader samples a baked sky cubemap.
//
//go:embed cubemap.frag
var CubemapFragmentShader string

// AtmosphereFragmentShader evaluates the scattering model per pixel.
//
//go:embed atmosphere.frag
var AtmosphereFragmentShader string
