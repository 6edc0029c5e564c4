// Package sky draws the atmosphere as a skybox, either from a baked cubemap
// or by evaluating the scattering model in a fragment shader.
package sky

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sky/internal/engine/shader"
	"github.com/Faultbox/midgard-sky/internal/engine/sky/shaders"
	"github.com/Faultbox/midgard-sky/internal/logger"
	bakery "github.com/Faultbox/midgard-sky/internal/sky"
	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
	"github.com/Faultbox/midgard-sky/pkg/math"
)

// cubeVertices is a unit cube as 12 triangles, wound to face inwards.
var cubeVertices = []float32{
	-1, 1, -1, -1, -1, -1, 1, -1, -1,
	1, -1, -1, 1, 1, -1, -1, 1, -1,

	-1, -1, 1, -1, -1, -1, -1, 1, -1,
	-1, 1, -1, -1, 1, 1, -1, -1, 1,

	1, -1, -1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, -1, 1, -1, -1,

	-1, -1, 1, -1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, -1, 1, -1, -1, 1,

	-1, 1, -1, 1, 1, -1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, 1, -1,

	-1, -1, -1, -1, -1, 1, 1, -1, -1,
	1, -1, -1, -1, -1, 1, 1, -1, 1,
}

// Renderer draws the sky behind everything else in the frame.
type Renderer struct {
	mode bakery.Mode

	vao, vbo uint32
	program  *shader.Program
	texture  uint32

	uploaded *bakery.Cubemap

	snapshot    bakery.Snapshot
	hasSnapshot bool
}

// New creates the sky geometry and the program for mode.
// Must be called after the OpenGL context exists.
func New(mode bakery.Mode, model atmosphere.Model, tm bakery.ToneMap) (*Renderer, error) {
	r := &Renderer{mode: mode}

	fragment := shaders.CubemapFragmentShader
	if mode == bakery.Dynamic {
		fragment = shaders.AtmosphereFragmentShader
	}

	var err error
	r.program, err = shader.NewProgram("sky "+mode.String(), shaders.SkyVertexShader, fragment)
	if err != nil {
		return nil, fmt.Errorf("sky shader: %w", err)
	}

	r.createCube()
	if mode == bakery.Static {
		gl.GenTextures(1, &r.texture)
	}

	r.SetToneMap(tm)
	r.program.Use()
	if mode == bakery.Static {
		gl.Uniform1i(r.program.Uniform("uSky"), 0)
	} else {
		gl.Uniform1i(r.program.Uniform("uPrimarySteps"), int32(model.PrimarySteps))
		gl.Uniform1i(r.program.Uniform("uLightSteps"), int32(model.LightSteps))
		gl.Uniform1f(r.program.Uniform("uMieExtinction"), float32(model.MieExtinction))
	}

	logger.Info("sky renderer created", zap.Stringer("mode", mode))
	return r, nil
}

func (r *Renderer) createCube() {
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(cubeVertices)*4, unsafe.Pointer(&cubeVertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// Mode returns the update policy the renderer was built for.
func (r *Renderer) Mode() bakery.Mode {
	return r.mode
}

// SetToneMap changes exposure and gamma used for display.
func (r *Renderer) SetToneMap(tm bakery.ToneMap) {
	r.program.Use()
	gl.Uniform1f(r.program.Uniform("uExposure"), float32(tm.Exposure))
	gl.Uniform1f(r.program.Uniform("uGamma"), float32(tm.Gamma))
}

// UploadCubemap copies a baked cubemap to the GPU as RGB16F. Uploading the
// same cubemap again is a no-op.
func (r *Renderer) UploadCubemap(cm *bakery.Cubemap) error {
	if r.mode != bakery.Static {
		return fmt.Errorf("cubemap upload needs static mode, renderer is %s", r.mode)
	}
	if cm == nil || cm == r.uploaded {
		return nil
	}

	gl.BindTexture(gl.TEXTURE_CUBE_MAP, r.texture)
	for _, f := range bakery.Faces {
		img := cm.Face(f)
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(f), 0, gl.RGB16F,
			int32(img.Width), int32(img.Height), 0, gl.RGB, gl.FLOAT, gl.Ptr(img.Pix))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	r.uploaded = cm
	logger.Debug("sky cubemap uploaded", zap.Int("size", cm.Size))
	return nil
}

// SetSnapshot updates the atmosphere uniforms for dynamic mode. Uniforms are
// only written when the snapshot differs from the last one. Reports whether
// anything changed.
func (r *Renderer) SetSnapshot(snap bakery.Snapshot) bool {
	if r.mode != bakery.Dynamic {
		return false
	}
	if r.hasSnapshot && r.snapshot == snap {
		return false
	}

	u := uniformsFor(snap)
	r.program.Use()
	for _, v := range u.vectors {
		gl.Uniform3f(r.program.Uniform(v.name), v.value[0], v.value[1], v.value[2])
	}
	for _, s := range u.scalars {
		gl.Uniform1f(r.program.Uniform(s.name), s.value)
	}

	r.snapshot = snap
	r.hasSnapshot = true
	return true
}

// Draw renders the sky. Only the rotation of view is used so the sky stays
// centred on the camera.
func (r *Renderer) Draw(view, projection math.Mat4) {
	if r.mode == bakery.Static && r.uploaded == nil {
		return
	}
	if r.mode == bakery.Dynamic && !r.hasSnapshot {
		return
	}

	rot := view.RotationOnly()

	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)

	r.program.Use()
	gl.UniformMatrix4fv(r.program.Uniform("uView"), 1, false, rot.Ptr())
	gl.UniformMatrix4fv(r.program.Uniform("uProjection"), 1, false, projection.Ptr())

	if r.mode == bakery.Static {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, r.texture)
	}

	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(cubeVertices)/3))
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.DepthFunc(gl.LESS)
}

// Close releases GPU resources.
func (r *Renderer) Close() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.texture != 0 {
		gl.DeleteTextures(1, &r.texture)
	}
	if r.program != nil {
		r.program.Delete()
	}
}
