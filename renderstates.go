package canopy

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// RenderStates is a custom composition override for a viewport: the blend
// mode used when its off-screen result is drawn onto the parent, and an
// optional Kage shader with its uniforms. A viewport owns the RenderStates
// installed on it.
//
// Shaders receive the off-screen result as imageSrc0 and the viewport tint
// as the color argument of Fragment.
type RenderStates struct {
	Blend    BlendMode
	Shader   *ebiten.Shader
	Uniforms map[string]any
}

// NewBlendStates returns render states that only change the blend mode.
func NewBlendStates(mode BlendMode) *RenderStates {
	return &RenderStates{Blend: mode}
}

// --- Kage shader sources ---
// Ebitengine uses premultiplied alpha; shaders un-premultiply before
// processing and re-premultiply their output.

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a) * color
}
`

// toneShaderSrc shifts each channel by Tone.rgb (in [-1, 1]) and mixes
// towards the luminance by Tone.a (the gray amount, in [0, 1]).
const toneShaderSrc = `//kage:unit pixels
package main

var Tone vec4

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a == 0 {
		return vec4(0)
	}
	c.rgb /= c.a
	lum := dot(c.rgb, vec3(0.299, 0.587, 0.114))
	rgb := mix(c.rgb, vec3(lum), Tone.a)
	rgb = clamp(rgb+Tone.rgb, 0, 1)
	return vec4(rgb*c.a, c.a) * color
}
`

var (
	colorMatrixShader = sync.OnceValues(func() (*ebiten.Shader, error) {
		return ebiten.NewShader([]byte(colorMatrixShaderSrc))
	})
	toneShader = sync.OnceValues(func() (*ebiten.Shader, error) {
		return ebiten.NewShader([]byte(toneShaderSrc))
	})
)

// --- Color matrix ---

// ColorMatrixStates wraps render states driven by a 4x5 color matrix stored
// in row-major order: [R_r, R_g, R_b, R_a, R_offset, G_r, ...].
type ColorMatrixStates struct {
	*RenderStates
	matrix [20]float32
}

// NewColorMatrixStates creates color matrix render states initialized to the
// identity.
func NewColorMatrixStates() (*ColorMatrixStates, error) {
	shader, err := colorMatrixShader()
	if err != nil {
		return nil, fmt.Errorf("canopy: failed to compile color matrix shader: %w", err)
	}
	s := &ColorMatrixStates{RenderStates: &RenderStates{Shader: shader}}
	s.SetMatrix([20]float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	})
	return s, nil
}

// SetMatrix replaces the color matrix.
func (s *ColorMatrixStates) SetMatrix(m [20]float64) {
	for i, v := range m {
		s.matrix[i] = float32(v)
	}
	s.Uniforms = map[string]any{"Matrix": s.matrix[:]}
}

// SetBrightness sets the matrix to adjust brightness by the given offset [-1, 1].
func (s *ColorMatrixStates) SetBrightness(b float64) {
	s.SetMatrix([20]float64{
		1, 0, 0, 0, b,
		0, 1, 0, 0, b,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	})
}

// SetContrast sets the matrix to adjust contrast. c=1 is normal, 0=gray, >1 is higher.
func (s *ColorMatrixStates) SetContrast(c float64) {
	t := (1.0 - c) / 2.0
	s.SetMatrix([20]float64{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	})
}

// SetSaturation sets the matrix to adjust saturation. s=1 is normal, 0=grayscale.
func (s *ColorMatrixStates) SetSaturation(sat float64) {
	sr := (1 - sat) * 0.299
	sg := (1 - sat) * 0.587
	sb := (1 - sat) * 0.114
	s.SetMatrix([20]float64{
		sr + sat, sg, sb, 0, 0,
		sr, sg + sat, sb, 0, 0,
		sr, sg, sb + sat, 0, 0,
		0, 0, 0, 1, 0,
	})
}

// --- Tone ---

// NewToneStates returns render states that shift colors by (r, g, b) in
// [-1, 1] and desaturate by gray in [0, 1] when the viewport is composited.
func NewToneStates(r, g, b, gray float64) (*RenderStates, error) {
	shader, err := toneShader()
	if err != nil {
		return nil, fmt.Errorf("canopy: failed to compile tone shader: %w", err)
	}
	return &RenderStates{Shader: shader, Uniforms: toneUniforms(r, g, b, gray)}, nil
}

// toneUniforms builds the tone shader's uniforms, clamping each input to its
// valid range.
func toneUniforms(r, g, b, gray float64) map[string]any {
	return map[string]any{
		"Tone": []float32{
			float32(clampRange(r, -1, 1)),
			float32(clampRange(g, -1, 1)),
			float32(clampRange(b, -1, 1)),
			float32(clamp01(gray)),
		},
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
