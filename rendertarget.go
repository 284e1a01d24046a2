package canopy

import (
	"image"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// renderTexturePool manages reusable offscreen ebiten.Images keyed by
// power-of-two dimensions. Viewports resized back and forth reuse the same
// textures instead of reallocating. Safe for concurrent use by independent
// render loops.
type renderTexturePool struct {
	mu      sync.Mutex
	buckets map[uint64][]*ebiten.Image
}

// offscreenPool backs every viewport's off-screen render target.
var offscreenPool renderTexturePool

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared offscreen image with at least (w, h) pixels.
// Dimensions are rounded up to the next power of two.
func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	p.mu.Lock()
	if stack := p.buckets[key]; len(stack) > 0 {
		img := stack[len(stack)-1]
		stack[len(stack)-1] = nil
		p.buckets[key] = stack[:len(stack)-1]
		p.mu.Unlock()
		img.Clear()
		return img
	}
	p.mu.Unlock()

	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, pw, ph),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the pool for reuse. The image is cleared on
// next Acquire, not here.
func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

// compositor draws a viewport's off-screen result onto its parent. It holds
// the source region and the option templates so per-frame compositing only
// fills in the transform and tint.
type compositor struct {
	src      *ebiten.Image // w x h region of the off-screen texture
	w, h     int
	states   *RenderStates
	imageOp  ebiten.DrawImageOptions
	shaderOp ebiten.DrawRectShaderOptions
}

func newCompositor(src *ebiten.Image, w, h int, states *RenderStates) *compositor {
	c := &compositor{src: src, w: w, h: h, states: states}
	if states != nil && states.Shader != nil {
		c.shaderOp.Images[0] = src
	}
	return c
}

// draw composites the source onto dst under geo with the given tint and the
// compositor's render states.
func (c *compositor) draw(dst *ebiten.Image, geo ebiten.GeoM, tint Color) {
	blend := c.blend()
	if c.states != nil && c.states.Shader != nil {
		c.shaderOp.GeoM = geo
		c.shaderOp.ColorScale = tint.colorScale()
		c.shaderOp.Blend = blend
		c.shaderOp.Uniforms = c.states.Uniforms
		dst.DrawRectShader(c.w, c.h, c.states.Shader, &c.shaderOp)
		return
	}
	c.imageOp.GeoM = geo
	c.imageOp.ColorScale = tint.colorScale()
	c.imageOp.Blend = blend
	dst.DrawImage(c.src, &c.imageOp)
}

// blend returns the override's blend, or source-over without one.
func (c *compositor) blend() ebiten.Blend {
	if c.states == nil {
		return ebiten.BlendSourceOver
	}
	return c.states.Blend.EbitenBlend()
}
