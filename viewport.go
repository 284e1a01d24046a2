package canopy

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tone is an externally owned tint source that viewports can link to. A
// viewport never frees or copies a linked Tone; it reads it every draw, so
// one Tone can drive many viewports.
type Tone struct {
	Color Color
}

// NewTone creates a tint source with the given color.
func NewTone(c Color) *Tone {
	return &Tone{Color: c}
}

// dirty flags for a viewport's off-screen resources.
const (
	dirtyBounds uint8 = 1 << iota
	dirtyOverride
)

// viewport is the payload of a KindViewport node.
type viewport struct {
	ox, oy   float64
	src      Rect // visible region of child coordinate space; size = bounds
	children Stack

	tone   Color
	linked *Tone
	states *RenderStates

	// Off-screen resources, created lazily on draw.
	dirty  uint8
	rt     *ebiten.Image
	target *ImageTarget
	comp   *compositor
	allocs int // resource (re)creations, for diagnostics

	flash *flashOverlay
}

// flashOverlay is a color drawn over the viewport contents that fades out
// over a fixed number of frames.
type flashOverlay struct {
	color Color
	fade  *gween.Tween
	alpha float64
}

// NewViewport creates a viewport node placed at (x, y) on its parent showing
// a w x h region of its child coordinate space starting at (0, 0).
func NewViewport(name string, x, y, w, h float64) *Node {
	n := &Node{Name: name, Kind: KindViewport}
	nodeDefaults(n)
	n.vp = &viewport{
		ox:    x,
		oy:    y,
		src:   Rect{Width: w, Height: h},
		tone:  ColorWhite,
		dirty: dirtyBounds,
	}
	n.vp.children.host = n
	return n
}

// mustViewport returns n's viewport payload, panicking for other kinds.
func (n *Node) mustViewport(op string) *viewport {
	if n.vp == nil {
		panic("canopy: " + op + " called on " + n.Kind.String() + " node " + n.Name)
	}
	return n.vp
}

// --- Children ---

// Bind appends node to the viewport's children. Panics if n is not a viewport.
func (n *Node) Bind(node *Node) {
	n.mustViewport("Bind").children.Bind(node)
}

// ClearStack unbinds all children without disposing them.
func (n *Node) ClearStack() {
	n.mustViewport("ClearStack").children.Clear()
}

// Children returns the viewport's child stack.
func (n *Node) Children() *Stack {
	return &n.mustViewport("Children").children
}

// --- Geometry ---

// SetRect places the viewport at (x, y) on its parent with a w x h visible
// region. Changing the size releases the off-screen resources; they are
// recreated on the next draw.
func (n *Node) SetRect(x, y, w, h float64) {
	vp := n.mustViewport("SetRect")
	vp.ox, vp.oy = x, y
	if vp.src.Width == w && vp.src.Height == h {
		return
	}
	vp.src.Width, vp.src.Height = w, h
	vp.release()
	vp.dirty |= dirtyBounds
}

// Rect returns the viewport's placement and size on its parent.
func (n *Node) Rect() Rect {
	vp := n.mustViewport("Rect")
	return Rect{X: vp.ox, Y: vp.oy, Width: vp.src.Width, Height: vp.src.Height}
}

// SetOrigin moves the composited output to (ox, oy) in the parent's
// coordinates. No reallocation.
func (n *Node) SetOrigin(ox, oy float64) {
	vp := n.mustViewport("SetOrigin")
	vp.ox, vp.oy = ox, oy
}

// Origin returns the viewport's origin offset.
func (n *Node) Origin() (ox, oy float64) {
	vp := n.mustViewport("Origin")
	return vp.ox, vp.oy
}

// SetScroll sets the top-left of the visible region in child coordinates.
// No reallocation.
func (n *Node) SetScroll(x, y float64) {
	vp := n.mustViewport("SetScroll")
	vp.src.X, vp.src.Y = x, y
}

// Scroll returns the top-left of the visible region in child coordinates.
func (n *Node) Scroll() (x, y float64) {
	vp := n.mustViewport("Scroll")
	return vp.src.X, vp.src.Y
}

// SubView returns the view children are drawn through.
func (n *Node) SubView() View {
	return n.mustViewport("SubView").subView()
}

func (vp *viewport) subView() View {
	return View{Src: vp.src, Dst: Rect{Width: vp.src.Width, Height: vp.src.Height}}
}

// size returns the off-screen pixel size; non-positive when the bounds are
// malformed.
func (vp *viewport) size() (int, int) {
	return int(math.Ceil(vp.src.Width)), int(math.Ceil(vp.src.Height))
}

// --- Tint ---

// SetTone sets the viewport's own tint. A linked tone, when present, takes
// precedence.
func (n *Node) SetTone(c Color) {
	n.mustViewport("SetTone").tone = c
}

// Tone returns the viewport's own tint.
func (n *Node) Tone() Color {
	return n.mustViewport("Tone").tone
}

// SetLinkedTone links an externally owned tint source, or clears the link
// when t is nil. The viewport does not take ownership of t.
func (n *Node) SetLinkedTone(t *Tone) {
	n.mustViewport("SetLinkedTone").linked = t
}

// LinkedTone returns the linked tint source, or nil.
func (n *Node) LinkedTone() *Tone {
	return n.mustViewport("LinkedTone").linked
}

// UpdateTone returns the tint the next composite will use: the linked tone
// when one is set, otherwise the viewport's own tint.
func (n *Node) UpdateTone() Color {
	return n.mustViewport("UpdateTone").effectiveTone()
}

func (vp *viewport) effectiveTone() Color {
	if vp.linked != nil {
		return vp.linked.Color
	}
	return vp.tone
}

// --- Composition override ---

// SetRenderStates installs a composition override, or reverts to default
// compositing when states is nil. Adding or removing an override rebuilds
// the off-screen resources on the next draw.
func (n *Node) SetRenderStates(states *RenderStates) {
	vp := n.mustViewport("SetRenderStates")
	hadOverride := vp.states != nil
	vp.states = states
	if hadOverride != (states != nil) {
		vp.release()
		vp.dirty |= dirtyOverride
		return
	}
	if vp.comp != nil {
		vp.comp.states = states
		if states != nil && states.Shader != nil {
			vp.comp.shaderOp.Images[0] = vp.comp.src
		}
	}
}

// RenderStates returns the installed composition override, or nil.
func (n *Node) RenderStates() *RenderStates {
	return n.mustViewport("RenderStates").states
}

// --- Flash ---

// Flash draws c over the viewport contents and fades it out over the given
// number of frames. A zero-alpha color or non-positive duration cancels any
// active flash.
func (n *Node) Flash(c Color, frames int) {
	vp := n.mustViewport("Flash")
	if frames <= 0 || c.A <= 0 {
		vp.flash = nil
		return
	}
	vp.flash = &flashOverlay{
		color: c,
		fade:  gween.New(float32(c.A), 0, float32(frames), ease.Linear),
		alpha: c.A,
	}
}

// Flashing reports whether a flash is still fading out.
func (n *Node) Flashing() bool {
	return n.mustViewport("Flashing").flash != nil
}

// drawFlash fills the off-screen target with the flash color and advances
// the fade by one frame.
func (vp *viewport) drawFlash() {
	f := vp.flash
	if f == nil {
		return
	}
	c := f.color
	c.A = f.alpha
	var op ebiten.DrawImageOptions
	w, h := vp.size()
	op.GeoM.Scale(float64(w), float64(h))
	op.ColorScale = c.colorScale()
	vp.target.Image().DrawImage(whiteSubImage, &op)

	a, done := f.fade.Update(1)
	f.alpha = float64(a)
	if done {
		vp.flash = nil
	}
}

// --- Off-screen resources ---

// rebuild recreates the render target and compositor for the current bounds
// and override.
func (vp *viewport) rebuild(name string) {
	vp.release()
	vp.dirty = 0
	w, h := vp.size()
	if w <= 0 || h <= 0 {
		Logger().Warn("canopy: viewport has empty bounds, nothing will be drawn",
			"viewport", name, "width", vp.src.Width, "height", vp.src.Height)
		return
	}
	vp.rt = offscreenPool.Acquire(w, h)
	region := vp.rt.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
	vp.target = NewImageTarget(region)
	vp.comp = newCompositor(region, w, h, vp.states)
	vp.allocs++
}

// release returns the render target to the pool and drops the compositor.
func (vp *viewport) release() {
	if vp.rt != nil {
		offscreenPool.Release(vp.rt)
	}
	vp.rt = nil
	vp.target = nil
	vp.comp = nil
}

// hasResources reports whether the off-screen target and compositor exist.
func (vp *viewport) hasResources() bool {
	return vp.rt != nil && vp.comp != nil
}

// --- Drawing ---

// draw renders the children into the off-screen target and composites the
// result onto t at the origin offset, leaving t in the placement view.
func (vp *viewport) draw(n *Node, t Target) {
	if vp.dirty != 0 {
		vp.rebuild(n.Name)
	}
	if vp.target == nil {
		return
	}
	vp.target.Image().Clear()
	sub := vp.subView()
	vp.target.SetView(sub)
	drawStack(vp.target, &vp.children, sub)
	if vp.target == nil {
		// A child disposed or resized this viewport mid-draw.
		return
	}
	vp.drawFlash()

	w, h := float64(vp.comp.w), float64(vp.comp.h)
	place := View{Src: Rect{Width: w, Height: h}, Dst: Rect{X: vp.ox, Y: vp.oy, Width: w, Height: h}}
	t.SetView(place)
	dst := clippedImage(t)
	if dst == nil {
		return
	}
	vp.comp.draw(dst, place.GeoM(), vp.effectiveTone())
}
