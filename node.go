package canopy

import (
	"image"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// DrawFunc renders a KindDrawable node. dst is already clipped to the active
// view; geo maps the node's local coordinates to dst pixels.
type DrawFunc func(dst *ebiten.Image, geo ebiten.GeoM)

// Node is the drawable scene element. A single flat struct tagged by Kind is
// used for every variant so that classification on the per-frame path is a
// field comparison rather than interface dispatch.
//
// A node becomes live once bound to a Stack (the render loop's top-level
// stack or a viewport's children). The stack does not own the node; it only
// keeps a reference, and the node keeps a weak back-reference to the stack so
// it can detach itself.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Kind NodeKind

	// Transform (local). Viewports ignore these; see SetRect and SetScroll.
	X, Y             float64
	ScaleX, ScaleY   float64
	Angle            float64 // radians, clockwise
	OriginX, OriginY float64

	// Appearance
	Color     Color
	BlendMode BlendMode

	// Sprite fields (KindSprite)
	Image   *ebiten.Image
	SrcRect image.Rectangle // zero rectangle draws the whole image

	// Shape fields (KindShape)
	Shape *Shape

	// Text fields (KindText)
	Text string
	Font *Font

	// Custom drawing (KindDrawable)
	DrawFunc DrawFunc

	// Metadata
	UserData any

	z        int
	visible  bool
	owner    *Stack
	disposed bool
	vp       *viewport
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Color = ColorWhite
	n.visible = true
}

// NewDrawable creates a node rendered by fn.
func NewDrawable(name string, fn DrawFunc) *Node {
	n := &Node{Name: name, Kind: KindDrawable, DrawFunc: fn}
	nodeDefaults(n)
	return n
}

// NewSprite creates a sprite node that renders img.
func NewSprite(name string, img *ebiten.Image) *Node {
	n := &Node{Name: name, Kind: KindSprite, Image: img}
	nodeDefaults(n)
	return n
}

// NewText creates a text node. A nil font uses DefaultFont.
func NewText(name, content string, font *Font) *Node {
	n := &Node{Name: name, Kind: KindText, Text: content, Font: font}
	nodeDefaults(n)
	return n
}

// --- Classification ---

// IsViewport reports whether the node composites a sub-scene of its own.
func (n *Node) IsViewport() bool { return n.Kind == KindViewport }

// IsPureSprite reports whether the node is a plain image sprite.
func (n *Node) IsPureSprite() bool { return n.Kind == KindSprite }

// IsShape reports whether the node is a filled shape.
func (n *Node) IsShape() bool { return n.Kind == KindShape }

// --- Ordering and visibility ---

// Z returns the node's z-order.
func (n *Node) Z() int { return n.z }

// SetZ sets the z-order. Lower values draw first; equal values keep bind
// order. Takes effect on the next frame.
func (n *Node) SetZ(z int) {
	if n.z == z {
		return
	}
	n.z = z
	if n.owner != nil {
		n.owner.sorted = false
	}
}

// Visible reports whether the node is drawn.
func (n *Node) Visible() bool { return n.visible }

// SetVisible shows or hides the node. A hidden viewport skips all of its
// off-screen work.
func (n *Node) SetVisible(v bool) { n.visible = v }

// Owner returns the stack the node is bound to, or nil.
func (n *Node) Owner() *Stack { return n.owner }

// --- Drawing ---

// Draw renders the node onto t. Leaf nodes first reset t to the context of
// the stack that owns them (the owning viewport's sub-view, or t's default
// view); viewports always manage t's view themselves. No-op when hidden.
func (n *Node) Draw(t Target) {
	if !n.visible || n.disposed {
		return
	}
	if n.Kind == KindViewport {
		n.vp.draw(n, t)
		return
	}
	t.SetView(n.contextView(t))
	n.drawLeaf(t)
}

// DrawFast renders the node under t's active view without establishing a
// context first. Stack traversal uses it once the context switch rule has
// already put t in the right view. No-op when hidden.
func (n *Node) DrawFast(t Target) {
	if !n.visible || n.disposed {
		return
	}
	if n.Kind == KindViewport {
		n.vp.draw(n, t)
		return
	}
	n.drawLeaf(t)
}

// contextView returns the view a standalone Draw restores before drawing.
func (n *Node) contextView(t Target) View {
	if n.owner != nil && n.owner.host != nil {
		return n.owner.host.vp.subView()
	}
	return t.DefaultView()
}

// localGeoM computes the node's local transform:
//
//	Translate(-Origin) -> Scale -> Rotate -> Translate(X, Y)
func (n *Node) localGeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-n.OriginX, -n.OriginY)
	g.Scale(n.ScaleX, n.ScaleY)
	if n.Angle != 0 {
		g.Rotate(n.Angle)
	}
	g.Translate(n.X, n.Y)
	return g
}

// drawLeaf renders a non-viewport node under t's active view.
func (n *Node) drawLeaf(t Target) {
	dst := clippedImage(t)
	if dst == nil {
		return
	}
	geo := n.localGeoM()
	geo.Concat(t.View().GeoM())
	switch n.Kind {
	case KindSprite:
		drawSprite(n, dst, geo)
	case KindShape:
		drawShape(n, dst, geo)
	case KindText:
		drawText(n, dst, geo)
	case KindDrawable:
		if n.DrawFunc != nil {
			n.DrawFunc(dst, geo)
		}
	}
}

// drawSprite draws the sprite's image (or SrcRect region of it) with the
// node's tint and blend mode.
func drawSprite(n *Node, dst *ebiten.Image, geo ebiten.GeoM) {
	if n.Image == nil {
		return
	}
	src := n.Image
	if !n.SrcRect.Empty() {
		src = n.Image.SubImage(n.SrcRect).(*ebiten.Image)
	}
	var op ebiten.DrawImageOptions
	op.GeoM = geo
	op.ColorScale = n.Color.colorScale()
	op.Blend = n.BlendMode.EbitenBlend()
	dst.DrawImage(src, &op)
}

// --- Detach and disposal ---

// Detach removes the node from the stack that owns it. No-op when unbound.
func (n *Node) Detach() {
	if n.owner == nil {
		return
	}
	n.owner.Remove(n)
}

// Dispose detaches the node and marks it unusable. A viewport releases its
// off-screen resources and unbinds (but does not dispose) its children.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.Detach()
	if n.vp != nil {
		n.vp.children.Clear()
		n.vp.release()
		n.vp.linked = nil
		n.vp.states = nil
	}
	n.disposed = true
	n.ID = 0
	n.Image = nil
	n.Shape = nil
	n.Font = nil
	n.DrawFunc = nil
	n.UserData = nil
}

// IsDisposed reports whether Dispose has been called.
func (n *Node) IsDisposed() bool {
	return n.disposed
}
