package canopy

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// View maps a region of a coordinate space onto a rectangle of a target.
// Src is the visible region in the drawing coordinates; Dst is the pixel
// rectangle of the target it is mapped to. Drawing outside Dst is clipped.
type View struct {
	Src Rect
	Dst Rect
}

// identityView returns a view that maps r onto itself.
func identityView(r Rect) View {
	return View{Src: r, Dst: r}
}

// GeoM returns the transform from drawing coordinates to target pixels.
func (v View) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-v.Src.X, -v.Src.Y)
	if v.Src.Width > 0 && v.Src.Height > 0 {
		g.Scale(v.Dst.Width/v.Src.Width, v.Dst.Height/v.Src.Height)
	}
	g.Translate(v.Dst.X, v.Dst.Y)
	return g
}

// Clip returns the target rectangle drawing is restricted to.
func (v View) Clip() Rect {
	return v.Dst
}

// Target is a drawing destination with an active view. Windows, viewport
// off-screen buffers and test recorders all implement it.
type Target interface {
	// Image returns the destination image.
	Image() *ebiten.Image
	// View returns the active view.
	View() View
	// SetView replaces the active view.
	SetView(View)
	// DefaultView returns the view that maps the image bounds onto themselves.
	DefaultView() View
}

// ImageTarget is a Target backed by an *ebiten.Image.
type ImageTarget struct {
	img  *ebiten.Image
	view View
}

// NewImageTarget wraps img. The active view starts as the default view.
func NewImageTarget(img *ebiten.Image) *ImageTarget {
	t := &ImageTarget{img: img}
	t.view = t.DefaultView()
	return t
}

// Image returns the wrapped image.
func (t *ImageTarget) Image() *ebiten.Image { return t.img }

// View returns the active view.
func (t *ImageTarget) View() View { return t.view }

// SetView replaces the active view.
func (t *ImageTarget) SetView(v View) { t.view = v }

// DefaultView returns the identity view over the image bounds.
func (t *ImageTarget) DefaultView() View {
	return identityView(rectFromImage(t.img.Bounds()))
}

// clippedImage returns the portion of t's image inside the active view's clip
// rectangle, or nil when nothing would be visible. ebiten sub-images keep the
// parent's coordinate system, so view transforms apply unchanged.
func clippedImage(t Target) *ebiten.Image {
	img := t.Image()
	if img == nil {
		return nil
	}
	clip := t.View().Clip().image().Intersect(img.Bounds())
	if clip.Empty() {
		return nil
	}
	if clip == img.Bounds() {
		return img
	}
	return img.SubImage(clip).(*ebiten.Image)
}
