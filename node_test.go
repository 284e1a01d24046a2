package canopy

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constructor defaults ---

func TestNewDrawableDefaults(t *testing.T) {
	n := NewDrawable("d", func(*ebiten.Image, ebiten.GeoM) {})
	assertNodeDefaults(t, n, "d", KindDrawable)
	if n.DrawFunc == nil {
		t.Error("DrawFunc should be set")
	}
}

func TestNewSpriteDefaults(t *testing.T) {
	img := ebiten.NewImage(4, 4)
	n := NewSprite("spr", img)
	assertNodeDefaults(t, n, "spr", KindSprite)
	if n.Image != img {
		t.Error("Image not set")
	}
}

func TestNewTextDefaults(t *testing.T) {
	n := NewText("text", "hello", nil)
	assertNodeDefaults(t, n, "text", KindText)
	if n.Text != "hello" {
		t.Errorf("Text = %q, want %q", n.Text, "hello")
	}
}

func TestNewShapeDefaults(t *testing.T) {
	red := Color{1, 0, 0, 1}
	n := NewRectShape("rect", 10, 20, red)
	if n.Kind != KindShape || n.Shape == nil || n.Shape.Type != ShapeRect {
		t.Fatalf("kind = %v, shape = %+v", n.Kind, n.Shape)
	}
	if n.Color != red {
		t.Errorf("Color = %v, want %v", n.Color, red)
	}
}

func TestNewViewportDefaults(t *testing.T) {
	n := NewViewport("vp", 10, 20, 100, 50)
	assertNodeDefaults(t, n, "vp", KindViewport)
	if got := n.Rect(); got != (Rect{10, 20, 100, 50}) {
		t.Errorf("Rect = %v, want {10 20 100 50}", got)
	}
	if n.Tone() != ColorWhite {
		t.Errorf("Tone = %v, want white", n.Tone())
	}
	if n.Children().Len() != 0 {
		t.Error("new viewport should have no children")
	}
}

func assertNodeDefaults(t *testing.T, n *Node, name string, kind NodeKind) {
	t.Helper()
	if n.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if n.Name != name {
		t.Errorf("Name = %q, want %q", n.Name, name)
	}
	if n.Kind != kind {
		t.Errorf("Kind = %v, want %v", n.Kind, kind)
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		t.Errorf("Scale = (%v, %v), want (1, 1)", n.ScaleX, n.ScaleY)
	}
	if n.Color != ColorWhite && kind != KindShape {
		t.Errorf("Color = %v, want white", n.Color)
	}
	if !n.Visible() {
		t.Error("Visible should be true")
	}
	if n.Owner() != nil {
		t.Error("new node should not be bound")
	}
}

func TestUniqueIDs(t *testing.T) {
	a := NewDrawable("a", nil)
	b := NewDrawable("b", nil)
	if a.ID == b.ID {
		t.Errorf("IDs should differ, both are %d", a.ID)
	}
}

// --- Classification ---

func TestClassificationPredicates(t *testing.T) {
	tests := []struct {
		name                    string
		n                       *Node
		viewport, sprite, shape bool
	}{
		{"drawable", NewDrawable("d", nil), false, false, false},
		{"sprite", NewSprite("s", nil), false, true, false},
		{"shape", NewCircleShape("c", 5, ColorWhite), false, false, true},
		{"text", NewText("t", "x", nil), false, false, false},
		{"viewport", NewViewport("v", 0, 0, 10, 10), true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.IsViewport(); got != tt.viewport {
				t.Errorf("IsViewport = %v, want %v", got, tt.viewport)
			}
			if got := tt.n.IsPureSprite(); got != tt.sprite {
				t.Errorf("IsPureSprite = %v, want %v", got, tt.sprite)
			}
			if got := tt.n.IsShape(); got != tt.shape {
				t.Errorf("IsShape = %v, want %v", got, tt.shape)
			}
		})
	}
}

func TestViewportOpOnLeafPanics(t *testing.T) {
	n := NewSprite("s", nil)
	defer func() {
		if recover() == nil {
			t.Error("expected panic calling SetRect on a sprite")
		}
	}()
	n.SetRect(0, 0, 10, 10)
}

// --- Transform ---

func TestLocalGeoM(t *testing.T) {
	n := NewDrawable("d", nil)
	n.X, n.Y = 100, 50
	n.ScaleX, n.ScaleY = 2, 3
	n.OriginX, n.OriginY = 5, 5

	g := n.localGeoM()
	x, y := g.Apply(5, 5)
	assertNear(t, "origin x", x, 100)
	assertNear(t, "origin y", y, 50)
	x, y = g.Apply(6, 6)
	assertNear(t, "x", x, 102)
	assertNear(t, "y", y, 53)
}

// --- Z order ---

func TestSetZMarksOwnerUnsorted(t *testing.T) {
	var s Stack
	n := NewDrawable("n", nil)
	s.Bind(n)
	s.ordered()
	if !s.sorted {
		t.Fatal("stack should be sorted after ordered()")
	}
	n.SetZ(5)
	if s.sorted {
		t.Error("SetZ should invalidate the owner's order")
	}
	if n.Z() != 5 {
		t.Errorf("Z = %d, want 5", n.Z())
	}
}

func TestSetZSameValueKeepsOrder(t *testing.T) {
	var s Stack
	n := NewDrawable("n", nil)
	s.Bind(n)
	s.ordered()
	n.SetZ(0)
	if !s.sorted {
		t.Error("SetZ to the same value should not invalidate the order")
	}
}

// --- Drawing ---

func TestDrawHiddenNodeIsNoOp(t *testing.T) {
	called := false
	n := NewDrawable("d", func(*ebiten.Image, ebiten.GeoM) { called = true })
	n.SetVisible(false)
	rt := newRecordingTarget(32, 32)
	n.Draw(rt)
	if called {
		t.Error("hidden node should not draw")
	}
	if rt.setViews != 0 {
		t.Errorf("hidden node changed the view %d times", rt.setViews)
	}
}

func TestDrawSetsContextView(t *testing.T) {
	var gotGeo ebiten.GeoM
	n := NewDrawable("d", func(_ *ebiten.Image, geo ebiten.GeoM) { gotGeo = geo })
	n.X, n.Y = 3, 4
	rt := newRecordingTarget(32, 32)
	rt.SetView(View{Src: Rect{0, 0, 32, 32}, Dst: Rect{10, 10, 32, 32}})
	rt.resetCounts()

	n.Draw(rt)
	if rt.defaultResets != 1 {
		t.Errorf("default view resets = %d, want 1", rt.defaultResets)
	}
	x, y := gotGeo.Apply(0, 0)
	assertNear(t, "x", x, 3)
	assertNear(t, "y", y, 4)
}

func TestDrawFastKeepsActiveView(t *testing.T) {
	var gotGeo ebiten.GeoM
	n := NewDrawable("d", func(_ *ebiten.Image, geo ebiten.GeoM) { gotGeo = geo })
	rt := newRecordingTarget(32, 32)
	rt.SetView(View{Src: Rect{0, 0, 16, 16}, Dst: Rect{8, 8, 16, 16}})
	rt.resetCounts()

	n.DrawFast(rt)
	if rt.setViews != 0 {
		t.Errorf("DrawFast changed the view %d times", rt.setViews)
	}
	x, y := gotGeo.Apply(0, 0)
	assertNear(t, "x", x, 8)
	assertNear(t, "y", y, 8)
}

func TestDrawInsideViewportUsesSubView(t *testing.T) {
	vp := NewViewport("vp", 0, 0, 16, 16)
	vp.SetScroll(4, 4)
	var gotGeo ebiten.GeoM
	n := NewDrawable("d", func(_ *ebiten.Image, geo ebiten.GeoM) { gotGeo = geo })
	vp.Bind(n)

	rt := newRecordingTarget(32, 32)
	n.Draw(rt)
	if rt.View() != vp.SubView() {
		t.Errorf("view = %+v, want sub-view %+v", rt.View(), vp.SubView())
	}
	x, y := gotGeo.Apply(4, 4)
	assertNear(t, "x", x, 0)
	assertNear(t, "y", y, 0)
}

// --- Detach and disposal ---

func TestDetach(t *testing.T) {
	var s Stack
	n := NewDrawable("n", nil)
	s.Bind(n)
	n.Detach()
	if s.Len() != 0 || n.Owner() != nil {
		t.Errorf("after Detach: len = %d, owner = %v", s.Len(), n.Owner())
	}
	n.Detach() // no-op when unbound
}

func TestDispose(t *testing.T) {
	var s Stack
	n := NewSprite("n", ebiten.NewImage(2, 2))
	s.Bind(n)
	n.Dispose()
	if !n.IsDisposed() {
		t.Error("IsDisposed should be true")
	}
	if s.Len() != 0 {
		t.Error("disposed node should be removed from its stack")
	}
	if n.ID != 0 || n.Image != nil {
		t.Error("Dispose should clear ID and Image")
	}
	n.Dispose() // second call is a no-op
}

func TestDisposeViewportUnbindsChildren(t *testing.T) {
	vp := NewViewport("vp", 0, 0, 10, 10)
	child := NewDrawable("c", nil)
	vp.Bind(child)
	vp.SetLinkedTone(NewTone(ColorWhite))

	vp.Dispose()
	if child.Owner() != nil {
		t.Error("child should be unbound")
	}
	if child.IsDisposed() {
		t.Error("child should not be disposed")
	}
	if vp.vp.linked != nil || vp.vp.hasResources() {
		t.Error("viewport should drop its linked tone and resources")
	}
}

func TestBindDisposedPanics(t *testing.T) {
	n := NewDrawable("n", nil)
	n.Dispose()
	var s Stack
	defer func() {
		if recover() == nil {
			t.Error("expected panic binding a disposed node")
		}
	}()
	s.Bind(n)
}
