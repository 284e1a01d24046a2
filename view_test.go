package canopy

import (
	"image"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestViewGeoM(t *testing.T) {
	tests := []struct {
		name         string
		v            View
		inX, inY     float64
		wantX, wantY float64
	}{
		{"identity", identityView(Rect{0, 0, 100, 100}), 10, 20, 10, 20},
		{"translate", View{Src: Rect{0, 0, 50, 50}, Dst: Rect{30, 40, 50, 50}}, 0, 0, 30, 40},
		{"scroll", View{Src: Rect{20, 10, 50, 50}, Dst: Rect{0, 0, 50, 50}}, 20, 10, 0, 0},
		{"scale", View{Src: Rect{0, 0, 50, 50}, Dst: Rect{0, 0, 100, 200}}, 10, 10, 20, 40},
		{"empty src skips scale", View{Src: Rect{5, 5, 0, 0}, Dst: Rect{0, 0, 10, 10}}, 5, 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.v.GeoM()
			x, y := g.Apply(tt.inX, tt.inY)
			assertNear(t, "x", x, tt.wantX)
			assertNear(t, "y", y, tt.wantY)
		})
	}
}

func TestViewClipIsDst(t *testing.T) {
	v := View{Src: Rect{1, 2, 3, 4}, Dst: Rect{5, 6, 7, 8}}
	if v.Clip() != v.Dst {
		t.Errorf("Clip = %v, want %v", v.Clip(), v.Dst)
	}
}

func TestImageTargetDefaultView(t *testing.T) {
	tgt := NewImageTarget(ebiten.NewImage(64, 32))
	want := View{Src: Rect{0, 0, 64, 32}, Dst: Rect{0, 0, 64, 32}}
	if tgt.DefaultView() != want {
		t.Errorf("DefaultView = %+v, want %+v", tgt.DefaultView(), want)
	}
	if tgt.View() != want {
		t.Error("a new target should start in its default view")
	}
}

func TestClippedImage(t *testing.T) {
	tgt := NewImageTarget(ebiten.NewImage(64, 64))

	if got := clippedImage(tgt); got != tgt.Image() {
		t.Error("default view should return the whole image")
	}

	tgt.SetView(View{Src: Rect{0, 0, 16, 16}, Dst: Rect{8, 8, 16, 16}})
	got := clippedImage(tgt)
	if got == nil {
		t.Fatal("clipped image should not be nil")
	}
	if got.Bounds() != image.Rect(8, 8, 24, 24) {
		t.Errorf("bounds = %v, want (8,8)-(24,24)", got.Bounds())
	}

	tgt.SetView(View{Src: Rect{0, 0, 16, 16}, Dst: Rect{100, 100, 16, 16}})
	if clippedImage(tgt) != nil {
		t.Error("a clip outside the image should yield nil")
	}

	tgt.SetView(View{Src: Rect{0, 0, 16, 16}, Dst: Rect{56, 56, 16, 16}})
	got = clippedImage(tgt)
	if got == nil || got.Bounds() != image.Rect(56, 56, 64, 64) {
		t.Errorf("partial clip = %v, want (56,56)-(64,64)", got)
	}
}
