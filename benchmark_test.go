package canopy

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// setupBenchStack creates a stack with n sprite nodes for benchmark use.
func setupBenchStack(n int) *Stack {
	var s Stack
	img := ebiten.NewImage(32, 32)
	for i := 0; i < n; i++ {
		sp := NewSprite("sp", img)
		sp.X = float64(i%100) * 40
		sp.Y = float64(i/100) * 40
		s.Bind(sp)
	}
	return &s
}

// --- Stack drawing ---

func BenchmarkDrawStack_10000Sprites(b *testing.B) {
	s := setupBenchStack(10000)
	tgt := NewImageTarget(ebiten.NewImage(1280, 720))

	// Warm up: first draw builds the sort order.
	drawStack(tgt, s, tgt.DefaultView())

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		drawStack(tgt, s, tgt.DefaultView())
	}
}

func BenchmarkDrawStack_ViewportGrid(b *testing.B) {
	var s Stack
	for i := range 16 {
		vp := NewViewport("cell", float64(i%4)*160, float64(i/4)*120, 160, 120)
		for j := range 50 {
			sp := NewRectShape("r", 8, 8, ColorWhite)
			sp.X, sp.Y = float64(j*3), float64(j*2)
			vp.Bind(sp)
		}
		s.Bind(vp)
	}
	tgt := NewImageTarget(ebiten.NewImage(640, 480))
	drawStack(tgt, &s, tgt.DefaultView())

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		drawStack(tgt, &s, tgt.DefaultView())
	}
}

// --- Sorting ---

func BenchmarkRebuildOrder_Sorted(b *testing.B) {
	s := setupBenchStack(1000)
	b.ReportAllocs()
	for b.Loop() {
		s.sorted = false
		s.ordered()
	}
}

func BenchmarkRebuildOrder_Reversed(b *testing.B) {
	s := setupBenchStack(1000)
	for i, n := range s.Nodes() {
		n.SetZ(1000 - i)
	}
	b.ReportAllocs()
	for b.Loop() {
		s.sorted = false
		s.ordered()
	}
}
