package canopy

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefresh is how often the FPS widget redraws its text.
const fpsRefresh = 500 * time.Millisecond

// NewFPSWidget creates a drawable node that displays the current FPS and TPS.
// The text is refreshed about every half second. Bind it last, or give it a
// high Z, to keep it on top.
func NewFPSWidget() *Node {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	img := ebiten.NewImage(100, 32)
	var last time.Time

	n := NewDrawable("fps_widget", func(dst *ebiten.Image, geo ebiten.GeoM) {
		if now := time.Now(); now.Sub(last) >= fpsRefresh {
			last = now
			img.Clear()
			// Semi-transparent background for readability
			img.Fill(color.RGBA{0, 0, 0, 128})
			ebitenutil.DebugPrint(img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
		}
		var op ebiten.DrawImageOptions
		op.GeoM = geo
		dst.DrawImage(img, &op)
	})
	n.SetZ(1 << 20)
	return n
}
