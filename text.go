package canopy

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFontSize is the size of the font returned by DefaultFont.
const DefaultFontSize = 16

// Font wraps Ebitengine's text/v2 for TrueType font rendering.
type Font struct {
	face *text.GoTextFace
	size float64
	lh   float64 // cached line height
}

// LoadFont loads a TrueType or OpenType font from raw data at the given size.
func LoadFont(data []byte, size float64) (*Font, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("canopy: failed to parse font data: %w", err)
	}
	return newFont(source, size), nil
}

func newFont(source *text.GoTextFaceSource, size float64) *Font {
	face := &text.GoTextFace{Source: source, Size: size}
	m := face.Metrics()
	return &Font{face: face, size: size, lh: m.HAscent + m.HDescent + m.HLineGap}
}

var defaultFont = sync.OnceValues(func() (*Font, error) {
	return LoadFont(goregular.TTF, DefaultFontSize)
})

// DefaultFont returns the Go Regular font at DefaultFontSize. The face is
// parsed once and shared.
func DefaultFont() *Font {
	f, err := defaultFont()
	if err != nil {
		// goregular is embedded; a parse failure means a broken build.
		panic(err)
	}
	return f
}

// WithSize returns a font sharing f's face source at a different size.
func (f *Font) WithSize(size float64) *Font {
	return newFont(f.face.Source, size)
}

// Size returns the font size in pixels.
func (f *Font) Size() float64 {
	return f.size
}

// LineHeight returns the vertical distance between baselines.
func (f *Font) LineHeight() float64 {
	return f.lh
}

// MeasureString returns the width and height of the rendered text.
func (f *Font) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// Face returns the underlying GoTextFace for direct text/v2 rendering.
func (f *Font) Face() *text.GoTextFace {
	return f.face
}

// drawText renders the node's string with its font, tint and blend mode.
func drawText(n *Node, dst *ebiten.Image, geo ebiten.GeoM) {
	if n.Text == "" {
		return
	}
	f := n.Font
	if f == nil {
		f = DefaultFont()
	}
	op := &text.DrawOptions{}
	op.GeoM = geo
	op.ColorScale = n.Color.colorScale()
	op.Blend = n.BlendMode.EbitenBlend()
	op.LineSpacing = f.lh
	text.Draw(dst, n.Text, f.face, op)
}
