package canopy

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ShapeType selects the geometry of a Shape.
type ShapeType uint8

const (
	ShapeRect    ShapeType = iota // Width x Height rectangle from the local origin
	ShapeCircle                   // circle of Radius centered on the local origin
	ShapePolygon                  // closed polygon through Points
)

// Shape is the geometry of a KindShape node. Fill vertices are built lazily
// and cached until the geometry is marked dirty.
type Shape struct {
	Type          ShapeType
	Width, Height float64
	Radius        float64
	Points        []Vec2

	dirty bool
	verts []ebiten.Vertex
	inds  []uint16
	work  []ebiten.Vertex // per-draw transformed copy of verts
}

// NewRectShape creates a filled rectangle node.
func NewRectShape(name string, w, h float64, c Color) *Node {
	n := &Node{Name: name, Kind: KindShape, Shape: &Shape{Type: ShapeRect, Width: w, Height: h, dirty: true}}
	nodeDefaults(n)
	n.Color = c
	return n
}

// NewCircleShape creates a filled circle node.
func NewCircleShape(name string, radius float64, c Color) *Node {
	n := &Node{Name: name, Kind: KindShape, Shape: &Shape{Type: ShapeCircle, Radius: radius, dirty: true}}
	nodeDefaults(n)
	n.Color = c
	return n
}

// NewPolygonShape creates a filled polygon node. Fewer than three points
// draw nothing.
func NewPolygonShape(name string, points []Vec2, c Color) *Node {
	n := &Node{Name: name, Kind: KindShape, Shape: &Shape{Type: ShapePolygon, Points: points, dirty: true}}
	nodeDefaults(n)
	n.Color = c
	return n
}

// MarkDirty rebuilds the fill geometry on the next draw. Call it after
// changing Width, Height, Radius or Points.
func (s *Shape) MarkDirty() {
	s.dirty = true
}

// path builds the outline of the shape in local coordinates.
func (s *Shape) path() (*vector.Path, bool) {
	var p vector.Path
	switch s.Type {
	case ShapeRect:
		if s.Width <= 0 || s.Height <= 0 {
			return nil, false
		}
		w, h := float32(s.Width), float32(s.Height)
		p.MoveTo(0, 0)
		p.LineTo(w, 0)
		p.LineTo(w, h)
		p.LineTo(0, h)
		p.Close()
	case ShapeCircle:
		if s.Radius <= 0 {
			return nil, false
		}
		p.Arc(0, 0, float32(s.Radius), 0, 2*math.Pi, vector.Clockwise)
		p.Close()
	case ShapePolygon:
		if len(s.Points) < 3 {
			return nil, false
		}
		p.MoveTo(float32(s.Points[0].X), float32(s.Points[0].Y))
		for _, pt := range s.Points[1:] {
			p.LineTo(float32(pt.X), float32(pt.Y))
		}
		p.Close()
	default:
		return nil, false
	}
	return &p, true
}

// geometry returns the cached fill triangles, rebuilding them when dirty.
func (s *Shape) geometry() ([]ebiten.Vertex, []uint16) {
	if !s.dirty {
		return s.verts, s.inds
	}
	s.dirty = false
	s.verts = s.verts[:0]
	s.inds = s.inds[:0]
	p, ok := s.path()
	if !ok {
		return nil, nil
	}
	s.verts, s.inds = p.AppendVerticesAndIndicesForFilling(s.verts, s.inds)
	return s.verts, s.inds
}

// drawShape fills the node's shape with its color under geo.
func drawShape(n *Node, dst *ebiten.Image, geo ebiten.GeoM) {
	if n.Shape == nil {
		return
	}
	verts, inds := n.Shape.geometry()
	if len(verts) == 0 || len(inds) == 0 {
		return
	}
	s := n.Shape
	if cap(s.work) < len(verts) {
		s.work = make([]ebiten.Vertex, len(verts))
	}
	s.work = s.work[:len(verts)]
	// Vertex colors are straight alpha (the default ColorScaleMode).
	c := n.Color
	r, g, b, a := float32(c.R), float32(c.G), float32(c.B), float32(c.A)
	for i, v := range verts {
		x, y := geo.Apply(float64(v.DstX), float64(v.DstY))
		s.work[i] = ebiten.Vertex{
			DstX: float32(x), DstY: float32(y),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		}
	}
	var op ebiten.DrawTrianglesOptions
	op.Blend = n.BlendMode.EbitenBlend()
	op.AntiAlias = true
	dst.DrawTriangles(s.work, inds, whiteSubImage, &op)
}
