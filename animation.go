package canopy

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenColor, TweenTone, ScrollTo, ...) and call Update(dt) each frame.
// Values are written straight into the node, so they show on the next
// frame. If the target node is disposed, the group stops immediately.
//
// There is no global animation manager. Users call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	Done   bool
}

// Update advances all tweens by dt and writes values to the target fields.
// dt is in whatever unit the duration was given in: seconds or frames. If
// the target node has been disposed, Done is set to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// add registers a tween of *field towards to.
func (g *TweenGroup) add(field *float64, to float64, duration float32, fn ease.TweenFunc) {
	g.tweens[g.count] = gween.New(float32(*field), float32(to), duration, fn)
	g.fields[g.count] = field
	g.count++
}

// TweenPosition creates a TweenGroup that animates node.X and node.Y to the
// given target coordinates over the specified duration using the easing function.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: node}
	g.add(&node.X, toX, duration, fn)
	g.add(&node.Y, toY, duration, fn)
	return g
}

// TweenScale creates a TweenGroup that animates node.ScaleX and node.ScaleY to
// the given target values over the specified duration using the easing function.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: node}
	g.add(&node.ScaleX, toSX, duration, fn)
	g.add(&node.ScaleY, toSY, duration, fn)
	return g
}

// TweenRotation creates a TweenGroup that animates node.Angle to the target
// value in radians.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: node}
	g.add(&node.Angle, to, duration, fn)
	return g
}

// TweenColor creates a TweenGroup that animates all four components of
// node.Color (R, G, B, A) to the target color over the specified duration.
func TweenColor(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	return tweenColor(node, &node.Color, to, duration, fn)
}

// TweenTone animates a viewport's own tint towards to. A linked tone still
// takes precedence while the tween runs. Panics if node is not a viewport.
func TweenTone(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	return tweenColor(node, &node.mustViewport("TweenTone").tone, to, duration, fn)
}

// ScrollTo animates a viewport's scroll position so that (x, y) in child
// coordinates ends up at the top-left of the visible region.
// Panics if node is not a viewport.
func ScrollTo(node *Node, x, y float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	vp := node.mustViewport("ScrollTo")
	g := &TweenGroup{target: node}
	g.add(&vp.src.X, x, duration, fn)
	g.add(&vp.src.Y, y, duration, fn)
	return g
}

// TweenOrigin animates a viewport's origin offset on its parent.
// Panics if node is not a viewport.
func TweenOrigin(node *Node, ox, oy float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	vp := node.mustViewport("TweenOrigin")
	g := &TweenGroup{target: node}
	g.add(&vp.ox, ox, duration, fn)
	g.add(&vp.oy, oy, duration, fn)
	return g
}

func tweenColor(node *Node, c *Color, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: node}
	g.add(&c.R, to.R, duration, fn)
	g.add(&c.G, to.G, duration, fn)
	g.add(&c.B, to.B, duration, fn)
	g.add(&c.A, to.A, duration, fn)
	return g
}
