// Package canopy is a retained-mode 2D scene renderer for [Ebitengine].
//
// Canopy draws stacks of nodes into a window once per frame. A node is
// either a plain drawable (sprite, shape, text, or a custom draw function)
// or a viewport that renders its own child stack into an off-screen target
// and composites the result onto its parent.
//
// # Quick start
//
// [RenderLoop] owns the window and the top-level stack. On desktop the
// window is driven by Ebitengine, which must own the main goroutine, so the
// frame loop runs from [EbitenPlatform.Run]:
//
//	p := canopy.NewEbitenPlatform()
//	loop := canopy.NewRenderLoop(p, canopy.MapSettings{
//		canopy.SettingTitle:       "My Game",
//		canopy.SettingScreenWidth: 800,
//	})
//	err := p.Run(func() error {
//		if err := loop.Start(); err != nil {
//			return err
//		}
//		for {
//			if err := loop.Update(); err != nil {
//				return err
//			}
//		}
//	})
//
// Update returns [ErrWindowClosedByUser] once the user closes the window and
// the close handler (see [RenderLoop.SetCloseHandler]) does not veto it.
//
// For tests and off-screen rendering use [NewHeadlessPlatform] instead; it
// renders into plain images and lets tests inject window events.
//
// # Nodes and stacks
//
// Create nodes with typed constructors: [NewSprite], [NewText],
// [NewRectShape], [NewCircleShape], [NewPolygonShape], [NewDrawable] and
// [NewViewport]. Bind them to the loop or to a viewport:
//
//	vp := canopy.NewViewport("minimap", 16, 16, 160, 120)
//	loop.Bind(vp)
//
//	hero := canopy.NewSprite("hero", heroImage)
//	hero.X, hero.Y = 100, 50
//	vp.Bind(hero)
//
// Stacks never own their nodes. A node belongs to at most one stack at a
// time; [Node.Dispose] detaches it for good.
//
// # Viewports
//
// A viewport shows a region of its child coordinate space ([Node.SetScroll])
// at an offset on its parent ([Node.SetOrigin]). Its output is multiplied by
// a tint, taken from a shared [Tone] when one is linked. A [RenderStates]
// override replaces default compositing with a blend mode and an optional
// Kage shader; see [NewColorMatrixStates] and [NewToneStates].
//
// Tweens (via [gween]) animate node fields, viewport tints and scrolling:
// see [TweenGroup].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package canopy
