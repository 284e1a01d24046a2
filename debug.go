package canopy

import (
	"fmt"
	"time"
)

// frameStats holds per-frame timing and draw metrics.
// Only populated when the render loop is in debug mode.
type frameStats struct {
	drawTime    time.Duration
	presentTime time.Duration
	nodeCount   int
	viewResets  int
	events      int
}

// debugLog logs frame timing and draw stats at debug level.
func (l *RenderLoop) debugLog(stats frameStats) {
	Logger().Debug("canopy: frame",
		"frame", l.Frames(),
		"draw", stats.drawTime,
		"present", stats.presentTime,
		"total", stats.drawTime+stats.presentTime,
		"nodes", stats.nodeCount,
		"view_resets", stats.viewResets,
		"events", stats.events)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a stack operation.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("canopy: %s on disposed node %q", op, n.Name))
	}
}

// debugMaxNesting is the viewport nesting depth above which a warning is logged.
const debugMaxNesting = 16

// debugCheckNesting warns if n sits deeper than debugMaxNesting viewports.
func debugCheckNesting(n *Node) {
	depth := 0
	for s := n.owner; s != nil && s.host != nil; s = s.host.owner {
		depth++
	}
	if depth > debugMaxNesting {
		Logger().Warn("canopy: deep viewport nesting",
			"node", n.Name, "depth", depth, "threshold", debugMaxNesting)
	}
}

// countNodes counts the nodes reachable from s, including nested viewport
// children. A node bound twice is counted twice.
func countNodes(s *Stack) int {
	count := 0
	for _, n := range s.nodes {
		count++
		if n.vp != nil {
			count += countNodes(&n.vp.children)
		}
	}
	return count
}
