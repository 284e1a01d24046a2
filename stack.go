package canopy

// Stack is an ordered, non-owning list of nodes. The render loop's top-level
// list and every viewport's child list are Stacks. Nodes draw in ascending Z;
// nodes with equal Z keep the order they were bound in.
type Stack struct {
	nodes  []*Node
	host   *Node // owning viewport node; nil for a render loop's top-level stack
	sorted bool
	order  []*Node // reused buffer for Z-sorted traversal order
}

// Bind appends n to the stack. A node bound elsewhere is detached from its
// previous stack first, so a node is never owned by two stacks. Binding a
// node again into the same stack keeps both entries.
// Panics if n is nil, disposed, or a viewport that contains this stack.
func (s *Stack) Bind(n *Node) {
	if n == nil {
		panic("canopy: cannot bind nil node")
	}
	debugCheckDisposed(n, "Bind")
	if n.IsViewport() && s.insideOf(n) {
		panic("canopy: binding viewport " + n.Name + " would create a cycle")
	}
	if n.owner != nil && n.owner != s {
		n.owner.Remove(n)
	}
	n.owner = s
	s.nodes = append(s.nodes, n)
	s.sorted = false
	if n.vp != nil {
		debugCheckNesting(n)
	}
}

// insideOf reports whether this stack belongs to vp or one of its descendants.
func (s *Stack) insideOf(vp *Node) bool {
	for host := s.host; host != nil; {
		if host == vp {
			return true
		}
		if host.owner == nil {
			return false
		}
		host = host.owner.host
	}
	return false
}

// Remove unbinds every occurrence of n. No-op if n is not bound here.
func (s *Stack) Remove(n *Node) {
	if n == nil || n.owner != s {
		return
	}
	kept := s.nodes[:0]
	for _, c := range s.nodes {
		if c != n {
			kept = append(kept, c)
		}
	}
	// Nil the tail so the backing array drops its references.
	for i := len(kept); i < len(s.nodes); i++ {
		s.nodes[i] = nil
	}
	s.nodes = kept
	n.owner = nil
	s.sorted = false
}

// Clear unbinds all nodes. The nodes themselves are not disposed.
func (s *Stack) Clear() {
	for i, n := range s.nodes {
		if n.owner == s {
			n.owner = nil
		}
		s.nodes[i] = nil
	}
	s.nodes = s.nodes[:0]
	// order may be mid-traversal; the next rebuild drops it.
	s.sorted = false
}

// Nodes returns the nodes in bind order. The returned slice MUST NOT be mutated.
func (s *Stack) Nodes() []*Node {
	return s.nodes
}

// Len returns the number of entries, duplicates included.
func (s *Stack) Len() int {
	return len(s.nodes)
}

// ordered returns the nodes in draw order, rebuilding the Z-sorted view only
// after a bind, remove or SetZ.
func (s *Stack) ordered() []*Node {
	if !s.sorted {
		s.rebuildOrder()
	}
	return s.order
}

// rebuildOrder rebuilds the Z-sorted traversal order. Insertion sort: stable,
// allocation free after warmup, and O(n) for the usual already-sorted stack.
func (s *Stack) rebuildOrder() {
	nc := len(s.nodes)
	if cap(s.order) < nc {
		s.order = make([]*Node, nc)
	} else if len(s.order) > nc {
		clear(s.order[nc:])
	}
	s.order = s.order[:nc]
	copy(s.order, s.nodes)
	for i := 1; i < nc; i++ {
		key := s.order[i]
		j := i - 1
		for j >= 0 && s.order[j].z > key.z {
			s.order[j+1] = s.order[j]
			j--
		}
		s.order[j+1] = key
	}
	s.sorted = true
}

// drawStack draws the stack onto t, switching t back to restore whenever
// traversal moves from a viewport (which leaves t in its placement view) to a
// plain node. The flag starts set so the first plain node always gets a clean
// context. Returns the number of view resets performed.
func drawStack(t Target, s *Stack, restore View) int {
	resets := 0
	wasViewport := true
	for _, n := range s.ordered() {
		if n.IsViewport() {
			wasViewport = true
			n.Draw(t)
			continue
		}
		if wasViewport {
			t.SetView(restore)
			wasViewport = false
			resets++
		}
		n.DrawFast(t)
	}
	return resets
}
