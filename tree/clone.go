package tree

import "github.com/mohae/deepcopy"

// DeepCopy returns an isomorphic structural clone of t along with a map
// from each original node id to its counterpart in the copy (spec §3's
// "Reordered-Tree Copy" / "copy map"). Node metadata is cloned with
// deepcopy.Copy since it is opaque to this package — we copy it without
// ever inspecting its shape.
func (t *Tree) DeepCopy() (*Tree, map[NodeID]NodeID) {
	copyOf := &Tree{
		nodes: make(map[NodeID]*Node, len(t.nodes)),
		root:  t.root,
		next:  t.next,
	}
	originalToCopy := make(map[NodeID]NodeID, len(t.nodes))

	for id, n := range t.nodes {
		children := make([]NodeID, len(n.Children))
		copy(children, n.Children)
		copyOf.nodes[id] = &Node{
			ID:            id,
			Name:          n.Name,
			Parent:        n.Parent,
			Children:      children,
			AncestorCount: n.AncestorCount,
			Metadata:      deepcopy.Copy(n.Metadata),
		}
		originalToCopy[id] = id
	}

	return copyOf, originalToCopy
}
