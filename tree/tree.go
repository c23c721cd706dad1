// Package tree implements the rooted ordered tree model the SPSM filter
// operates on: an arena of nodes addressed by integer id rather than owned
// pointers, so that sibling swaps and deep copies never create aliasing
// hazards (see spec §9's design notes on arena-of-nodes models).
package tree

import (
	"errors"
	"fmt"
)

// NodeID addresses a Node within a Tree's arena. NoParent is the sentinel
// used for a node's Parent field when it has no parent (i.e. it is a root).
type NodeID int

// NoParent marks the absence of a parent node.
const NoParent NodeID = -1

// ErrNodeNotFound is returned when an operation references a node id that
// does not exist in the tree's arena.
var ErrNodeNotFound = errors.New("tree: node not found")

// ErrNotChild is returned when RemoveChild or a swap is asked to operate on
// a node that is not currently a child of the given parent.
var ErrNotChild = errors.New("tree: node is not a child of the given parent")

// Node is a single symbol in a function-like expression tree. Metadata is
// opaque to this package: it is copied by DeepCopy but never inspected.
type Node struct {
	ID            NodeID
	Name          string
	Parent        NodeID
	Children      []NodeID
	AncestorCount int
	Metadata      any
}

// Tree is a rooted ordered tree of Nodes, created only through Tree's own
// factory methods (CreateRoot / CreateChild), per spec §3.
type Tree struct {
	nodes map[NodeID]*Node
	root  NodeID
	next  NodeID
}

// New returns an empty Tree with no root.
func New() *Tree {
	return &Tree{
		nodes: make(map[NodeID]*Node),
		root:  NoParent,
	}
}

// CreateRoot creates the tree's root node. Calling it again replaces the
// tree's notion of which node is root, but does not remove the previous
// root from the arena.
func (t *Tree) CreateRoot(name string, meta any) NodeID {
	id := t.allocate(name, NoParent, meta)
	t.root = id
	return id
}

// CreateChild creates a new node appended to parent's child list and
// returns its id. AncestorCount is derived once, at creation time, from
// the parent's AncestorCount.
func (t *Tree) CreateChild(parent NodeID, name string, meta any) (NodeID, error) {
	p, ok := t.nodes[parent]
	if !ok {
		return NoParent, fmt.Errorf("tree: create child of %d: %w", parent, ErrNodeNotFound)
	}
	id := t.allocate(name, parent, meta)
	t.nodes[id].AncestorCount = p.AncestorCount + 1
	p.Children = append(p.Children, id)
	return id, nil
}

func (t *Tree) allocate(name string, parent NodeID, meta any) NodeID {
	id := t.next
	t.next++
	t.nodes[id] = &Node{
		ID:       id,
		Name:     name,
		Parent:   parent,
		Children: nil,
		Metadata: meta,
	}
	return id
}

// Root returns the tree's root id, or NoParent if the tree is empty.
func (t *Tree) Root() NodeID {
	return t.root
}

// Node returns the node for id, or nil if it does not exist.
func (t *Tree) Node(id NodeID) *Node {
	return t.nodes[id]
}

// NodesCount returns the total number of nodes in the tree's arena.
func (t *Tree) NodesCount() int {
	return len(t.nodes)
}

// IsLeaf reports whether id has no children. A non-existent node is
// considered a leaf for the purposes of is_same_structure comparisons
// against a missing node (see spec §4.3.3's "two null nodes are considered
// same-structure").
func (t *Tree) IsLeaf(id NodeID) bool {
	n, ok := t.nodes[id]
	if !ok {
		return true
	}
	return len(n.Children) == 0
}

// AddChildAt inserts an existing node as a child of parent at the given
// index, reparenting it if it already belonged elsewhere. index is
// clamped to [0, len(children)].
func (t *Tree) AddChildAt(parent, child NodeID, index int) error {
	p, ok := t.nodes[parent]
	if !ok {
		return fmt.Errorf("tree: add child to %d: %w", parent, ErrNodeNotFound)
	}
	c, ok := t.nodes[child]
	if !ok {
		return fmt.Errorf("tree: add child %d: %w", child, ErrNodeNotFound)
	}

	if index < 0 {
		index = 0
	}
	if c.Parent != NoParent && c.Parent != parent {
		// Detach child from its previous parent's child list, if still there.
		_ = t.RemoveChild(c.Parent, child)
	}
	if index > len(p.Children) {
		index = len(p.Children)
	}

	p.Children = append(p.Children, NoParent)
	copy(p.Children[index+1:], p.Children[index:])
	p.Children[index] = child

	c.Parent = parent
	t.renumberAncestors(child, p.AncestorCount+1)
	return nil
}

// RemoveChild removes child from parent's child list. The node itself
// remains in the arena (detached); it is the caller's responsibility to
// reattach or discard it.
func (t *Tree) RemoveChild(parent, child NodeID) error {
	p, ok := t.nodes[parent]
	if !ok {
		return fmt.Errorf("tree: remove child from %d: %w", parent, ErrNodeNotFound)
	}
	for i, id := range p.Children {
		if id == child {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("tree: remove child %d from %d: %w", child, parent, ErrNotChild)
}

// renumberAncestors updates id's AncestorCount and, recursively, that of
// every descendant, after a reparenting operation changes its depth.
func (t *Tree) renumberAncestors(id NodeID, depth int) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	n.AncestorCount = depth
	for _, child := range n.Children {
		t.renumberAncestors(child, depth+1)
	}
}

// SwapChildrenAt swaps the children of parent currently at indices i and k
// (order-independent), per spec §4.3.2: remove the higher-index child,
// remove the lower-index child, then re-insert each at the other's index.
// This is the exact sequence the filter's copy-tree swap step requires,
// expressed here so the filter package never manipulates a child slice
// directly.
func (t *Tree) SwapChildrenAt(parent NodeID, i, k int) error {
	p, ok := t.nodes[parent]
	if !ok {
		return fmt.Errorf("tree: swap children of %d: %w", parent, ErrNodeNotFound)
	}
	if i == k {
		return nil
	}
	lo, hi := i, k
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 || hi >= len(p.Children) {
		return fmt.Errorf("tree: swap children of %d at [%d,%d]: index out of range", parent, i, k)
	}

	loNode := p.Children[lo]
	hiNode := p.Children[hi]

	if err := t.RemoveChild(parent, hiNode); err != nil {
		return err
	}
	if err := t.RemoveChild(parent, loNode); err != nil {
		return err
	}
	if err := t.AddChildAt(parent, hiNode, lo); err != nil {
		return err
	}
	if err := t.AddChildAt(parent, loNode, hi); err != nil {
		return err
	}
	return nil
}
