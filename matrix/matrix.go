// Package matrix implements the mutable candidate/filtered mapping matrix
// the filter engine prunes: a sparse two-argument relation between source
// and target tree nodes (spec §3, §4.2).
package matrix

import (
	"github.com/onnttf/spsm/relation"
	"github.com/onnttf/spsm/tree"
)

// key addresses one (source, target) cell of the matrix.
type key struct {
	source tree.NodeID
	target tree.NodeID
}

// Element is an immutable (source, target, relation) triple with a
// non-IDK relation, the shape CandidateMapping.Add accepts (spec §3).
type Element struct {
	Source   tree.NodeID
	Target   tree.NodeID
	Relation relation.Relation
}

// CandidateMapping is the mutable partial function (source, target) ->
// Relation described in spec §3/§4.2, plus the similarity value attached
// once the filter has run (spec §6's set_similarity/get_similarity).
type CandidateMapping struct {
	SourceContext *tree.Tree
	TargetContext *tree.Tree

	cells      map[key]relation.Relation
	similarity float64
}

// New (and its alias NewMapping, spec §6's "factory") returns an empty
// CandidateMapping over the given trees.
func New(source, target *tree.Tree) *CandidateMapping {
	return &CandidateMapping{
		SourceContext: source,
		TargetContext: target,
		cells:         make(map[key]relation.Relation),
	}
}

// NewMapping is the spec §6 factory name: new_mapping(source_context,
// target_context) -> ContextMapping.
func NewMapping(source, target *tree.Tree) *CandidateMapping {
	return New(source, target)
}

// Get returns the relation stored at (s, t), defaulting to IDK.
func (m *CandidateMapping) Get(s, t tree.NodeID) relation.Relation {
	if r, ok := m.cells[key{s, t}]; ok {
		return r
	}
	return relation.IDK
}

// Set stores r at (s, t). Writing IDK deletes the entry, per spec §3.
func (m *CandidateMapping) Set(s, t tree.NodeID, r relation.Relation) {
	k := key{s, t}
	if r == relation.IDK {
		delete(m.cells, k)
		return
	}
	m.cells[k] = r
}

// Add inserts e into the matrix. Adding an element whose Relation is IDK
// deletes any entry at that position, the same tombstone semantics as Set.
func (m *CandidateMapping) Add(e Element) {
	m.Set(e.Source, e.Target, e.Relation)
}

// Size returns the number of non-IDK entries currently stored.
func (m *CandidateMapping) Size() int {
	return len(m.cells)
}

// IterSourceNodes returns every node of the source context, in
// creation-order (deterministic), not just those with non-IDK entries —
// the filter relies on full row scans (spec §4.2).
func (m *CandidateMapping) IterSourceNodes() []tree.NodeID {
	return allNodes(m.SourceContext)
}

// IterTargetNodes returns every node of the target context, in
// creation-order.
func (m *CandidateMapping) IterTargetNodes() []tree.NodeID {
	return allNodes(m.TargetContext)
}

func allNodes(t *tree.Tree) []tree.NodeID {
	ids := make([]tree.NodeID, 0, t.NodesCount())
	// Node ids are allocated sequentially starting at 0, so iterating the
	// allocated range yields deterministic creation order without needing
	// the arena to expose its internal map.
	for id := tree.NodeID(0); len(ids) < t.NodesCount(); id++ {
		if t.Node(id) != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetSimilarity attaches a similarity score to this mapping (spec §6).
func (m *CandidateMapping) SetSimilarity(f float64) {
	m.similarity = f
}

// GetSimilarity returns the similarity score previously attached, or 0 if
// none has been set yet.
func (m *CandidateMapping) GetSimilarity() float64 {
	return m.similarity
}

// Elements returns every surviving (non-IDK) mapping element, in
// deterministic source-then-target node order.
func (m *CandidateMapping) Elements() []Element {
	elems := make([]Element, 0, len(m.cells))
	for _, s := range m.IterSourceNodes() {
		for _, t := range m.IterTargetNodes() {
			if r := m.Get(s, t); r != relation.IDK {
				elems = append(elems, Element{Source: s, Target: t, Relation: r})
			}
		}
	}
	return elems
}
