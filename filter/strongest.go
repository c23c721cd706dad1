package filter

import (
	"strings"

	"github.com/onnttf/spsm/container"
	"github.com/onnttf/spsm/matrix"
	"github.com/onnttf/spsm/relation"
	"github.com/onnttf/spsm/tree"
)

// RowPruneMode selects which of the two observed row-prune behaviors
// set_strongest_mapping uses when clearing weaker entries sharing s's row
// (spec §9, open question 1).
type RowPruneMode int

const (
	// RowPruneTargetContext skips exactly the just-matched target node t
	// (n != t), the "simpler" variant.
	RowPruneTargetContext RowPruneMode = iota
	// RowPruneSourceContext reproduces the richer variant's skip
	// condition verbatim: it compares the source node id against the
	// target-context node it is scanning (source != node) rather than
	// against t. In a system where source and target node identities are
	// drawn from independent spaces this guard is vacuously true and
	// never skips — here, where both are plain tree.NodeID ints starting
	// at 0 in their own arena, it means the guard only skips when s and n
	// happen to share the same integer value, an accident of allocation
	// order rather than a deliberate exclusion of (s, t) itself.
	RowPruneSourceContext
)

// isSameStructure reports whether s and t are "the same shape": both
// present and both leaves, or both present and both internal. A missing
// node (tree.NoParent) paired with another missing node counts as same
// structure too, per spec §4.3.3.
func isSameStructure(sTree *tree.Tree, s tree.NodeID, tTree *tree.Tree, t tree.NodeID) bool {
	if s == tree.NoParent && t == tree.NoParent {
		return true
	}
	if s == tree.NoParent || t == tree.NoParent {
		return false
	}
	return sTree.IsLeaf(s) == tTree.IsLeaf(t)
}

// setStrongestMapping records the strongest relation between s and t into
// out, then prunes every now-dominated entry sharing s's row or t's column
// out of candidate, per spec §4.3.3. When s and t are not the same
// structural shape it defers to computeStrongestMappingForSource instead.
func (e *Engine) setStrongestMapping(sTree, tTree *tree.Tree, s, t tree.NodeID, candidate, out *matrix.CandidateMapping) error {
	if !isSameStructure(sTree, s, tTree, t) {
		return e.computeStrongestMappingForSource(sTree, tTree, s, candidate, out)
	}

	r := candidate.Get(s, t)
	out.Set(s, t, r)

	for _, n := range candidate.IterTargetNodes() {
		var skip bool
		switch e.rowPruneMode {
		case RowPruneSourceContext:
			skip = tree.NodeID(s) == n
		default:
			skip = n == t
		}
		if skip {
			continue
		}
		existing := candidate.Get(s, n)
		if existing == relation.IDK {
			continue
		}
		if relation.IsPrecedent(r, existing) {
			candidate.Set(s, n, relation.IDK)
		}
	}

	for _, n := range candidate.IterSourceNodes() {
		if n == s {
			continue
		}
		candidate.Set(n, t, relation.IDK)
	}

	return nil
}

// existsStrongerInColumn reports whether some source node other than s
// holds a more precedent relation than s does against t.
func existsStrongerInColumn(candidate *matrix.CandidateMapping, s, t tree.NodeID) bool {
	r := candidate.Get(s, t)
	for _, i := range candidate.IterSourceNodes() {
		if i == s {
			continue
		}
		other := candidate.Get(i, t)
		if other == relation.IDK {
			continue
		}
		if relation.IsPrecedent(other, r) {
			return true
		}
	}
	return false
}

// computeStrongestMappingForSource runs the two-pass row selection of
// spec §4.3.4: find s's strongest surviving relation across every target
// node, break ties by name equality, emit the winner into out, and clear
// every weaker or shadowed entry from candidate.
func (e *Engine) computeStrongestMappingForSource(sTree, tTree *tree.Tree, s tree.NodeID, candidate, out *matrix.CandidateMapping) error {
	targets := candidate.IterTargetNodes()

	var strongestTarget tree.NodeID = tree.NoParent
	strongestRel := relation.IDK

	for _, j := range targets {
		var rel relation.Relation
		if isSameStructure(sTree, s, tTree, j) {
			rel = candidate.Get(s, j)
		} else {
			rel = relation.IDK
			candidate.Set(s, j, relation.IDK)
		}
		if rel == relation.IDK {
			continue
		}
		if existsStrongerInColumn(candidate, s, j) {
			continue
		}
		if strongestTarget == tree.NoParent || relation.IsPrecedent(rel, strongestRel) {
			strongestTarget = j
			strongestRel = rel
		}
	}

	if strongestTarget == tree.NoParent {
		return nil
	}

	tieCandidates := []tree.NodeID{strongestTarget}
	for _, j := range targets {
		if j == strongestTarget {
			continue
		}
		rel := candidate.Get(s, j)
		if rel == relation.IDK {
			continue
		}
		switch relation.ComparePrecedence(rel, strongestRel) {
		case -1:
			candidate.Set(s, j, relation.IDK)
		case 0:
			if isSameStructure(sTree, s, tTree, j) {
				tieCandidates = append(tieCandidates, j)
			}
		}
	}

	winner := strongestTarget
	if len(tieCandidates) > 1 {
		winner = resolveTieByName(sTree, tTree, s, tieCandidates)
	}

	winningRel := candidate.Get(s, winner)
	if winningRel == relation.IDK {
		winningRel = strongestRel
	}
	out.Add(matrix.Element{Source: s, Target: winner, Relation: winningRel})
	deleteRemainingRelationsFromMatrix(candidate, s, winner)
	return nil
}

// resolveTieByName breaks a precedence tie by case-insensitive, trimmed
// name equality against the source node, falling back to the first
// candidate in iteration order (spec §4.3.4).
func resolveTieByName(sTree, tTree *tree.Tree, s tree.NodeID, candidates []tree.NodeID) tree.NodeID {
	srcName := strings.ToLower(strings.TrimSpace(sTree.Node(s).Name))
	byName := container.ToMap(candidates, func(c tree.NodeID) string {
		return strings.ToLower(strings.TrimSpace(tTree.Node(c).Name))
	})
	if n, ok := byName[srcName]; ok {
		return n
	}
	return candidates[0]
}

// deleteRemainingRelationsFromMatrix clears winner's column and row
// (other than the winning cell itself) to IDK, per spec §4.3.4's closing
// cleanup step.
func deleteRemainingRelationsFromMatrix(candidate *matrix.CandidateMapping, s, t tree.NodeID) {
	for _, n := range candidate.IterSourceNodes() {
		if n != s {
			candidate.Set(n, t, relation.IDK)
		}
	}
	for _, n := range candidate.IterTargetNodes() {
		if n != t {
			candidate.Set(s, n, relation.IDK)
		}
	}
}
