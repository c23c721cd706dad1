package filter

import (
	"github.com/onnttf/spsm/matrix"
	"github.com/onnttf/spsm/relation"
	"github.com/onnttf/spsm/tree"
)

// candidateRelations is the precedence-descending scan order filterSiblings
// tries at each position, per spec §4.3.1: an exact EQ match first, then
// the two partial-order relations.
var candidateRelations = [...]relation.Relation{relation.EQ, relation.MG, relation.LG}

// filterMappingsOfChildren recurses into sp and tp's children, per
// spec §4.3.1. It is a no-op once either parent has no children, which is
// also how an unmatched parent's subtree is silently dropped: this
// function is only ever invoked for a pair that filterSiblings just
// matched, so a source child left unmatched by its own parent's scan
// never has its descendants visited at all.
func (e *Engine) filterMappingsOfChildren(sTree, tTree *tree.Tree, sp, tp tree.NodeID, candidate, out *matrix.CandidateMapping, srcIdx, tgtIdx *depthStack, allowSwap bool) error {
	sNode := sTree.Node(sp)
	tNode := tTree.Node(tp)
	if sNode == nil || tNode == nil || len(sNode.Children) == 0 || len(tNode.Children) == 0 {
		return nil
	}

	dS := sNode.AncestorCount + 1
	dT := tNode.AncestorCount + 1
	srcIdx.push(dS, 0)
	tgtIdx.push(dT, 0)
	defer srcIdx.pop(dS)
	defer tgtIdx.pop(dT)

	return e.filterSiblings(sTree, tTree, sp, tp, candidate, out, srcIdx, tgtIdx, dS, dT, allowSwap)
}

// filterSiblings walks sp and tp's children left to right, matching each
// source child against the first compatible target child (direct match or
// forward search), recursing into matched pairs, and pushing unmatchable
// source children to the end of the scan (spec §4.3.1).
//
// srcChildren is always a private snapshot: the source side is never
// swapped, only reordered within this local view for bookkeeping. The
// target side is swapped in the tree itself when allowSwap is true (the
// copy pass, spec §4.3.2); when it is false (the pass over the original,
// ordered trees) only the local snapshot is reordered, so the resulting
// mapping can contain crossings without mutating the input trees.
func (e *Engine) filterSiblings(sTree, tTree *tree.Tree, sp, tp tree.NodeID, candidate, out *matrix.CandidateMapping, srcIdx, tgtIdx *depthStack, dS, dT int, allowSwap bool) error {
	srcChildren := append([]tree.NodeID(nil), sTree.Node(sp).Children...)
	tgtChildren := append([]tree.NodeID(nil), tTree.Node(tp).Children...)
	srcSize := len(srcChildren)

	i := srcIdx.get(dS)
	j := tgtIdx.get(dT)

	for i < srcSize && j < len(tgtChildren) {
		matched, err := e.matchOne(sTree, tTree, tp, candidate, out, srcIdx, tgtIdx, dS, dT, srcChildren, &tgtChildren, i, j, allowSwap)
		if err != nil {
			return err
		}
		if matched {
			i++
			j++
			continue
		}
		// Unmatchable source pushed to the end of the scan (spec §4.3.1);
		// its subtree is never visited.
		srcSize--
		if i != srcSize {
			srcChildren[i], srcChildren[srcSize] = srcChildren[srcSize], srcChildren[i]
		}
	}
	return nil
}

// matchOne tries every relation in candidateRelations, first as a direct
// match at (i, j), then as a forward search over tgtChildren[j+1:]. It
// returns whether a match was found and recursed into.
func (e *Engine) matchOne(sTree, tTree *tree.Tree, tp tree.NodeID, candidate, out *matrix.CandidateMapping, srcIdx, tgtIdx *depthStack, dS, dT int, srcChildren []tree.NodeID, tgtChildren *[]tree.NodeID, i, j int, allowSwap bool) (bool, error) {
	sChild := srcChildren[i]

	for _, r := range candidateRelations {
		if candidate.Get(sChild, (*tgtChildren)[j]) == r {
			tChild := (*tgtChildren)[j]
			if err := e.setStrongestMapping(sTree, tTree, sChild, tChild, candidate, out); err != nil {
				return false, wrapErr("set_strongest_mapping", err)
			}
			if err := e.filterMappingsOfChildren(sTree, tTree, sChild, tChild, candidate, out, srcIdx, tgtIdx, allowSwap); err != nil {
				return false, err
			}
			return true, nil
		}

		// Forward search: spec §9 open question 3 documents that the
		// observed implementation gates this branch on
		// k > srcIdx[dS] rather than on k > j. srcIdx[dS] is the cursor
		// pushed when this depth was entered and is never advanced
		// mid-scan, so in practice the comparison is against a value
		// that stays fixed for the whole sibling walk, not against the
		// current scan position; this is preserved verbatim rather than
		// "fixed" to j.
		k := getRelatedIndex(candidate, sChild, *tgtChildren, r, j+1)
		if k < 0 || k <= srcIdx.get(dS) {
			continue
		}

		if allowSwap {
			if err := tTree.SwapChildrenAt(tp, j, k); err != nil {
				return false, wrapErr("swap_children", err)
			}
		}
		(*tgtChildren)[j], (*tgtChildren)[k] = (*tgtChildren)[k], (*tgtChildren)[j]

		tChild := (*tgtChildren)[j]
		if err := e.setStrongestMapping(sTree, tTree, sChild, tChild, candidate, out); err != nil {
			return false, wrapErr("set_strongest_mapping", err)
		}
		if err := e.filterMappingsOfChildren(sTree, tTree, sChild, tChild, candidate, out, srcIdx, tgtIdx, allowSwap); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

// getRelatedIndex scans targets[from:] for the first index holding
// relation r against s, or -1 if none exists (spec §4.3.1's
// get_related_index).
func getRelatedIndex(candidate *matrix.CandidateMapping, s tree.NodeID, targets []tree.NodeID, r relation.Relation, from int) int {
	for k := from; k < len(targets); k++ {
		if candidate.Get(s, targets[k]) == r {
			return k
		}
	}
	return -1
}
