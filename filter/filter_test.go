package filter

import (
	"testing"

	"github.com/onnttf/spsm/matrix"
	"github.com/onnttf/spsm/relation"
	"github.com/onnttf/spsm/similarity"
	"github.com/onnttf/spsm/tree"
)

// flatTree builds a one-level "function(args...)" tree: a root plus one
// child per name, the shape every spec §8 worked scenario uses.
func flatTree(rootName string, childNames ...string) (*tree.Tree, map[string]tree.NodeID) {
	t := tree.New()
	ids := map[string]tree.NodeID{}
	root := t.CreateRoot(rootName, nil)
	ids[rootName] = root
	for _, name := range childNames {
		id, err := t.CreateChild(root, name, nil)
		if err != nil {
			panic(err)
		}
		ids[name] = id
	}
	return t, ids
}

func pairCount(m *matrix.CandidateMapping) int {
	return len(m.Elements())
}

// Scenario 1: identical trees, every node maps EQ, similarity 1.0.
func TestScenario1_IdenticalTrees(t *testing.T) {
	src, sIDs := flatTree("f", "a", "b")
	tgt, tIDs := flatTree("f", "a", "b")

	cand := matrix.New(src, tgt)
	cand.Set(sIDs["f"], tIDs["f"], relation.EQ)
	cand.Set(sIDs["a"], tIDs["a"], relation.EQ)
	cand.Set(sIDs["b"], tIDs["b"], relation.EQ)

	out, err := NewEngine().Process(cand)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := pairCount(out); got != 3 {
		t.Fatalf("expected 3 mapped pairs, got %d", got)
	}
	if got := out.GetSimilarity(); got != 1.0 {
		t.Fatalf("expected similarity 1.0, got %v", got)
	}
}

// Scenario 2: target's children are out of order; the ordered mapping may
// contain a crossing but the unordered (returned) copy is reordered to
// align with the source, and similarity is still 1.0.
func TestScenario2_ReorderedTargetSiblings(t *testing.T) {
	src, sIDs := flatTree("f", "a", "b")
	tgt, tIDs := flatTree("f", "b", "a")

	cand := matrix.New(src, tgt)
	cand.Set(sIDs["f"], tIDs["f"], relation.EQ)
	cand.Set(sIDs["a"], tIDs["a"], relation.EQ)
	cand.Set(sIDs["b"], tIDs["b"], relation.EQ)

	out, err := NewEngine().Process(cand)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := pairCount(out); got != 3 {
		t.Fatalf("expected 3 mapped pairs, got %d", got)
	}
	if got := out.GetSimilarity(); got != 1.0 {
		t.Fatalf("expected similarity 1.0, got %v", got)
	}

	gotOrder := out.TargetContext.Node(out.TargetContext.Root()).Children
	wantOrder := []tree.NodeID{tIDs["a"], tIDs["b"]}
	if len(gotOrder) != 2 || gotOrder[0] != wantOrder[0] || gotOrder[1] != wantOrder[1] {
		t.Fatalf("expected reordered copy children %v, got %v", wantOrder, gotOrder)
	}
}

// Scenario 3: an extra unrelated source child is pushed past the working
// window and left unmapped. The table in spec §8 states a similarity of
// 0.667 for this scenario, computed as 1 - 1/3; that arithmetic does not
// match the §4.4 prose formula (1 - ed/max(|source|,|target|) with node
// counts 4 and 3, giving 1 - 1/4 = 0.75). We implement the prose formula,
// which every other worked scenario in the table agrees with, and treat
// scenario 3's stated denominator as an inconsistency in the spec's own
// example rather than a requirement (see DESIGN.md).
func TestScenario3_UnmatchableChildPushedToEnd(t *testing.T) {
	src, sIDs := flatTree("f", "a", "b", "c")
	tgt, tIDs := flatTree("f", "a", "b")

	cand := matrix.New(src, tgt)
	cand.Set(sIDs["f"], tIDs["f"], relation.EQ)
	cand.Set(sIDs["a"], tIDs["a"], relation.EQ)
	cand.Set(sIDs["b"], tIDs["b"], relation.EQ)
	// c has no relations: every cell involving it defaults to IDK.

	out, err := NewEngine().Process(cand)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := pairCount(out); got != 3 {
		t.Fatalf("expected 3 mapped pairs, got %d", got)
	}
	for _, elem := range out.Elements() {
		if elem.Source == sIDs["c"] {
			t.Fatalf("did not expect c to be mapped: %+v", elem)
		}
	}
	const want = 1 - 1.0/4.0
	if got := out.GetSimilarity(); got != want {
		t.Fatalf("expected similarity %v, got %v", want, got)
	}
}

// Scenario 4: the root pair is not EQ/MG/LG, so the filter must return an
// empty mapping regardless of what matches below the root (spec §8,
// invariant 4).
func TestScenario4_RootGateFails(t *testing.T) {
	src, sIDs := flatTree("f", "a")
	tgt, tIDs := flatTree("g", "a")

	cand := matrix.New(src, tgt)
	cand.Set(sIDs["a"], tIDs["a"], relation.EQ)
	// (f, g) is left as IDK: the candidate matcher found no root relation.

	out, err := NewEngine().Process(cand)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := pairCount(out); got != 0 {
		t.Fatalf("expected an empty mapping, got %d pairs", got)
	}
	if got := out.GetSimilarity(); got != 0.0 {
		t.Fatalf("expected similarity 0.0, got %v", got)
	}
}

// Scenario 5: extra, weaker candidate relations between unrelated positions
// ((a,b) and (b,a) as MG) must be pruned once the exact EQ diagonal wins.
func TestScenario5_ExtraRelationsArePruned(t *testing.T) {
	src, sIDs := flatTree("f", "a", "b")
	tgt, tIDs := flatTree("f", "a", "b")

	cand := matrix.New(src, tgt)
	cand.Set(sIDs["f"], tIDs["f"], relation.EQ)
	cand.Set(sIDs["a"], tIDs["a"], relation.EQ)
	cand.Set(sIDs["b"], tIDs["b"], relation.EQ)
	cand.Set(sIDs["a"], tIDs["b"], relation.MG)
	cand.Set(sIDs["b"], tIDs["a"], relation.MG)

	out, err := NewEngine().Process(cand)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := pairCount(out); got != 3 {
		t.Fatalf("expected 3 mapped pairs, got %d", got)
	}
	for _, elem := range out.Elements() {
		if elem.Relation != relation.EQ {
			t.Fatalf("expected every surviving relation to be EQ, got %+v", elem)
		}
	}
	if got := out.GetSimilarity(); got != 1.0 {
		t.Fatalf("expected similarity 1.0, got %v", got)
	}
}

// Scenario 6: the asymmetric weighting scheme treats an extra, unrelated
// target node as free, so similarity stays 1.0 even though target is
// strictly larger than source.
func TestScenario6_AsymmetricExtraTargetNodeIsFree(t *testing.T) {
	src, sIDs := flatTree("f", "a", "b")
	tgt, tIDs := flatTree("f", "a", "b", "c")

	cand := matrix.New(src, tgt)
	cand.Set(sIDs["f"], tIDs["f"], relation.EQ)
	cand.Set(sIDs["a"], tIDs["a"], relation.EQ)
	cand.Set(sIDs["b"], tIDs["b"], relation.EQ)

	eng := NewEngine(WithSimilarityConfig(similarity.Config{Weighting: similarity.Asymmetric}))
	out, err := eng.Process(cand)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := pairCount(out); got != 3 {
		t.Fatalf("expected 3 mapped pairs, got %d", got)
	}
	if got := out.GetSimilarity(); got != 1.0 {
		t.Fatalf("expected asymmetric similarity 1.0, got %v", got)
	}
}

// An empty candidate matrix is returned unchanged (spec §7's documented
// silent domain behavior).
func TestEmptyCandidateReturnedUnchanged(t *testing.T) {
	src, _ := flatTree("f", "a")
	tgt, _ := flatTree("f", "a")
	cand := matrix.New(src, tgt)

	out, err := NewEngine().Process(cand)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out != cand {
		t.Fatalf("expected the same matrix instance back for an empty candidate")
	}
}

// Every returned mapping must satisfy the one-to-one invariant: no source
// or target node appears in more than one surviving pair.
func TestOneToOneInvariant(t *testing.T) {
	src, sIDs := flatTree("f", "a", "b", "c")
	tgt, tIDs := flatTree("f", "a", "b")

	cand := matrix.New(src, tgt)
	cand.Set(sIDs["f"], tIDs["f"], relation.EQ)
	cand.Set(sIDs["a"], tIDs["a"], relation.EQ)
	cand.Set(sIDs["b"], tIDs["b"], relation.EQ)
	// Deliberately over-populate the candidate matrix with conflicting
	// relations for c to see if they leak through.
	cand.Set(sIDs["c"], tIDs["a"], relation.MG)
	cand.Set(sIDs["c"], tIDs["b"], relation.MG)

	out, err := NewEngine().Process(cand)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	seenSource := map[tree.NodeID]bool{}
	seenTarget := map[tree.NodeID]bool{}
	for _, elem := range out.Elements() {
		if seenSource[elem.Source] {
			t.Fatalf("source node %d mapped more than once", elem.Source)
		}
		if seenTarget[elem.Target] {
			t.Fatalf("target node %d mapped more than once", elem.Target)
		}
		seenSource[elem.Source] = true
		seenTarget[elem.Target] = true
	}
}

// Regression for spec §9 open question 2: when a parent goes unmatched,
// its matching descendant is dropped rather than recovered, even though a
// deeper structural match exists. A(B(C)) against B(A(C)): the roots A/B
// never match (their only candidate relation is DJ), so C is never visited
// even though (C,C) is EQ in the candidate matrix.
func TestUnmatchedParentDropsMatchingDescendant(t *testing.T) {
	src := tree.New()
	srcA := src.CreateRoot("A", nil)
	srcB, _ := src.CreateChild(srcA, "B", nil)
	srcC, _ := src.CreateChild(srcB, "C", nil)

	tgt := tree.New()
	tgtB := tgt.CreateRoot("B", nil)
	tgtA, _ := tgt.CreateChild(tgtB, "A", nil)
	tgtC, _ := tgt.CreateChild(tgtA, "C", nil)

	cand := matrix.New(src, tgt)
	cand.Set(srcC, tgtC, relation.EQ)
	// The roots relate only as DJ, which fails the root gate: A vs B never
	// matches, and there is deliberately no relation between srcA/srcB and
	// the target's A/B either, so nothing above C ever lines up.
	cand.Set(srcA, tgtB, relation.DJ)

	out, err := NewEngine().Process(cand)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := pairCount(out); got != 0 {
		t.Fatalf("expected C's match to be dropped along with its unmatched parent, got %d pairs", got)
	}
}

// Regression for spec §9 open question 1: both RowPruneMode variants must
// still produce the full diagonal mapping for identical trees, even though
// source and target node ids coincide numerically here (both trees' arenas
// start at 0), which is exactly the accident the richer variant's
// "source != node" guard is vulnerable to.
func TestRowPruneModeVariantsBothMapIdenticalTrees(t *testing.T) {
	for _, mode := range []RowPruneMode{RowPruneTargetContext, RowPruneSourceContext} {
		src, sIDs := flatTree("f", "a", "b")
		tgt, tIDs := flatTree("f", "a", "b")

		cand := matrix.New(src, tgt)
		cand.Set(sIDs["f"], tIDs["f"], relation.EQ)
		cand.Set(sIDs["a"], tIDs["a"], relation.EQ)
		cand.Set(sIDs["b"], tIDs["b"], relation.EQ)

		eng := NewEngine(WithRowPruneMode(mode))
		out, err := eng.Process(cand)
		if err != nil {
			t.Fatalf("mode %v: Process: %v", mode, err)
		}
		if got := pairCount(out); got != 3 {
			t.Fatalf("mode %v: expected 3 mapped pairs, got %d", mode, got)
		}
	}
}

// Invariant 7: adding an unrelated subtree to the target that holds no
// candidate relation to the source must leave the asymmetric similarity
// unchanged. Unlike scenario 6, the base case here is an imperfect match
// (b and x never relate), so the invariant is exercised on a non-trivial
// score rather than the trivial 1.0 case.
func TestAsymmetricMonotonicityUnrelatedTargetSubtreeIsFree(t *testing.T) {
	srcBase, sIDs := flatTree("f", "a", "b")
	tgtBase, tIDs := flatTree("f", "a", "x")

	candBase := matrix.New(srcBase, tgtBase)
	candBase.Set(sIDs["f"], tIDs["f"], relation.EQ)
	candBase.Set(sIDs["a"], tIDs["a"], relation.EQ)
	// b and x share no candidate relation at all.

	engine := NewEngine(WithSimilarityConfig(similarity.Config{Weighting: similarity.Asymmetric}))
	baseOut, err := engine.Process(candBase)
	if err != nil {
		t.Fatalf("Process (base): %v", err)
	}

	srcGrown, gIDs := flatTree("f", "a", "b")
	tgtGrown, hIDs := flatTree("f", "a", "x", "c")

	candGrown := matrix.New(srcGrown, tgtGrown)
	candGrown.Set(gIDs["f"], hIDs["f"], relation.EQ)
	candGrown.Set(gIDs["a"], hIDs["a"], relation.EQ)
	// c is the unrelated extra target subtree: no relation involves it.

	grownOut, err := engine.Process(candGrown)
	if err != nil {
		t.Fatalf("Process (grown): %v", err)
	}

	if baseOut.GetSimilarity() != grownOut.GetSimilarity() {
		t.Fatalf("expected asymmetric similarity to stay %v after adding an unrelated target subtree, got %v",
			baseOut.GetSimilarity(), grownOut.GetSimilarity())
	}
}

// Round-trip/idempotence (spec §8): running the filter on an already
// one-to-one, filtered candidate must produce the same set of mapped pairs.
func TestFilterIsIdempotentOnAnAlreadyFilteredMapping(t *testing.T) {
	src, sIDs := flatTree("f", "a", "b")
	tgt, tIDs := flatTree("f", "b", "a")

	cand := matrix.New(src, tgt)
	cand.Set(sIDs["f"], tIDs["f"], relation.EQ)
	cand.Set(sIDs["a"], tIDs["a"], relation.EQ)
	cand.Set(sIDs["b"], tIDs["b"], relation.EQ)

	firstPass, err := NewEngine().Process(cand)
	if err != nil {
		t.Fatalf("Process (first pass): %v", err)
	}
	firstPairs := map[relTriple]bool{}
	for _, e := range firstPass.Elements() {
		firstPairs[relTriple{e.Source, e.Target, e.Relation}] = true
	}
	if len(firstPairs) == 0 {
		t.Fatal("expected the first pass to produce a non-empty one-to-one mapping")
	}

	secondPass, err := NewEngine().Process(firstPass)
	if err != nil {
		t.Fatalf("Process (second pass): %v", err)
	}
	secondPairs := map[relTriple]bool{}
	for _, e := range secondPass.Elements() {
		secondPairs[relTriple{e.Source, e.Target, e.Relation}] = true
	}

	if len(firstPairs) != len(secondPairs) {
		t.Fatalf("expected an idempotent pair count, got %d then %d", len(firstPairs), len(secondPairs))
	}
	for pair := range firstPairs {
		if !secondPairs[pair] {
			t.Fatalf("pair %+v present after the first pass but missing after the second", pair)
		}
	}
}
