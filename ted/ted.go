// Package ted computes the tree edit distance between two trees using a
// Zhang-Shasha/APTED-style postorder, keyroot-indexed dynamic program (spec
// §6), adapted from the APTED reference surveyed in the example pack.
//
// The comparator that decides whether two nodes are "equal" is supplied by
// the caller and is purely a function of an already-filtered mapping (spec
// §4.4) — this package never recomputes semantic relations itself.
package ted

import (
	"errors"
	"math"

	"github.com/onnttf/spsm/tree"
)

// Default weight and limit constants surfaced per spec §6.
const (
	DefaultPathLengthLimit  = -1 // unbounded
	DefaultWeightInsert     = 1.0
	DefaultWeightDelete     = 1.0
	DefaultWeightSubstitute = 1.0
)

// Comparator reports whether a and b should be treated as equal (EQ) for
// the purposes of the edit distance. Any other outcome is a substitution.
type Comparator func(a, b tree.NodeID) bool

// ErrNotCalculated is returned by GetTreeEditDistance before Calculate has
// run.
var ErrNotCalculated = errors.New("ted: Calculate has not been run")

// Option configures a TreeEditDistance.
type Option func(*TreeEditDistance)

// WithPathLengthLimit bounds the postorder index distance considered
// during the dynamic program; DefaultPathLengthLimit (-1) means unbounded.
func WithPathLengthLimit(n int) Option {
	return func(t *TreeEditDistance) { t.pathLengthLimit = n }
}

// WithWeights overrides the per-edit-type weights. The asymmetric scorer
// (spec §4.4) uses this to set insert = 0.
func WithWeights(insert, delete, substitute float64) Option {
	return func(t *TreeEditDistance) {
		t.weightInsert = insert
		t.weightDelete = delete
		t.weightSubstitute = substitute
	}
}

// TreeEditDistance computes the edit distance between source and target
// under comparator cmp.
type TreeEditDistance struct {
	source, target *tree.Tree
	cmp            Comparator

	pathLengthLimit  int
	weightInsert     float64
	weightDelete     float64
	weightSubstitute float64

	distance float64
	computed bool
}

// New returns a TreeEditDistance for source vs target, ready for Calculate.
func New(source, target *tree.Tree, cmp Comparator, opts ...Option) *TreeEditDistance {
	t := &TreeEditDistance{
		source:           source,
		target:           target,
		cmp:              cmp,
		pathLengthLimit:  DefaultPathLengthLimit,
		weightInsert:     DefaultWeightInsert,
		weightDelete:     DefaultWeightDelete,
		weightSubstitute: DefaultWeightSubstitute,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// postorderInfo holds the per-postorder-position bookkeeping the dynamic
// program needs: the node id at that position and the position of its
// leftmost leaf descendant.
type postorderInfo struct {
	ids           []tree.NodeID
	leftmostLeaf  []int // leftmost leaf postorder index, per postorder index
}

func buildPostorder(t *tree.Tree) postorderInfo {
	var info postorderInfo
	if t == nil || t.Root() == tree.NoParent {
		return info
	}

	var walk func(id tree.NodeID) int // returns postorder index of id
	walk = func(id tree.NodeID) int {
		n := t.Node(id)
		leftmost := -1
		for _, child := range n.Children {
			idx := walk(child)
			if leftmost == -1 {
				leftmost = info.leftmostLeaf[idx]
			}
		}
		info.ids = append(info.ids, id)
		pos := len(info.ids) - 1
		if leftmost == -1 {
			leftmost = pos // leaf: its own leftmost leaf is itself
		}
		info.leftmostLeaf = append(info.leftmostLeaf, leftmost)
		return pos
	}
	walk(t.Root())
	return info
}

// keyroots returns the postorder indices of every node that is either the
// root or whose leftmost leaf differs from its parent's, i.e. the highest
// node sharing each leftmost leaf (the standard Zhang-Shasha keyroot
// definition), in ascending order.
func keyroots(info postorderInfo) []int {
	seen := make(map[int]int) // leftmost leaf index -> highest postorder index sharing it
	for i, lml := range info.leftmostLeaf {
		seen[lml] = i
	}
	roots := make([]int, 0, len(seen))
	for _, i := range seen {
		roots = append(roots, i)
	}
	// ascending sort (a small insertion sort is fine; n is the node count).
	for i := 1; i < len(roots); i++ {
		for j := i; j > 0 && roots[j-1] > roots[j]; j-- {
			roots[j-1], roots[j] = roots[j], roots[j-1]
		}
	}
	return roots
}

// Calculate runs the dynamic program and stores the resulting distance.
func (t *TreeEditDistance) Calculate() error {
	src := buildPostorder(t.source)
	tgt := buildPostorder(t.target)

	size1, size2 := len(src.ids), len(tgt.ids)
	if size1 == 0 && size2 == 0 {
		t.distance = 0
		t.computed = true
		return nil
	}
	if size1 == 0 {
		t.distance = float64(size2) * t.weightInsert
		t.computed = true
		return nil
	}
	if size2 == 0 {
		t.distance = float64(size1) * t.weightDelete
		t.computed = true
		return nil
	}

	td := make([][]float64, size1+1)
	for i := range td {
		td[i] = make([]float64, size2+1)
	}

	for _, i := range keyroots(src) {
		for _, j := range keyroots(tgt) {
			t.forestDistance(src, tgt, i, j, td)
		}
	}

	t.distance = td[size1][size2]
	t.computed = true
	return nil
}

func (t *TreeEditDistance) forestDistance(src, tgt postorderInfo, i, j int, td [][]float64) {
	lmlI := src.leftmostLeaf[i]
	lmlJ := tgt.leftmostLeaf[j]

	fd := make([][]float64, i+2)
	for k := range fd {
		fd[k] = make([]float64, j+2)
	}

	for x := lmlI; x <= i; x++ {
		fd[x+1][lmlJ] = fd[x][lmlJ] + t.weightDelete
	}
	for y := lmlJ; y <= j; y++ {
		fd[lmlI][y+1] = fd[lmlI][y] + t.weightInsert
	}

	for x := lmlI; x <= i; x++ {
		for y := lmlJ; y <= j; y++ {
			lmlX := src.leftmostLeaf[x]
			lmlY := tgt.leftmostLeaf[y]

			deleteCost := fd[x][y+1] + t.weightDelete
			insertCost := fd[x+1][y] + t.weightInsert

			if lmlX == lmlI && lmlY == lmlJ {
				subCost := fd[x][y] + t.substituteCost(src.ids[x], tgt.ids[y], x, y)
				fd[x+1][y+1] = math.Min(deleteCost, math.Min(insertCost, subCost))
				td[x+1][y+1] = fd[x+1][y+1]
			} else {
				subtreeCost := fd[lmlX][lmlY] + td[x+1][y+1]
				fd[x+1][y+1] = math.Min(deleteCost, math.Min(insertCost, subtreeCost))
			}
		}
	}
}

// substituteCost returns the cost of substituting the source node at
// postorder position x for the target node at postorder position y. When
// pathLengthLimit is set, substitutions between positions further apart
// than the limit are forbidden (forced to the delete+insert path instead)
// — a common TED optimization that keeps the matched pairs local.
func (t *TreeEditDistance) substituteCost(a, b tree.NodeID, x, y int) float64 {
	if t.pathLengthLimit >= 0 {
		diff := x - y
		if diff < 0 {
			diff = -diff
		}
		if diff > t.pathLengthLimit {
			return math.Inf(1)
		}
	}
	if t.cmp(a, b) {
		return 0
	}
	return t.weightSubstitute
}

// GetTreeEditDistance returns the distance computed by Calculate.
func (t *TreeEditDistance) GetTreeEditDistance() (float64, error) {
	if !t.computed {
		return 0, ErrNotCalculated
	}
	return t.distance, nil
}
