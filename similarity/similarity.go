// Package similarity scores a filtered mapping using tree edit distance,
// with a pluggable weighting that yields either a symmetric or an
// asymmetric (query-vs-reference) score (spec §4.4).
package similarity

import (
	"fmt"
	"math"

	"github.com/onnttf/spsm/matrix"
	"github.com/onnttf/spsm/ptr"
	"github.com/onnttf/spsm/relation"
	"github.com/onnttf/spsm/ted"
	"github.com/onnttf/spsm/tree"
)

// Weighting selects which of the two schemes in spec §4.4 to apply.
type Weighting int

const (
	// Symmetric weighs insertions and deletions equally:
	// similarity = 1 - ed/max(|source|, |target|).
	Symmetric Weighting = iota
	// Asymmetric treats the source as a query and the target as a
	// reference that may legitimately be larger: insertions are free and
	// similarity = 1 - ed/|source|.
	Asymmetric
)

// Config configures Score, following the teacher's Validate/SetDefaults
// idiom (concurrent.Config[T]) rather than functional options.
type Config struct {
	Weighting Weighting

	// PathLengthLimit bounds the TED dynamic program's matched-pair
	// distance; nil means unbounded (ted.DefaultPathLengthLimit).
	PathLengthLimit *int

	// WeightDelete and WeightSubstitute override the TED weights; nil
	// means the ted package defaults. Insert weight is derived from
	// Weighting and is not independently configurable.
	WeightDelete     *float64
	WeightSubstitute *float64
}

// Validate checks whether the configuration is valid.
func (c *Config) Validate() error {
	if c.Weighting != Symmetric && c.Weighting != Asymmetric {
		return fmt.Errorf("similarity: unknown weighting %d", c.Weighting)
	}
	if c.PathLengthLimit != nil && *c.PathLengthLimit < -1 {
		return fmt.Errorf("similarity: PathLengthLimit must be >= -1, got %d", *c.PathLengthLimit)
	}
	return nil
}

// SetDefaults sets default values for unset fields.
func (c *Config) SetDefaults() {
	if c.PathLengthLimit == nil {
		c.PathLengthLimit = ptr.PtrOf(ted.DefaultPathLengthLimit)
	}
	if c.WeightDelete == nil {
		c.WeightDelete = ptr.PtrOf(ted.DefaultWeightDelete)
	}
	if c.WeightSubstitute == nil {
		c.WeightSubstitute = ptr.PtrOf(ted.DefaultWeightSubstitute)
	}
}

// Score computes the similarity in [0,1] of mapping between source and
// target, using cfg's weighting scheme.
func Score(source, target *tree.Tree, mapping *matrix.CandidateMapping, cfg Config) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	cfg.SetDefaults()

	weightInsert := ted.DefaultWeightInsert
	if cfg.Weighting == Asymmetric {
		weightInsert = 0
	}

	cmp := equalityComparator(mapping)

	calc := ted.New(
		source, target, cmp,
		ted.WithPathLengthLimit(ptr.ValueOf(cfg.PathLengthLimit, ted.DefaultPathLengthLimit)),
		ted.WithWeights(weightInsert, ptr.ValueOf(cfg.WeightDelete, ted.DefaultWeightDelete), ptr.ValueOf(cfg.WeightSubstitute, ted.DefaultWeightSubstitute)),
	)
	if err := calc.Calculate(); err != nil {
		return 0, fmt.Errorf("similarity: %w", err)
	}
	ed, err := calc.GetTreeEditDistance()
	if err != nil {
		return 0, fmt.Errorf("similarity: %w", err)
	}

	denominator := float64(source.NodesCount())
	if cfg.Weighting == Symmetric {
		denominator = math.Max(float64(source.NodesCount()), float64(target.NodesCount()))
	}
	if denominator == 0 {
		return 1, nil
	}

	score := 1 - ed/denominator
	return clamp01(score), nil
}

// equalityComparator returns a ted.Comparator that treats two nodes as
// equal exactly when mapping maps one to the other with relation.EQ — the
// only relation that counts as a true match for edit-distance purposes
// (spec §4.4: "two nodes are considered equal iff the mapping maps one to
// the other with EQ; other relations count as substitutions").
func equalityComparator(mapping *matrix.CandidateMapping) ted.Comparator {
	return func(s, t tree.NodeID) bool {
		return mapping.Get(s, t) == relation.EQ
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
