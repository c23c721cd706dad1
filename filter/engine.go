// Package filter implements the SPSM filter engine: it prunes a dense
// candidate relation matrix down to a one-to-one, structure-preserving
// mapping between a source and a target tree, reordering a working copy
// of the target's siblings along the way (spec §4.3).
package filter

import (
	"github.com/onnttf/spsm/matrix"
	"github.com/onnttf/spsm/relation"
	"github.com/onnttf/spsm/similarity"
)

// Engine runs the filter algorithm with a fixed configuration. Build one
// with NewEngine and reuse it across calls to Process; it holds no
// per-call state.
type Engine struct {
	rowPruneMode  RowPruneMode
	similarityCfg similarity.Config
}

// EngineOption configures an Engine at construction time, following the
// teacher's functional-option-over-concrete-struct pattern for optional
// knobs layered on top of a Config/Validate core.
type EngineOption func(*Engine)

// WithRowPruneMode selects which of the two row-prune behaviors
// set_strongest_mapping uses (spec §9, open question 1). The default is
// RowPruneTargetContext.
func WithRowPruneMode(mode RowPruneMode) EngineOption {
	return func(e *Engine) {
		e.rowPruneMode = mode
	}
}

// WithSimilarityConfig overrides the configuration used when scoring the
// ordered and unordered mappings produced by Process. The default is the
// symmetric weighting scheme (spec §4.4).
func WithSimilarityConfig(cfg similarity.Config) EngineOption {
	return func(e *Engine) {
		e.similarityCfg = cfg
	}
}

// NewEngine builds an Engine, applying opts over the documented defaults.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		rowPruneMode:  RowPruneTargetContext,
		similarityCfg: similarity.Config{Weighting: similarity.Symmetric},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process runs the full filter pipeline of spec §4.3 over candidate and
// returns the unordered (reordered-copy) mapping, with its similarity
// score already attached via CandidateMapping.SetSimilarity. The input
// candidate is mutated in place (its surviving cells become the ordered
// mapping's source data); candidate's own trees are never restructured.
func (e *Engine) Process(candidate *matrix.CandidateMapping) (*matrix.CandidateMapping, error) {
	if candidate.Size() == 0 {
		return candidate, nil
	}

	sourceCopy, srcCopyMap := candidate.SourceContext.DeepCopy()
	targetCopy, tgtCopyMap := candidate.TargetContext.DeepCopy()

	unordered := matrix.New(sourceCopy, targetCopy)
	for _, elem := range candidate.Elements() {
		unordered.Set(srcCopyMap[elem.Source], tgtCopyMap[elem.Target], elem.Relation)
	}

	spsmMapping := matrix.New(candidate.SourceContext, candidate.TargetContext)
	unorderedSpsmMapping := matrix.New(sourceCopy, targetCopy)

	sourceRoot := candidate.SourceContext.Root()
	targetRoot := candidate.TargetContext.Root()
	rootRel := candidate.Get(sourceRoot, targetRoot)

	if rootRel == relation.EQ || rootRel == relation.MG || rootRel == relation.LG {
		copySourceRoot := srcCopyMap[sourceRoot]
		copyTargetRoot := tgtCopyMap[targetRoot]

		if err := e.setStrongestMapping(candidate.SourceContext, candidate.TargetContext, sourceRoot, targetRoot, candidate, spsmMapping); err != nil {
			return nil, wrapErr("set_strongest_mapping", err)
		}
		if err := e.setStrongestMapping(sourceCopy, targetCopy, copySourceRoot, copyTargetRoot, unordered, unorderedSpsmMapping); err != nil {
			return nil, wrapErr("set_strongest_mapping", err)
		}

		if err := e.filterMappingsOfChildren(candidate.SourceContext, candidate.TargetContext, sourceRoot, targetRoot, candidate, spsmMapping, newDepthStack(), newDepthStack(), false); err != nil {
			return nil, err
		}
		if err := e.filterMappingsOfChildren(sourceCopy, targetCopy, copySourceRoot, copyTargetRoot, unordered, unorderedSpsmMapping, newDepthStack(), newDepthStack(), true); err != nil {
			return nil, err
		}
	}

	orderedSim, err := similarity.Score(candidate.SourceContext, candidate.TargetContext, spsmMapping, e.similarityCfg)
	if err != nil {
		return nil, wrapErr("score_ordered", err)
	}
	spsmMapping.SetSimilarity(orderedSim)

	unorderedSim, err := similarity.Score(sourceCopy, targetCopy, unorderedSpsmMapping, e.similarityCfg)
	if err != nil {
		return nil, wrapErr("score_unordered", err)
	}
	unorderedSpsmMapping.SetSimilarity(unorderedSim)

	return unorderedSpsmMapping, nil
}
