// Package spsm is the top-level facade for structure-preserving semantic
// matching: given a dense candidate relation matrix, it prunes it down to
// a one-to-one mapping and reports that mapping's similarity. It owns no
// persisted state and exposes no CLI; it is a library call wrapping
// filter.Engine.Process and similarity.Score behind a single error type,
// grounded on the teacher's ErrDatabase/handleError wrapping idiom
// (dal/database.go) adapted from a storage error to a filtering error.
package spsm

import (
	"errors"
	"fmt"

	"github.com/onnttf/spsm/filter"
	"github.com/onnttf/spsm/matrix"
	"github.com/onnttf/spsm/similarity"
)

// TreeMatcherError is the single error kind Match raises: an operation
// tag plus the underlying cause, surfaced to the caller verbatim.
type TreeMatcherError struct {
	Op  string
	Err error
}

func (e *TreeMatcherError) Error() string {
	return fmt.Sprintf("spsm: %s: %v", e.Op, e.Err)
}

func (e *TreeMatcherError) Unwrap() error {
	return e.Err
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var tme *TreeMatcherError
	if errors.As(err, &tme) {
		return err
	}
	return &TreeMatcherError{Op: op, Err: err}
}

// SPSMTreeMatcher runs the filter engine and then rescoring similarity
// under its own configuration, letting a caller report a mapping's
// similarity under a different weighting than the engine used
// internally while still pruning (e.g. score a filtered mapping
// asymmetrically for an analyst report even though the engine itself
// pruned symmetrically).
type SPSMTreeMatcher struct {
	engine *filter.Engine
	simCfg similarity.Config
}

// Option configures a SPSMTreeMatcher at construction time.
type Option func(*SPSMTreeMatcher)

// WithEngine overrides the filter.Engine used to prune candidates. The
// default is filter.NewEngine() with its own defaults.
func WithEngine(engine *filter.Engine) Option {
	return func(m *SPSMTreeMatcher) {
		m.engine = engine
	}
}

// WithSimilarity overrides the similarity.Config used to (re)score the
// pruned mapping Match returns. The default is the symmetric weighting.
func WithSimilarity(cfg similarity.Config) Option {
	return func(m *SPSMTreeMatcher) {
		m.simCfg = cfg
	}
}

// NewSPSMTreeMatcher builds a SPSMTreeMatcher, applying opts over the
// defaults (a default-configured Engine, symmetric similarity weighting).
func NewSPSMTreeMatcher(opts ...Option) *SPSMTreeMatcher {
	m := &SPSMTreeMatcher{
		engine: filter.NewEngine(),
		simCfg: similarity.Config{Weighting: similarity.Symmetric},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.simCfg.SetDefaults()
	return m
}

// Match prunes candidate down to a one-to-one structure-preserving
// mapping and attaches its similarity score, scored under m's own
// configuration rather than whatever the engine used internally.
func (m *SPSMTreeMatcher) Match(candidate *matrix.CandidateMapping) (*matrix.CandidateMapping, error) {
	mapping, err := m.engine.Process(candidate)
	if err != nil {
		return nil, wrapErr("process", err)
	}

	score, err := similarity.Score(mapping.SourceContext, mapping.TargetContext, mapping, m.simCfg)
	if err != nil {
		return nil, wrapErr("score", err)
	}
	mapping.SetSimilarity(score)

	return mapping, nil
}
