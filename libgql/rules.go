package libgql

import (
	"github.com/2x3systems/gqlrules/gql"
	"github.com/pkg/errors"
)

// RuleOpts bounds rule synthesis.
type RuleOpts struct {
	MaxMissingEdges int // 0 denotes gql.DefaultMaxMissingEdges
}

// CheckCapacity fails with ErrCapacityExceeded if enumerating every subset of missing is out of bounds.
func (opts RuleOpts) CheckCapacity(missing EdgeSet) error {
	maxMissing := opts.MaxMissingEdges
	if maxMissing <= 0 {
		maxMissing = gql.DefaultMaxMissingEdges
	}
	if len(missing) > maxMissing {
		return errors.Wrapf(gql.ErrCapacityExceeded, "%d disconnected edges (%d candidates) exceeds limit of %d edges",
			len(missing), CountSubsets(len(missing)), maxMissing)
	}
	return nil
}

// SynthesizeRule returns the canonical form of seed plus the given 1-based pairs.  seed is not modified.
func SynthesizeRule(seed *Graph, subset []EdgePair, oracle Oracle) (*Graph, error) {
	if seed == nil {
		return nil, gql.ErrNilGraph
	}

	X := seed.Copy()
	defer X.Reclaim()

	for _, p := range subset {
		if err := X.AddPair(p); err != nil {
			return nil, err
		}
	}
	return Canonize(oracle, X)
}

// ForEachRule synthesizes a candidate for every non-empty subset of missing (see AllCombinations for order)
// and hands it to onRule, which takes ownership of it.
func ForEachRule(seed *Graph, missing EdgeSet, oracle Oracle, opts RuleOpts, onRule func(X *Graph) error) error {
	if err := opts.CheckCapacity(missing); err != nil {
		return err
	}

	var err error
	AllCombinations(missing, func(subset []EdgePair) bool {
		var X *Graph
		X, err = SynthesizeRule(seed, subset, oracle)
		if err == nil {
			err = onRule(X)
		}
		return err == nil
	})
	return err
}

// SynthesizeRules returns every candidate ForEachRule would emit, in order.
func SynthesizeRules(seed *Graph, missing EdgeSet, oracle Oracle, opts RuleOpts) ([]*Graph, error) {
	var rules []*Graph
	err := ForEachRule(seed, missing, oracle, opts, func(X *Graph) error {
		rules = append(rules, X)
		return nil
	})
	if err != nil {
		for _, X := range rules {
			X.Reclaim()
		}
		return nil, err
	}
	return rules, nil
}
