package libgql

import (
	"github.com/2x3systems/gqlrules/gql"
	"github.com/pkg/errors"
)

// CountCoefficient returns the number of ways that removing exactly X.NumEdges() - seed.NumEdges() edges
// from X leaves a graph isomorphic to seed.  If X has fewer edges than seed, the count is 0.
// Fails with ErrCapacityExceeded if more than maxSubsets removal subsets would be tested (maxSubsets <= 0 denotes gql.DefaultMaxSubsets).
func CountCoefficient(seed, X *Graph, oracle Oracle, maxSubsets int64) (int64, error) {
	if seed == nil || X == nil {
		return 0, gql.ErrNilGraph
	}
	k := X.NumEdges() - seed.NumEdges()
	if k < 0 || X.NumVerts() != seed.NumVerts() {
		return 0, nil
	}
	if maxSubsets <= 0 {
		maxSubsets = gql.DefaultMaxSubsets
	}
	if n := Binomial(X.NumEdges(), k); n > maxSubsets {
		return 0, errors.Wrapf(gql.ErrCapacityExceeded, "%d removal subsets exceeds limit of %d", n, maxSubsets)
	}

	seedCanon, err := Canonize(oracle, seed)
	if err != nil {
		return 0, err
	}
	defer seedCanon.Reclaim()

	Xr := NewGraph(X.NumVerts())
	defer Xr.Reclaim()

	count := int64(0)
	edges := X.Edges()
	Combinations(edges, k, func(removed []EdgeID) bool {
		Xr.AssignFrom(X)
		Xr.edges = Xr.edges[:0]

		// edges and removed are both ascending
		ri := 0
		for _, edge := range edges {
			if ri < len(removed) && removed[ri] == edge {
				ri++
				continue
			}
			Xr.edges = append(Xr.edges, edge)
		}
		Xr.onGraphChanged()

		var Xc *Graph
		Xc, err = Canonize(oracle, Xr)
		if err != nil {
			return false
		}
		if Xc.Cmp(seedCanon) == 0 {
			count++
		}
		Xc.Reclaim()
		return true
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountCoefficients computes CountCoefficient for each graph file and appends the count as its trailing line.
func CountCoefficients(seed *Graph, files []string, oracle Oracle, maxSubsets int64) ([]int64, error) {
	counts := make([]int64, 0, len(files))
	for _, pathname := range files {
		X, err := ReadGraph(pathname)
		if err != nil {
			return counts, err
		}
		count, err := CountCoefficient(seed, X, oracle, maxSubsets)
		X.Reclaim()
		if err != nil {
			return counts, errors.Wrap(err, pathname)
		}
		if err = AppendCoefficient(pathname, count); err != nil {
			return counts, err
		}
		counts = append(counts, count)
	}
	return counts, nil
}
