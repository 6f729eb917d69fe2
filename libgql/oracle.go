package libgql

import (
	"github.com/2x3systems/gqlrules/gql"
	"github.com/pkg/errors"
)

// Oracle computes canonical labelings: for isomorphic X and Y,
// X.Permute(CanonicalForm(X)) and Y.Permute(CanonicalForm(Y)) are identical (Cmp == 0).
// Vertex colors are respected: an isomorphism must preserve them.
type Oracle interface {
	CanonicalForm(X *Graph) (Labeling, error)
}

// Canonize returns X relabeled by the oracle's canonical form.  X is not modified.
func Canonize(oracle Oracle, X *Graph) (*Graph, error) {
	if X == nil {
		return nil, gql.ErrNilGraph
	}
	lab, err := oracle.CanonicalForm(X)
	if err != nil {
		return nil, err
	}
	return X.Permute(lab)
}

// Isomorphic reports whether X and Y are isomorphic under the given oracle.
func Isomorphic(oracle Oracle, X, Y *Graph) (bool, error) {
	if X == nil || Y == nil {
		return false, gql.ErrNilGraph
	}
	if X.NumVerts() != Y.NumVerts() || X.NumEdges() != Y.NumEdges() {
		return false, nil
	}
	Xc, err := Canonize(oracle, X)
	if err != nil {
		return false, errors.Wrap(err, "canonize X")
	}
	defer Xc.Reclaim()
	Yc, err := Canonize(oracle, Y)
	if err != nil {
		return false, errors.Wrap(err, "canonize Y")
	}
	defer Yc.Reclaim()
	return Xc.Cmp(Yc) == 0, nil
}

// MaxBruteForceVerts bounds the graphs BruteForceOracle accepts (n! labelings are tried).
const MaxBruteForceVerts = 9

// BruteForceOracle tries every labeling and picks the one whose relabeled graph is least under Cmp.
// It serves as a reference for small graphs.
type BruteForceOracle struct{}

func (BruteForceOracle) CanonicalForm(X *Graph) (Labeling, error) {
	if X == nil {
		return nil, gql.ErrNilGraph
	}
	n := X.NumVerts()
	if n > MaxBruteForceVerts {
		return nil, errors.Wrapf(gql.ErrCapacityExceeded, "brute force labeling of %d vertices", n)
	}

	lab := make(Labeling, n)
	for i := range lab {
		lab[i] = VtxID(i)
	}
	best := append(Labeling(nil), lab...)
	bestX, _ := X.Permute(lab)
	defer func() { bestX.Reclaim() }()

	// Heap's algorithm
	c := make([]int, n)
	for i := 1; i < n; {
		if c[i] < i {
			if i&1 == 0 {
				lab[0], lab[i] = lab[i], lab[0]
			} else {
				lab[c[i]], lab[i] = lab[i], lab[c[i]]
			}
			Xp, _ := X.Permute(lab)
			if Xp.Cmp(bestX) < 0 {
				bestX.Reclaim()
				bestX = Xp
				copy(best, lab)
			} else {
				Xp.Reclaim()
			}
			c[i]++
			i = 1
		} else {
			c[i] = 0
			i++
		}
	}
	return best, nil
}
