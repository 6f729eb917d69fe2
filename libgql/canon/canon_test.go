package canon_test

import (
	"math/rand"
	"testing"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/2x3systems/gqlrules/libgql"
	"github.com/2x3systems/gqlrules/libgql/canon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(t *testing.T, n int, edges ...[2]int) *libgql.Graph {
	t.Helper()
	X := libgql.NewGraph(n)
	for _, e := range edges {
		require.NoError(t, X.AddEdge(libgql.VtxID(e[0]), libgql.VtxID(e[1])))
	}
	return X
}

func randomGraph(rng *rand.Rand, n int, density float64) *libgql.Graph {
	X := libgql.NewGraph(n)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			if rng.Float64() < density {
				X.AddEdge(libgql.VtxID(a), libgql.VtxID(b))
			}
		}
	}
	return X
}

func randomLabeling(rng *rand.Rand, n int) libgql.Labeling {
	lab := make(libgql.Labeling, n)
	for i, v := range rng.Perm(n) {
		lab[i] = libgql.VtxID(v)
	}
	return lab
}

func canonize(t *testing.T, oracle libgql.Oracle, X *libgql.Graph) *libgql.Graph {
	t.Helper()
	Xc, err := libgql.Canonize(oracle, X)
	require.NoError(t, err)
	return Xc
}

func petersen(t *testing.T) *libgql.Graph {
	var edges [][2]int
	for i := 0; i < 5; i++ {
		edges = append(edges, [2]int{i, (i + 1) % 5}, [2]int{i, i + 5}, [2]int{5 + i, 5 + (i+2)%5})
	}
	return newGraph(t, 10, edges...)
}

// Relabeling a graph must not change its canonical form.
func TestCanonicalEquivalence(t *testing.T) {
	oracle := canon.New()
	rng := rand.New(rand.NewSource(11))

	fixed := []*libgql.Graph{
		petersen(t),
		libgql.NewGraph(7),
		newGraph(t, 6, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 5}, [2]int{5, 0}),
	}
	for trial := 0; trial < 40; trial++ {
		fixed = append(fixed, randomGraph(rng, 1+rng.Intn(11), rng.Float64()))
	}

	for i, X := range fixed {
		Xc := canonize(t, oracle, X)
		for j := 0; j < 5; j++ {
			Y, err := X.Permute(randomLabeling(rng, X.NumVerts()))
			require.NoError(t, err)
			Yc := canonize(t, oracle, Y)
			require.Equal(t, 0, Xc.Cmp(Yc), "graph #%d relabeling #%d", i, j)
		}
	}
}

// The built-in oracle must partition graphs into the same classes as the brute-force reference.
func TestAgreesWithBruteForce(t *testing.T) {
	oracle := canon.New()
	var reference libgql.BruteForceOracle
	rng := rand.New(rand.NewSource(5))

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(6)
		X := randomGraph(rng, n, 0.5)
		Y := randomGraph(rng, n, 0.5)

		want, err := libgql.Isomorphic(reference, X, Y)
		require.NoError(t, err)
		got, err := libgql.Isomorphic(oracle, X, Y)
		require.NoError(t, err)
		require.Equal(t, want, got, "trial %d", trial)
	}
}

func TestRegularNonIsomorphic(t *testing.T) {
	oracle := canon.New()

	// C6 and two disjoint triangles are both 2-regular on 6 vertices
	c6 := newGraph(t, 6, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 5}, [2]int{5, 0})
	twoK3 := newGraph(t, 6, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 0}, [2]int{3, 4}, [2]int{4, 5}, [2]int{5, 3})

	iso, err := libgql.Isomorphic(oracle, c6, twoK3)
	require.NoError(t, err)
	assert.False(t, iso)
}

func TestColorsRespected(t *testing.T) {
	oracle := canon.New()

	// path 0-1-2 with an endpoint colored vs. the middle colored
	X := newGraph(t, 3, [2]int{0, 1}, [2]int{1, 2})
	Y := newGraph(t, 3, [2]int{0, 1}, [2]int{1, 2})
	require.NoError(t, X.SetColor(0, 1))
	require.NoError(t, Y.SetColor(1, 1))

	iso, err := libgql.Isomorphic(oracle, X, Y)
	require.NoError(t, err)
	assert.False(t, iso)

	Z := newGraph(t, 3, [2]int{0, 1}, [2]int{1, 2})
	require.NoError(t, Z.SetColor(2, 1))
	iso, err = libgql.Isomorphic(oracle, X, Z)
	require.NoError(t, err)
	assert.True(t, iso)
}

func TestLabelingIsPermutation(t *testing.T) {
	oracle := canon.New()
	X := petersen(t)
	lab, err := oracle.CanonicalForm(X)
	require.NoError(t, err)
	require.NoError(t, lab.Validate(X.NumVerts()))

	lab, err = oracle.CanonicalForm(libgql.NewGraph(0))
	require.NoError(t, err)
	assert.Empty(t, lab)

	_, err = oracle.CanonicalForm(nil)
	assert.ErrorIs(t, err, gql.ErrNilGraph)
}

func TestMaxLeaves(t *testing.T) {
	oracle := &canon.Oracle{MaxLeaves: 1}
	_, err := oracle.CanonicalForm(libgql.NewGraph(6))
	assert.ErrorIs(t, err, gql.ErrCapacityExceeded)
}
