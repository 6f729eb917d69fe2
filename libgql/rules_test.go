package libgql_test

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/2x3systems/gqlrules/libgql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gOracle libgql.BruteForceOracle

// memSink records what a cycle would write.
type memSink struct {
	graphs  []*libgql.Graph
	seedIdx int
	seed    *libgql.Graph
}

func (sink *memSink) WriteGraph(idx int, X *libgql.Graph) error {
	if idx != len(sink.graphs) {
		panic("representatives must be written densely")
	}
	sink.graphs = append(sink.graphs, X.Copy())
	return nil
}

func (sink *memSink) WriteSeed(idx int, seed *libgql.Graph) error {
	sink.seedIdx = idx
	sink.seed = seed.Copy()
	return nil
}

func TestThreeVertexScenario(t *testing.T) {
	seed := newGraph(t, 3, [2]int32{1, 2})
	missing := seed.DisconnectedEdges()
	require.Equal(t, libgql.EdgeSet{{U: 1, V: 3}, {U: 2, V: 3}}, missing)

	candidates, err := libgql.SynthesizeRules(seed, missing, gOracle, libgql.RuleOpts{})
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, 2, candidates[0].NumEdges())
	assert.Equal(t, 2, candidates[1].NumEdges())
	assert.Equal(t, 3, candidates[2].NumEdges())
	assert.Equal(t, 0, candidates[0].Cmp(candidates[1]), "both 2-edge candidates are the 3-path")
	assert.Equal(t, 1, seed.NumEdges(), "seed must not be modified")

	dir := libgql.ResultDir{Path: filepath.Join(t.TempDir(), "result")}
	require.NoError(t, dir.Prepare())
	u, err := libgql.FindUniqueGraphs(candidates, seed, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, u)

	files, err := filepath.Glob(filepath.Join(dir.Path, "graph*.txt"))
	require.NoError(t, err)
	assert.Len(t, files, 3)

	last, err := libgql.ReadGraph(dir.GraphPath(2))
	require.NoError(t, err)
	assert.Equal(t, 0, last.Cmp(seed))

	triangle, err := libgql.ReadGraph(dir.GraphPath(1))
	require.NoError(t, err)
	assert.Equal(t, 3, triangle.NumEdges())
}

func TestGenerateRules(t *testing.T) {
	seed := newGraph(t, 4, [2]int32{1, 2}, [2]int32{3, 4})
	sink := &memSink{}
	stats, err := libgql.GenerateRules(seed, gOracle, libgql.RuleOpts{}, sink)
	require.NoError(t, err)

	assert.Equal(t, int32(4), stats.MissingEdges)
	assert.Equal(t, int64(15), stats.Candidates)
	assert.Equal(t, int(stats.Representatives), len(sink.graphs))
	assert.Equal(t, len(sink.graphs), sink.seedIdx)
	assert.Equal(t, 0, sink.seed.Cmp(seed))

	// Supergraphs of 2K2 on 4 vertices with 3..6 edges: P4, paw... enumerate by hand:
	// 3 edges: P4;  4 edges: C4, paw;  5 edges: diamond;  6 edges: K4
	assert.Equal(t, int32(5), stats.Representatives)

	// dedup idempotence
	again := libgql.DropDupeGraphs(sink.graphs)
	assert.Equal(t, sink.graphs, again)

	// no two representatives are isomorphic
	for i := range sink.graphs {
		for j := i + 1; j < len(sink.graphs); j++ {
			iso, err := libgql.Isomorphic(gOracle, sink.graphs[i], sink.graphs[j])
			require.NoError(t, err)
			assert.False(t, iso, "graph%d ~ graph%d", i, j)
		}
	}
}

// Every candidate is isomorphic to some representative and the seed is always last.
func TestRepresentativeSetProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 12; trial++ {
		n := 2 + rng.Intn(4)
		seed := libgql.NewGraph(n)
		for i := 0; i < n; i++ {
			a, b := libgql.VtxID(rng.Intn(n)), libgql.VtxID(rng.Intn(n))
			if a != b {
				require.NoError(t, seed.AddEdge(a, b))
			}
		}

		candidates, err := libgql.SynthesizeRules(seed, seed.DisconnectedEdges(), gOracle, libgql.RuleOpts{})
		require.NoError(t, err)

		sink := &memSink{}
		u, err := libgql.FindUniqueGraphs(candidates, seed, sink)
		require.NoError(t, err)
		require.Equal(t, u, sink.seedIdx)
		require.Equal(t, 0, sink.seed.Cmp(seed))

		for _, X := range candidates {
			matches := 0
			for _, R := range sink.graphs {
				if R.Cmp(X) == 0 {
					matches++
				}
			}
			assert.Equal(t, 1, matches)
		}
	}
}

func TestCapacityGuard(t *testing.T) {
	seed := libgql.NewGraph(6)
	missing := seed.DisconnectedEdges()
	require.Len(t, missing, 15)

	_, err := libgql.SynthesizeRules(seed, missing, gOracle, libgql.RuleOpts{MaxMissingEdges: 4})
	assert.ErrorIs(t, err, gql.ErrCapacityExceeded)

	_, err = libgql.GenerateRules(seed, gOracle, libgql.RuleOpts{MaxMissingEdges: 14}, &memSink{})
	assert.ErrorIs(t, err, gql.ErrCapacityExceeded)
}

func TestResultDirPrepare(t *testing.T) {
	dir := libgql.ResultDir{Path: filepath.Join(t.TempDir(), "result")}
	require.NoError(t, dir.Prepare())
	require.NoError(t, os.WriteFile(dir.GraphPath(7), []byte("stale"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir.Path, "notes.md"), nil, 0644))

	require.NoError(t, dir.Prepare())
	_, err := os.Stat(dir.GraphPath(7))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir.Path, "notes.md"))
	assert.NoError(t, err)
}
