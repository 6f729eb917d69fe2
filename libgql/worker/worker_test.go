package worker_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/2x3systems/gqlrules/libgql"
	"github.com/2x3systems/gqlrules/libgql/canon"
	"github.com/2x3systems/gqlrules/libgql/catalog"
	"github.com/2x3systems/gqlrules/libgql/pipe"
	"github.com/2x3systems/gqlrules/libgql/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newWorkspace returns a config rooted in a fresh temp dir with src/ created.
func newWorkspace(t *testing.T) gql.Config {
	cfg := gql.DefaultConfig()
	cfg.RootDir = t.TempDir()
	cfg.CreatePipe = false
	require.NoError(t, os.MkdirAll(cfg.SrcPath(), 0755))
	return cfg
}

func writeSeed(t *testing.T, cfg gql.Config, text string) {
	require.NoError(t, os.WriteFile(cfg.SeedGraphPath(), []byte(text), 0644))
}

func resultFiles(t *testing.T, cfg gql.Config) []string {
	files, err := filepath.Glob(filepath.Join(cfg.ResultPath(), "graph*.txt"))
	require.NoError(t, err)
	return files
}

func TestEmptyBatchThenDone(t *testing.T) {
	cfg := newWorkspace(t)
	pattern := libgql.PatternPath(cfg.SrcPath(), 0)
	require.NoError(t, os.WriteFile(pattern, []byte("p edge 2 1\ne 1 2\n"), 0644))

	mem := pipe.NewMem("0", "start", "done")
	w := worker.New(cfg, mem, canon.New(), nil)
	require.NoError(t, w.Run())

	assert.Equal(t, worker.Terminated, w.State())
	assert.Equal(t, []string{"done"}, mem.Written())
	assert.Equal(t, 0, w.NumCycles())

	buf, err := os.ReadFile(pattern)
	require.NoError(t, err)
	assert.Equal(t, "p edge 2 1\ne 1 2\n", string(buf), "batch of 0 must not touch pattern files")

	_, err = os.Stat(cfg.ResultPath())
	assert.True(t, os.IsNotExist(err), "no result files without a cycle")
}

func TestStepping(t *testing.T) {
	cfg := newWorkspace(t)
	mem := pipe.NewMem("0", "ready")
	w := worker.New(cfg, mem, canon.New(), nil)

	expect := []worker.State{worker.AwaitReadySignal, worker.RunningPatternBatch, worker.AwaitResultType}
	for _, state := range expect {
		require.NoError(t, w.Step())
		assert.Equal(t, state, w.State())
	}
	assert.Equal(t, []string{"done"}, mem.Written())

	// counterpart went away: the state must hold
	err := w.Step()
	assert.ErrorIs(t, err, gql.ErrTransport)
	assert.Equal(t, worker.AwaitResultType, w.State())
}

func TestFullSession(t *testing.T) {
	cfg := newWorkspace(t)
	writeSeed(t, cfg, "p edge 3 1\ne 1 2\n")
	require.NoError(t, os.WriteFile(libgql.PatternPath(cfg.SrcPath(), 0), []byte("p edge 3 2\ne 1 2\ne 1 3\n"), 0644))

	cat, err := catalog.Open(catalog.Opts{})
	require.NoError(t, err)
	defer cat.Close()

	mem := pipe.NewMem("1", "start", "vertex_induced", "edge_induced", "done")
	w := worker.New(cfg, mem, canon.New(), cat)
	require.NoError(t, w.Run())

	assert.Equal(t, []string{"done", "done", "done"}, mem.Written())
	assert.Equal(t, 2, w.NumCycles())

	// pattern file now holds its canonical labeling
	lab, err := libgql.ReadPermutationFile(libgql.PatternPath(cfg.SrcPath(), 0))
	require.NoError(t, err)
	assert.Len(t, lab, 3)

	// second cycle (edge_induced) rewrote the same 3 files without coefficients
	files := resultFiles(t, cfg)
	assert.Len(t, files, 3)
	stats := w.LastStats()
	assert.Equal(t, int32(2), stats.Representatives)
	assert.Empty(t, stats.Coefficients)

	dir := libgql.ResultDir{Path: cfg.ResultPath()}
	for i := 0; i < 3; i++ {
		file, err := libgql.ReadGraphFile(dir.GraphPath(i))
		require.NoError(t, err)
		assert.False(t, file.HasCoefficient)
	}
	seed, err := libgql.ReadGraph(dir.GraphPath(2))
	require.NoError(t, err)
	assert.Equal(t, 1, seed.NumEdges())

	state := cat.State()
	assert.Equal(t, uint64(2), state.NumCycles)
	assert.Equal(t, uint64(2), state.NumGraphs, "second cycle adds nothing new")
	assert.Equal(t, uint64(6), state.NumCandidates)
	assert.Equal(t, uint64(3), state.NumCoefficients)
}

func TestCoefficientCycle(t *testing.T) {
	cfg := newWorkspace(t)
	writeSeed(t, cfg, "p edge 3 1\ne 1 2\n")

	mem := pipe.NewMem("0", "start", "vertex_induced")
	w := worker.New(cfg, mem, canon.New(), nil)
	for w.State() != worker.AwaitResultType || w.NumCycles() == 0 {
		require.NoError(t, w.Step())
	}

	stats := w.LastStats()
	assert.Equal(t, []int64{2, 3, 1}, stats.Coefficients)
	assert.Equal(t, 3, stats.NumFiles())

	file, err := libgql.ReadGraphFile(filepath.Join(cfg.ResultPath(), "graph1.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), file.Coefficient)
}

func TestCycleFailures(t *testing.T) {
	cfg := newWorkspace(t)
	cfg.MaxMissingEdges = 4
	writeSeed(t, cfg, "p edge 5 0\n")

	w := worker.New(cfg, pipe.NewMem("0", "start", "start"), canon.New(), nil)
	err := w.Run()
	assert.ErrorIs(t, err, gql.ErrCapacityExceeded)
	assert.Equal(t, worker.RunningCycle, w.State())

	writeSeed(t, cfg, "e 1 2\n")
	w = worker.New(cfg, pipe.NewMem("0", "start", "start"), canon.New(), nil)
	err = w.Run()
	assert.ErrorIs(t, err, gql.ErrMissingHeader)

	w = worker.New(cfg, pipe.NewMem("zero"), canon.New(), nil)
	assert.ErrorIs(t, w.Run(), gql.ErrParse)

	w = worker.New(cfg, pipe.NewMem("2", "start"), canon.New(), nil)
	assert.ErrorIs(t, w.Run(), gql.ErrFile, "pattern files are missing")
}
