package libgql

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/pkg/errors"
)

// GraphAdder accepts graphs, reporting whether each was newly added.
type GraphAdder interface {
	TryAddGraph(X *Graph) bool
	Close()
}

// DropDupes keeps the first occurrence of each canonically labeled graph.
// Graphs are indexed by Hash(); graphs in the same bucket are told apart by Cmp.
type DropDupes struct {
	buckets  map[uint64][]*Graph
	accepted []*Graph
}

func NewDropDupes() *DropDupes {
	return &DropDupes{
		buckets: make(map[uint64][]*Graph),
	}
}

// TryAddGraph adds X if no equal graph was added before.
// If X is added, the DropDupes takes ownership of it; otherwise it remains the caller's.
func (dd *DropDupes) TryAddGraph(X *Graph) bool {
	hash := X.Hash()
	bucket := dd.buckets[hash]
	for _, Xi := range bucket {
		if Xi.Cmp(X) == 0 {
			return false
		}
	}
	dd.buckets[hash] = append(bucket, X)
	dd.accepted = append(dd.accepted, X)
	return true
}

// Contains returns true if a graph equal to X has been added.
func (dd *DropDupes) Contains(X *Graph) bool {
	for _, Xi := range dd.buckets[X.Hash()] {
		if Xi.Cmp(X) == 0 {
			return true
		}
	}
	return false
}

// Accepted returns the added graphs in the order they were added.
func (dd *DropDupes) Accepted() []*Graph {
	return dd.accepted
}

func (dd *DropDupes) Len() int {
	return len(dd.accepted)
}

func (dd *DropDupes) Reset() {
	for _, X := range dd.accepted {
		X.Reclaim()
	}
	dd.accepted = dd.accepted[:0]
	for k := range dd.buckets {
		delete(dd.buckets, k)
	}
}

func (dd *DropDupes) Close() {
	dd.Reset()
	dd.buckets = nil
}

// DropDupeGraphs returns the first occurrence of each distinct graph in Xs, in order.
// The returned graphs alias Xs; nothing is reclaimed.
func DropDupeGraphs(Xs []*Graph) []*Graph {
	dd := NewDropDupes()
	for _, X := range Xs {
		dd.TryAddGraph(X)
	}
	return dd.accepted
}

// ResultSink persists representatives as they are accepted, then the seed that closes the set.
type ResultSink interface {
	WriteGraph(idx int, X *Graph) error
	WriteSeed(idx int, seed *Graph) error
}

// ResultDir writes representatives as <Path>/graph<idx>.txt
type ResultDir struct {
	Path string
}

// Prepare creates the directory if needed and removes graph files left by a previous cycle.
func (dir ResultDir) Prepare() error {
	if err := os.MkdirAll(dir.Path, 0755); err != nil {
		return errors.Wrapf(gql.ErrFile, "%v", err)
	}
	stale, err := filepath.Glob(filepath.Join(dir.Path, "graph*.txt"))
	if err != nil {
		return errors.Wrapf(gql.ErrFile, "%v", err)
	}
	for _, pathname := range stale {
		if err = os.Remove(pathname); err != nil {
			return errors.Wrapf(gql.ErrFile, "%v", err)
		}
	}
	return nil
}

func (dir ResultDir) GraphPath(idx int) string {
	return filepath.Join(dir.Path, fmt.Sprintf("graph%d.txt", idx))
}

// GraphPaths returns the pathnames of graph files 0..count-1.
func (dir ResultDir) GraphPaths(count int) []string {
	paths := make([]string, count)
	for i := range paths {
		paths[i] = dir.GraphPath(i)
	}
	return paths
}

func (dir ResultDir) WriteGraph(idx int, X *Graph) error {
	return WriteGraphFile(dir.GraphPath(idx), X)
}

func (dir ResultDir) WriteSeed(idx int, seed *Graph) error {
	return WriteGraphFile(dir.GraphPath(idx), seed)
}

// FindUniqueGraphs writes the first occurrence of each distinct candidate to sink (indices 0..u-1),
// followed by the seed, as given, at index u.  Returns u.
// Candidates are expected to be canonically labeled; ownership stays with the caller.
func FindUniqueGraphs(candidates []*Graph, seed *Graph, sink ResultSink) (int, error) {
	if seed == nil {
		return 0, gql.ErrNilGraph
	}
	dd := NewDropDupes()
	for _, X := range candidates {
		if !dd.TryAddGraph(X) {
			continue
		}
		if err := sink.WriteGraph(dd.Len()-1, X); err != nil {
			return 0, err
		}
	}
	u := dd.Len()
	if err := sink.WriteSeed(u, seed); err != nil {
		return 0, err
	}
	return u, nil
}

// GenerateRules synthesizes every candidate rule for seed, writing each distinct one to sink as it is
// first seen and then the seed last.  Duplicates are reclaimed as they are found.
func GenerateRules(seed *Graph, oracle Oracle, opts RuleOpts, sink ResultSink) (gql.CycleStats, error) {
	stats := gql.CycleStats{}
	if seed == nil {
		return stats, gql.ErrNilGraph
	}
	stats.SeedVerts = int32(seed.NumVerts())
	stats.SeedEdges = int32(seed.NumEdges())

	missing := seed.DisconnectedEdges()
	stats.MissingEdges = int32(len(missing))

	dd := NewDropDupes()
	defer dd.Close()

	err := ForEachRule(seed, missing, oracle, opts, func(X *Graph) error {
		stats.Candidates++
		if !dd.TryAddGraph(X) {
			X.Reclaim()
			return nil
		}
		return sink.WriteGraph(dd.Len()-1, X)
	})
	if err != nil {
		return stats, err
	}

	stats.Representatives = int32(dd.Len())
	if err = sink.WriteSeed(dd.Len(), seed); err != nil {
		return stats, err
	}
	return stats, nil
}

var _ GraphAdder = (*DropDupes)(nil)
