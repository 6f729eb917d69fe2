package libgql

import (
	"encoding/binary"
	"hash/maphash"
	"sync"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/pkg/errors"
)

// Graph is a simple undirected graph over dense vertices 0..NumVerts()-1 with optional vertex colors.
//
// A Graph is owned by whoever created it; candidates are never mutated after canonization.
type Graph struct {
	vtxCount int32
	colors   []uint32 // len == vtxCount; all zero for an uncolored graph
	edges    EdgeList // sorted, no duplicates

	hash   uint64
	hashed bool
}

// NewGraph returns an edgeless graph with the given vertex count.
func NewGraph(numVerts int) *Graph {
	X := graphPool.Get().(*Graph)
	X.Init(numVerts)
	return X
}

var graphPool = sync.Pool{
	New: func() interface{} {
		return new(Graph)
	},
}

// Reclaim recycles X into a pool for reuse.
// Caller asserts that no more references to X will persist.
func (X *Graph) Reclaim() {
	if X != nil {
		graphPool.Put(X)
	}
}

func (X *Graph) Init(numVerts int) {
	if numVerts < 0 {
		numVerts = 0
	}
	X.vtxCount = int32(numVerts)
	if cap(X.colors) < numVerts {
		X.colors = make([]uint32, numVerts)
	} else {
		X.colors = X.colors[:numVerts]
		for i := range X.colors {
			X.colors[i] = 0
		}
	}
	X.edges = X.edges[:0]
	X.onGraphChanged()
}

// AssignFrom makes X a copy of Xsrc, reusing X's allocations.
func (X *Graph) AssignFrom(Xsrc *Graph) {
	X.vtxCount = Xsrc.vtxCount
	X.colors = append(X.colors[:0], Xsrc.colors...)
	X.edges = append(X.edges[:0], Xsrc.edges...)
	X.hash, X.hashed = Xsrc.hash, Xsrc.hashed
}

// Copy returns a new Graph equal to X.
func (X *Graph) Copy() *Graph {
	Xc := graphPool.Get().(*Graph)
	Xc.AssignFrom(X)
	return Xc
}

func (X *Graph) NumVerts() int {
	return int(X.vtxCount)
}

func (X *Graph) NumEdges() int {
	return len(X.edges)
}

// Edges returns X's sorted edges; the slice should be considered read-only.
func (X *Graph) Edges() EdgeList {
	return X.edges
}

// Pairs returns X's edges in 1-based external encoding, ordered.
func (X *Graph) Pairs() EdgeSet {
	pairs := make(EdgeSet, len(X.edges))
	for i, edge := range X.edges {
		pairs[i] = edge.Pair()
	}
	return pairs
}

func (X *Graph) Color(v VtxID) uint32 {
	return X.colors[v]
}

func (X *Graph) SetColor(v VtxID, color uint32) error {
	if int(v) >= X.NumVerts() {
		return errors.Wrapf(gql.ErrBadVtxID, "vertex %d outside 0..%d", v, X.vtxCount-1)
	}
	X.colors[v] = color
	X.onGraphChanged()
	return nil
}

// AddEdge adds the undirected edge {a, b}.  Adding an existing edge has no effect.
func (X *Graph) AddEdge(a, b VtxID) error {
	if int(a) >= X.NumVerts() || int(b) >= X.NumVerts() {
		return errors.Wrapf(gql.ErrBadVtxID, "edge (%d,%d) outside 0..%d", a, b, X.vtxCount-1)
	}
	if a == b {
		return errors.Wrapf(gql.ErrBadEdge, "loop at vertex %d", a)
	}

	edge := FormEdge(a, b)
	idx, found := X.edges.search(edge)
	if found {
		return nil
	}
	X.edges = append(X.edges, 0)
	copy(X.edges[idx+1:], X.edges[idx:])
	X.edges[idx] = edge
	X.onGraphChanged()
	return nil
}

// AddPair adds an edge given in 1-based external encoding.
func (X *Graph) AddPair(p EdgePair) error {
	a, b, err := p.Idx(X.NumVerts())
	if err != nil {
		return err
	}
	return X.AddEdge(a, b)
}

func (X *Graph) HasEdge(a, b VtxID) bool {
	if a == b {
		return false
	}
	_, found := X.edges.search(FormEdge(a, b))
	return found
}

// Adjacency returns the neighbors of each vertex, each list in ascending order.
func (X *Graph) Adjacency() [][]VtxID {
	adj := make([][]VtxID, X.vtxCount)
	for _, edge := range X.edges {
		a, b := edge.VtxAB()
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}
	return adj
}

// Permute returns a new graph where each vertex v of X becomes vertex lab[v].
func (X *Graph) Permute(lab Labeling) (*Graph, error) {
	if err := lab.Validate(X.NumVerts()); err != nil {
		return nil, err
	}

	Xp := NewGraph(X.NumVerts())
	for v, color := range X.colors {
		Xp.colors[lab[v]] = color
	}
	for _, edge := range X.edges {
		a, b := edge.VtxAB()
		Xp.edges = append(Xp.edges, FormEdge(lab[a], lab[b]))
	}
	Xp.edges.Canonicalize()
	return Xp, nil
}

// Cmp imposes a total order on labeled graphs: vertex count, then colors, then edge count, then edges.
// Two canonically labeled graphs are isomorphic iff Cmp returns 0.
func (X *Graph) Cmp(Y *Graph) int {
	if d := X.vtxCount - Y.vtxCount; d != 0 {
		return int(d)
	}
	for i, ci := range X.colors {
		if cj := Y.colors[i]; ci != cj {
			if ci < cj {
				return -1
			}
			return 1
		}
	}
	if d := len(X.edges) - len(Y.edges); d != 0 {
		return d
	}
	for i, ei := range X.edges {
		if ej := Y.edges[i]; ei != ej {
			if ei < ej {
				return -1
			}
			return 1
		}
	}
	return 0
}

// AppendEncoding appends a binary encoding of X's labeled structure to buf.
//
// Format:
//
//	uvarint(NumVerts)
//	uvarint(NumColored) <1..NumColored> uvarint(vtx) uvarint(color)
//	uvarint(NumEdges)   <1..NumEdges>   uvarint(Va) uvarint(Vb)
func (X *Graph) AppendEncoding(buf []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(X.vtxCount))

	numColored := 0
	for _, c := range X.colors {
		if c != 0 {
			numColored++
		}
	}
	buf = binary.AppendUvarint(buf, uint64(numColored))
	for v, c := range X.colors {
		if c != 0 {
			buf = binary.AppendUvarint(buf, uint64(v))
			buf = binary.AppendUvarint(buf, uint64(c))
		}
	}

	buf = binary.AppendUvarint(buf, uint64(len(X.edges)))
	for _, edge := range X.edges {
		a, b := edge.VtxAB()
		buf = binary.AppendUvarint(buf, uint64(a))
		buf = binary.AppendUvarint(buf, uint64(b))
	}
	return buf
}

// InitFromEncoding sets X to the graph encoded by AppendEncoding.
func (X *Graph) InitFromEncoding(buf []byte) error {
	var vals [2]uint64
	next := func() (uint64, error) {
		v, n := binary.Uvarint(buf)
		if n <= 0 {
			return 0, errors.Wrap(gql.ErrParse, "truncated graph encoding")
		}
		buf = buf[n:]
		return v, nil
	}

	numVerts, err := next()
	if err != nil {
		return err
	}
	if numVerts > gql.MaxVtxCount {
		return errors.Wrapf(gql.ErrBadVtxID, "encoding declares %d vertices", numVerts)
	}
	X.Init(int(numVerts))

	numColored, err := next()
	if err != nil {
		return err
	}
	for i := uint64(0); i < numColored; i++ {
		for j := range vals {
			if vals[j], err = next(); err != nil {
				return err
			}
		}
		if err = X.SetColor(VtxID(vals[0]), uint32(vals[1])); err != nil {
			return err
		}
	}

	numEdges, err := next()
	if err != nil {
		return err
	}
	for i := uint64(0); i < numEdges; i++ {
		for j := range vals {
			if vals[j], err = next(); err != nil {
				return err
			}
		}
		if err = X.AddEdge(VtxID(vals[0]), VtxID(vals[1])); err != nil {
			return err
		}
	}
	return nil
}

var hashSeed = maphash.MakeSeed()

// Hash returns a hash of X's labeled structure (stable for the life of the process).
func (X *Graph) Hash() uint64 {
	if !X.hashed {
		var scrap [512]byte
		X.hash = maphash.Bytes(hashSeed, X.AppendEncoding(scrap[:0]))
		X.hashed = true
	}
	return X.hash
}

func (X *Graph) onGraphChanged() {
	X.hashed = false
}

// Labeling maps each vertex v to its new label lab[v]; a valid Labeling is a permutation of 0..n-1.
type Labeling []VtxID

// Validate checks that lab is a permutation of 0..numVerts-1.
func (lab Labeling) Validate(numVerts int) error {
	if len(lab) != numVerts {
		return errors.Wrapf(gql.ErrBadLabeling, "labeling has %d entries for %d vertices", len(lab), numVerts)
	}
	seen := make([]bool, numVerts)
	for _, li := range lab {
		if int(li) >= numVerts || seen[li] {
			return errors.Wrapf(gql.ErrBadLabeling, "label %d repeated or out of range", li)
		}
		seen[li] = true
	}
	return nil
}

// Inverse returns inv where inv[lab[v]] == v.
func (lab Labeling) Inverse() Labeling {
	inv := make(Labeling, len(lab))
	for v, li := range lab {
		inv[li] = VtxID(v)
	}
	return inv
}
