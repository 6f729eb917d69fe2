package libgql

import (
	"sort"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/pkg/errors"
)

// VtxID is a zero-based vertex index (0..NumVerts-1)
type VtxID uint32

// EdgeID packs an undirected edge:  (Va << 32) | Vb, where Va < Vb
type EdgeID uint64

// FormEdge forms a canonical EdgeID from two distinct vertices.
func FormEdge(Va, Vb VtxID) EdgeID {
	if Va > Vb {
		Va, Vb = Vb, Va
	}
	return (EdgeID(Va) << 32) | EdgeID(Vb)
}

// VtxAB returns the edge's endpoints where a < b.
func (edge EdgeID) VtxAB() (a, b VtxID) {
	return VtxID(edge >> 32), VtxID(edge & 0xFFFFFFFF)
}

// Pair returns the edge in 1-based external encoding.
func (edge EdgeID) Pair() EdgePair {
	a, b := edge.VtxAB()
	return EdgePair{U: int32(a) + 1, V: int32(b) + 1}
}

// EdgeList is a sequence of EdgeIDs; a Graph keeps its EdgeList sorted and free of duplicates.
type EdgeList []EdgeID

func (es EdgeList) Len() int           { return len(es) }
func (es EdgeList) Swap(i, j int)      { es[i], es[j] = es[j], es[i] }
func (es EdgeList) Less(i, j int) bool { return es[i] < es[j] }

func (es EdgeList) Canonicalize() {
	sort.Sort(es)
}

// search returns the insertion index for edge and whether it is already present.
func (es EdgeList) search(edge EdgeID) (int, bool) {
	idx := sort.Search(len(es), func(i int) bool { return es[i] >= edge })
	return idx, idx < len(es) && es[idx] == edge
}

// EdgePair is an edge as it appears in a graph file: two 1-based vertex indices, orientation as read.
type EdgePair struct {
	U int32
	V int32
}

// Idx converts the pair to 0-based vertex indices, checking both against numVerts.
func (p EdgePair) Idx(numVerts int) (a, b VtxID, err error) {
	if p.U < 1 || int(p.U) > numVerts || p.V < 1 || int(p.V) > numVerts {
		return 0, 0, errors.Wrapf(gql.ErrBadVtxID, "edge (%d,%d) outside 1..%d", p.U, p.V, numVerts)
	}
	return VtxID(p.U - 1), VtxID(p.V - 1), nil
}

// Reversed returns (V, U).
func (p EdgePair) Reversed() EdgePair {
	return EdgePair{U: p.V, V: p.U}
}

// EdgePairComparator orders pairs by U then V; it is the comparator for gods containers keyed by EdgePair.
func EdgePairComparator(A, B interface{}) int {
	a := A.(EdgePair)
	b := B.(EdgePair)
	if d := a.U - b.U; d != 0 {
		return int(d)
	}
	return int(a.V - b.V)
}

// EdgeSet is an ordered, duplicate-free sequence of pairs (ordered by EdgePairComparator).
type EdgeSet []EdgePair
