package gql

const (

	// MaxVtxCount is the largest vertex count a graph file may declare.
	MaxVtxCount = 1 << 16

	// DefaultMaxMissingEdges bounds the Disconnected-Edge Set size of a seed graph (2^16-1 candidates).
	DefaultMaxMissingEdges = 16

	// DefaultMaxSubsets bounds the number of removal subsets the coefficient pass will enumerate per file.
	DefaultMaxSubsets int64 = 1 << 22
)

// Protocol tokens exchanged over the handshake channel.
const (
	TokenDone          = "done"
	TokenVertexInduced = "vertex_induced"
	TokenEdgeInduced   = "edge_induced"
)

// ResultType is the mode selector sent by the controller before each cycle.
type ResultType int32

const (
	ResultTerminate     ResultType = 0 // "done" -- no more cycles
	ResultPlain         ResultType = 1 // any non-terminal token we don't otherwise recognize
	ResultEdgeInduced   ResultType = 2
	ResultVertexInduced ResultType = 3 // enables the coefficient pass
)

// CountsCoefficients returns true if a cycle of this type appends coefficients to each result file.
func (rt ResultType) CountsCoefficients() bool {
	return rt == ResultVertexInduced
}

// IsTerminal returns true if this result type ends the worker.
func (rt ResultType) IsTerminal() bool {
	return rt == ResultTerminate
}

func (rt ResultType) String() string {
	switch rt {
	case ResultTerminate:
		return TokenDone
	case ResultEdgeInduced:
		return TokenEdgeInduced
	case ResultVertexInduced:
		return TokenVertexInduced
	default:
		return "plain"
	}
}

// CycleStats summarizes one RunningCycle pass.
type CycleStats struct {
	SeedVerts       int32
	SeedEdges       int32
	MissingEdges    int32 // size of the Disconnected-Edge Set
	Candidates      int64 // 2^MissingEdges - 1
	Representatives int32 // unique candidates written (excludes the seed)
	Coefficients    []int64
}

// NumFiles is the total number of result files written by the cycle, seed included.
func (stats *CycleStats) NumFiles() int {
	return int(stats.Representatives) + 1
}
