package libgql

import (
	"github.com/emirpasic/gods/trees/redblacktree"
)

// DisconnectedEdges returns every pair (i, j), 1 <= i < j <= numVerts, absent from pairs in either orientation.
// The result is ordered by (i, j).
func DisconnectedEdges(numVerts int, pairs []EdgePair) EdgeSet {
	present := redblacktree.Tree{
		Comparator: EdgePairComparator,
	}
	for _, p := range pairs {
		present.Put(p, nil)
	}

	missing := redblacktree.Tree{
		Comparator: EdgePairComparator,
	}
	for i := int32(1); i <= int32(numVerts); i++ {
		for j := i + 1; j <= int32(numVerts); j++ {
			p := EdgePair{U: i, V: j}
			if _, found := present.Get(p); found {
				continue
			}
			if _, found := present.Get(p.Reversed()); found {
				continue
			}
			missing.Put(p, nil)
		}
	}

	edges := make(EdgeSet, 0, missing.Size())
	itr := missing.Iterator()
	for itr.Next() {
		edges = append(edges, itr.Key().(EdgePair))
	}
	return edges
}

// DisconnectedEdges returns the pairs absent from X's edge set, 1-based and ordered.
func (X *Graph) DisconnectedEdges() EdgeSet {
	return DisconnectedEdges(X.NumVerts(), X.Pairs())
}

// DisconnectedEdges returns the pairs absent from the file's edge lines, as read.
func (file *GraphFile) DisconnectedEdges() EdgeSet {
	return DisconnectedEdges(file.Graph.NumVerts(), file.Pairs)
}
