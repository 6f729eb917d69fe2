// Package canon computes canonical labelings by individualization-refinement.
//
// The search tree is rooted at the equitable refinement of the vertex coloring.  Each node
// individualizes one vertex of the first non-singleton cell and refines again; each leaf is a
// discrete partition, i.e. a labeling.  The canonical labeling is the leaf whose relabeled edge list
// is least.  Leaves that tie with the current best yield automorphisms, which prune sibling subtrees
// lying in the same orbit.
package canon

import (
	"slices"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/2x3systems/gqlrules/libgql"
	"github.com/pkg/errors"
)

// DefaultMaxLeaves bounds the leaves a single search may visit.
const DefaultMaxLeaves = 1 << 20

// Oracle is a libgql.Oracle that needs no external tooling.
type Oracle struct {
	MaxLeaves int // 0 denotes DefaultMaxLeaves
}

func New() *Oracle {
	return &Oracle{
		MaxLeaves: DefaultMaxLeaves,
	}
}

func (o *Oracle) CanonicalForm(X *libgql.Graph) (libgql.Labeling, error) {
	if X == nil {
		return nil, gql.ErrNilGraph
	}

	s := search{
		n:         X.NumVerts(),
		adj:       X.Adjacency(),
		edges:     X.Edges(),
		maxLeaves: o.MaxLeaves,
	}
	if s.maxLeaves <= 0 {
		s.maxLeaves = DefaultMaxLeaves
	}
	if s.n == 0 {
		return libgql.Labeling{}, nil
	}

	if err := s.visit(s.initialCells(X), nil); err != nil {
		return nil, err
	}

	lab := make(libgql.Labeling, s.n)
	for v, c := range s.bestCells {
		lab[v] = libgql.VtxID(c)
	}
	return lab, nil
}

type search struct {
	n         int
	adj       [][]libgql.VtxID
	edges     libgql.EdgeList
	maxLeaves int
	leaves    int

	bestCert  libgql.EdgeList
	bestCells []int32
	bestInv   []libgql.VtxID
	gens      [][]libgql.VtxID // automorphisms found so far
}

// initialCells assigns each vertex the rank of its color among the distinct colors present.
func (s *search) initialCells(X *libgql.Graph) []int32 {
	colors := make([]uint32, s.n)
	for v := range colors {
		colors[v] = X.Color(libgql.VtxID(v))
	}
	distinct := slices.Clone(colors)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	cells := make([]int32, s.n)
	for v, c := range colors {
		idx, _ := slices.BinarySearch(distinct, c)
		cells[v] = int32(idx)
	}
	return cells
}

// refine returns the coarsest equitable partition finer than cells.
// Cell numbers are ordered first by the cell they split from.
func (s *search) refine(cells []int32) []int32 {
	n := s.n
	keys := make([][]int32, n)
	order := make([]int, n)
	numCells := countCells(cells)

	for {
		for v := 0; v < n; v++ {
			key := append(keys[v][:0], cells[v])
			for _, u := range s.adj[v] {
				key = append(key, cells[u])
			}
			slices.Sort(key[1:])
			keys[v] = key
		}
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			return slices.Compare(keys[a], keys[b])
		})

		next := make([]int32, n)
		c := int32(0)
		for i, v := range order {
			if i > 0 && slices.Compare(keys[order[i-1]], keys[v]) != 0 {
				c++
			}
			next[v] = c
		}
		cells = next
		if int(c)+1 == numCells {
			return cells
		}
		numCells = int(c) + 1
	}
}

// individualize places v in a singleton cell ahead of the rest of its cell.
func individualize(cells []int32, v int) []int32 {
	next := make([]int32, len(cells))
	for u, c := range cells {
		next[u] = 2*c + 1
	}
	next[v]--
	return compress(next)
}

func compress(cells []int32) []int32 {
	distinct := slices.Clone(cells)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)
	for v, c := range cells {
		idx, _ := slices.BinarySearch(distinct, c)
		cells[v] = int32(idx)
	}
	return cells
}

func countCells(cells []int32) int {
	seen := make([]bool, len(cells))
	count := 0
	for _, c := range cells {
		if !seen[c] {
			seen[c] = true
			count++
		}
	}
	return count
}

// targetCell returns the members of the first non-singleton cell, or nil if cells is discrete.
func targetCell(cells []int32) []int {
	size := make([]int, len(cells))
	for _, c := range cells {
		size[c]++
	}
	target := int32(-1)
	for c, sz := range size {
		if sz > 1 {
			target = int32(c)
			break
		}
	}
	if target < 0 {
		return nil
	}
	var members []int
	for v, c := range cells {
		if c == target {
			members = append(members, v)
		}
	}
	return members
}

func (s *search) visit(cells []int32, path []int) error {
	cells = s.refine(cells)

	members := targetCell(cells)
	if members == nil {
		return s.onLeaf(cells)
	}

	var explored []int
	for _, v := range members {
		if len(explored) > 0 && s.inExploredOrbit(v, explored, path) {
			continue
		}
		explored = append(explored, v)
		if err := s.visit(individualize(cells, v), append(path, v)); err != nil {
			return err
		}
	}
	return nil
}

func (s *search) onLeaf(cells []int32) error {
	s.leaves++
	if s.leaves > s.maxLeaves {
		return errors.Wrapf(gql.ErrCapacityExceeded, "canonical search exceeded %d leaves", s.maxLeaves)
	}

	cert := make(libgql.EdgeList, len(s.edges))
	for i, edge := range s.edges {
		a, b := edge.VtxAB()
		cert[i] = libgql.FormEdge(libgql.VtxID(cells[a]), libgql.VtxID(cells[b]))
	}
	cert.Canonicalize()

	if s.bestCells == nil {
		s.setBest(cert, cells)
		return nil
	}

	switch slices.Compare(cert, s.bestCert) {
	case -1:
		s.setBest(cert, cells)
	case 0:
		// bestInv o cells is an automorphism
		gamma := make([]libgql.VtxID, s.n)
		identity := true
		for v, c := range cells {
			gamma[v] = s.bestInv[c]
			if int(gamma[v]) != v {
				identity = false
			}
		}
		if !identity {
			s.gens = append(s.gens, gamma)
		}
	}
	return nil
}

func (s *search) setBest(cert libgql.EdgeList, cells []int32) {
	s.bestCert = cert
	s.bestCells = slices.Clone(cells)
	if s.bestInv == nil {
		s.bestInv = make([]libgql.VtxID, s.n)
	}
	for v, c := range cells {
		s.bestInv[c] = libgql.VtxID(v)
	}
}

// inExploredOrbit reports whether v shares an orbit with an explored vertex under the
// automorphisms found so far that fix every vertex of path.
func (s *search) inExploredOrbit(v int, explored []int, path []int) bool {
	parent := make([]int, s.n)
	for i := range parent {
		parent[i] = i
	}
	var find func(x int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	found := false
	for _, gamma := range s.gens {
		fixes := true
		for _, p := range path {
			if int(gamma[p]) != p {
				fixes = false
				break
			}
		}
		if !fixes {
			continue
		}
		found = true
		for x, y := range gamma {
			if rx, ry := find(x), find(int(y)); rx != ry {
				parent[rx] = ry
			}
		}
	}
	if !found {
		return false
	}

	rv := find(v)
	for _, u := range explored {
		if find(u) == rv {
			return true
		}
	}
	return false
}
