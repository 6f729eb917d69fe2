package libgql

import (
	"fmt"
	"os"
	"strconv"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/pkg/errors"
)

// ReadGraphFile loads and parses the graph file at pathname; the file must carry a header line.
func ReadGraphFile(pathname string) (*GraphFile, error) {
	buf, err := os.ReadFile(pathname)
	if err != nil {
		return nil, errors.Wrapf(gql.ErrFile, "%v", err)
	}
	return ParseGraphText(pathname, string(buf), true)
}

// ReadGraph is a convenience for ReadGraphFile(pathname).Graph
func ReadGraph(pathname string) (*Graph, error) {
	file, err := ReadGraphFile(pathname)
	if err != nil {
		return nil, err
	}
	return file.Graph, nil
}

// ReadPermutationFile reads a file of "<new-label> <old-label>" lines (as written by WritePermutationFile).
func ReadPermutationFile(pathname string) (Labeling, error) {
	buf, err := os.ReadFile(pathname)
	if err != nil {
		return nil, errors.Wrapf(gql.ErrFile, "%v", err)
	}
	file, err := ParseGraphText(pathname, string(buf), false)
	if err != nil {
		return nil, err
	}
	file.Graph.Reclaim()

	n := len(file.Mapping)
	lab := make(Labeling, n)
	seen := make([]bool, n)
	for _, m := range file.Mapping {
		if m.V < 0 || int(m.V) >= n || seen[m.V] {
			return nil, errors.Wrapf(gql.ErrBadLabeling, "%s: mapping for vertex %d", pathname, m.V)
		}
		seen[m.V] = true
		lab[m.V] = VtxID(m.U)
	}
	if err = lab.Validate(n); err != nil {
		return nil, errors.Wrap(err, pathname)
	}
	return lab, nil
}

// AppendText appends X in graph file format (1-based vertices) to buf.
func (X *Graph) AppendText(buf []byte) []byte {
	buf = fmt.Appendf(buf, "p edge %d %d\n", X.vtxCount, len(X.edges))
	for v, c := range X.colors {
		if c != 0 {
			buf = fmt.Appendf(buf, "n %d %d\n", v+1, c)
		}
	}
	for _, edge := range X.edges {
		a, b := edge.VtxAB()
		buf = fmt.Appendf(buf, "e %d %d\n", a+1, b+1)
	}
	return buf
}

// appendMapping appends a "<prefix><lab[v]> <v>" line for each vertex v.
func appendMapping(buf []byte, prefix string, lab Labeling) []byte {
	for v, li := range lab {
		buf = append(buf, prefix...)
		buf = strconv.AppendUint(buf, uint64(li), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(v), 10)
		buf = append(buf, '\n')
	}
	return buf
}

// WriteGraphFile writes X to pathname in graph file format, replacing any existing file.
func WriteGraphFile(pathname string, X *Graph) error {
	if X == nil {
		return gql.ErrNilGraph
	}
	return writeFile(pathname, X.AppendText(nil))
}

// WriteGraphWithPermutation writes X followed by a "perm <lab[v]> <v>" line for each vertex v.
func WriteGraphWithPermutation(pathname string, X *Graph, lab Labeling) error {
	if X == nil {
		return gql.ErrNilGraph
	}
	if err := lab.Validate(X.NumVerts()); err != nil {
		return err
	}
	buf := X.AppendText(nil)
	buf = appendMapping(buf, "perm ", lab)
	return writeFile(pathname, buf)
}

// WritePermutationFile replaces the file content with a "<lab[v]> <v>" line for each vertex v.
func WritePermutationFile(pathname string, lab Labeling) error {
	return writeFile(pathname, appendMapping(nil, "", lab))
}

// AppendCoefficient appends the count as a trailing line of the file at pathname.
func AppendCoefficient(pathname string, count int64) error {
	f, err := os.OpenFile(pathname, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return errors.Wrapf(gql.ErrFile, "%v", err)
	}
	_, err = f.WriteString(strconv.FormatInt(count, 10) + "\n")
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(gql.ErrFile, "%s: %v", pathname, err)
	}
	return nil
}

func writeFile(pathname string, buf []byte) error {
	if err := os.WriteFile(pathname, buf, 0644); err != nil {
		return errors.Wrapf(gql.ErrFile, "%v", err)
	}
	return nil
}
