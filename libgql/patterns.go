package libgql

import (
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// PatternPath returns <srcDir>/<idx>.txt
func PatternPath(srcDir string, idx int) string {
	return filepath.Join(srcDir, strconv.Itoa(idx)+".txt")
}

// CanonicalizePatterns replaces each pattern file <srcDir>/0.txt .. <srcDir>/<n-1>.txt with its
// canonical labeling: one "<lab[v]> <v>" line per vertex v.  n == 0 touches nothing.
func CanonicalizePatterns(srcDir string, n int, oracle Oracle) error {
	for i := 0; i < n; i++ {
		if err := CanonicalizePattern(PatternPath(srcDir, i), oracle); err != nil {
			return err
		}
	}
	return nil
}

// CanonicalizePattern replaces the graph file at pathname with its canonical labeling.
func CanonicalizePattern(pathname string, oracle Oracle) error {
	X, err := ReadGraph(pathname)
	if err != nil {
		return err
	}
	defer X.Reclaim()

	lab, err := oracle.CanonicalForm(X)
	if err != nil {
		return errors.Wrap(err, pathname)
	}
	if err = lab.Validate(X.NumVerts()); err != nil {
		return errors.Wrap(err, pathname)
	}
	return WritePermutationFile(pathname, lab)
}
