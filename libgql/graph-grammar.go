package libgql

import (
	"github.com/2x3systems/gqlrules/gql"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// GraphFileExpr is a line-oriented graph file:
//
//	p edge <NumVerts> <NumEdges>
//	n <vtx> <color>
//	e <u> <v>
//	perm <new-label> <old-label>
//	<new-label> <old-label>
//	<coefficient>
//
// Vertex indices are 1-based in the file.
type GraphFileExpr struct {
	Lines []*LineExpr `( @@ | EOL )*`
}

type LineExpr struct {
	Header  *HeaderExpr `  "p" @@`
	Edge    *PairExpr   `| "e" @@`
	Color   *PairExpr   `| "n" @@`
	Perm    *PairExpr   `| "perm" @@`
	Comment []string    `| "c" @( ~EOL )*`
	Ints    []int64     `| @Int+`
}

type HeaderExpr struct {
	Format   string `@Ident`
	NumVerts int64  `@Int`
	NumEdges int64  `@Int`
}

type PairExpr struct {
	A int64 `@Int`
	B int64 `@Int`
}

var graphFileLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "EOL", Pattern: `[\r\n]+`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

var parseGraphFileExpr = participle.MustBuild[GraphFileExpr](
	participle.Lexer(graphFileLexer),
	participle.Elide("Whitespace"),
)

// GraphFile is a parsed graph file.
type GraphFile struct {
	Graph          *Graph
	Format         string   // header format token, normally "edge"
	DeclaredEdges  int      // edge count declared in the header
	Pairs          EdgeSet  // edges in file order, orientation as read
	Perm           Labeling // from "perm" lines; nil if absent
	Mapping        []EdgePair
	Coefficient    int64
	HasCoefficient bool
}

type graphFileBuilder struct {
	file     GraphFile
	permSeen int
}

func (fb *graphFileBuilder) applyLine(line *LineExpr) error {
	X := fb.file.Graph

	switch {
	case line.Header != nil:
		if X != nil {
			return errors.Wrap(gql.ErrParse, "repeated header line")
		}
		hdr := line.Header
		if hdr.NumVerts > gql.MaxVtxCount {
			return errors.Wrapf(gql.ErrBadVtxID, "header declares %d vertices", hdr.NumVerts)
		}
		fb.file.Format = hdr.Format
		fb.file.DeclaredEdges = int(hdr.NumEdges)
		fb.file.Graph = NewGraph(int(hdr.NumVerts))

	case line.Edge != nil:
		if X == nil {
			return errors.Wrap(gql.ErrMissingHeader, "edge line before header")
		}
		pair, err := line.Edge.pair()
		if err != nil {
			return err
		}
		if err = X.AddPair(pair); err != nil {
			return err
		}
		fb.file.Pairs = append(fb.file.Pairs, pair)

	case line.Color != nil:
		if X == nil {
			return errors.Wrap(gql.ErrMissingHeader, "color line before header")
		}
		pair, err := line.Color.pair()
		if err != nil {
			return err
		}
		if pair.U < 1 || int(pair.U) > X.NumVerts() {
			return errors.Wrapf(gql.ErrBadVtxID, "color for vertex %d", pair.U)
		}
		return X.SetColor(VtxID(pair.U-1), uint32(pair.V))

	case line.Perm != nil:
		if X == nil {
			return errors.Wrap(gql.ErrMissingHeader, "perm line before header")
		}
		n := X.NumVerts()
		if fb.file.Perm == nil {
			fb.file.Perm = make(Labeling, n)
		}
		lab, v := line.Perm.A, line.Perm.B
		if lab >= int64(n) || v >= int64(n) {
			return errors.Wrapf(gql.ErrBadLabeling, "perm %d %d", lab, v)
		}
		fb.file.Perm[v] = VtxID(lab)
		fb.permSeen++

	case len(line.Ints) == 1:
		fb.file.Coefficient = line.Ints[0]
		fb.file.HasCoefficient = true

	case len(line.Ints) == 2:
		fb.file.Mapping = append(fb.file.Mapping, EdgePair{U: int32(line.Ints[0]), V: int32(line.Ints[1])})

	case len(line.Ints) > 2:
		return errors.Wrapf(gql.ErrParse, "unexpected line of %d integers", len(line.Ints))
	}

	return nil
}

func (pe *PairExpr) pair() (EdgePair, error) {
	if pe.A > gql.MaxVtxCount || pe.B > gql.MaxVtxCount {
		return EdgePair{}, errors.Wrapf(gql.ErrBadVtxID, "pair (%d,%d)", pe.A, pe.B)
	}
	return EdgePair{U: int32(pe.A), V: int32(pe.B)}, nil
}

// ParseGraphText parses the text of a graph file.
// If requireHeader is set, a file lacking a "p" line fails with ErrMissingHeader.
func ParseGraphText(filename, text string, requireHeader bool) (*GraphFile, error) {
	expr, err := parseGraphFileExpr.ParseString(filename, text)
	if err != nil {
		return nil, errors.Wrapf(gql.ErrParse, "%s: %v", filename, err)
	}

	var fb graphFileBuilder
	for _, line := range expr.Lines {
		if err = fb.applyLine(line); err != nil {
			fb.file.Graph.Reclaim()
			return nil, errors.Wrap(err, filename)
		}
	}

	if fb.file.Graph == nil {
		if requireHeader {
			return nil, errors.Wrap(gql.ErrMissingHeader, filename)
		}
	} else if fb.file.Perm != nil {
		if fb.permSeen != fb.file.Graph.NumVerts() {
			fb.file.Graph.Reclaim()
			return nil, errors.Wrapf(gql.ErrBadLabeling, "%s: %d perm lines for %d vertices", filename, fb.permSeen, fb.file.Graph.NumVerts())
		}
		if err = fb.file.Perm.Validate(fb.file.Graph.NumVerts()); err != nil {
			fb.file.Graph.Reclaim()
			return nil, errors.Wrap(err, filename)
		}
	}

	return &fb.file, nil
}
