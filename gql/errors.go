package gql

import (
	"errors"
	"fmt"
)

// Failure kinds. Callers test with errors.Is; context is attached with errors.Wrap.
var (
	ErrTransport        = errors.New("handshake transport failure")
	ErrProtocol         = errors.New("handshake protocol violation")
	ErrParse            = errors.New("parse failed")
	ErrFile             = errors.New("graph file unavailable")
	ErrCapacityExceeded = errors.New("combinatorial capacity exceeded")
)

// Graph errors
var (
	ErrMissingHeader   = fmt.Errorf("%w: missing graph header", ErrParse)
	ErrBadVtxID        = errors.New("bad graph vertex ID")
	ErrBadEdge         = errors.New("bad graph edge")
	ErrBadLabeling     = errors.New("labeling is not a permutation of the graph's vertices")
	ErrNilGraph        = errors.New("nil graph")
	ErrBadCatalogParam = errors.New("bad catalog param")
)
