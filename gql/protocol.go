package gql

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MsgKind names each message the handshake exchanges.
type MsgKind byte

const (
	MsgBatchSize  MsgKind = iota + 1 // controller -> worker: number of pattern files in src/
	MsgReady                         // controller -> worker: content ignored
	MsgDone                          // worker -> controller: "done"
	MsgResultType                    // controller -> worker: "done" or a mode selector
)

func (kind MsgKind) String() string {
	switch kind {
	case MsgBatchSize:
		return "batch-size"
	case MsgReady:
		return "ready"
	case MsgDone:
		return "done"
	case MsgResultType:
		return "result-type"
	}
	return "unknown"
}

// Msg is a single parsed handshake token.
type Msg struct {
	Kind       MsgKind
	BatchSize  int        // set for MsgBatchSize
	ResultType ResultType // set for MsgResultType
	Raw        string     // token as received (sans line ending)
}

// DoneMsg is the completion token the worker writes after each phase.
var DoneMsg = Msg{Kind: MsgDone, Raw: TokenDone}

// ParseMsg parses a token that is expected to be of the given kind.
func ParseMsg(expect MsgKind, token string) (Msg, error) {
	raw := strings.TrimRight(token, "\r\n")
	msg := Msg{
		Kind: expect,
		Raw:  raw,
	}
	field := strings.TrimSpace(raw)

	switch expect {
	case MsgBatchSize:
		n, err := strconv.Atoi(field)
		if err != nil {
			return msg, errors.Wrapf(ErrParse, "batch size %q", raw)
		}
		if n < 0 {
			return msg, errors.Wrapf(ErrProtocol, "negative batch size %d", n)
		}
		msg.BatchSize = n

	case MsgReady:
		// content ignored

	case MsgDone:
		if field != TokenDone {
			return msg, errors.Wrapf(ErrProtocol, "expected %q, got %q", TokenDone, raw)
		}

	case MsgResultType:
		switch field {
		case TokenDone:
			msg.ResultType = ResultTerminate
		case TokenVertexInduced:
			msg.ResultType = ResultVertexInduced
		case TokenEdgeInduced:
			msg.ResultType = ResultEdgeInduced
		default:
			msg.ResultType = ResultPlain
		}

	default:
		return msg, errors.Wrapf(ErrProtocol, "unknown message kind %d", expect)
	}

	return msg, nil
}

// String serializes msg as the token written to the channel (without line ending).
func (msg Msg) String() string {
	switch msg.Kind {
	case MsgBatchSize:
		return strconv.Itoa(msg.BatchSize)
	case MsgDone:
		return TokenDone
	case MsgResultType:
		if msg.ResultType == ResultPlain && msg.Raw != "" {
			return msg.Raw
		}
		return msg.ResultType.String()
	}
	return msg.Raw
}
