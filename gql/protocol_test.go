package gql_test

import (
	"testing"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatchSize(t *testing.T) {
	msg, err := gql.ParseMsg(gql.MsgBatchSize, "12\n")
	require.NoError(t, err)
	assert.Equal(t, 12, msg.BatchSize)
	assert.Equal(t, "12", msg.String())

	_, err = gql.ParseMsg(gql.MsgBatchSize, "twelve")
	assert.ErrorIs(t, err, gql.ErrParse)

	_, err = gql.ParseMsg(gql.MsgBatchSize, "-1")
	assert.ErrorIs(t, err, gql.ErrProtocol)
}

func TestParseResultType(t *testing.T) {
	cases := map[string]gql.ResultType{
		"done":           gql.ResultTerminate,
		"done\r\n":       gql.ResultTerminate,
		"vertex_induced": gql.ResultVertexInduced,
		"edge_induced":   gql.ResultEdgeInduced,
		"start":          gql.ResultPlain,
	}
	for token, want := range cases {
		msg, err := gql.ParseMsg(gql.MsgResultType, token)
		require.NoError(t, err, token)
		assert.Equal(t, want, msg.ResultType, token)
	}

	assert.True(t, gql.ResultTerminate.IsTerminal())
	assert.True(t, gql.ResultVertexInduced.CountsCoefficients())
	assert.False(t, gql.ResultEdgeInduced.CountsCoefficients())

	msg, _ := gql.ParseMsg(gql.MsgResultType, "custom_mode")
	assert.Equal(t, "custom_mode", msg.String())
}

func TestParseDoneAndReady(t *testing.T) {
	_, err := gql.ParseMsg(gql.MsgReady, "anything at all")
	require.NoError(t, err)

	_, err = gql.ParseMsg(gql.MsgDone, "done\n")
	require.NoError(t, err)
	assert.Equal(t, "done", gql.DoneMsg.String())

	_, err = gql.ParseMsg(gql.MsgDone, "start")
	assert.ErrorIs(t, err, gql.ErrProtocol)
}

func TestMissingHeaderIsParseError(t *testing.T) {
	assert.ErrorIs(t, gql.ErrMissingHeader, gql.ErrParse)
}
