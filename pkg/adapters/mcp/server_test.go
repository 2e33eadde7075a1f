package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/arcty"
	"github.com/aretw0/arcty/pkg/adapters/memory"
	"github.com/aretw0/arcty/pkg/runner"
	"github.com/aretw0/arcty/pkg/script"
	"github.com/aretw0/arcty/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScript = `
welcome: Hi, I am Arcty
prompts: ["What may I help you with?"]
paths:
  - pattern: /^bye$/i
    answer: Goodbye!
  - pattern: refund
`

func newServer(t *testing.T) (*Server, *session.Manager) {
	t.Helper()
	s, err := script.Parse([]byte(testScript), script.FormatYAML)
	require.NoError(t, err)
	a, err := arcty.New("", arcty.WithScript(s), arcty.WithTimeBreaks(false))
	require.NoError(t, err)
	mgr := session.NewManager(memory.NewStore())
	return NewServer(a, mgr), mgr
}

func TestServer_Conversation(t *testing.T) {
	srv, mgr := newServer(t)
	ctx := context.Background()

	welcome, err := srv.handleWelcome(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "s1"})
	require.NoError(t, err)
	assert.Equal(t, "s1", welcome.SessionID)
	require.Len(t, welcome.Messages, 2)
	assert.Equal(t, "Hi, I am Arcty", welcome.Messages[0].Text)

	reply, err := srv.handleReply(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "s1", "input": "BYE"})
	require.NoError(t, err)
	assert.True(t, reply.Matched)
	assert.Equal(t, []string{"/^bye$/i"}, reply.Keys)
	assert.Equal(t, "Goodbye!", reply.Messages[len(reply.Messages)-1].Text)

	state, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, state.Transcript, 4)
}

func TestServer_ArgumentErrors(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()

	_, err := srv.handleWelcome(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.Error(t, err)

	_, err = srv.handleReply(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "s1"})
	assert.Error(t, err)

	t.Setenv(runner.EnvMaxInputSize, "3")
	_, err = srv.handleReply(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "s1", "input": "refund"})
	assert.ErrorIs(t, err, runner.ErrInputTooLarge)
}

func TestServer_Introspection(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()

	eval, err := srv.handleEvaluate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"input": "bye"})
	require.NoError(t, err)
	assert.Equal(t, EvaluateResponse{Answer: "Goodbye!", Matched: true}, eval)

	verify, err := srv.handleVerify(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.False(t, verify.Complete)
	assert.Equal(t, [][]string{{"refund"}}, verify.Incomplete)

	result, err := srv.handleGetPaths(ctx, mcp.CallToolRequest{})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.JSONEq(t, `{"/^bye$/i":"Goodbye!","refund":null}`, text.Text)

	contents, err := srv.readPaths(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	res, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, PathsURI, res.URI)
	assert.JSONEq(t, text.Text, res.Text)
}
