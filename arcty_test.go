package arcty_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/arcty"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestFacade_Integration(t *testing.T) {
	path := writeScript(t, t.TempDir(), "support.yaml", `
paths:
  - pattern: hello
    paths:
      - pattern: world
        answer: hi!
  - pattern: refund
`)

	a, err := arcty.New(path)
	require.NoError(t, err)
	assert.Equal(t, "support", a.Name)

	assert.False(t, a.Verify())
	assert.Equal(t, [][]string{{"refund"}}, a.Incomplete())

	text, ok := a.Evaluate("hello world")
	assert.True(t, ok)
	assert.Equal(t, "hi!", text)

	ctx := context.Background()
	state, reply, err := a.Welcome(ctx, domain.NewState("s1"))
	require.NoError(t, err)
	assert.True(t, state.Seen)
	assert.NotEmpty(t, reply.Messages)

	_, reply, err = a.Reply(ctx, state, "hello world")
	require.NoError(t, err)
	assert.True(t, reply.Matched)
}

func TestNew_ScriptLiteralGetsStockTexts(t *testing.T) {
	a, err := arcty.New("", arcty.WithScript(&script.Script{}), arcty.WithTimeBreaks(false))
	require.NoError(t, err)

	ctx := context.Background()
	state, reply, err := a.Welcome(ctx, domain.NewState("s1"))
	require.NoError(t, err)
	require.Len(t, reply.Messages, 2)
	assert.Equal(t, script.DefaultWelcome, reply.Messages[0].Text)
	assert.Contains(t, script.DefaultPrompts, reply.Messages[1].Text)

	_, reply, err = a.Reply(ctx, state, "anything")
	require.NoError(t, err)
	assert.False(t, reply.Matched)
	assert.Equal(t, script.DefaultFallback, reply.Messages[len(reply.Messages)-1].Text)
}

func TestNew_Errors(t *testing.T) {
	_, err := arcty.New("")
	assert.Error(t, err)

	_, err = arcty.New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := writeScript(t, t.TempDir(), "bad.yaml", "paths:\n  - pattern: \"(\"\n    answer: x\n")
	_, err = arcty.New(bad)
	assert.Error(t, err)
}

func TestNew_Strict(t *testing.T) {
	path := writeScript(t, t.TempDir(), "bot.yaml", "paths:\n  - pattern: refund\n")

	_, err := arcty.New(path, arcty.WithStrict(true))
	assert.ErrorIs(t, err, arcty.ErrIncompleteScript)
	assert.Contains(t, err.Error(), "refund")

	_, err = arcty.New(path)
	assert.NoError(t, err)
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "bot.yaml", "paths:\n  - pattern: refund\n    answer: Soon.\n")

	a, err := arcty.New(path, arcty.WithStrict(true))
	require.NoError(t, err)

	writeScript(t, dir, "bot.yaml", "paths:\n  - pattern: refund\n    answer: Done.\n")
	require.NoError(t, a.Reload())
	text, _ := a.Evaluate("refund")
	assert.Equal(t, "Done.", text)

	// A broken edit keeps the previous script.
	writeScript(t, dir, "bot.yaml", "paths:\n  - pattern: refund\n")
	assert.ErrorIs(t, a.Reload(), arcty.ErrIncompleteScript)
	text, _ = a.Evaluate("refund")
	assert.Equal(t, "Done.", text)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "bot.yaml", "paths:\n  - pattern: refund\n    answer: Soon.\n")

	a, err := arcty.New(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloads, err := a.Watch(ctx)
	require.NoError(t, err)

	writeScript(t, dir, "bot.yaml", "paths:\n  - pattern: refund\n    answer: Done.\n")
	select {
	case <-reloads:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	text, _ := a.Evaluate("refund")
	assert.Equal(t, "Done.", text)
}

func TestExampleScript(t *testing.T) {
	a, err := arcty.New(filepath.Join("examples", "support", "arcty.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "support", a.Name)
	assert.Equal(t, [][]string{{"/ship(ping)?/i", "/international|abroad/i"}}, a.Incomplete())

	tests := []struct {
		input string
		want  string
	}{
		{"Hello there", "Hello! Ask me about orders, refunds or shipping."},
		{"I want my money back, it never arrived", "Late parcels are refunded automatically after 30 days."},
		{"refund", "Refunds take 5 to 7 business days once we receive the item."},
		{"Where is my order?", "You can track your parcel from the **Orders** page."},
		{"shipping times", "Standard shipping takes 2 to 4 business days."},
		{"BYE", "Goodbye, have a great day!"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := a.Evaluate(tt.input)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := a.Evaluate("shipping abroad")
	assert.False(t, ok, "unwritten answers do not match")
}
