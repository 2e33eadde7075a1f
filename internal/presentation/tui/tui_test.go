package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "support", "v0.3.0\n")

	out := buf.String()
	assert.Contains(t, out, "support · v0.3.0")
	assert.NotContains(t, out, "\x1b[", "no colors outside a terminal")
	assert.Equal(t, len(bannerLines)+3, strings.Count(out, "\n"))
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render("**hello** world")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "world")
}
