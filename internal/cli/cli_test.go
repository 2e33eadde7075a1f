package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testScript = `
name: support
welcome: Hi, I am Arcty
prompts: ["What may I help you with?"]
fallback: Sorry?
paths:
  - pattern: hello
    paths:
      - pattern: world
        answer: hi!
        actions:
          - type: click
            selector: "#menu"
  - pattern: /^bye$/i
    answer: Goodbye!
`

const incompleteScript = `
paths:
  - pattern: refund
`

// writeScript writes content to dir/name and returns its path.
func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
