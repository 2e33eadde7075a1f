package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arcty/pkg/paths"
)

// MaxLabel is the number of answer characters shown on a node.
const MaxLabel = 40

// GraphOverlay highlights the route taken by one input.
type GraphOverlay struct {
	// Keys are the patterns matched on the way down, root first.
	Keys []string
}

// GenerateMermaid produces a Mermaid flowchart of the decision tree.
// It applies semantic styling:
// - Root: ((Circle))
// - Branch: [Rectangle]
// - Answer: ([Stadium]) with the start of the answer text
// - Incomplete answer: ([Stadium]) in the incomplete class
// It also highlights the overlay route if provided.
func GenerateMermaid(tree *paths.Tree, title string, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	if title == "" {
		title = "script"
	}
	sb.WriteString(fmt.Sprintf("    root((\"%s\"))\n", escapeLabel(title)))

	// Entries get sequential IDs since patterns can hold any character.
	ids := map[string]string{"": "root"}
	var incomplete []string

	tree.Walk(func(keys []string, node *paths.Node) {
		id := fmt.Sprintf("n%d", len(ids)-1)
		ids[joinKeys(keys)] = id
		parent := ids[joinKeys(keys[:len(keys)-1])]
		label := escapeLabel(keys[len(keys)-1])

		switch text, ok := node.Text(); {
		case node.IsBranch():
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, label))
		case ok:
			sb.WriteString(fmt.Sprintf("    %s([\"%s<br/>%s\"])\n", id, label, escapeLabel(truncate(text, MaxLabel))))
		default:
			sb.WriteString(fmt.Sprintf("    %s([\"%s<br/>(not written)\"])\n", id, label))
			incomplete = append(incomplete, id)
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", parent, id))
	})

	if len(incomplete) > 0 {
		sb.WriteString("\n    classDef incomplete fill:#fdecea,stroke:#c62828,stroke-dasharray:4 2,color:#000;\n")
		for _, id := range incomplete {
			sb.WriteString(fmt.Sprintf("    class %s incomplete;\n", id))
		}
	}

	if overlay != nil && len(overlay.Keys) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		sb.WriteString("    class root visited;\n")
		for i := 1; i < len(overlay.Keys); i++ {
			if id, ok := ids[joinKeys(overlay.Keys[:i])]; ok {
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", id))
			}
		}
		if id, ok := ids[joinKeys(overlay.Keys)]; ok {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", id))
		}
	}

	return sb.String()
}

func joinKeys(keys []string) string {
	return strings.Join(keys, "\x00")
}

// escapeLabel keeps a label inside its double quotes.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
