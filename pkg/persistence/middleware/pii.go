package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/ports"
)

// Mask replaces every redacted fragment.
const Mask = "***"

// DefaultPIIPatterns catch e-mail addresses and card-like digit runs.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	`\b\d(?:[ -]?\d){12,18}\b`,
}

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks every match of the
// patterns in what visitors typed before it reaches the store. Bot messages
// come from the script and are left alone. It panics on an invalid pattern.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	// Work on a copy; the caller keeps using the original.
	cloned := state.Snapshot()
	for i, msg := range cloned.Transcript {
		if msg.Kind != domain.MessageUser {
			continue
		}
		for _, p := range m.patterns {
			msg.Text = p.ReplaceAllString(msg.Text, Mask)
		}
		cloned.Transcript[i] = msg
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
