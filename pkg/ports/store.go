package ports

import (
	"context"

	"github.com/aretw0/arcty/pkg/domain"
)

// StateStore keeps visitor sessions (the seen flag and the transcript)
// between visits. Implementations must hand out copies: a state returned by
// Load is owned by the caller.
type StateStore interface {
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load returns domain.ErrSessionNotFound for an unknown session.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete is idempotent.
	Delete(ctx context.Context, sessionID string) error

	// List returns every stored session ID, in no particular order.
	List(ctx context.Context) ([]string, error)
}
