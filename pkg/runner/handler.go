package runner

import (
	"context"

	"github.com/aretw0/arcty/pkg/domain"
)

// IOHandler defines the strategy for interacting with the visitor.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the messages produced by a turn.
	Output(ctx context.Context, reply *domain.Reply) error

	// Input reads the next line typed by the visitor.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (confirmations, status updates).
	// This is distinct from conversation content.
	SystemOutput(ctx context.Context, msg string) error
}
