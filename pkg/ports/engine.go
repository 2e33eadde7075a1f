package ports

import (
	"context"

	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/paths"
)

// Conversation is the stateless assistant core driven by the hosts
// (runner, HTTP, MCP). State is passed in and the next state is returned.
type Conversation interface {
	// Welcome greets the session and returns the messages to show.
	Welcome(ctx context.Context, state *domain.State) (*domain.State, *domain.Reply, error)

	// Reply answers a single user input.
	Reply(ctx context.Context, state *domain.State, input string) (*domain.State, *domain.Reply, error)
}

// Introspector exposes the decision tree currently in use.
type Introspector interface {
	Tree() *paths.Tree
}
