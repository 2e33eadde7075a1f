package runner

import (
	"context"

	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/ports"
	"github.com/aretw0/arcty/pkg/session"
)

// Turn is the outcome of one exchange for rich clients (Web, MCP, etc).
// It carries the saved state next to the messages of the turn.
type Turn struct {
	State *domain.State `json:"state"`
	Reply *domain.Reply `json:"reply"`
}

// Welcome greets sessionID and saves the result, holding the session lock
// for the whole read-modify-write cycle. Unknown sessions start fresh.
func Welcome(ctx context.Context, mgr *session.Manager, conv ports.Conversation, sessionID string) (*Turn, error) {
	var reply *domain.Reply
	state, err := mgr.Update(ctx, sessionID, func(current *domain.State) (*domain.State, error) {
		next, r, err := conv.Welcome(ctx, current)
		reply = r
		return next, err
	})
	if err != nil {
		return nil, err
	}
	return &Turn{State: state, Reply: reply}, nil
}

// Reply answers input on behalf of sessionID and saves the result.
func Reply(ctx context.Context, mgr *session.Manager, conv ports.Conversation, sessionID, input string) (*Turn, error) {
	var reply *domain.Reply
	state, err := mgr.Update(ctx, sessionID, func(current *domain.State) (*domain.State, error) {
		next, r, err := conv.Reply(ctx, current, input)
		reply = r
		return next, err
	})
	if err != nil {
		return nil, err
	}
	return &Turn{State: state, Reply: reply}, nil
}
