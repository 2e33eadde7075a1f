package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arcty/pkg/domain"
)

// LogHooks logs every greeting and reply.
// Inputs are not logged since they may hold personal data.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGreeting: func(ctx context.Context, e *domain.GreetingEvent) {
			logger.InfoContext(ctx, "greeting", "session_id", e.SessionID, "kind", e.Kind)
		},
		OnMatch: func(ctx context.Context, e *domain.MatchEvent) {
			logger.InfoContext(ctx, "match", "session_id", e.SessionID, "keys", e.Keys)
		},
		OnNoMatch: func(ctx context.Context, e *domain.MatchEvent) {
			logger.InfoContext(ctx, "no_match", "session_id", e.SessionID, "keys", e.Keys)
		},
	}
}

// Combine fans every event out to all hooks in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		out.OnGreeting = chain(out.OnGreeting, h.OnGreeting)
		out.OnMatch = chain(out.OnMatch, h.OnMatch)
		out.OnNoMatch = chain(out.OnNoMatch, h.OnNoMatch)
	}
	return out
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
