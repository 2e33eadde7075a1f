package runner

import (
	"log/slog"

	"github.com/aretw0/arcty/pkg/actuate"
	"github.com/aretw0/arcty/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithManager configures where transcripts are kept.
// Without it the session lives in memory for the duration of Run.
func WithManager(mgr *session.Manager) Option {
	return func(r *Runner) {
		r.Manager = mgr
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithHeadless skips confirmation before plans are replayed.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

// WithSessionID sets the session to resume or create.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithScheduler replays the UI plans attached to answers.
func WithScheduler(s *actuate.Scheduler) Option {
	return func(r *Runner) {
		r.Scheduler = s
	}
}

// WithInterceptor configures the replay policy.
func WithInterceptor(interceptor PlanInterceptor) Option {
	return func(r *Runner) {
		r.Interceptor = interceptor
	}
}
