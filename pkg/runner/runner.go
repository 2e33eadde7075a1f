package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/arcty/internal/logging"
	"github.com/aretw0/arcty/pkg/actuate"
	"github.com/aretw0/arcty/pkg/adapters/memory"
	"github.com/aretw0/arcty/pkg/ports"
	"github.com/aretw0/arcty/pkg/session"
)

// DefaultSessionID is used when no session id is configured.
const DefaultSessionID = "local"

// QuitCommands end the chat loop when typed on their own.
var QuitCommands = []string{"/quit", "/exit"}

// Runner handles the chat loop of an assistant using the provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Manager keeps the transcript. Defaults to an in-memory store.
	Manager *session.Manager

	// Scheduler replays UI plans. If nil, plans are ignored.
	Scheduler *actuate.Scheduler

	// Interceptor is the replay policy. If nil, the visitor is asked
	// unless Headless is set.
	Interceptor PlanInterceptor

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	SessionID string
	Headless  bool

	conv ports.Conversation
}

// NewRunner creates a Runner for conv.
func NewRunner(conv ports.Conversation, opts ...Option) *Runner {
	r := &Runner{
		conv:      conv,
		Logger:    logging.NewNop(),
		SessionID: DefaultSessionID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	if r.Manager == nil {
		r.Manager = session.NewManager(memory.NewStore())
	}
	if r.Interceptor == nil {
		if r.Headless {
			r.Interceptor = AutoApproveMiddleware()
		} else {
			r.Interceptor = ConfirmationMiddleware(r.Handler)
		}
	}
	return r
}

// Run greets the visitor and answers every line until a quit command,
// end of input or an interrupt signal. Only a cancelled ctx or a failing
// store or handler is reported as an error.
func (r *Runner) Run(ctx context.Context) error {
	signals := NewSignalManager(ctx)
	defer signals.Stop()
	ctx = signals.Context()

	turn, err := Welcome(ctx, r.Manager, r.conv, r.SessionID)
	if err != nil {
		return r.exit(signals, fmt.Errorf("welcome failed: %w", err))
	}
	if err := r.Handler.Output(ctx, turn.Reply); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	for {
		input, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8) {
				if err := r.Handler.SystemOutput(ctx, err.Error()); err != nil {
					return fmt.Errorf("output error: %w", err)
				}
				continue
			}
			signals.CheckRace()
			if errors.Is(err, io.EOF) && ctx.Err() == nil {
				return nil
			}
			return r.exit(signals, fmt.Errorf("input error: %w", err))
		}

		if input == "" {
			continue
		}
		if isQuit(input) {
			r.Logger.Debug("quit command received", "session_id", r.SessionID)
			return nil
		}

		turn, err := Reply(ctx, r.Manager, r.conv, r.SessionID, input)
		if err != nil {
			return r.exit(signals, fmt.Errorf("reply failed: %w", err))
		}
		r.Logger.Debug("turn saved", "session_id", r.SessionID, "matched", turn.Reply.Matched)

		if err := r.Handler.Output(ctx, turn.Reply); err != nil {
			return fmt.Errorf("output error: %w", err)
		}

		if err := r.replay(ctx, turn); err != nil {
			return r.exit(signals, err)
		}
	}
}

// exit maps a signal interruption to a clean return.
func (r *Runner) exit(signals *SignalManager, err error) error {
	if signals.Interrupted() {
		r.Logger.Debug("interrupted", "session_id", r.SessionID)
		return nil
	}
	return err
}

func (r *Runner) replay(ctx context.Context, turn *Turn) error {
	plan := turn.Reply.Plan
	if len(plan) == 0 || r.Scheduler == nil {
		return nil
	}

	allowed, err := r.Interceptor(ctx, plan)
	if err != nil {
		return fmt.Errorf("replay interceptor error: %w", err)
	}
	if !allowed {
		r.Logger.Debug("replay declined", "session_id", r.SessionID, "steps", len(plan))
		return nil
	}

	if err := r.Scheduler.Run(ctx, plan); err != nil {
		var stepErr *actuate.StepError
		if errors.As(err, &stepErr) {
			r.Logger.Warn("replay failed", "session_id", r.SessionID, "err", err)
			return r.Handler.SystemOutput(ctx, "replay stopped: "+err.Error())
		}
		return err
	}
	return nil
}

func isQuit(input string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	for _, cmd := range QuitCommands {
		if input == cmd {
			return true
		}
	}
	return false
}
