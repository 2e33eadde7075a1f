package runtime

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/arcty/internal/logging"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/script"
)

// ErrNoState is returned when a turn is requested without a session state.
var ErrNoState = errors.New("no session state")

// Engine produces the assistant's side of a conversation.
// It holds no session data: every call takes a state and returns the next
// one, leaving the input untouched.
type Engine struct {
	bundle     atomic.Pointer[script.Bundle]
	clock      func() time.Time
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	timeBreaks bool

	randMu sync.Mutex
	rand   *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithRand sets the source used to pick prompts.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rand = r
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTimeBreaks enables time break messages in the transcript.
func WithTimeBreaks(enabled bool) Option {
	return func(e *Engine) {
		e.timeBreaks = enabled
	}
}

// NewEngine creates an engine answering from b.
func NewEngine(b *script.Bundle, opts ...Option) *Engine {
	e := &Engine{
		clock:      time.Now,
		logger:     logging.NewNop(),
		timeBreaks: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.bundle.Store(b)
	return e
}

// Bundle returns the script the engine currently answers from.
func (e *Engine) Bundle() *script.Bundle {
	return e.bundle.Load()
}

// Swap replaces the script. Turns already in flight finish on the old one.
func (e *Engine) Swap(b *script.Bundle) {
	e.bundle.Store(b)
}

// Welcome greets a session. A visitor never seen before gets the welcome
// message; a returning one gets the greeting for the time of day. Both are
// followed by a random prompt.
func (e *Engine) Welcome(ctx context.Context, state *domain.State) (*domain.State, *domain.Reply, error) {
	if state == nil {
		return nil, nil, ErrNoState
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	b := e.bundle.Load()
	now := e.clock()
	next := state.Snapshot()
	var msgs []domain.Message

	kind := domain.GreetingFirstVisit
	if !next.Seen {
		e.logger.Debug("first visit, showing welcome message", "session_id", next.SessionID)
		if tb, ok := e.timeBreak(next, now); ok {
			msgs = append(msgs, tb)
		}
		msgs = append(msgs, domain.BotMessage(b.Script.Welcome, now))
		next.Seen = true
	} else {
		kind = Bucket(now)
		e.logger.Debug("returning visitor, showing time-aware greeting", "session_id", next.SessionID, "kind", kind)
		msgs = append(msgs, domain.BotMessage(greeting(b.Script.Greetings, kind), now))
	}
	if prompt := e.prompt(b.Script.Prompts); prompt != "" {
		msgs = append(msgs, domain.BotMessage(prompt, now))
	}
	next.Append(msgs...)

	if e.hooks.OnGreeting != nil {
		e.hooks.OnGreeting(ctx, &domain.GreetingEvent{
			Timestamp: now,
			SessionID: next.SessionID,
			Kind:      kind,
		})
	}

	return next, &domain.Reply{Messages: msgs}, nil
}

// Reply answers a user input. Inputs that reach no complete answer get the
// script's fallback text.
func (e *Engine) Reply(ctx context.Context, state *domain.State, input string) (*domain.State, *domain.Reply, error) {
	if state == nil {
		return nil, nil, ErrNoState
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	b := e.bundle.Load()
	now := e.clock()
	next := state.Snapshot()
	var msgs []domain.Message

	if tb, ok := e.timeBreak(next, now); ok {
		msgs = append(msgs, tb)
	}
	msgs = append(msgs, domain.UserMessage(input, now))

	m := b.Tree.Trace(input)
	reply := &domain.Reply{Matched: m.Answered, Keys: m.Keys}
	if m.Answered {
		msgs = append(msgs, domain.BotMessage(m.Text, now))
		reply.Plan = b.Plans.For(m.Keys)
	} else {
		msgs = append(msgs, domain.BotMessage(b.Script.Fallback, now))
	}
	next.Append(msgs...)
	reply.Messages = msgs

	e.logger.Debug("input evaluated", "session_id", next.SessionID, "keys", m.Keys, "answered", m.Answered)

	event := &domain.MatchEvent{
		Timestamp: now,
		SessionID: next.SessionID,
		Input:     input,
		Keys:      m.Keys,
		Answered:  m.Answered,
	}
	if m.Answered && e.hooks.OnMatch != nil {
		e.hooks.OnMatch(ctx, event)
	}
	if !m.Answered && e.hooks.OnNoMatch != nil {
		e.hooks.OnNoMatch(ctx, event)
	}

	return next, reply, nil
}

func (e *Engine) prompt(prompts []string) string {
	if len(prompts) == 0 {
		return ""
	}
	if e.rand == nil {
		return prompts[rand.IntN(len(prompts))]
	}
	e.randMu.Lock()
	defer e.randMu.Unlock()
	return prompts[e.rand.IntN(len(prompts))]
}
