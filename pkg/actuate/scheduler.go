package actuate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arcty/internal/logging"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/ports"
	"golang.org/x/time/rate"
)

// DefaultKeystrokeRate is the typing speed in keystrokes per second.
const DefaultKeystrokeRate = 15

// ErrUnknownAction is returned for steps of a type the scheduler cannot run.
var ErrUnknownAction = errors.New("unknown action type")

// StepError reports which step of a plan failed.
type StepError struct {
	Index  int
	Action domain.Action
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s %s): %v", e.Index, e.Action.Type, e.Action.Selector, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Scheduler runs plans against a Dispatcher.
type Scheduler struct {
	dispatcher ports.Dispatcher
	keystrokes rate.Limit
	logger     *slog.Logger
	sleep      func(context.Context, time.Duration) error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithKeystrokeRate sets the typing speed. rate.Inf types whole strings at once.
func WithKeystrokeRate(perSecond rate.Limit) Option {
	return func(s *Scheduler) {
		s.keystrokes = perSecond
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a scheduler dispatching to d.
func NewScheduler(d ports.Dispatcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		dispatcher: d,
		keystrokes: DefaultKeystrokeRate,
		logger:     logging.NewNop(),
		sleep:      sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the plan in order. Each step waits for its Delay first.
// The first failing step stops the run and is returned as *StepError.
func (s *Scheduler) Run(ctx context.Context, plan domain.Plan) error {
	for i, a := range plan {
		if err := s.step(ctx, a); err != nil {
			return &StepError{Index: i, Action: a, Err: err}
		}
	}
	return nil
}

func (s *Scheduler) step(ctx context.Context, a domain.Action) error {
	if a.Delay > 0 {
		if err := s.sleep(ctx, a.Delay); err != nil {
			return err
		}
	}

	s.logger.Debug("running action", "type", a.Type, "selector", a.Selector)

	switch a.Type {
	case domain.ActionClick:
		return s.dispatcher.Click(ctx, a.Selector)
	case domain.ActionInput:
		return s.typeText(ctx, a.Selector, a.Text)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}

func (s *Scheduler) typeText(ctx context.Context, selector, text string) error {
	if s.keystrokes == rate.Inf {
		return s.dispatcher.Type(ctx, selector, text)
	}

	// A fresh limiter per field so pauses between steps do not bank tokens.
	limiter := rate.NewLimiter(s.keystrokes, 1)
	for _, r := range text {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := s.dispatcher.Type(ctx, selector, string(r)); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
