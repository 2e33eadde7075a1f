package arcty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/arcty/internal/logging"
	"github.com/aretw0/arcty/internal/runtime"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/paths"
	"github.com/aretw0/arcty/pkg/script"
)

// ErrIncompleteScript is returned in strict mode when some answers are not written yet.
var ErrIncompleteScript = errors.New("script has incomplete answers")

// Assistant is the high-level entry point for the arcty library.
// It loads a script, builds its decision tree and answers visitors.
// Sessions are not kept here: every call takes the state and returns the next one.
type Assistant struct {
	engine *runtime.Engine
	path   string
	script *script.Script
	logger *slog.Logger

	hooks      domain.LifecycleHooks
	clock      func() time.Time
	rand       *rand.Rand
	strict     bool
	timeBreaks bool

	reloadMu sync.Mutex
	Name     string
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithScript uses an in-memory script instead of reading scriptPath.
// Texts left empty get the stock ones.
func WithScript(s *script.Script) Option {
	return func(a *Assistant) {
		a.script = s
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(clock func() time.Time) Option {
	return func(a *Assistant) {
		a.clock = clock
	}
}

// WithRand sets the source used to pick prompts.
func WithRand(r *rand.Rand) Option {
	return func(a *Assistant) {
		a.rand = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Assistant) {
		a.hooks = hooks
	}
}

// WithStrict refuses scripts with incomplete answers, on load and on reload.
func WithStrict(strict bool) Option {
	return func(a *Assistant) {
		a.strict = strict
	}
}

// WithTimeBreaks toggles time break messages (default on).
func WithTimeBreaks(enabled bool) Option {
	return func(a *Assistant) {
		a.timeBreaks = enabled
	}
}

// New loads the script at scriptPath and builds the assistant.
// scriptPath may be empty when WithScript is given; it is then only used
// for Reload and Watch.
func New(scriptPath string, opts ...Option) (*Assistant, error) {
	a := &Assistant{
		path:       scriptPath,
		logger:     logging.NewNop(),
		timeBreaks: true,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.script == nil {
		if scriptPath == "" {
			return nil, fmt.Errorf("scriptPath is required when no script is provided")
		}
		s, err := script.Load(scriptPath)
		if err != nil {
			return nil, err
		}
		a.script = s
	}

	a.Name = a.script.Name
	if a.Name == "" && scriptPath != "" {
		a.Name = strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
	}
	if a.Name != "" {
		a.logger = a.logger.With("script", a.Name)
	}

	b, err := a.build(a.script)
	if err != nil {
		return nil, err
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLifecycleHooks(a.hooks),
		runtime.WithLogger(a.logger),
		runtime.WithTimeBreaks(a.timeBreaks),
	}
	if a.clock != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithClock(a.clock))
	}
	if a.rand != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithRand(a.rand))
	}
	a.engine = runtime.NewEngine(b, runtimeOpts...)

	return a, nil
}

func (a *Assistant) build(s *script.Script) (*script.Bundle, error) {
	b, err := s.Build(paths.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	if missing := b.Tree.Incomplete(); len(missing) > 0 {
		if a.strict {
			return nil, fmt.Errorf("%w: %s", ErrIncompleteScript, formatKeys(missing))
		}
		a.logger.Warn("script has incomplete answers", "paths", formatKeys(missing))
	}
	return b, nil
}

func formatKeys(all [][]string) string {
	parts := make([]string, len(all))
	for i, keys := range all {
		parts[i] = strings.Join(keys, " > ")
	}
	return strings.Join(parts, ", ")
}

// Welcome greets a session; see Reply for the state contract.
func (a *Assistant) Welcome(ctx context.Context, state *domain.State) (*domain.State, *domain.Reply, error) {
	return a.engine.Welcome(ctx, state)
}

// Reply answers one user input. The given state is not modified; the next
// state is returned alongside the reply.
func (a *Assistant) Reply(ctx context.Context, state *domain.State, input string) (*domain.State, *domain.Reply, error) {
	return a.engine.Reply(ctx, state, input)
}

// Evaluate matches input against the tree without touching any session.
func (a *Assistant) Evaluate(input string) (string, bool) {
	return a.Tree().Evaluate(input)
}

// Verify reports whether every answer in the script is written.
func (a *Assistant) Verify() bool {
	return a.Tree().Verify()
}

// Incomplete lists the key paths of answers not written yet.
func (a *Assistant) Incomplete() [][]string {
	return a.Tree().Incomplete()
}

// Tree returns the decision tree currently in use.
func (a *Assistant) Tree() *paths.Tree {
	return a.engine.Bundle().Tree
}

// Script returns the script currently in use.
func (a *Assistant) Script() *script.Script {
	return a.engine.Bundle().Script
}

// Reload reads the script file again and swaps it in.
// On failure the current script stays in use.
func (a *Assistant) Reload() error {
	if a.path == "" {
		return fmt.Errorf("no script path to reload from")
	}

	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	s, err := script.Load(a.path)
	if err != nil {
		return err
	}
	b, err := a.build(s)
	if err != nil {
		return err
	}
	a.engine.Swap(b)
	a.logger.Info("script reloaded", "path", a.path)
	return nil
}

// Watch reloads the script whenever its file changes. The path is sent on
// the returned channel after each successful reload; failed reloads are
// logged and skipped. The channel is closed when ctx is done.
func (a *Assistant) Watch(ctx context.Context) (<-chan string, error) {
	if a.path == "" {
		return nil, fmt.Errorf("no script path to watch")
	}

	changes, err := script.Watch(ctx, a.path, script.WithWatchLogger(a.logger))
	if err != nil {
		return nil, err
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		for path := range changes {
			if err := a.Reload(); err != nil {
				a.logger.Error("reload failed, keeping previous script", "path", path, "err", err)
				continue
			}
			select {
			case out <- path:
			default:
			}
		}
	}()
	return out, nil
}
