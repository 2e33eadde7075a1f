package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/arcty"
	"github.com/aretw0/arcty/internal/presentation/tui"
	"github.com/aretw0/arcty/pkg/actuate"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/runner"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ChatOptions contains all the configuration for the chat command.
type ChatOptions struct {
	Config

	SessionID string
	Fresh     bool
	JSON      bool
	Headless  bool
	Watch     bool

	// DryRun echoes the UI steps attached to answers instead of ignoring them.
	DryRun bool
	// TypingRate is the keystrokes per second of dry-run typing; 0 types at once.
	TypingRate float64

	Stdin  io.Reader
	Stdout io.Writer
}

// RunChat starts an interactive chat with the configured script.
func RunChat(ctx context.Context, opts ChatOptions) error {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Watch && opts.JSON {
		return fmt.Errorf("--watch and --json cannot be used together")
	}

	logger := CreateLogger(opts.Debug)

	a, err := OpenAssistant(opts.Config, logger)
	if err != nil {
		return err
	}
	sessions, closeStore, err := OpenSessions(opts.Config, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close store", "err", err)
		}
	}()

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if opts.Fresh {
		if err := sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	quiet := opts.JSON || opts.Headless
	if !quiet {
		tui.PrintBanner(opts.Stdout, a.Name, arcty.Version)
		printSystemMessage(opts.Stdout, "Session '%s'. Type /quit to leave.", sessionID)
	}

	var handler runner.IOHandler
	switch {
	case opts.JSON:
		handler = runner.NewJSONHandler(opts.Stdin, opts.Stdout)
	case !opts.Headless && tui.IsInteractive():
		handler = runner.NewTextHandler(opts.Stdin, opts.Stdout, runner.WithTextHandlerRenderer(tui.NewRenderer()))
	default:
		handler = runner.NewTextHandler(opts.Stdin, opts.Stdout)
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithManager(sessions),
		runner.WithSessionID(sessionID),
		runner.WithInputHandler(handler),
		runner.WithHeadless(opts.Headless),
	}
	if opts.DryRun {
		limit := rate.Inf
		if opts.TypingRate > 0 {
			limit = rate.Limit(opts.TypingRate)
		}
		rec := &actuate.Recorder{Out: opts.Stdout}
		runnerOpts = append(runnerOpts, runner.WithScheduler(actuate.NewScheduler(rec,
			actuate.WithKeystrokeRate(limit),
			actuate.WithLogger(logger),
		)))
	}

	if opts.Watch {
		watchCtx, stop := context.WithCancel(ctx)
		defer stop()
		if err := watchScript(watchCtx, a, handler); err != nil {
			return err
		}
	}

	err = runner.NewRunner(a, runnerOpts...).Run(ctx)
	if err == nil && !quiet {
		printSystemMessage(opts.Stdout, "Bye.")
	}
	return err
}
