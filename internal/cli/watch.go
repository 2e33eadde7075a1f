package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/arcty"
	"github.com/aretw0/arcty/pkg/runner"
)

// watchScript reloads the script whenever it changes, for the life of ctx.
// The running chat keeps its transcript; only the answers change.
func watchScript(ctx context.Context, a *arcty.Assistant, handler runner.IOHandler) error {
	changes, err := a.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch script: %w", err)
	}
	_ = handler.SystemOutput(ctx, "Watching script for changes.")

	go func() {
		for path := range changes {
			msg := fmt.Sprintf("Reloaded %s.", path)
			if !a.Verify() {
				msg += fmt.Sprintf(" %d answer(s) still missing.", len(a.Incomplete()))
			}
			_ = handler.SystemOutput(ctx, msg)
		}
	}()
	return nil
}

// watchInBackground reloads the script for the life of ctx.
func watchInBackground(ctx context.Context, a *arcty.Assistant, logger *slog.Logger) error {
	changes, err := a.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch script: %w", err)
	}
	go func() {
		for path := range changes {
			logger.Debug("reload applied", "path", path, "paths", a.Tree().Root().Len())
		}
	}()
	return nil
}
