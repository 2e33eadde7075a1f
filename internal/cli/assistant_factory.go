package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/arcty"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/observability"
)

// ErrScriptNotFound is returned when no script file can be found.
var ErrScriptNotFound = errors.New("no script found")

// ScriptExtensions are tried, in order, when looking for a script in a directory.
var ScriptExtensions = []string{".yaml", ".yml", ".json", ".toml"}

// Config holds the flags shared by every command.
type Config struct {
	ScriptPath string
	Store      string
	Debug      bool
	Strict     bool
	Redact     bool
}

// ResolveScript turns the --script flag into a file path.
// A directory (the default is ".") is searched for arcty.*, then index.*,
// then a file named after the directory itself.
func ResolveScript(path string) (string, error) {
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrScriptNotFound, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for _, base := range []string{"arcty", "index", filepath.Base(abs)} {
		for _, ext := range ScriptExtensions {
			candidate := filepath.Join(path, base+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w in %s (tried arcty, index and %s with %v)", ErrScriptNotFound, path, filepath.Base(abs), ScriptExtensions)
}

// OpenAssistant loads the configured script with the standard CLI conventions.
// Hooks are combined with the debug hooks when --debug is set.
func OpenAssistant(cfg Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*arcty.Assistant, error) {
	path, err := ResolveScript(cfg.ScriptPath)
	if err != nil {
		return nil, err
	}

	if cfg.Debug {
		hooks = append(hooks, createDebugHooks(logger))
	}

	a, err := arcty.New(path,
		arcty.WithLogger(logger),
		arcty.WithStrict(cfg.Strict),
		arcty.WithLifecycleHooks(observability.Combine(hooks...)),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading script %s: %w", path, err)
	}
	logger.Debug("script loaded", "path", path, "name", a.Name)
	return a, nil
}
