package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/arcty/internal/logging"
	httpadapter "github.com/aretw0/arcty/pkg/adapters/http"
	"github.com/aretw0/arcty/pkg/adapters/mcp"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// ShutdownTimeout is how long in-flight requests get once a stop is requested.
const ShutdownTimeout = 5 * time.Second

// ServeOptions configures the HTTP and MCP servers.
type ServeOptions struct {
	Config

	Port      int
	LogLevel  string
	LogFormat string // "text" or "json"
	Metrics   bool
	Watch     bool
}

func (o ServeOptions) logger() *slog.Logger {
	level := logging.ParseLevel(o.LogLevel)
	if o.Debug {
		level = slog.LevelDebug
	}
	if o.LogFormat == "json" {
		return logging.NewJSON(os.Stderr, level)
	}
	return logging.New(level)
}

// BuildHandler wires the assistant, the sessions and the metrics into the
// HTTP API. The returned func releases the store.
func BuildHandler(ctx context.Context, opts ServeOptions, logger *slog.Logger) (http.Handler, func() error, error) {
	var metrics *observability.Metrics
	if opts.Metrics {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	a, err := OpenAssistant(opts.Config, logger, serverHooks(logger, metrics)...)
	if err != nil {
		return nil, nil, err
	}
	if opts.Watch {
		if err := watchInBackground(ctx, a, logger); err != nil {
			return nil, nil, err
		}
	}

	sessions, closeStore, err := OpenSessions(opts.Config, logger)
	if err != nil {
		return nil, nil, err
	}

	httpOpts := []httpadapter.Option{httpadapter.WithLogger(logger)}
	if metrics != nil {
		httpOpts = append(httpOpts, httpadapter.WithMetrics(metrics.Handler()))
	}
	return httpadapter.NewHandler(a, sessions, httpOpts...), closeStore, nil
}

// RunServe starts the HTTP API and blocks until ctx is done.
func RunServe(ctx context.Context, opts ServeOptions) error {
	logger := opts.logger()

	handler, closeStore, err := BuildHandler(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting arcty server", "address", srv.Addr, "script", opts.ScriptPath, "store", opts.Store)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Start shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("Server stopped gracefully")
		return nil
	}
}

// RunMCP starts the MCP server on stdio, or on SSE when transport is "sse".
func RunMCP(ctx context.Context, opts ServeOptions, transport string) error {
	if transport != "stdio" && transport != "sse" {
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	}
	logger := opts.logger()

	a, err := OpenAssistant(opts.Config, logger, serverHooks(logger, nil)...)
	if err != nil {
		return err
	}
	if opts.Watch {
		if err := watchInBackground(ctx, a, logger); err != nil {
			return err
		}
	}
	sessions, closeStore, err := OpenSessions(opts.Config, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mcp.NewServer(a, sessions, mcp.WithLogger(logger))

	if transport == "stdio" {
		logger.Info("Starting arcty MCP server (stdio)")
		return srv.ServeStdio()
	}
	if err := srv.ServeSSE(ctx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("MCP server stopped gracefully")
	return nil
}

func serverHooks(logger *slog.Logger, metrics *observability.Metrics) []domain.LifecycleHooks {
	hooks := []domain.LifecycleHooks{observability.LogHooks(logger)}
	if metrics != nil {
		hooks = append(hooks, metrics.Hooks())
	}
	return hooks
}
