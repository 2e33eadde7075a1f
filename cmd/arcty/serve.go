package main

import (
	"context"

	"github.com/aretw0/arcty/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the assistant as a JSON API over HTTP.
Sessions are kept in the --store; every request loads and saves its session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := serveOptions(cmd)
		opts.Metrics, _ = cmd.Flags().GetBool("metrics")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.RunServe(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
	addServerFlags(serveCmd)
}

// addServerFlags registers the flags shared by serve and mcp.
func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("watch", "w", false, "Reload the script when it changes")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
	cmd.Flags().String("log-format", "text", "Log format: text or json")
}

func serveOptions(cmd *cobra.Command) cli.ServeOptions {
	opts := cli.ServeOptions{Config: configFrom(cmd)}
	opts.Port, _ = cmd.Flags().GetInt("port")
	opts.Watch, _ = cmd.Flags().GetBool("watch")
	opts.LogLevel, _ = cmd.Flags().GetString("log-level")
	opts.LogFormat, _ = cmd.Flags().GetString("log-format")
	return opts
}
