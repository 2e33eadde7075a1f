package main

import (
	"context"

	"github.com/aretw0/arcty/internal/cli"
	"github.com/spf13/cobra"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [script]",
	Short: "Chat with the assistant",
	Long: `Starts an interactive chat with the script.
The transcript is saved in the session store, so running again with the same
--session greets a returning visitor.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)
		if !cmd.Flags().Changed("script") && len(args) > 0 {
			cfg.ScriptPath = args[0]
		}

		opts := cli.ChatOptions{Config: cfg}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.TypingRate, _ = cmd.Flags().GetFloat64("typing-rate")

		return cli.RunChat(context.Background(), opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("session", "", "Session ID to resume (default: a new random ID)")
	chatCmd.Flags().Bool("fresh", false, "Forget the session before starting")
	chatCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	chatCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no confirmations)")
	chatCmd.Flags().BoolP("watch", "w", false, "Reload the script when it changes")
	chatCmd.Flags().Bool("dry-run", false, "Print the UI steps attached to answers")
	chatCmd.Flags().Float64("typing-rate", 0, "Keystrokes per second for dry-run typing (0 types at once)")

	rootCmd.Args = chatCmd.Args
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
