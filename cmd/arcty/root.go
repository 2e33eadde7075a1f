package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arcty/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arcty",
	Short: "Arcty is a scripted virtual assistant",
	Long: `Arcty answers visitors from a script of regular expression paths.
Each path narrows the one above it; the first pattern that matches wins.

Without a subcommand, arcty starts a chat with the script in the current directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("script", "s", ".", "Script file, or a directory holding arcty.yaml")
	rootCmd.PersistentFlags().String("store", "file", "Session store: file, file:DIR, memory, redis://... or sqlite:PATH")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().Bool("strict", false, "Refuse scripts with unwritten answers")
	rootCmd.PersistentFlags().Bool("redact", false, "Mask e-mail addresses and card numbers before saving transcripts")
}

// configFrom reads the persistent flags.
func configFrom(cmd *cobra.Command) cli.Config {
	flags := cmd.Flags()
	script, _ := flags.GetString("script")
	store, _ := flags.GetString("store")
	debug, _ := flags.GetBool("debug")
	strict, _ := flags.GetBool("strict")
	redact, _ := flags.GetBool("redact")
	return cli.Config{
		ScriptPath: script,
		Store:      store,
		Debug:      debug,
		Strict:     strict,
		Redact:     redact,
	}
}
