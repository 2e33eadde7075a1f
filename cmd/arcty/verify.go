package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/arcty/internal/cli"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [script]",
	Short: "Check that every answer is written",
	Long:  `Loads the script and lists the paths whose answer is still missing.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)
		if !cmd.Flags().Changed("script") && len(args) > 0 {
			cfg.ScriptPath = args[0]
		}
		// Incomplete scripts are reported below, not refused.
		cfg.Strict = false

		a, err := cli.OpenAssistant(cfg, cli.CreateLogger(cfg.Debug))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		missing := a.Incomplete()
		if len(missing) == 0 {
			fmt.Fprintln(out, "Script is complete! ✅")
			return nil
		}

		fmt.Fprintf(out, "%d answer(s) not written yet:\n", len(missing))
		for _, keys := range missing {
			fmt.Fprintf(out, "- %s\n", strings.Join(keys, " > "))
		}
		return fmt.Errorf("script is incomplete")
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
