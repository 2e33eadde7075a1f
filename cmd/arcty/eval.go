package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/arcty/internal/cli"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <input>...",
	Short: "Match an input against the script",
	Long: `Prints the answer the script gives to the input, without touching any session.
The arguments are joined with spaces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)
		a, err := cli.OpenAssistant(cfg, cli.CreateLogger(cfg.Debug))
		if err != nil {
			return err
		}

		input := strings.Join(args, " ")
		out := cmd.OutOrStdout()
		trace, _ := cmd.Flags().GetBool("trace")

		m := a.Tree().Trace(input)
		if trace {
			for i, key := range m.Keys {
				fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", i), key)
			}
		}

		switch {
		case m.Answered:
			fmt.Fprintln(out, m.Text)
			return nil
		case m.Matched:
			return fmt.Errorf("answer for %q is not written yet", strings.Join(m.Keys, " > "))
		default:
			return fmt.Errorf("no answer for %q", input)
		}
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Bool("trace", false, "Print the patterns matched on the way down")
}
