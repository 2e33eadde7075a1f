package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/arcty/internal/cli"
	"github.com/aretw0/arcty/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Export the decision tree",
	Long: `Outputs the script's paths as a Mermaid diagram (graph TD) or as nested JSON.
With --input, the path the input takes is highlighted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)
		a, err := cli.OpenAssistant(cfg, cli.CreateLogger(cfg.Debug))
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		input, _ := cmd.Flags().GetString("input")
		out := cmd.OutOrStdout()

		switch strings.ToLower(format) {
		case "mermaid":
			var overlay *graph.GraphOverlay
			if cmd.Flags().Changed("input") {
				overlay = &graph.GraphOverlay{Keys: a.Tree().Trace(input).Keys}
			}
			fmt.Fprint(out, graph.GenerateMermaid(a.Tree(), a.Name, overlay))
			return nil
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(a.Tree().Root())
		default:
			return fmt.Errorf("unknown format %q (supported: mermaid, json)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or json")
	treeCmd.Flags().String("input", "", "Highlight the path taken by this input")
}
