package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/aretw0/arcty"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the arcty version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "arcty version %s (%s %s/%s)\n",
			strings.TrimSpace(arcty.Version), runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
