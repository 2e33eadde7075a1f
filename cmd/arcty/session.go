package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/arcty/internal/cli"
	"github.com/aretw0/arcty/pkg/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved sessions",
	Long:  `List, inspect, and remove the sessions kept in the --store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all saved sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(mgr *session.Manager) error {
			ids, err := mgr.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No saved sessions found.")
				return nil
			}
			fmt.Fprintln(out, "Saved Sessions:")
			for _, id := range ids {
				fmt.Fprintln(out, "- "+id)
			}
			return nil
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the transcript of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(mgr *session.Manager) error {
			state, err := mgr.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", args[0], err)
			}
			data, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return fmt.Errorf("error marshaling state: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(mgr *session.Manager) error {
			if all, _ := cmd.Flags().GetBool("all"); all {
				ids, err := mgr.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("error listing sessions: %w", err)
				}
				args = ids
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, id := range args {
				if err := mgr.Delete(cmd.Context(), id); err != nil {
					fmt.Fprintf(out, "Error removing '%s': %v\n", id, err)
					failed++
					continue
				}
				fmt.Fprintf(out, "Removed session '%s'\n", id)
			}
			if failed > 0 {
				return fmt.Errorf("%d session(s) could not be removed", failed)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionRmCmd.Flags().Bool("all", false, "Remove every session in the store")
}

func withSessions(cmd *cobra.Command, fn func(*session.Manager) error) error {
	cfg := configFrom(cmd)
	mgr, closeStore, err := cli.OpenSessions(cfg, cli.CreateLogger(cfg.Debug))
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(mgr)
}
