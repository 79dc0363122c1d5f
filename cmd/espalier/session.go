package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved searches",
	Long:  `List, inspect, graph and remove searches saved with 'search --save' in ` + cli.SessionDir + `.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all saved sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, opts, err := buildOptions(cmd, nil)
		if err != nil {
			return err
		}
		return cli.ListSessions(cmd.Context(), opts, os.Stdout)
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the explored graph of a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, opts, err := buildOptions(cmd, nil)
		if err != nil {
			return err
		}
		return cli.InspectSession(cmd.Context(), opts, args[0], os.Stdout)
	},
}

var sessionGraphCmd = &cobra.Command{
	Use:   "graph <session-id>",
	Short: "Print the explored graph of a session as a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, opts, err := buildOptions(cmd, nil)
		if err != nil {
			return err
		}
		return cli.SessionGraph(cmd.Context(), opts, args[0], v.GetInt("state"), os.Stdout)
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, opts, err := buildOptions(cmd, nil)
		if err != nil {
			return err
		}
		return cli.RemoveSessions(cmd.Context(), opts, args, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionGraphCmd, sessionRmCmd)
	sessionGraphCmd.Flags().Int("state", -1, "Highlight the path to this state")
}
