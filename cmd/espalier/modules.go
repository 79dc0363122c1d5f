package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

var modulesCmd = &cobra.Command{
	Use:   "modules [dir]",
	Short: "List the available modules",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, opts, err := buildOptions(cmd, args)
		if err != nil {
			return err
		}
		return cli.RunModules(cmd.Context(), opts, newPrinter(opts))
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Compile every module and report errors",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, opts, err := buildOptions(cmd, args)
		if err != nil {
			return err
		}
		return cli.RunCheck(cmd.Context(), opts, newPrinter(opts))
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish [module]...",
	Short: "Copy modules into Redis for servers started with --redis-modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, opts, err := buildOptions(cmd, nil)
		if err != nil {
			return err
		}
		return cli.RunPublish(cmd.Context(), opts, args, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(modulesCmd, checkCmd, publishCmd)
}
