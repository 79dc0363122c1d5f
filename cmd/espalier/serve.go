package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Start the HTTP server",
	Long: `Exposes evaluation and paged search sessions as a JSON API over HTTP.
Sessions live in memory, or in Redis when --redis is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, opts, err := buildOptions(cmd, args)
		if err != nil {
			return err
		}
		so := cli.ServeOptions{
			Port:       v.GetInt("port"),
			Metrics:    v.GetBool("metrics"),
			MCPPort:    v.GetInt("mcp-port"),
			SessionTTL: v.GetDuration("session-ttl"),
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.RunServe(sigCtx, opts, so, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
	serveCmd.Flags().Int("mcp-port", 0, "Also serve MCP over SSE on this port")
	serveCmd.Flags().Duration("session-ttl", 0, "Expire idle sessions stored in Redis (0 keeps them)")
}
