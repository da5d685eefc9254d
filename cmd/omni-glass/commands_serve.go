package main

import (
	"github.com/spf13/cobra"
)

func buildServeCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the host loop",
		Long: `Run the Omni-Glass host loop.

Reads host commands as NDJSON JSON-RPC 2.0 requests on stdin and writes
responses and pipeline events as NDJSON on stdout, the same envelope
internal/mcp uses between the host and a plugin.

The server will:
1. Load configuration from the specified file.
2. Connect to every auto-start MCP plugin.
3. Watch the plugin directories for manifest changes.
4. Serve host commands until stdin closes or a shutdown signal arrives.`,
		Example: `  omni-glass serve
  omni-glass serve --config /etc/omni-glass/production.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to YAML configuration file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}
