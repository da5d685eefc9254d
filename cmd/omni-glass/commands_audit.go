package main

import "github.com/spf13/cobra"

func buildAuditCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run a one-shot plugin approval audit",
		Long: `Re-evaluate every discovered plugin's permissions hash against its
stored approval record and report which plugins have gone stale since
they were approved. This is the same check internal/manifest's
Reauditor runs on a schedule inside "serve", exposed here for a manual
or cron-driven one-shot pass.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to YAML configuration file")
	return cmd
}
