package main

import "github.com/spf13/cobra"

func buildPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Manage MCP plugin approvals",
		Long: `List discovered plugins and manage the approval record each one
needs before the host will connect to its subprocess.`,
	}
	cmd.AddCommand(
		buildPluginsListCmd(),
		buildPluginsApproveCmd(),
		buildPluginsDenyCmd(),
	)
	return cmd
}

func buildPluginsListCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered plugins and their approval status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginsList(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to YAML configuration file")
	return cmd
}

func buildPluginsApproveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "approve [plugin-id]",
		Short: "Approve a plugin's current permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginsSetApproval(cmd, configPath, args[0], true)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to YAML configuration file")
	return cmd
}

func buildPluginsDenyCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "deny [plugin-id]",
		Short: "Record a plugin's permissions as denied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginsSetApproval(cmd, configPath, args[0], false)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to YAML configuration file")
	return cmd
}
