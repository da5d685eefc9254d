package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/omni-glass/host/internal/config"
	"github.com/omni-glass/host/internal/manifest"
)

func runPluginsList(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	plugins, err := manifest.Discover(cfg.Plugins.Directories)
	if err != nil {
		return fmt.Errorf("discover plugins: %w", err)
	}

	approvalsDir, err := approvalsDirFor(configPath)
	if err != nil {
		return err
	}
	approvals := manifest.NewApprovalStore(approvalsDir)

	out := cmd.OutOrStdout()
	if len(plugins) == 0 {
		fmt.Fprintln(out, "no plugins found")
		return nil
	}

	for _, p := range plugins {
		approved, err := approvals.IsApproved(p.Manifest.ID, p.PermissionsHash)
		if err != nil {
			return fmt.Errorf("check approval for %s: %w", p.Manifest.ID, err)
		}
		status := "pending approval"
		if approved {
			status = "approved"
		}
		fmt.Fprintf(out, "%-32s %-8s risk=%-6s %s\n", p.Manifest.ID, p.Manifest.Version, p.Risk, status)
	}
	return nil
}

func runPluginsSetApproval(cmd *cobra.Command, configPath, pluginID string, approved bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	plugins, err := manifest.Discover(cfg.Plugins.Directories)
	if err != nil {
		return fmt.Errorf("discover plugins: %w", err)
	}

	var hash string
	found := false
	for _, p := range plugins {
		if p.Manifest.ID == pluginID {
			hash = p.PermissionsHash
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("plugin %q not found under configured plugin directories", pluginID)
	}

	approvalsDir, err := approvalsDirFor(configPath)
	if err != nil {
		return err
	}
	approvals := manifest.NewApprovalStore(approvalsDir)
	if err := approvals.Set(pluginID, approved, hash, time.Now()); err != nil {
		return fmt.Errorf("record approval: %w", err)
	}

	verb := "denied"
	if approved {
		verb = "approved"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", pluginID, verb)
	return nil
}
