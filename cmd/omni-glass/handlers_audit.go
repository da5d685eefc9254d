package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omni-glass/host/internal/config"
	"github.com/omni-glass/host/internal/manifest"
)

func runAudit(cmd *cobra.Command, configPath string) error {
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
	stale := 0
	for _, p := range plugins {
		approved, err := approvals.IsApproved(p.Manifest.ID, p.PermissionsHash)
		if err != nil {
			return fmt.Errorf("check approval for %s: %w", p.Manifest.ID, err)
		}
		if !approved {
			fmt.Fprintf(out, "stale: %s requires re-approval (risk=%s)\n", p.Manifest.ID, p.Risk)
			stale++
		}
	}

	if stale == 0 {
		fmt.Fprintln(out, "all plugin approvals are current")
	}
	return nil
}
