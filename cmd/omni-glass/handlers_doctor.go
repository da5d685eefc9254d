package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/omni-glass/host/internal/config"
	"github.com/omni-glass/host/pkg/pluginsdk"
)

func runDoctor(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	fmt.Fprintf(out, "config: ok (version %d, provider %s)\n", cfg.Version, cfg.LLM.ActiveProvider)

	if pc, ok := cfg.LLM.Providers[cfg.LLM.ActiveProvider]; ok {
		if resolveAPIKey(pc) == "" && pc.APIKeyEnv != "" {
			fmt.Fprintf(out, "warning: %s is unset for active provider %q\n", pc.APIKeyEnv, cfg.LLM.ActiveProvider)
		}
	}

	problems := 0
	for _, dir := range cfg.Plugins.Directories {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintf(out, "plugin directory %s: does not exist\n", dir)
				continue
			}
			return fmt.Errorf("read plugin directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			pluginDir := filepath.Join(dir, entry.Name())
			manifestPath := filepath.Join(pluginDir, pluginsdk.ManifestFilename)

			m, err := pluginsdk.DecodeManifestFile(manifestPath)
			if err != nil {
				fmt.Fprintf(out, "plugin %s: manifest error: %v\n", entry.Name(), err)
				problems++
				continue
			}
			if err := m.Validate(); err != nil {
				fmt.Fprintf(out, "plugin %s: invalid manifest: %v\n", m.ID, err)
				problems++
				continue
			}
			fmt.Fprintf(out, "plugin %s: ok\n", m.ID)
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d plugin manifest problem(s) found", problems)
	}
	return nil
}
