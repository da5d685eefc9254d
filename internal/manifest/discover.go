package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/omni-glass/host/pkg/pluginsdk"
)

// Plugin bundles a validated manifest with the directory it was loaded
// from, the risk level its permissions imply, and the permissions hash
// an approval record must match.
type Plugin struct {
	Manifest        *pluginsdk.Manifest
	Dir             string
	Risk            RiskLevel
	PermissionsHash string
}

// EntryPath returns the absolute path to the plugin's entry point.
func (p Plugin) EntryPath() string {
	return filepath.Join(p.Dir, p.Manifest.Entry)
}

// Discover scans each directory in dirs for immediate subdirectories
// containing a valid manifest file. A subdirectory with a missing or
// invalid manifest is skipped, not an error, since plugin directories
// are user-managed and may be mid-edit.
func Discover(dirs []string) ([]Plugin, error) {
	var plugins []Plugin

	for _, root := range dirs {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read plugin directory %s: %w", root, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			pluginDir := filepath.Join(root, entry.Name())
			manifestPath := filepath.Join(pluginDir, pluginsdk.ManifestFilename)

			m, err := pluginsdk.DecodeManifestFile(manifestPath)
			if err != nil {
				continue
			}
			if err := m.Validate(); err != nil {
				continue
			}

			plugins = append(plugins, Plugin{
				Manifest:        m,
				Dir:             pluginDir,
				Risk:            ComputeRisk(m.Permissions),
				PermissionsHash: PermissionsHash(m.Permissions),
			})
		}
	}

	return plugins, nil
}
