// Package pluginsdk defines the on-disk manifest format third-party
// plugins ship alongside their entry point, and the permission model the
// host enforces before ever spawning them.
package pluginsdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	// ManifestFilename is the name the host looks for in a plugin directory.
	ManifestFilename = "omni-glass.plugin.json"
)

// FilesystemAccess is one entry in Permissions.Filesystem.
type FilesystemAccess struct {
	Path   string `json:"path"`
	Access string `json:"access"` // "read" | "read-write"
}

// Permissions is the capability block a manifest declares and a user
// approves. It is hashed (see ComputeHash) to bind an Approval Record to
// the exact set of permissions the user consented to.
type Permissions struct {
	Clipboard   bool               `json:"clipboard"`
	Network     []string           `json:"network,omitempty"`
	Filesystem  []FilesystemAccess `json:"filesystem,omitempty"`
	Environment []string           `json:"environment,omitempty"`
	Shell       []string           `json:"shell,omitempty"`
}

// Manifest describes a plugin: identity, entry point, and the permissions
// it requires. It sits alongside the entry point in a plugin-owned
// directory named ManifestFilename.
type Manifest struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Description string      `json:"description,omitempty"`
	Runtime     string      `json:"runtime"`
	Entry       string      `json:"entry"`
	Permissions Permissions `json:"permissions"`
}

// supportedRuntimes enumerates the runtime tags the host knows how to
// spawn. An unrecognised tag is rejected by Validate rather than silently
// ignored.
var supportedRuntimes = map[string]bool{
	"node":   true,
	"python": true,
	"binary": true,
}

// DecodeManifest rejects any key it does not recognise, in the manifest
// body and inside the permissions block alike. A plugin author's typo
// in a permission key (e.g. "filesystem" misspelled) must surface as a
// decode error rather than silently granting no access while the
// approval dialog shows the rest of the block as requested.
func DecodeManifest(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var manifest Manifest
	if err := dec.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &manifest, nil
}

func DecodeManifestFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return DecodeManifest(data)
}

// Validate checks the required fields are present and the runtime tag is
// one the host supports.
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("manifest is nil")
	}
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("manifest id is required")
	}
	if !strings.Contains(m.ID, ".") {
		return fmt.Errorf("manifest id %q should be reverse-domain (e.g. com.example.plugin)", m.ID)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("manifest name is required")
	}
	if strings.TrimSpace(m.Entry) == "" {
		return fmt.Errorf("manifest entry is required")
	}
	if !supportedRuntimes[m.Runtime] {
		return fmt.Errorf("unsupported runtime tag %q", m.Runtime)
	}
	return nil
}
