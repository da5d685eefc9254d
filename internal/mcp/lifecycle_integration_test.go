package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/omni-glass/host/internal/manifest"
)

func writePluginManifest(t *testing.T, dir, entry string, clipboard bool) {
	t.Helper()
	m := map[string]any{
		"id":      "com.example.echo",
		"name":    "Echo",
		"version": "1.0.0",
		"runtime": "binary",
		"entry":   entry,
		"permissions": map[string]any{
			"clipboard": clipboard,
		},
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "omni-glass.plugin.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
}

// TestPluginLifecycleApprovalGatesRegistration exercises the discover ->
// approve -> connect -> call path, and then the permissions-change ->
// re-approval-required path, end to end against a real MCP subprocess.
func TestPluginLifecycleApprovalGatesRegistration(t *testing.T) {
	echoBin := buildEchoPlugin(t)

	pluginsRoot := t.TempDir()
	pluginDir := filepath.Join(pluginsRoot, "echo")
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatal(err)
	}
	entryName := filepath.Base(echoBin)
	copyFile(t, echoBin, filepath.Join(pluginDir, entryName))
	writePluginManifest(t, pluginDir, entryName, false)

	approvalsDir := t.TempDir()
	approvals := manifest.NewApprovalStore(approvalsDir)

	plugins, err := manifest.Discover([]string{pluginsRoot})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(plugins) != 1 {
		t.Fatalf("got %d plugins, want 1", len(plugins))
	}
	plugin := plugins[0]

	approved, err := approvals.IsApproved(plugin.Manifest.ID, plugin.PermissionsHash)
	if err != nil {
		t.Fatalf("IsApproved() error = %v", err)
	}
	if approved {
		t.Fatal("a never-seen plugin must not be approved yet")
	}

	if err := approvals.Set(plugin.Manifest.ID, true, plugin.PermissionsHash, time.Now()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	approved, err = approvals.IsApproved(plugin.Manifest.ID, plugin.PermissionsHash)
	if err != nil {
		t.Fatalf("IsApproved() error = %v", err)
	}
	if !approved {
		t.Fatal("expected the plugin to be approved after Set")
	}

	cfg := &Config{
		Enabled: true,
		Servers: []*ServerConfig{
			{ID: plugin.Manifest.ID, Name: plugin.Manifest.Name, Command: plugin.EntryPath(), Timeout: 5 * time.Second, AutoStart: true},
		},
	}
	mgr := NewManager(cfg, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer mgr.Stop()

	pluginID, tool := mgr.FindTool("echo")
	if pluginID != plugin.Manifest.ID || tool == nil {
		t.Fatalf("expected echo's tool to be registered under %q, got pluginID=%q tool=%v", plugin.Manifest.ID, pluginID, tool)
	}

	result, err := mgr.CallTool(ctx, plugin.Manifest.ID, "echo", map[string]any{"text": "ping"})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if len(result.Content) != 1 || result.Content[0].Text != "ping" {
		t.Fatalf("unexpected tool result: %+v", result)
	}
	mgr.Stop()

	// Widen the manifest's permissions; the stored approval no longer
	// matches the new permissions hash and must be treated as stale.
	writePluginManifest(t, pluginDir, entryName, true)
	widened, err := manifest.Discover([]string{pluginsRoot})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if widened[0].PermissionsHash == plugin.PermissionsHash {
		t.Fatal("expected widening clipboard permission to change the permissions hash")
	}
	stillApproved, err := approvals.IsApproved(widened[0].Manifest.ID, widened[0].PermissionsHash)
	if err != nil {
		t.Fatalf("IsApproved() error = %v", err)
	}
	if stillApproved {
		t.Fatal("a plugin whose permissions changed must require re-approval")
	}
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, data, 0755); err != nil {
		t.Fatal(err)
	}
}
