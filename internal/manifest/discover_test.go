package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, id, permissionsJSON string) {
	t.Helper()
	pluginDir := filepath.Join(dir, id)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := `{"id": "` + id + `", "name": "` + id + `", "version": "1.0.0", "runtime": "node", "entry": "index.js", "permissions": ` + permissionsJSON + `}`
	if err := os.WriteFile(filepath.Join(pluginDir, "omni-glass.plugin.json"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverFindsValidManifests(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "com.example.echo", `{"clipboard": false}`)

	plugins, err := Discover([]string{dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(plugins) != 1 {
		t.Fatalf("got %d plugins, want 1", len(plugins))
	}
	if plugins[0].Manifest.ID != "com.example.echo" {
		t.Errorf("ID = %q", plugins[0].Manifest.ID)
	}
	if plugins[0].Risk != RiskLow {
		t.Errorf("Risk = %v, want low", plugins[0].Risk)
	}
}

func TestDiscoverSkipsInvalidManifest(t *testing.T) {
	dir := t.TempDir()
	pluginDir := filepath.Join(dir, "broken")
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "omni-glass.plugin.json"), []byte(`not json`), 0644); err != nil {
		t.Fatal(err)
	}

	plugins, err := Discover([]string{dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(plugins) != 0 {
		t.Errorf("got %d plugins, want 0", len(plugins))
	}
}

func TestDiscoverMissingDirectoryIsNotAnError(t *testing.T) {
	plugins, err := Discover([]string{"/nonexistent/path/for/testing"})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(plugins) != 0 {
		t.Errorf("got %d plugins, want 0", len(plugins))
	}
}

func TestPluginEntryPath(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "com.example.echo", `{}`)

	plugins, err := Discover([]string{dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	want := filepath.Join(dir, "com.example.echo", "index.js")
	if got := plugins[0].EntryPath(); got != want {
		t.Errorf("EntryPath() = %q, want %q", got, want)
	}
}
