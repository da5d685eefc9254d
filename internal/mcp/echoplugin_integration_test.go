package mcp

import (
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// buildEchoPlugin compiles the echoplugin fixture into a temp binary and
// returns its path, skipping the test if no Go toolchain is available to
// build it (e.g. a stripped-down CI image).
func buildEchoPlugin(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "echoplugin")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	cmd := exec.Command("go", "build", "-o", bin, "./testdata/echoplugin")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("could not build echoplugin fixture: %v\n%s", err, out)
	}
	return bin
}

func TestManagerConnectAndCallEchoPlugin(t *testing.T) {
	bin := buildEchoPlugin(t)

	cfg := &Config{
		Enabled: true,
		Servers: []*ServerConfig{
			{ID: "echo", Name: "Echo", Command: bin, Timeout: 5 * time.Second, AutoStart: true},
		},
	}
	mgr := NewManager(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer mgr.Stop()

	schemas := mgr.ToolSchemas()
	if len(schemas) != 2 {
		t.Fatalf("expected 2 tool schemas, got %d", len(schemas))
	}

	args, _ := json.Marshal(map[string]string{"text": "hello plugin"})
	result, err := mgr.CallTool(ctx, "echo", "echo", map[string]any{"text": "hello plugin"})
	if err != nil {
		t.Fatalf("CallTool(echo) error = %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success result, got error: %+v", result)
	}
	if len(result.Content) != 1 || result.Content[0].Text != "hello plugin" {
		t.Fatalf("unexpected echo result: %+v (args=%s)", result, args)
	}

	failResult, err := mgr.CallTool(ctx, "echo", "echo_fail", map[string]any{"text": "x"})
	if err != nil {
		t.Fatalf("CallTool(echo_fail) error = %v", err)
	}
	if !failResult.IsError {
		t.Fatal("expected echo_fail to return IsError=true")
	}
}
