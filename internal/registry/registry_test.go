package registry

import (
	"context"
	"encoding/json"
	"testing"
)

type fakeCaller struct {
	called   bool
	pluginID string
	toolName string
	result   string
	err      error
}

func (f *fakeCaller) CallTool(ctx context.Context, pluginID, toolName string, args json.RawMessage) (string, error) {
	f.called = true
	f.pluginID = pluginID
	f.toolName = toolName
	return f.result, f.err
}

func validSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {"text": {"type": "string"}}}`)
}

func TestRegisterBuiltinAndCall(t *testing.T) {
	r := New(nil)
	err := r.RegisterBuiltin("copy_text", "copy text to clipboard", validSchema(), func(ctx context.Context, args json.RawMessage) (string, error) {
		return "copied", nil
	})
	if err != nil {
		t.Fatalf("RegisterBuiltin() error = %v", err)
	}

	result, err := r.Call(context.Background(), QualifiedName(BuiltinPluginID, "copy_text"), nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if result != "copied" {
		t.Errorf("result = %q, want copied", result)
	}
}

func TestRegisterPluginToolDispatchesThroughCaller(t *testing.T) {
	caller := &fakeCaller{result: "pong"}
	r := New(caller)

	if err := r.RegisterPluginTool("com.example.echo", "ping", "replies pong", validSchema()); err != nil {
		t.Fatalf("RegisterPluginTool() error = %v", err)
	}

	result, err := r.Call(context.Background(), "com.example.echo:ping", nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if result != "pong" {
		t.Errorf("result = %q, want pong", result)
	}
	if !caller.called || caller.pluginID != "com.example.echo" || caller.toolName != "ping" {
		t.Errorf("caller received pluginID=%q toolName=%q", caller.pluginID, caller.toolName)
	}
}

func TestCallUnknownToolFails(t *testing.T) {
	r := New(nil)
	if _, err := r.Call(context.Background(), "builtin:nonexistent", nil); err == nil {
		t.Error("expected an error for an unregistered tool")
	}
}

func TestCallPluginToolWithoutCallerFails(t *testing.T) {
	r := New(nil)
	if err := r.RegisterPluginTool("com.example.echo", "ping", "", validSchema()); err != nil {
		t.Fatalf("RegisterPluginTool() error = %v", err)
	}
	if _, err := r.Call(context.Background(), "com.example.echo:ping", nil); err == nil {
		t.Error("expected an error when no caller is configured")
	}
}

func TestRegisterInvalidSchemaFails(t *testing.T) {
	r := New(nil)
	badSchema := json.RawMessage(`{"type": "not-a-real-type-!!"}`)
	err := r.RegisterBuiltin("broken", "", badSchema, nil)
	if err == nil {
		t.Error("expected an error for an invalid schema")
	}
}

func TestUnregisterPluginRemovesItsTools(t *testing.T) {
	r := New(&fakeCaller{})
	if err := r.RegisterPluginTool("com.example.echo", "ping", "", validSchema()); err != nil {
		t.Fatalf("RegisterPluginTool() error = %v", err)
	}

	r.UnregisterPlugin("com.example.echo")

	if _, ok := r.Lookup("com.example.echo:ping"); ok {
		t.Error("expected the tool to be removed")
	}
}

func TestPromptEntriesIncludesAllRegisteredTools(t *testing.T) {
	r := New(nil)
	if err := r.RegisterBuiltin("copy_text", "copy", validSchema(), func(context.Context, json.RawMessage) (string, error) { return "", nil }); err != nil {
		t.Fatalf("RegisterBuiltin() error = %v", err)
	}
	if err := r.RegisterPluginTool("com.example.echo", "ping", "pong", validSchema()); err != nil {
		t.Fatalf("RegisterPluginTool() error = %v", err)
	}

	entries := r.PromptEntries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
}

func TestQualifiedNameFormat(t *testing.T) {
	if got := QualifiedName("com.example.echo", "ping"); got != "com.example.echo:ping" {
		t.Errorf("QualifiedName() = %q", got)
	}
}
