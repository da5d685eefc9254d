package mcp

import (
	"encoding/json"
	"testing"
)

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServerConfig
		wantErr bool
	}{
		{"valid", ServerConfig{ID: "csvtools", Command: "node"}, false},
		{"missing id", ServerConfig{Command: "node"}, true},
		{"missing command", ServerConfig{ID: "csvtools"}, true},
		{"path traversal in command", ServerConfig{ID: "csvtools", Command: "../../etc/passwd"}, true},
		{"path traversal in workdir", ServerConfig{ID: "csvtools", Command: "node", WorkDir: "../secret"}, true},
		{"shell metachar in arg", ServerConfig{ID: "csvtools", Command: "node", Args: []string{"index.js; rm -rf /"}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestServerConfigJSON(t *testing.T) {
	cfg := ServerConfig{
		ID:      "csvtools",
		Name:    "CSV Tools",
		Command: "node",
		Args:    []string{"index.js"},
		Env:     map[string]string{"LOG_LEVEL": "info"},
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded ServerConfig
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.ID != cfg.ID || decoded.Command != cfg.Command {
		t.Errorf("decoded = %+v, want %+v", decoded, cfg)
	}
}

func TestMCPToolJSON(t *testing.T) {
	tool := &MCPTool{
		Name:        "export_csv",
		Description: "Export extracted text as a CSV file",
		InputSchema: json.RawMessage(`{"type":"object"}`),
	}

	data, err := json.Marshal(tool)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded MCPTool
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Name != tool.Name {
		t.Errorf("Name = %q, want %q", decoded.Name, tool.Name)
	}
}

func TestToolCallResultJSON(t *testing.T) {
	result := &ToolCallResult{
		Content: []ToolResultContent{{Type: "text", Text: "done"}},
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded ToolCallResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.IsError {
		t.Error("IsError should be false")
	}
	if len(decoded.Content) != 1 || decoded.Content[0].Text != "done" {
		t.Errorf("Content = %+v", decoded.Content)
	}
}

func TestToolCallResultError(t *testing.T) {
	result := &ToolCallResult{
		Content: []ToolResultContent{{Type: "text", Text: "plugin panicked"}},
		IsError: true,
	}

	data, _ := json.Marshal(result)
	var decoded ToolCallResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !decoded.IsError {
		t.Error("IsError should be true")
	}
}

func TestJSONRPCRequestJSON(t *testing.T) {
	req := &JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      float64(1),
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name":"export_csv"}`),
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded JSONRPCRequest
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Method != req.Method {
		t.Errorf("Method = %q, want %q", decoded.Method, req.Method)
	}
}

func TestJSONRPCResponseWithError(t *testing.T) {
	resp := &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      float64(1),
		Error:   &JSONRPCError{Code: ErrCodeToolNotFound, Message: "unknown tool"},
	}

	data, _ := json.Marshal(resp)
	var decoded JSONRPCResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Error == nil || decoded.Error.Code != ErrCodeToolNotFound {
		t.Errorf("Error = %+v", decoded.Error)
	}
}

func TestJSONRPCNotificationJSON(t *testing.T) {
	notif := &JSONRPCNotification{
		JSONRPC: "2.0",
		Method:  "notifications/initialized",
	}

	data, err := json.Marshal(notif)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded JSONRPCNotification
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Method != "notifications/initialized" {
		t.Errorf("Method = %q", decoded.Method)
	}
}

func TestInitializeResultJSON(t *testing.T) {
	result := &InitializeResult{
		ProtocolVersion: "2024-11-05",
		Capabilities:    Capabilities{Tools: &ToolsCapability{}},
		ServerInfo:      ServerInfo{Name: "csv-tools", Version: "1.0.0"},
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded InitializeResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.ServerInfo.Name != "csv-tools" {
		t.Errorf("ServerInfo.Name = %q", decoded.ServerInfo.Name)
	}
}

func TestCallToolParamsJSON(t *testing.T) {
	params := &CallToolParams{
		Name:      "export_csv",
		Arguments: json.RawMessage(`{"rows":2}`),
	}

	data, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded CallToolParams
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Name != "export_csv" {
		t.Errorf("Name = %q", decoded.Name)
	}
}
