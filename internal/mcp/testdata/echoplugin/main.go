// Command echoplugin is a minimal MCP stdio server used as a fixture in
// internal/mcp's integration tests. It speaks the same narrow method set
// the host's transport implements against (initialize,
// notifications/initialized, tools/list, tools/call) and exposes a single
// "echo" tool that returns its input argument verbatim, plus an
// "echo_fail" tool that always returns a tool-level error, exercising the
// failure path a real plugin can take without crashing.
//
// It is not wired into cmd/omni-glass; it exists only to be spawned by
// tests in this package.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

type jsonrpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type mcpTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

type toolResultContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type toolCallResult struct {
	Content []toolResultContent `json:"content"`
	IsError bool                `json:"isError,omitempty"`
}

var echoSchema = json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`)

var tools = []mcpTool{
	{Name: "echo", Description: "Returns the text argument unchanged", InputSchema: echoSchema},
	{Name: "echo_fail", Description: "Always returns a tool-level error", InputSchema: echoSchema},
}

func main() {
	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 64*1024), 1024*1024)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for in.Scan() {
		line := in.Bytes()
		if len(line) == 0 {
			continue
		}
		var req jsonrpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}

		// A request carries an id; a notification does not and gets no reply.
		if req.ID == nil {
			continue
		}

		resp := handle(req)
		data, err := json.Marshal(resp)
		if err != nil {
			continue
		}
		out.Write(data)
		out.WriteByte('\n')
		out.Flush()
	}
}

func handle(req jsonrpcRequest) jsonrpcResponse {
	switch req.Method {
	case "initialize":
		return jsonrpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: map[string]any{
				"protocolVersion": "2024-11-05",
				"capabilities":    map[string]any{"tools": map[string]any{}},
				"serverInfo":      map[string]any{"name": "echoplugin", "version": "0.1.0"},
			},
		}
	case "tools/list":
		return jsonrpcResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{"tools": tools}}
	case "tools/call":
		return handleCall(req)
	default:
		return jsonrpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &jsonrpcError{Code: -32601, Message: fmt.Sprintf("method not found: %s", req.Method)},
		}
	}
}

func handleCall(req jsonrpcRequest) jsonrpcResponse {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return jsonrpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &jsonrpcError{Code: -32602, Message: "invalid params"}}
	}

	switch params.Name {
	case "echo":
		var args struct {
			Text string `json:"text"`
		}
		json.Unmarshal(params.Arguments, &args)
		return jsonrpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  toolCallResult{Content: []toolResultContent{{Type: "text", Text: args.Text}}},
		}
	case "echo_fail":
		return jsonrpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  toolCallResult{Content: []toolResultContent{{Type: "text", Text: "echo_fail always fails"}}, IsError: true},
		}
	default:
		return jsonrpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &jsonrpcError{Code: -32002, Message: fmt.Sprintf("tool not found: %s", params.Name)},
		}
	}
}
