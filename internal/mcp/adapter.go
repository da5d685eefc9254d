package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// RegistryCaller adapts a Manager to internal/registry's Caller
// interface: the registry speaks qualified names and raw JSON
// arguments, the manager speaks unqualified tool names and decoded
// argument maps.
type RegistryCaller struct {
	manager *Manager
}

// NewRegistryCaller wraps manager for use as a registry.Caller.
func NewRegistryCaller(manager *Manager) *RegistryCaller {
	return &RegistryCaller{manager: manager}
}

// CallTool decodes args into a map, calls the plugin, and flattens the
// tool result's text content into a single string. An isError result is
// turned into a Go error carrying that same text.
func (c *RegistryCaller) CallTool(ctx context.Context, pluginID, toolName string, args json.RawMessage) (string, error) {
	var arguments map[string]any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &arguments); err != nil {
			return "", fmt.Errorf("decode arguments for %s:%s: %w", pluginID, toolName, err)
		}
	}

	result, err := c.manager.CallTool(ctx, pluginID, toolName, arguments)
	if err != nil {
		return "", err
	}

	text := flattenContent(result.Content)
	if result.IsError {
		return "", fmt.Errorf("%s:%s: %s", pluginID, toolName, text)
	}
	return text, nil
}

func flattenContent(content []ToolResultContent) string {
	var parts []string
	for _, c := range content {
		if c.Type == "text" && c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}
