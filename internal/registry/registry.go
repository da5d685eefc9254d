// Package registry merges builtin tools and MCP plugin-discovered tools
// under qualified names, validates their schemas, and resolves an
// action id back to a handler or plugin reference at execute time.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuiltinPluginID is the synthetic plugin id builtin tools register
// under. Plugins register under their own manifest id instead.
const BuiltinPluginID = "builtin"

// Handler runs a builtin tool call. MCP-backed tools are dispatched
// through a Caller instead; a Tool carries exactly one of the two.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Caller dispatches a tool call to a specific plugin by its unqualified
// tool name. Implemented by internal/mcp.Manager in production.
type Caller interface {
	CallTool(ctx context.Context, pluginID, toolName string, args json.RawMessage) (string, error)
}

// Tool is one entry in the registry: a qualified name, its advertised
// description and input schema, and exactly one of a builtin Handler or
// a plugin origin to dispatch through.
type Tool struct {
	QualifiedName string
	PluginID      string
	Name          string
	Description   string
	InputSchema   json.RawMessage

	handler Handler
}

// PromptEntry is the shape serialised into the CLASSIFY/EXECUTE prompt's
// tool enumeration.
type PromptEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Registry is the qualified-name -> Tool map. Registration and lookup
// hold the mutex only across the map mutation itself; dispatch happens
// after the lock is released so a slow plugin call never blocks
// registration of another plugin's tools.
type Registry struct {
	mu     sync.Mutex
	tools  map[string]Tool
	caller Caller
}

// New builds an empty Registry. caller is used to dispatch calls to
// plugin-origin tools; it may be nil until plugins finish their
// handshake, since no plugin tools are registered before then.
func New(caller Caller) *Registry {
	return &Registry{tools: make(map[string]Tool), caller: caller}
}

// SetCaller wires the dispatcher used for plugin-origin tools. Safe to
// call after construction, before any plugin tool is registered.
func (r *Registry) SetCaller(caller Caller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caller = caller
}

// RegisterBuiltin adds a tool backed by an in-process handler. The
// qualified name is "builtin:<name>".
func (r *Registry) RegisterBuiltin(name, description string, schema json.RawMessage, handler Handler) error {
	if err := validateSchema(schema); err != nil {
		return fmt.Errorf("register builtin %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	qualified := QualifiedName(BuiltinPluginID, name)
	r.tools[qualified] = Tool{
		QualifiedName: qualified,
		PluginID:      BuiltinPluginID,
		Name:          name,
		Description:   description,
		InputSchema:   schema,
		handler:       handler,
	}
	return nil
}

// RegisterPluginTool adds a tool discovered from a plugin's tools/list
// response. The qualified name is "<pluginID>:<name>".
func (r *Registry) RegisterPluginTool(pluginID, name, description string, schema json.RawMessage) error {
	if err := validateSchema(schema); err != nil {
		return fmt.Errorf("register %s:%s: %w", pluginID, name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	qualified := QualifiedName(pluginID, name)
	r.tools[qualified] = Tool{
		QualifiedName: qualified,
		PluginID:      pluginID,
		Name:          name,
		Description:   description,
		InputSchema:   schema,
	}
	return nil
}

// UnregisterPlugin removes every tool registered under pluginID, called
// when a plugin disconnects or is denied approval.
func (r *Registry) UnregisterPlugin(pluginID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for qualified, tool := range r.tools {
		if tool.PluginID == pluginID {
			delete(r.tools, qualified)
		}
	}
}

// Lookup resolves a qualified name to its Tool.
func (r *Registry) Lookup(qualifiedName string) (Tool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tool, ok := r.tools[qualifiedName]
	return tool, ok
}

// Call dispatches a tool call by qualified name, after the registry
// lock has already been released (Lookup is called internally, but the
// lock is not held across the call itself).
func (r *Registry) Call(ctx context.Context, qualifiedName string, args json.RawMessage) (string, error) {
	tool, ok := r.Lookup(qualifiedName)
	if !ok {
		return "", fmt.Errorf("unknown tool %q", qualifiedName)
	}

	if tool.PluginID == BuiltinPluginID {
		if tool.handler == nil {
			return "", fmt.Errorf("tool %q has no handler", qualifiedName)
		}
		return tool.handler(ctx, args)
	}

	r.mu.Lock()
	caller := r.caller
	r.mu.Unlock()
	if caller == nil {
		return "", fmt.Errorf("no plugin caller configured for %q", qualifiedName)
	}
	return caller.CallTool(ctx, tool.PluginID, tool.Name, args)
}

// PromptEntries serialises every registered tool for the CLASSIFY/EXECUTE
// prompt's tool enumeration, in a stable order.
func (r *Registry) PromptEntries() []PromptEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]PromptEntry, 0, len(r.tools))
	for _, tool := range r.tools {
		entries = append(entries, PromptEntry{
			Name:        tool.QualifiedName,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// QualifiedName joins a plugin id and an unqualified tool name into the
// registry's qualified-name form.
func QualifiedName(pluginID, toolName string) string {
	return pluginID + ":" + toolName
}

var schemaCache sync.Map

func validateSchema(schema json.RawMessage) error {
	if len(schema) == 0 {
		return nil
	}
	key := string(schema)
	if _, ok := schemaCache.Load(key); ok {
		return nil
	}
	if _, err := jsonschema.CompileString("tool.schema.json", key); err != nil {
		return fmt.Errorf("invalid input schema: %w", err)
	}
	schemaCache.Store(key, struct{}{})
	return nil
}
