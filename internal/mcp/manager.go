package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Manager supervises one plugin subprocess connection per approved
// plugin: spawn, handshake, tool discovery, dispatch, and shutdown.
type Manager struct {
	config  *Config
	logger  *slog.Logger
	clients map[string]*Client
	mu      sync.RWMutex
}

// Config holds the MCP manager configuration.
type Config struct {
	Enabled bool            `yaml:"enabled"`
	Servers []*ServerConfig `yaml:"servers"`
}

// NewManager creates a new MCP manager.
func NewManager(cfg *Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		config:  cfg,
		logger:  logger.With("component", "mcp"),
		clients: make(map[string]*Client),
	}
}

// Start connects to every configured plugin with auto_start enabled. A
// single plugin failing to connect is logged and skipped; it does not
// prevent the others from starting.
func (m *Manager) Start(ctx context.Context) error {
	if m.config == nil || !m.config.Enabled {
		m.logger.Debug("mcp disabled")
		return nil
	}

	for _, serverCfg := range m.config.Servers {
		if !serverCfg.AutoStart {
			continue
		}

		if err := m.Connect(ctx, serverCfg.ID); err != nil {
			m.logger.Error("failed to connect to plugin",
				"plugin", serverCfg.ID,
				"error", err)
		}
	}

	return nil
}

// Stop disconnects from every plugin.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, client := range m.clients {
		if err := client.Close(); err != nil {
			m.logger.Error("failed to close plugin connection",
				"plugin", id,
				"error", err)
		}
		delete(m.clients, id)
	}

	return nil
}

// Connect spawns and handshakes with a specific plugin by ID.
func (m *Manager) Connect(ctx context.Context, pluginID string) error {
	var serverCfg *ServerConfig
	for _, cfg := range m.config.Servers {
		if cfg.ID == pluginID {
			serverCfg = cfg
			break
		}
	}

	if serverCfg == nil {
		return fmt.Errorf("plugin %q not found in config", pluginID)
	}

	m.mu.RLock()
	if _, exists := m.clients[pluginID]; exists {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()

	client := NewClient(serverCfg, m.logger)
	if err := client.Connect(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.clients[pluginID] = client
	m.mu.Unlock()

	m.logger.Info("connected to plugin",
		"plugin", pluginID,
		"name", client.ServerInfo().Name)

	return nil
}

// Disconnect tears down a specific plugin's process.
func (m *Manager) Disconnect(pluginID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, exists := m.clients[pluginID]
	if !exists {
		return nil
	}

	if err := client.Close(); err != nil {
		return err
	}

	delete(m.clients, pluginID)
	m.logger.Info("disconnected from plugin", "plugin", pluginID)

	return nil
}

// Client returns the client for a specific plugin.
func (m *Manager) Client(pluginID string) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, exists := m.clients[pluginID]
	return client, exists
}

// Clients returns all connected clients.
func (m *Manager) Clients() map[string]*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]*Client, len(m.clients))
	for id, client := range m.clients {
		result[id] = client
	}
	return result
}

// AllTools returns the tool list for every connected, non-faulted
// plugin, keyed by plugin ID. A faulted plugin's tools are withheld
// even though they remain cached on the Client, so a crashed plugin
// removes only its own tools from what the rest of the system sees;
// other plugins and built-ins are unaffected.
func (m *Manager) AllTools() map[string][]*MCPTool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]*MCPTool)
	for id, client := range m.clients {
		if client.Faulted() {
			continue
		}
		if tools := client.Tools(); len(tools) > 0 {
			result[id] = tools
		}
	}
	return result
}

// CallTool calls a tool on a specific plugin, enforcing the manager's
// per-call timeout via the context the caller supplies.
func (m *Manager) CallTool(ctx context.Context, pluginID string, toolName string, arguments map[string]any) (*ToolCallResult, error) {
	client, exists := m.Client(pluginID)
	if !exists {
		return nil, fmt.Errorf("plugin %q not connected", pluginID)
	}
	if client.Faulted() {
		return nil, fmt.Errorf("plugin %q has faulted and must be restarted", pluginID)
	}

	return client.CallTool(ctx, toolName, arguments)
}

// FindTool finds a tool by unqualified name across all non-faulted
// plugins. Returns the owning plugin ID and tool definition, or an
// empty ID if not found.
func (m *Manager) FindTool(name string) (pluginID string, tool *MCPTool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, client := range m.clients {
		if client.Faulted() {
			continue
		}
		for _, t := range client.Tools() {
			if t.Name == name {
				return id, t
			}
		}
	}
	return "", nil
}

// ToolSchema represents the JSON schema for a tool, used to enumerate
// tools in the classify prompt.
type ToolSchema struct {
	PluginID    string          `json:"plugin_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// ToolSchemas returns tool schemas for every connected, non-faulted
// plugin's tools.
func (m *Manager) ToolSchemas() []ToolSchema {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var schemas []ToolSchema
	for id, client := range m.clients {
		if client.Faulted() {
			continue
		}
		for _, tool := range client.Tools() {
			schemas = append(schemas, ToolSchema{
				PluginID:    id,
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: tool.InputSchema,
			})
		}
	}
	return schemas
}

// Health is a plugin's coarse lifecycle state.
type Health string

const (
	// HealthDisconnected is a configured plugin that has never
	// connected, or was cleanly disconnected and not yet restarted.
	HealthDisconnected Health = "disconnected"
	// HealthLive is a plugin with an open, responsive connection.
	HealthLive Health = "live"
	// HealthFaulted is a plugin whose transport terminated the
	// process after a protocol error or unparseable message. Its
	// tools are withheld from AllTools/ToolSchemas/FindTool until it
	// is reconnected.
	HealthFaulted Health = "faulted"
)

// PluginStatus represents the connection status of one configured plugin.
type PluginStatus struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Connected bool       `json:"connected"`
	Health    Health     `json:"health"`
	Server    ServerInfo `json:"server"`
	Tools     int        `json:"tools"`
}

// Status returns the status of every configured plugin.
func (m *Manager) Status() []PluginStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var statuses []PluginStatus
	for _, cfg := range m.config.Servers {
		status := PluginStatus{
			ID:     cfg.ID,
			Name:   cfg.Name,
			Health: HealthDisconnected,
		}

		if client, exists := m.clients[cfg.ID]; exists {
			status.Connected = client.Connected()
			status.Server = client.ServerInfo()
			status.Tools = len(client.Tools())
			switch {
			case client.Faulted():
				status.Health = HealthFaulted
				status.Tools = 0
			case status.Connected:
				status.Health = HealthLive
			}
		}

		statuses = append(statuses, status)
	}

	return statuses
}
