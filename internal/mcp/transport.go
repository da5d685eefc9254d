package mcp

import (
	"context"
	"encoding/json"
)

// Transport defines the interface for MCP transports.
type Transport interface {
	// Connect establishes the transport connection.
	Connect(ctx context.Context) error

	// Close closes the transport connection.
	Close() error

	// Call sends a request and waits for a response.
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)

	// Notify sends a notification (no response expected).
	Notify(ctx context.Context, method string, params any) error

	// Events returns a channel for receiving notifications from the server.
	Events() <-chan *JSONRPCNotification

	// Connected returns whether the transport is connected.
	Connected() bool

	// Faulted reports whether the transport has terminated the plugin
	// process after a protocol error or unparseable message. A faulted
	// transport never becomes connected again; the plugin must be
	// restarted from scratch to recover.
	Faulted() bool
}

// NewTransport creates the stdio transport for a plugin server config.
// Every plugin speaks line-delimited JSON-RPC over its own stdin/stdout;
// there is no alternate transport to select between.
func NewTransport(cfg *ServerConfig) Transport {
	return NewStdioTransport(cfg)
}
