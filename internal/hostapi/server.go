// Package hostapi exposes the host commands of the UI collaborator
// protocol over the same NDJSON JSON-RPC 2.0 envelope internal/mcp uses
// between the host and a plugin: the UI talks to the host the same way
// the host talks to plugins.
package hostapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/omni-glass/host/internal/dispatch"
	"github.com/omni-glass/host/internal/manifest"
	"github.com/omni-glass/host/internal/mcp"
	"github.com/omni-glass/host/internal/pipeline"
)

// ClipboardWriter copies text to the OS clipboard. Implemented by the
// platform-specific host binary; hostapi itself has no OS dependency.
type ClipboardWriter interface {
	WriteClipboard(text string) error
}

// FileWriter persists a result's file payload to disk. Implemented by
// the platform-specific host binary.
type FileWriter interface {
	WriteToDesktop(filename, content string) (path string, err error)
	WriteToPath(path, content string) error
}

// ProviderInfo is one configured LLM provider's non-secret summary, for
// the provider settings screen.
type ProviderInfo struct {
	ID           string `json:"id"`
	DefaultModel string `json:"default_model"`
	Remote       bool   `json:"remote"`
	HasAPIKey    bool   `json:"has_api_key"`
}

// ProviderStatus is the result of get_provider_config.
type ProviderStatus struct {
	ActiveProvider string         `json:"active_provider"`
	Providers      []ProviderInfo `json:"providers"`
}

// ProviderManager lets the UI collaborator read and change which LLM
// provider the orchestrator uses and persist new credentials, without
// hostapi itself depending on internal/config or internal/llm. Implemented
// by the platform-specific host binary.
type ProviderManager interface {
	ProviderStatus() ProviderStatus
	SetActiveProvider(providerID string) error
	SaveAPIKey(providerID, apiKey string) error
	TestProvider(ctx context.Context, providerID string) error
}

// Handler is one host command's implementation: decode params, do the
// work, return a JSON-serialisable value or an error.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Server routes UI collaborator commands to the pipeline, manifest
// store, and dispatcher that actually implement them.
type Server struct {
	orchestrator *pipeline.Orchestrator
	dispatcher   *dispatch.Dispatcher
	approvals    *manifest.ApprovalStore
	pluginDirs   []string
	ocr          pipeline.OCRFunc
	clipboard    ClipboardWriter
	files        FileWriter
	providers    ProviderManager

	handlers map[string]Handler
}

// Config bundles the collaborators a Server dispatches host commands
// to. Clipboard, Files, and OCR may be nil in tests that don't exercise
// the commands needing them.
type Config struct {
	Orchestrator *pipeline.Orchestrator
	Dispatcher   *dispatch.Dispatcher
	Approvals    *manifest.ApprovalStore
	PluginDirs   []string
	OCR          pipeline.OCRFunc
	Clipboard    ClipboardWriter
	Files        FileWriter
	Providers    ProviderManager
}

// NewServer builds a Server and registers every host command handler.
func NewServer(cfg Config) *Server {
	s := &Server{
		orchestrator: cfg.Orchestrator,
		dispatcher:   cfg.Dispatcher,
		approvals:    cfg.Approvals,
		pluginDirs:   cfg.PluginDirs,
		ocr:          cfg.OCR,
		clipboard:    cfg.Clipboard,
		files:        cfg.Files,
		providers:    cfg.Providers,
	}
	s.handlers = map[string]Handler{
		"process_snip":          s.handleProcessSnip,
		"execute_text_command":  s.handleExecuteTextCommand,
		"execute_action":        s.handleExecuteAction,
		"run_confirmed_command": s.handleRunConfirmedCommand,
		"copy_to_clipboard":     s.handleCopyToClipboard,
		"write_to_desktop":      s.handleWriteToDesktop,
		"write_file_to_path":    s.handleWriteFileToPath,
		"get_action_menu":       s.handleGetActionMenu,
		"get_ocr_text":          s.handleGetOCRText,
		"get_pending_approvals": s.handleGetPendingApprovals,
		"approve_plugin":        s.handleApprovePlugin,
		"get_provider_config":   s.handleGetProviderConfig,
		"set_active_provider":   s.handleSetActiveProvider,
		"save_api_key":          s.handleSaveAPIKey,
		"test_provider":         s.handleTestProvider,
		"close_session":         s.handleCloseSession,
	}
	return s
}

// Handle dispatches one JSON-RPC request and returns the matching
// response envelope. It never panics on a malformed request; every
// failure mode is surfaced as a JSON-RPC error object.
func (s *Server) Handle(ctx context.Context, req mcp.JSONRPCRequest) mcp.JSONRPCResponse {
	handler, ok := s.handlers[req.Method]
	if !ok {
		return errorResponse(req.ID, mcp.ErrCodeMethodNotFound, fmt.Sprintf("unknown host command %q", req.Method))
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		return errorResponse(req.ID, mcp.ErrCodeInternalError, err.Error())
	}

	data, err := json.Marshal(result)
	if err != nil {
		return errorResponse(req.ID, mcp.ErrCodeInternalError, "marshal result: "+err.Error())
	}
	return mcp.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: data}
}

func errorResponse(id any, code int, message string) mcp.JSONRPCResponse {
	return mcp.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &mcp.JSONRPCError{Code: code, Message: message},
	}
}
