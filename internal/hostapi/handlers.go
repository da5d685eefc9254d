package hostapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/omni-glass/host/internal/manifest"
	"github.com/omni-glass/host/internal/pipeline"
)

type processSnipParams struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Platform string `json:"platform"`
}

type sessionIDResult struct {
	SessionID string `json:"session_id"`
}

// handleProcessSnip starts a new session for a captured screen region.
// The actual OCR call is the Config.OCR collaborator supplied by the
// platform-specific host binary.
func (s *Server) handleProcessSnip(ctx context.Context, raw json.RawMessage) (any, error) {
	var p processSnipParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode process_snip params: %w", err)
	}
	if s.orchestrator == nil || s.ocr == nil {
		return nil, fmt.Errorf("no orchestrator or OCR collaborator configured")
	}
	sessionID := s.orchestrator.ProcessSnip(ctx, s.ocr, p.Platform, pipeline.Anchor{X: p.X, Y: p.Y})
	return sessionIDResult{SessionID: sessionID}, nil
}

type executeTextCommandParams struct {
	Text     string `json:"text"`
	Platform string `json:"platform"`
}

func (s *Server) handleExecuteTextCommand(ctx context.Context, raw json.RawMessage) (any, error) {
	var p executeTextCommandParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode execute_text_command params: %w", err)
	}
	if s.orchestrator == nil {
		return nil, fmt.Errorf("no orchestrator configured")
	}
	sessionID := s.orchestrator.ExecuteTypedCommand(ctx, p.Text, p.Platform)
	return sessionIDResult{SessionID: sessionID}, nil
}

type executeActionParams struct {
	SessionID string `json:"session_id"`
	ActionID  string `json:"action_id"`
}

func (s *Server) handleExecuteAction(ctx context.Context, raw json.RawMessage) (any, error) {
	var p executeActionParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode execute_action params: %w", err)
	}
	if s.orchestrator == nil {
		return nil, fmt.Errorf("no orchestrator configured")
	}
	if err := s.orchestrator.ClickAction(p.SessionID, p.ActionID); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

type runConfirmedCommandParams struct {
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
}

func (s *Server) handleRunConfirmedCommand(ctx context.Context, raw json.RawMessage) (any, error) {
	var p runConfirmedCommandParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode run_confirmed_command params: %w", err)
	}
	if s.dispatcher == nil {
		return nil, fmt.Errorf("no dispatcher configured")
	}
	return s.dispatcher.RunConfirmedCommand(ctx, p.SessionID, p.Command)
}

type copyToClipboardParams struct {
	Text string `json:"text"`
}

func (s *Server) handleCopyToClipboard(ctx context.Context, raw json.RawMessage) (any, error) {
	var p copyToClipboardParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode copy_to_clipboard params: %w", err)
	}
	if s.clipboard == nil {
		return nil, fmt.Errorf("no clipboard writer configured")
	}
	if err := s.clipboard.WriteClipboard(p.Text); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

type writeToDesktopParams struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type writePathResult struct {
	Path string `json:"path"`
}

func (s *Server) handleWriteToDesktop(ctx context.Context, raw json.RawMessage) (any, error) {
	var p writeToDesktopParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode write_to_desktop params: %w", err)
	}
	if s.files == nil {
		return nil, fmt.Errorf("no file writer configured")
	}
	path, err := s.files.WriteToDesktop(p.Filename, p.Content)
	if err != nil {
		return nil, err
	}
	return writePathResult{Path: path}, nil
}

type writeFileToPathParams struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (s *Server) handleWriteFileToPath(ctx context.Context, raw json.RawMessage) (any, error) {
	var p writeFileToPathParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode write_file_to_path params: %w", err)
	}
	if s.files == nil {
		return nil, fmt.Errorf("no file writer configured")
	}
	if err := s.files.WriteToPath(p.Path, p.Content); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

type getActionMenuParams struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleGetActionMenu(ctx context.Context, raw json.RawMessage) (any, error) {
	var p getActionMenuParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode get_action_menu params: %w", err)
	}
	if s.orchestrator == nil {
		return nil, fmt.Errorf("no orchestrator configured")
	}
	snap, ok := s.orchestrator.Snapshot(p.SessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session %q", p.SessionID)
	}
	return snap, nil
}

type pendingApproval struct {
	PluginID string             `json:"plugin_id"`
	Name     string             `json:"name"`
	Risk     manifest.RiskLevel `json:"risk"`
}

func (s *Server) handleGetPendingApprovals(ctx context.Context, raw json.RawMessage) (any, error) {
	if s.approvals == nil {
		return nil, fmt.Errorf("no approval store configured")
	}
	return s.pendingApprovals()
}

// pendingApprovals is factored out so tests can call it directly without
// round-tripping through JSON-RPC params.
func (s *Server) pendingApprovals() ([]pendingApproval, error) {
	plugins, err := s.discoveredPlugins()
	if err != nil {
		return nil, err
	}

	var pending []pendingApproval
	for _, p := range plugins {
		approved, err := s.approvals.IsApproved(p.Manifest.ID, p.PermissionsHash)
		if err != nil {
			return nil, err
		}
		if approved {
			continue
		}
		pending = append(pending, pendingApproval{PluginID: p.Manifest.ID, Name: p.Manifest.Name, Risk: p.Risk})
	}
	return pending, nil
}

func (s *Server) discoveredPlugins() ([]manifest.Plugin, error) {
	if s.pluginDirs == nil {
		return nil, nil
	}
	return manifest.Discover(s.pluginDirs)
}

type getOCRTextResult struct {
	Text string `json:"text"`
}

// handleGetOCRText returns the raw extracted text behind a session's
// action menu, for a "view source text" affordance distinct from
// whatever the model classified or executed against it.
func (s *Server) handleGetOCRText(ctx context.Context, raw json.RawMessage) (any, error) {
	var p getActionMenuParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode get_ocr_text params: %w", err)
	}
	if s.orchestrator == nil {
		return nil, fmt.Errorf("no orchestrator configured")
	}
	snap, ok := s.orchestrator.Snapshot(p.SessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session %q", p.SessionID)
	}
	return getOCRTextResult{Text: snap.ExtractedText}, nil
}

type closeSessionParams struct {
	SessionID string `json:"session_id"`
}

// handleCloseSession is the close_* window-lifecycle command with an
// actual host-side effect: it cancels the session's outstanding stream
// and drops its bookkeeping when the UI dismisses its menu window. The
// other close_* variants (settings, approvals) close UI-only windows
// with no session state on the host side and never reach this server.
func (s *Server) handleCloseSession(ctx context.Context, raw json.RawMessage) (any, error) {
	var p closeSessionParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode close_session params: %w", err)
	}
	if s.orchestrator == nil {
		return nil, fmt.Errorf("no orchestrator configured")
	}
	s.orchestrator.Cancel(p.SessionID)
	return struct{}{}, nil
}

func (s *Server) handleGetProviderConfig(ctx context.Context, raw json.RawMessage) (any, error) {
	if s.providers == nil {
		return nil, fmt.Errorf("no provider manager configured")
	}
	return s.providers.ProviderStatus(), nil
}

type setActiveProviderParams struct {
	ProviderID string `json:"provider_id"`
}

func (s *Server) handleSetActiveProvider(ctx context.Context, raw json.RawMessage) (any, error) {
	var p setActiveProviderParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode set_active_provider params: %w", err)
	}
	if s.providers == nil {
		return nil, fmt.Errorf("no provider manager configured")
	}
	if err := s.providers.SetActiveProvider(p.ProviderID); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

type saveAPIKeyParams struct {
	ProviderID string `json:"provider_id"`
	APIKey     string `json:"api_key"`
}

func (s *Server) handleSaveAPIKey(ctx context.Context, raw json.RawMessage) (any, error) {
	var p saveAPIKeyParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode save_api_key params: %w", err)
	}
	if s.providers == nil {
		return nil, fmt.Errorf("no provider manager configured")
	}
	if err := s.providers.SaveAPIKey(p.ProviderID, p.APIKey); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

type testProviderParams struct {
	ProviderID string `json:"provider_id"`
}

type testProviderResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// handleTestProvider never returns a JSON-RPC error for a failed test;
// "the credential doesn't work" is an expected outcome the settings
// screen needs to render, not a transport-level failure.
func (s *Server) handleTestProvider(ctx context.Context, raw json.RawMessage) (any, error) {
	var p testProviderParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode test_provider params: %w", err)
	}
	if s.providers == nil {
		return nil, fmt.Errorf("no provider manager configured")
	}
	if err := s.providers.TestProvider(ctx, p.ProviderID); err != nil {
		return testProviderResult{OK: false, Error: err.Error()}, nil
	}
	return testProviderResult{OK: true}, nil
}

type approvePluginParams struct {
	PluginID string `json:"plugin_id"`
	Approved bool   `json:"approved"`
}

func (s *Server) handleApprovePlugin(ctx context.Context, raw json.RawMessage) (any, error) {
	var p approvePluginParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode approve_plugin params: %w", err)
	}
	if s.approvals == nil {
		return nil, fmt.Errorf("no approval store configured")
	}

	plugins, err := s.discoveredPlugins()
	if err != nil {
		return nil, err
	}
	var hash string
	for _, pl := range plugins {
		if pl.Manifest.ID == p.PluginID {
			hash = pl.PermissionsHash
			break
		}
	}
	if hash == "" {
		return nil, fmt.Errorf("plugin %q not found", p.PluginID)
	}

	if err := s.approvals.Set(p.PluginID, p.Approved, hash, time.Now()); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}
