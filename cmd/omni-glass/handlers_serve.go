package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/omni-glass/host/internal/audit"
	"github.com/omni-glass/host/internal/config"
	"github.com/omni-glass/host/internal/dispatch"
	"github.com/omni-glass/host/internal/hostapi"
	"github.com/omni-glass/host/internal/llm"
	"github.com/omni-glass/host/internal/llm/providers"
	"github.com/omni-glass/host/internal/manifest"
	"github.com/omni-glass/host/internal/mcp"
	"github.com/omni-glass/host/internal/pipeline"
	"github.com/omni-glass/host/internal/registry"
)

func runServe(cmd *cobra.Command, configPath string, debug bool) error {
	if debug {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	logger := slog.Default()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	auditLogger, err := audit.NewLogger(audit.Config{
		Enabled: true,
		Level:   audit.Level(cfg.Logging.Level),
		Format:  audit.FormatJSON,
		Output:  "stderr",
	})
	if err != nil {
		return fmt.Errorf("start audit logger: %w", err)
	}
	defer auditLogger.Close()

	provider, err := buildProvider(cfg.LLM)
	if err != nil {
		return fmt.Errorf("configure llm provider: %w", err)
	}
	logger.Info("llm provider configured", "provider", provider.Label(), "remote", provider.IsRemote())

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mcpManager := mcp.NewManager(&cfg.Plugins.MCP, logger)
	if err := mcpManager.Start(ctx); err != nil {
		logger.Warn("mcp manager start reported an error", "error", err)
	}
	defer mcpManager.Stop()

	reg := registry.New(mcp.NewRegistryCaller(mcpManager))
	for _, schema := range mcpManager.ToolSchemas() {
		if err := reg.RegisterPluginTool(schema.PluginID, schema.Name, schema.Description, schema.InputSchema); err != nil {
			logger.Warn("plugin tool rejected", "plugin", schema.PluginID, "tool", schema.Name, "error", err)
		}
	}

	approvalsDir, err := approvalsDirFor(configPath)
	if err != nil {
		return fmt.Errorf("resolve approvals directory: %w", err)
	}
	approvals := manifest.NewApprovalStore(approvalsDir)

	watcher := manifest.NewWatcher(cfg.Plugins.Directories, logger)
	go func() {
		if err := watcher.Run(ctx, func() {
			logger.Info("plugin manifests changed, re-evaluating approvals")
		}); err != nil && ctx.Err() == nil {
			logger.Warn("manifest watcher stopped", "error", err)
		}
	}()

	reauditor := manifest.NewReauditor(cfg.Plugins.Directories, approvals, logger, func(pluginID string) {
		logger.Warn("plugin approval is stale", "plugin_id", pluginID)
	})
	if err := reauditor.Start(cfg.Plugins.ReauditCron); err != nil {
		logger.Warn("reaudit schedule rejected", "error", err)
	}
	defer reauditor.Stop()

	dispatcher := dispatch.New(logger, auditLogger)
	lineWriter := hostapi.NewLineWriter(os.Stdout)
	publisher := hostapi.NewStdioPublisher(lineWriter)
	orchestrator := pipeline.New(provider, reg, publisher, auditLogger)

	server := hostapi.NewServer(hostapi.Config{
		Orchestrator: orchestrator,
		Dispatcher:   dispatcher,
		Approvals:    approvals,
		PluginDirs:   cfg.Plugins.Directories,
		OCR:          unavailableOCR,
		Clipboard:    clipboardWriter{},
		Files:        diskFileWriter{},
		Providers:    newConfigProviderManager(configPath, cfg),
	})

	logger.Info("omni-glass host ready", "config", configPath)
	return serveStdio(ctx, server, lineWriter)
}

// serveStdio reads one JSON-RPC request per line from stdin until EOF,
// the context is cancelled, or a line fails to parse, writing each
// response through lw.
func serveStdio(ctx context.Context, server *hostapi.Server, lw *hostapi.LineWriter) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req mcp.JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			lw.WriteJSON(mcp.JSONRPCResponse{
				JSONRPC: "2.0",
				Error:   &mcp.JSONRPCError{Code: mcp.ErrCodeParseError, Message: err.Error()},
			})
			continue
		}

		resp := server.Handle(ctx, req)
		if err := lw.WriteJSON(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}

func buildProvider(cfg config.LLMConfig) (llm.Provider, error) {
	pc, ok := cfg.Providers[cfg.ActiveProvider]
	if !ok {
		return nil, fmt.Errorf("no provider config for active_provider %q", cfg.ActiveProvider)
	}

	switch cfg.ActiveProvider {
	case "anthropic":
		return providers.NewAnthropicProvider(providers.AnthropicConfig{
			APIKey:       resolveAPIKey(pc),
			BaseURL:      pc.BaseURL,
			DefaultModel: pc.DefaultModel,
		})
	case "openai":
		return providers.NewOpenAIProvider(providers.OpenAIConfig{
			APIKey:       resolveAPIKey(pc),
			DefaultModel: pc.DefaultModel,
		})
	case "local":
		return providers.NewLocalProvider(providers.LocalConfig{
			BaseURL:      pc.BaseURL,
			DefaultModel: pc.DefaultModel,
			Timeout:      60 * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want anthropic, openai, or local)", cfg.ActiveProvider)
	}
}

// resolveAPIKey prefers a key saved directly through save_api_key over
// the api_key_env indirection, since a key the UI just saved should
// take effect without the user also having to export it into the
// process environment.
func resolveAPIKey(pc config.LLMProviderConfig) string {
	if pc.APIKey != "" {
		return pc.APIKey
	}
	return os.Getenv(pc.APIKeyEnv)
}

func approvalsDirFor(configPath string) (string, error) {
	dir := filepath.Join(filepath.Dir(configPath), ".omni-glass")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// unavailableOCR stands in for the platform capture collaborator: OCR
// is an external dependency of this core, never implemented here.
func unavailableOCR(ctx context.Context) (string, float64, pipeline.RecognitionLevel, error) {
	return "", 0, "", fmt.Errorf("no OCR collaborator is wired into this host process")
}

// clipboardWriter implements hostapi.ClipboardWriter against the OS
// clipboard.
type clipboardWriter struct{}

func (clipboardWriter) WriteClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// diskFileWriter implements hostapi.FileWriter against the local
// filesystem.
type diskFileWriter struct{}

func (diskFileWriter) WriteToDesktop(filename, content string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	desktop := filepath.Join(home, "Desktop")
	if err := os.MkdirAll(desktop, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(desktop, filepath.Base(filename))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (diskFileWriter) WriteToPath(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
