// Package main provides the CLI entry point for the Omni-Glass host
// process: the two-phase CLASSIFY/EXECUTE action engine that turns a
// captured screen snip into a menu of offered actions and, on click,
// carries one out.
//
// Screen capture, OCR, and window rendering are external collaborators
// supplied by the platform-specific UI; this binary owns the pipeline
// orchestrator, the MCP plugin supervisor, the safety layer, and the
// host command surface those collaborators talk to.
//
// # Basic Usage
//
// Start the host loop, reading host commands as NDJSON on stdin and
// writing responses and pipeline events as NDJSON on stdout:
//
//	omni-glass serve --config omni-glass.yaml
//
// Manage plugin approvals:
//
//	omni-glass plugins list
//	omni-glass plugins approve com.example.csv-tools
//
// Run a one-shot configuration and plugin sanity check:
//
//	omni-glass doctor
//
// # Environment Variables
//
// Provider API keys are read from the environment variable named in
// each provider's api_key_env config entry, e.g.:
//
//   - ANTHROPIC_API_KEY
//   - OPENAI_API_KEY
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD) -X main.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "omni-glass",
		Short: "Omni-Glass desktop action engine host",
		Long: `Omni-Glass turns a screen snip into a menu of offered actions and, on
click, carries one out through a built-in handler or an MCP plugin.

Two LLM roles drive the pipeline: CLASSIFY proposes actions from OCR
text and structural heuristics, EXECUTE carries out the chosen one.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildServeCmd(),
		buildPluginsCmd(),
		buildAuditCmd(),
		buildDoctorCmd(),
		buildConfigCmd(),
	)
	return rootCmd
}

func defaultConfigPath() string {
	if path := os.Getenv("OMNI_GLASS_CONFIG"); path != "" {
		return path
	}
	return "omni-glass.yaml"
}
