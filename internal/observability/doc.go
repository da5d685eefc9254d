// Package observability provides structured logging for the omni-glass host.
//
// Logging is built on Go's slog package with two additions the host
// relies on throughout the action pipeline:
//
//   - automatic correlation of log records with the session and plugin
//     that produced them, via context-carried IDs;
//   - redaction of obvious secrets (API keys, bearer tokens, JWTs) before
//     a record is written, as a second line of defense on top of the
//     safety package's outbound-prompt redaction.
//
// Example usage:
//
//	logger := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	ctx := observability.AddSessionID(context.Background(), sessionID)
//	ctx = observability.AddPluginID(ctx, "com.example.csvtools")
//	logger.Info(ctx, "tool dispatched", "tool", "export_csv")
package observability
