// Package dispatch routes a completed action.Result by its ResultBody
// kind to the handler appropriate for that kind, and mediates the
// second blocklist check and confirmed run of a command result.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omni-glass/host/internal/action"
	"github.com/omni-glass/host/internal/audit"
	"github.com/omni-glass/host/internal/safety"
	"github.com/omni-glass/host/internal/shell"
)

// Dispatcher routes action.Result values to their kind-specific
// handling and owns the bookkeeping of command runs the user has
// confirmed.
type Dispatcher struct {
	processes *shell.ProcessRegistry
	logger    *audit.Logger
}

// New builds a Dispatcher. auditLogger may be nil, in which case command
// runs are not separately audited beyond the pipeline's own logging.
func New(logger *slog.Logger, auditLogger *audit.Logger) *Dispatcher {
	return &Dispatcher{
		processes: shell.NewProcessRegistry(logger),
		logger:    auditLogger,
	}
}

// TextDispatch is the UI-facing shape of a text result.
type TextDispatch struct {
	Body       string
	FixSnippet string
	HasFix     bool
}

// FileOffer is the UI-facing shape of a file result.
type FileOffer struct {
	Filename string
	Content  string
	MimeType string
}

// CommandConfirmation is what the confirmation modal displays before the
// user decides to run or cancel a command result.
type CommandConfirmation struct {
	Command   string
	Rationale string
}

// ErrWrongKind is returned when a Dispatch* call is made against a
// result whose Kind does not match.
var ErrWrongKind = fmt.Errorf("result_body kind does not match the requested dispatch")

// DispatchText extracts the display body and, if present, the content
// of the first fenced code block for a dedicated "copy the fix" button.
func DispatchText(result action.Result) (TextDispatch, error) {
	if result.ResultBody.Kind != action.ResultText {
		return TextDispatch{}, ErrWrongKind
	}
	body := result.ResultBody.Text
	snippet, ok := firstFencedBlock(body)
	return TextDispatch{Body: body, FixSnippet: snippet, HasFix: ok}, nil
}

// DispatchFile prepares a save-dialog offer for a file result.
func DispatchFile(result action.Result) (FileOffer, error) {
	if result.ResultBody.Kind != action.ResultFile {
		return FileOffer{}, ErrWrongKind
	}
	return FileOffer{
		Filename: result.ResultBody.Filename,
		Content:  result.ResultBody.Content,
		MimeType: result.ResultBody.MimeType,
	}, nil
}

// DispatchClipboard returns the text to copy silently for a clipboard
// result.
func DispatchClipboard(result action.Result) (string, error) {
	if result.ResultBody.Kind != action.ResultClipboard {
		return "", ErrWrongKind
	}
	return result.ResultBody.Clipboard, nil
}

// PrepareCommand returns the confirmation modal's contents for a command
// result. The orchestrator has already run the blocklist once; this does
// not check it again — that happens only at RunConfirmedCommand, right
// before the shell is spawned.
func PrepareCommand(result action.Result) (CommandConfirmation, error) {
	if result.ResultBody.Kind != action.ResultCommand {
		return CommandConfirmation{}, ErrWrongKind
	}
	return CommandConfirmation{
		Command:   result.ResultBody.Command,
		Rationale: result.ResultBody.Rationale,
	}, nil
}

// RunConfirmedCommand re-checks the blocklist and, on pass, spawns a
// shell to run command, capturing stdout and stderr separately and
// never attaching an interactive terminal. sessionID keys the audit
// trail and the process registry entry.
func (d *Dispatcher) RunConfirmedCommand(ctx context.Context, sessionID, command string) (CommandRunResult, error) {
	check := safety.Check(command)
	if !check.Safe {
		d.logDenied(ctx, sessionID, command, check.Reason)
		return CommandRunResult{}, fmt.Errorf("command blocked: %s", check.Reason)
	}
	return d.spawn(ctx, sessionID, command)
}

func (d *Dispatcher) logDenied(ctx context.Context, sessionID, command, reason string) {
	if d.logger == nil {
		return
	}
	d.logger.LogToolDenied(ctx, "run_confirmed_command", command, reason, "blocklist", sessionID)
}
