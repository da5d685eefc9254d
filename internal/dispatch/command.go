package dispatch

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"time"

	"github.com/omni-glass/host/internal/shell"
)

// commandTimeout bounds a confirmed command's run time. The blocklist
// stops the obviously destructive cases; this stops one that merely
// never returns.
const commandTimeout = 2 * time.Minute

// CommandRunResult is the outcome of a confirmed command run.
type CommandRunResult struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	ExitSignal string
}

func (d *Dispatcher) spawn(ctx context.Context, sessionID, command string) (CommandRunResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	name, args := shellInvocation(command)
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Stdin = nil

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	session := &shell.ProcessSession{
		ID:        sessionID,
		Command:   command,
		StartedAt: time.Now(),
	}
	d.processes.AddSession(session)

	err := cmd.Run()

	exitCode := 0
	exitSignal := ""
	status := shell.ProcessStatusCompleted
	if err != nil {
		status = shell.ProcessStatusFailed
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	d.processes.AppendOutput(session, "stdout", stdout.String())
	d.processes.AppendOutput(session, "stderr", stderr.String())
	d.processes.MarkExited(session, &exitCode, exitSignal, status)

	result := CommandRunResult{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		ExitCode:   exitCode,
		ExitSignal: exitSignal,
	}

	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return result, nil
		}
		return result, err
	}
	return result, nil
}

// shellInvocation wraps command in the platform shell's -c/-C form
// rather than splitting it into argv: the LLM produces ordinary shell
// syntax (pipes, redirects, quoting) that only a shell interpreter
// understands correctly.
func shellInvocation(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", command}
	}
	return "/bin/sh", []string{"-c", command}
}
