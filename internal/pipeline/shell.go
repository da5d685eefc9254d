package pipeline

import (
	"os"
	"path/filepath"
)

// shellFromEnv reads the user's configured shell from $SHELL, returning
// just the executable name (e.g. "zsh", not "/bin/zsh"). Empty on
// platforms without $SHELL, notably Windows.
func shellFromEnv() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return ""
	}
	return filepath.Base(shell)
}
