package manifest

import (
	"os"
	"runtime"

	"github.com/omni-glass/host/pkg/pluginsdk"
)

// baseWhitelist names the environment variables every plugin process
// inherits regardless of its declared permissions.
func baseWhitelist() []string {
	if runtime.GOOS == "windows" {
		return []string{"PATH", "USERPROFILE", "TEMP", "TMP", "SYSTEMROOT"}
	}
	return []string{"PATH", "HOME", "TMPDIR"}
}

// FilterEnv builds the environment a plugin process should be spawned
// with: the fixed whitelist plus exactly the variable names the
// manifest's environment permission lists, read from the host's own
// environment. Every other variable the host holds — including any API
// keys — is stripped.
func FilterEnv(m *pluginsdk.Manifest) []string {
	names := make([]string, 0, len(baseWhitelist())+len(m.Permissions.Environment))
	seen := map[string]bool{}

	for _, name := range baseWhitelist() {
		names = append(names, name)
		seen[name] = true
	}
	for _, name := range m.Permissions.Environment {
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	env := make([]string, 0, len(names))
	for _, name := range names {
		if value, ok := os.LookupEnv(name); ok {
			env = append(env, name+"="+value)
		}
	}
	return env
}
