package manifest

import (
	"os"
	"strings"
	"testing"

	"github.com/omni-glass/host/pkg/pluginsdk"
)

func TestFilterEnvStripsUnlistedVariables(t *testing.T) {
	os.Setenv("OMNI_GLASS_TEST_SECRET", "topsecret")
	defer os.Unsetenv("OMNI_GLASS_TEST_SECRET")

	m := &pluginsdk.Manifest{
		Permissions: pluginsdk.Permissions{Environment: []string{"NONEXISTENT_VAR"}},
	}

	env := FilterEnv(m)
	for _, kv := range env {
		if strings.HasPrefix(kv, "OMNI_GLASS_TEST_SECRET=") {
			t.Error("FilterEnv leaked a variable not in the manifest's environment permission")
		}
	}
}

func TestFilterEnvIncludesWhitelistedAndDeclared(t *testing.T) {
	os.Setenv("OMNI_GLASS_TEST_ALLOWED", "value")
	defer os.Unsetenv("OMNI_GLASS_TEST_ALLOWED")

	m := &pluginsdk.Manifest{
		Permissions: pluginsdk.Permissions{Environment: []string{"OMNI_GLASS_TEST_ALLOWED"}},
	}

	env := FilterEnv(m)
	var found bool
	for _, kv := range env {
		if kv == "OMNI_GLASS_TEST_ALLOWED=value" {
			found = true
		}
	}
	if !found {
		t.Error("expected the manifest-declared variable to be present")
	}
}
