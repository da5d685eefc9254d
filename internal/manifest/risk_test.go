package manifest

import (
	"testing"

	"github.com/omni-glass/host/pkg/pluginsdk"
)

func TestComputeRiskLow(t *testing.T) {
	if got := ComputeRisk(pluginsdk.Permissions{}); got != RiskLow {
		t.Errorf("ComputeRisk(empty) = %v, want low", got)
	}
}

func TestComputeRiskMediumClipboard(t *testing.T) {
	if got := ComputeRisk(pluginsdk.Permissions{Clipboard: true}); got != RiskMedium {
		t.Errorf("ComputeRisk(clipboard) = %v, want medium", got)
	}
}

func TestComputeRiskMediumNetwork(t *testing.T) {
	perm := pluginsdk.Permissions{Network: []string{"api.example.com"}}
	if got := ComputeRisk(perm); got != RiskMedium {
		t.Errorf("ComputeRisk(network) = %v, want medium", got)
	}
}

func TestComputeRiskHighShell(t *testing.T) {
	perm := pluginsdk.Permissions{Shell: []string{"git"}}
	if got := ComputeRisk(perm); got != RiskHigh {
		t.Errorf("ComputeRisk(shell) = %v, want high", got)
	}
}

func TestComputeRiskHighNetworkWildcard(t *testing.T) {
	perm := pluginsdk.Permissions{Network: []string{"*"}}
	if got := ComputeRisk(perm); got != RiskHigh {
		t.Errorf("ComputeRisk(wildcard) = %v, want high", got)
	}
}

func TestComputeRiskHighWriteOutsideDocuments(t *testing.T) {
	perm := pluginsdk.Permissions{
		Filesystem: []pluginsdk.FilesystemAccess{{Path: "/etc", Access: "read-write"}},
	}
	if got := ComputeRisk(perm); got != RiskHigh {
		t.Errorf("ComputeRisk(write outside documents) = %v, want high", got)
	}
}

func TestComputeRiskMediumWriteInsideDocuments(t *testing.T) {
	perm := pluginsdk.Permissions{
		Filesystem: []pluginsdk.FilesystemAccess{{Path: "~/Documents/notes", Access: "read-write"}},
	}
	if got := ComputeRisk(perm); got == RiskHigh {
		t.Errorf("ComputeRisk(write inside documents) = %v, should not be high", got)
	}
}

func TestComputeRiskHighSecretEnvVars(t *testing.T) {
	perm := pluginsdk.Permissions{Environment: []string{"OPENAI_API_KEY", "DEBUG", "VERBOSE"}}
	if got := ComputeRisk(perm); got != RiskHigh {
		t.Errorf("ComputeRisk(secret env vars) = %v, want high", got)
	}
}

func TestComputeRiskMediumFewEnvVars(t *testing.T) {
	perm := pluginsdk.Permissions{Environment: []string{"OPENAI_API_KEY"}}
	if got := ComputeRisk(perm); got != RiskMedium {
		t.Errorf("ComputeRisk(one secret-like env var) = %v, want medium (needs >2 vars)", got)
	}
}
