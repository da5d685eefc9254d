package manifest

import (
	"regexp"
	"strings"

	"github.com/omni-glass/host/pkg/pluginsdk"
)

// RiskLevel classifies how much trust a plugin's declared permissions
// demand from the user before it is allowed to run.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var secretNamePattern = regexp.MustCompile(`(?i)(_KEY|_TOKEN|_SECRET)$`)

// ComputeRisk classifies a Permissions block into low, medium, or high.
func ComputeRisk(perm pluginsdk.Permissions) RiskLevel {
	if isHighRisk(perm) {
		return RiskHigh
	}
	if isMediumRisk(perm) {
		return RiskMedium
	}
	return RiskLow
}

func isHighRisk(perm pluginsdk.Permissions) bool {
	if len(perm.Shell) > 0 {
		return true
	}
	if hasNetworkWildcard(perm.Network) {
		return true
	}
	if hasWriteOutsideDocuments(perm.Filesystem) {
		return true
	}
	if len(perm.Environment) > 2 && hasSecretLikeName(perm.Environment) {
		return true
	}
	return false
}

func isMediumRisk(perm pluginsdk.Permissions) bool {
	if perm.Clipboard {
		return true
	}
	if len(perm.Network) > 0 {
		return true
	}
	if len(perm.Environment) > 0 {
		return true
	}
	for _, fs := range perm.Filesystem {
		if fs.Access == "read" {
			return true
		}
	}
	return false
}

func hasNetworkWildcard(hosts []string) bool {
	for _, h := range hosts {
		if h == "*" {
			return true
		}
	}
	return false
}

func hasWriteOutsideDocuments(fs []pluginsdk.FilesystemAccess) bool {
	for _, entry := range fs {
		if entry.Access != "read-write" {
			continue
		}
		if !isWithinDocuments(entry.Path) {
			return true
		}
	}
	return false
}

func isWithinDocuments(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	return strings.HasPrefix(normalized, "~/Documents") || strings.HasPrefix(normalized, "${HOME}/Documents")
}

func hasSecretLikeName(names []string) bool {
	for _, n := range names {
		if secretNamePattern.MatchString(n) {
			return true
		}
	}
	return false
}
