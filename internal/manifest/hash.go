package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/omni-glass/host/pkg/pluginsdk"
)

// canonicalPermissions is a JSON-tag-ordered, slice-sorted view of
// Permissions so that two semantically identical permission blocks
// always serialise to the same bytes regardless of field or list order.
type canonicalPermissions struct {
	Clipboard   bool                         `json:"clipboard"`
	Network     []string                     `json:"network"`
	Filesystem  []pluginsdk.FilesystemAccess `json:"filesystem"`
	Environment []string                     `json:"environment"`
	Shell       []string                     `json:"shell"`
}

// PermissionsHash computes a stable SHA-256 digest over a canonical
// serialisation of perm. Plugin approvals are bound to this hash: a
// widened permission set produces a different hash and forfeits any
// existing approval.
func PermissionsHash(perm pluginsdk.Permissions) string {
	canon := canonicalPermissions{
		Clipboard:   perm.Clipboard,
		Network:     sortedCopy(perm.Network),
		Filesystem:  sortedFilesystem(perm.Filesystem),
		Environment: sortedCopy(perm.Environment),
		Shell:       sortedCopy(perm.Shell),
	}

	data, err := json.Marshal(canon)
	if err != nil {
		// Marshal of a struct with only strings, bools, and slices of
		// strings/structs never fails.
		panic(err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

func sortedFilesystem(in []pluginsdk.FilesystemAccess) []pluginsdk.FilesystemAccess {
	out := make([]pluginsdk.FilesystemAccess, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Access < out[j].Access
	})
	return out
}
