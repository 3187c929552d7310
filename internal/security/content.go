package security

import (
	"strings"

	"github.com/samber/lo"
)

var dangerousExtensions = []string{
	".exe", ".bat", ".cmd", ".com", ".pif", ".scr", ".vbs", ".js", ".jse",
	".wsf", ".wsh", ".ps1", ".psm1", ".sh", ".bash", ".csh", ".jar", ".app",
	".deb", ".rpm",
}

// IsAllowedMimeType reports whether mime passes the allow-list. An empty list
// accepts everything; entries match exactly or as "category/*". Matching is
// case-sensitive.
func IsAllowedMimeType(mime string, allowList []string) bool {
	if len(allowList) == 0 {
		return true
	}
	return lo.ContainsBy(allowList, func(allowed string) bool {
		if allowed == mime {
			return true
		}
		if category, ok := strings.CutSuffix(allowed, "/*"); ok {
			return strings.HasPrefix(mime, category+"/")
		}
		return false
	})
}

// IsDangerousExtension reports whether the last extension of name is an
// executable or script type. Names without an extension are never flagged.
func IsDangerousExtension(name string) bool {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return false
	}
	return lo.Contains(dangerousExtensions, strings.ToLower(name[dot:]))
}
