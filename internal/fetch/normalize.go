package fetch

import "strings"

// invisibleChars are stripped before any scheme handling: BOM, zero-width
// space, and non-breaking space all show up in QR-sourced targets.
var invisibleChars = strings.NewReplacer("\ufeff", "", "\u200b", "", "\u00a0", "")

// NormalizeTarget cleans a raw fetch target. Invisible characters are
// removed, garbage before a scheme marker is cut away, file targets pass
// through untouched, and schemeless targets default to plain HTTP.
func NormalizeTarget(raw string) string {
	u := strings.TrimSpace(invisibleChars.Replace(raw))
	if u == "" {
		return u
	}
	low := strings.ToLower(u)
	for _, scheme := range []string{"http://", "https://", "file://"} {
		if idx := strings.Index(low, scheme); idx > 0 {
			u = u[idx:]
			break
		}
	}
	if strings.HasPrefix(u, "file://") {
		return u
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "http://" + u
	}
	return u
}

// IsFileTarget reports whether the normalized target refers to a local file.
func IsFileTarget(target string) bool {
	return strings.HasPrefix(target, "file://")
}
