package textutil

import "strings"

// SanitizeSegment makes value safe to use as a single path segment. Path
// separators and other unsafe characters become dashes, and the dot-only
// names "." and ".." are rejected by returning "".
func SanitizeSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r < ' ', r == 0x7f:
			continue
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if strings.Trim(out, ".") == "" {
		return ""
	}
	return out
}
