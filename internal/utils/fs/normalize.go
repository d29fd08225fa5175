// Package fs contains filesystem helpers for safe path construction and durable writes.
package fs

import (
	"path/filepath"
	"strings"
	"unicode"
)

// invalidPathChars are characters stripped from path components.
const invalidPathChars = `<>:"/\|?*`

// SanitizePathComponent strips characters unsafe for a single path component
// and trims trailing dots and spaces.
func SanitizePathComponent(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		if strings.ContainsRune(invalidPathChars, r) || unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}

	out := strings.TrimSpace(b.String())
	out = strings.TrimRight(out, ". ")
	return out
}

// TruncateComponent limits a path component to maxLen runes.
func TruncateComponent(name string, maxLen int) string {
	if maxLen <= 0 {
		return name
	}
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return strings.TrimSpace(string(runes[:maxLen]))
}

// TruncateFilenamePreserveExt limits a file name to maxLen runes while
// keeping its extension intact.
func TruncateFilenamePreserveExt(name string, maxLen int) string {
	if maxLen <= 0 {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	extRunes := []rune(ext)
	if len(extRunes) >= maxLen {
		// Pathological extension, fall back to a plain cut.
		return TruncateComponent(name, maxLen)
	}

	stemRunes := []rune(stem)
	budget := maxLen - len(extRunes)
	if len(stemRunes) > budget {
		stem = strings.TrimSpace(string(stemRunes[:budget]))
	}
	return stem + ext
}
