package pack

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	maxNameRunes = 50
	fallbackName = "pack"
)

// SanitizeName turns a user-supplied title into a pack and file name. It
// normalizes to NFC, drops characters that are unsafe in file names along with
// control characters, trims surrounding space, and caps the length. An empty
// result falls back to "pack".
func SanitizeName(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`<>:"/\|?*`, r) {
			return -1
		}
		return r
	}, norm.NFC.String(raw))
	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) > maxNameRunes {
		cleaned = string(runes[:maxNameRunes])
	}
	if cleaned == "" {
		return fallbackName
	}
	return cleaned
}

// ArchiveName returns the file name for a sanitized pack name.
func ArchiveName(name string) string {
	return name + ".mcpack"
}
