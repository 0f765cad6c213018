// Package guid recognises AAPB asset identifiers ("cpb-aacip-..." GUIDs) in
// file names, URLs, and other free-form strings.
package guid

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Prefix starts every AAPB GUID.
const Prefix = "cpb-aacip"

var guidPattern = regexp.MustCompile(`cpb-aacip[-_][a-z0-9-]+`)

// FromString returns the first AAPB GUID found in s. Trailing segments made
// only of letters, such as "-transcript", are treated as suffixes and
// dropped right to left. ok is false when s holds no GUID or when every
// segment is alphabetic.
func FromString(s string) (string, bool) {
	match := guidPattern.FindString(s)
	if match == "" {
		return "", false
	}
	end := len(match)
	for {
		start := strings.LastIndexFunc(match[:end], isSeparator) + 1
		if !isAlpha(match[start:end]) {
			break
		}
		if start == 0 {
			return "", false
		}
		end = start - 1
	}
	return match[:end], true
}

// FromPath extracts the GUID from the base name of path.
func FromPath(path string) (string, bool) {
	return FromString(filepath.Base(path))
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_'
}

// isAlpha reports whether token is non-empty and made only of ASCII letters.
func isAlpha(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
