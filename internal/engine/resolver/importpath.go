package resolver

import (
	"slices"
	"strings"
	"unicode"
)

// Separator joins import path segments.
const Separator = "::"

// StdlibPrefix routes an import to the standard library root.
const StdlibPrefix = "stdlib"

var reservedPrefixes = []string{StdlibPrefix, "std", "core", "kosha"}

// IsStdlibImport reports whether path starts with a reserved library prefix.
func IsStdlibImport(path []string) bool {
	return len(path) > 0 && slices.Contains(reservedPrefixes, path[0])
}

// ParseImportPath splits "a::b::c" into segments. Segments are trimmed and
// must be identifiers.
func ParseImportPath(text string) ([]string, error) {
	if text == "" {
		return nil, &InvalidPathError{Input: text, Reason: "empty path"}
	}

	parts := strings.Split(text, Separator)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			return nil, &InvalidPathError{Input: text, Reason: "empty segment"}
		}
		if !isValidIdentifier(segment) {
			return nil, &InvalidPathError{Input: text, Reason: "invalid identifier '" + segment + "'"}
		}
		segments = append(segments, segment)
	}
	return segments, nil
}

func isValidIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 {
			if r != '_' && !isAlphabetic(r) {
				return false
			}
			continue
		}
		if r != '_' && !isAlphabetic(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return s != ""
}

// isAlphabetic accepts letters plus the combining vowel signs of scripts such
// as Devanagari.
func isAlphabetic(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Nl, r) || unicode.Is(unicode.Other_Alphabetic, r)
}

func JoinPath(path []string) string {
	return strings.Join(path, Separator)
}

// ParentPath drops the last segment. The parent of a single segment is empty.
func ParentPath(path []string) []string {
	if len(path) <= 1 {
		return []string{}
	}
	return slices.Clone(path[:len(path)-1])
}

// PathName returns the last segment.
func PathName(path []string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	return path[len(path)-1], true
}

// IsPathPrefix reports whether prefix is a leading run of path.
func IsPathPrefix(prefix, path []string) bool {
	return len(prefix) <= len(path) && slices.Equal(prefix, path[:len(prefix)])
}

// RelativeTo strips base from the front of path.
func RelativeTo(path, base []string) ([]string, bool) {
	if !IsPathPrefix(base, path) {
		return nil, false
	}
	return slices.Clone(path[len(base):]), true
}
