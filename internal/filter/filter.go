// Package filter decides which directories and files are excluded from a snapshot.
//
// Patterns are plain substrings, not globs or path segments: the pattern "out"
// excludes a directory named "outlet" as well as "out".
package filter

import (
	"path/filepath"
	"strings"
)

// Rules is the immutable rule set consulted during one run.
type Rules struct {
	// Patterns are substrings; any occurrence in a relative key excludes the path.
	Patterns []string
	// DirectoryNames prune non-root directories whose base name matches exactly.
	DirectoryNames []string
	// FileNames exclude files whose name matches exactly.
	FileNames []string
	// Extensions, when non-empty, is the allow-list of extensions including the leading dot.
	Extensions []string
}

// Filter evaluates Rules against traversal paths.
type Filter struct {
	patterns       []string
	directoryNames map[string]struct{}
	fileNames      map[string]struct{}
	extensions     map[string]struct{}
}

// New builds a Filter from rules. Empty patterns are dropped since they would match everything.
func New(rules Rules) *Filter {
	filter := &Filter{
		directoryNames: toSet(rules.DirectoryNames),
		fileNames:      toSet(rules.FileNames),
		extensions:     toSet(rules.Extensions),
	}
	for _, pattern := range rules.Patterns {
		if pattern == "" {
			continue
		}
		filter.patterns = append(filter.patterns, pattern)
	}
	return filter
}

// IsIgnored reports whether any pattern occurs as a contiguous substring of pathOrName.
func (filter *Filter) IsIgnored(pathOrName string) bool {
	for _, pattern := range filter.patterns {
		if strings.Contains(pathOrName, pattern) {
			return true
		}
	}
	return false
}

// ExcludesDirectory reports whether a directory and its whole subtree must be skipped.
// Exact directory-name rules never apply to the traversal root.
func (filter *Filter) ExcludesDirectory(relativeKey string, name string, isRoot bool) bool {
	if filter.IsIgnored(relativeKey) {
		return true
	}
	if isRoot {
		return false
	}
	_, listed := filter.directoryNames[name]
	return listed
}

// ExcludesFile reports whether a file is ineligible for output.
func (filter *Filter) ExcludesFile(relativeKey string, name string) bool {
	if filter.IsIgnored(relativeKey) {
		return true
	}
	if _, listed := filter.fileNames[name]; listed {
		return true
	}
	if len(filter.extensions) == 0 {
		return false
	}
	_, allowed := filter.extensions[Extension(name)]
	return !allowed
}

// Extension returns the extension of name including the dot. Leading dots are
// part of the name, so ".bashrc" has no extension while ".eslintrc.json" has ".json".
func Extension(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	if trimmed == "" {
		return ""
	}
	return filepath.Ext(trimmed)
}

// LanguageTag returns the fence language for name: its extension without the dot.
func LanguageTag(name string) string {
	return strings.TrimPrefix(Extension(name), ".")
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		set[value] = struct{}{}
	}
	return set
}
