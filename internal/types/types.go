// Package types defines every cross‑package data structure used by the snapshot CLI.
package types

const (
	CommandTree          = "tree"
	CommandDocumentation = "docs"
	CommandInit          = "init"

	// RootDirectoryKey is the relative key of the traversal root.
	RootDirectoryKey = "."
)

// TraversalEntry is one visited directory together with its eligible files.
type TraversalEntry struct {
	// Path is the directory path joined onto the root as the caller supplied it.
	Path string
	// RelativeKey is "." for the root and "./a/b" style keys below it.
	RelativeKey string
	// RelativePath is the path relative to the root, "." for the root itself.
	RelativePath string
	Name         string
	Depth        int
	// Files holds eligible file names sorted in byte order.
	Files []string
}

// FileContent is the outcome of reading one file: either its text or the failure.
type FileContent struct {
	Path    string
	Content string
	Err     error
}

// Failed reports whether the file could not be read as text.
func (content FileContent) Failed() bool {
	return content.Err != nil
}
