// Package traversal walks a root directory top-down and yields filtered traversal entries.
package traversal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/snapshot/internal/filter"
	"github.com/temirov/snapshot/internal/types"
)

const (
	pathSeparator = string(os.PathSeparator)

	errorAccessRootFormat    = "accessing root %s: %w"
	errorRootNotDirectory    = "root %s is not a directory"
	errorReadDirectoryFormat = "reading directory %s: %w"
	warningSkipSubdirFormat  = "Warning: skipping directory %s: %v"
)

// Visitor receives each traversal entry. A returned error stops the walk.
type Visitor func(entry types.TraversalEntry) error

// Traverser performs a deterministic depth-first pre-order walk.
type Traverser struct {
	filter        *filter.Filter
	warn          func(message string)
	excludedFiles map[string]struct{}
}

// New constructs a Traverser. A nil warn discards warnings about skipped directories.
func New(pathFilter *filter.Filter, warn func(message string)) *Traverser {
	if pathFilter == nil {
		pathFilter = filter.New(filter.Rules{})
	}
	if warn == nil {
		warn = func(string) {}
	}
	return &Traverser{filter: pathFilter, warn: warn, excludedFiles: map[string]struct{}{}}
}

// ExcludeFiles omits the given files regardless of rules, e.g. the snapshot being written.
func (traverser *Traverser) ExcludeFiles(paths ...string) *Traverser {
	for _, path := range paths {
		absolutePath, absoluteError := filepath.Abs(path)
		if absoluteError != nil {
			continue
		}
		traverser.excludedFiles[absolutePath] = struct{}{}
	}
	return traverser
}

func (traverser *Traverser) isExcludedFile(path string) bool {
	if len(traverser.excludedFiles) == 0 {
		return false
	}
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return false
	}
	_, excluded := traverser.excludedFiles[absolutePath]
	return excluded
}

type directoryNode struct {
	path         string
	relativeKey  string
	relativePath string
	name         string
	depth        int
}

// Walk visits root and every non-excluded directory beneath it. Within one
// directory files are sorted in byte order, and subdirectories are descended
// in byte order after the directory's own entry has been visited.
//
// An inaccessible root is returned as an error. Descendant directories that
// cannot be listed are skipped and reported through the warn callback.
func (traverser *Traverser) Walk(root string, visit Visitor) error {
	if visit == nil {
		return errors.New("traversal visitor is nil")
	}
	displayRoot := TrimTrailingSeparators(root)
	rootInfo, statError := os.Stat(displayRoot)
	if statError != nil {
		return fmt.Errorf(errorAccessRootFormat, displayRoot, statError)
	}
	if !rootInfo.IsDir() {
		return fmt.Errorf(errorRootNotDirectory, displayRoot)
	}
	rootNode := directoryNode{
		path:         displayRoot,
		relativeKey:  types.RootDirectoryKey,
		relativePath: types.RootDirectoryKey,
		name:         filepath.Base(displayRoot),
		depth:        0,
	}
	return traverser.walkDirectory(rootNode, visit)
}

func (traverser *Traverser) walkDirectory(directory directoryNode, visit Visitor) error {
	isRoot := directory.depth == 0
	if traverser.filter.ExcludesDirectory(directory.relativeKey, directory.name, isRoot) {
		return nil
	}

	// os.ReadDir returns entries sorted by name.
	directoryEntries, readError := os.ReadDir(directory.path)
	if readError != nil {
		if isRoot {
			return fmt.Errorf(errorReadDirectoryFormat, directory.path, readError)
		}
		traverser.warn(fmt.Sprintf(warningSkipSubdirFormat, directory.path, readError))
		return nil
	}

	var fileNames []string
	var subdirectories []directoryNode
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		childPath := JoinPath(directory.path, entryName)
		childKey := directory.relativeKey + pathSeparator + entryName
		if directoryEntry.IsDir() {
			subdirectories = append(subdirectories, directoryNode{
				path:         childPath,
				relativeKey:  childKey,
				relativePath: filepath.Join(directory.relativePath, entryName),
				name:         entryName,
				depth:        directory.depth + 1,
			})
			continue
		}
		if isDirectoryLink(directoryEntry, childPath) {
			continue
		}
		if traverser.filter.ExcludesFile(childKey, entryName) || traverser.isExcludedFile(childPath) {
			continue
		}
		fileNames = append(fileNames, entryName)
	}

	visitError := visit(types.TraversalEntry{
		Path:         directory.path,
		RelativeKey:  directory.relativeKey,
		RelativePath: directory.relativePath,
		Name:         directory.name,
		Depth:        directory.depth,
		Files:        fileNames,
	})
	if visitError != nil {
		return visitError
	}

	for _, subdirectory := range subdirectories {
		if walkError := traverser.walkDirectory(subdirectory, visit); walkError != nil {
			return walkError
		}
	}
	return nil
}

// isDirectoryLink reports whether the entry is a symbolic link resolving to a
// directory. Such links are neither followed nor listed as files.
func isDirectoryLink(directoryEntry fs.DirEntry, path string) bool {
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := os.Stat(path)
	return statError == nil && targetInfo.IsDir()
}

// JoinPath appends name to parent with the OS separator without cleaning the
// result, so a root of "." yields "./name".
func JoinPath(parent string, name string) string {
	if strings.HasSuffix(parent, pathSeparator) {
		return parent + name
	}
	return parent + pathSeparator + name
}

// TrimTrailingSeparators removes trailing separators while keeping a bare filesystem root intact.
func TrimTrailingSeparators(path string) string {
	trimmed := strings.TrimRight(path, pathSeparator)
	if trimmed == "" && path != "" {
		return pathSeparator
	}
	if trimmed == "" {
		return types.RootDirectoryKey
	}
	return trimmed
}
