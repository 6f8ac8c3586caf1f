package traversal_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/temirov/snapshot/internal/filter"
	"github.com/temirov/snapshot/internal/traversal"
	"github.com/temirov/snapshot/internal/types"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func collectEntries(t *testing.T, traverser *traversal.Traverser, root string) []types.TraversalEntry {
	t.Helper()
	var entries []types.TraversalEntry
	err := traverser.Walk(root, func(entry types.TraversalEntry) error {
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk error: %v", err)
	}
	return entries
}

func TestWalkVisitsDirectoriesInPreOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), "b")
	writeFile(t, filepath.Join(root, "A.txt"), "a")
	writeFile(t, filepath.Join(root, "beta", "inner", "deep.txt"), "deep")
	writeFile(t, filepath.Join(root, "alpha", "one.txt"), "one")

	entries := collectEntries(t, traversal.New(nil, nil), root)

	var keys []string
	for _, entry := range entries {
		keys = append(keys, entry.RelativeKey)
	}
	separator := string(os.PathSeparator)
	expectedKeys := []string{
		".",
		"." + separator + "alpha",
		"." + separator + "beta",
		"." + separator + "beta" + separator + "inner",
	}
	if !reflect.DeepEqual(keys, expectedKeys) {
		t.Fatalf("unexpected order: got %v want %v", keys, expectedKeys)
	}
	if !reflect.DeepEqual(entries[0].Files, []string{"A.txt", "b.txt"}) {
		t.Fatalf("expected byte-ordered files, got %v", entries[0].Files)
	}
	expectedDepths := []int{0, 1, 1, 2}
	for index, entry := range entries {
		if entry.Depth != expectedDepths[index] {
			t.Fatalf("entry %s: expected depth %d, got %d", entry.RelativeKey, expectedDepths[index], entry.Depth)
		}
	}
	if entries[3].Path != root+separator+"beta"+separator+"inner" {
		t.Fatalf("unexpected path %s", entries[3].Path)
	}
	if entries[3].RelativePath != filepath.Join("beta", "inner") {
		t.Fatalf("unexpected relative path %s", entries[3].RelativePath)
	}
}

func TestWalkPrunesIgnoredSubtrees(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "main.js"), "code")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "dep")
	writeFile(t, filepath.Join(root, "outlet", "shop.js"), "shop")
	writeFile(t, filepath.Join(root, "layout.js"), "layout")

	pathFilter := filter.New(filter.Rules{Patterns: []string{"node_modules", "out"}})
	entries := collectEntries(t, traversal.New(pathFilter, nil), root)

	for _, entry := range entries {
		if strings.Contains(entry.RelativeKey, "node_modules") || strings.Contains(entry.RelativeKey, "outlet") {
			t.Fatalf("ignored directory %s was visited", entry.RelativeKey)
		}
	}
	if len(entries) != 2 {
		t.Fatalf("expected root and src entries, got %d", len(entries))
	}
	if len(entries[0].Files) != 0 {
		t.Fatalf("expected layout.js to be excluded by substring, got %v", entries[0].Files)
	}
}

func TestWalkIgnoresAncestorsOfRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "build", "project")
	writeFile(t, filepath.Join(root, "file.txt"), "content")

	pathFilter := filter.New(filter.Rules{Patterns: []string{"build"}})
	entries := collectEntries(t, traversal.New(pathFilter, nil), root)
	if len(entries) != 1 || !reflect.DeepEqual(entries[0].Files, []string{"file.txt"}) {
		t.Fatalf("expected root to be walked despite ancestor match, got %+v", entries)
	}
}

func TestWalkSkipsLinksToDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real", "file.txt"), "content")
	writeFile(t, filepath.Join(root, "target.txt"), "target")
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "linked")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "target.txt"), filepath.Join(root, "alias.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	entries := collectEntries(t, traversal.New(nil, nil), root)
	if len(entries) != 2 {
		t.Fatalf("expected root and real entries, got %d", len(entries))
	}
	if !reflect.DeepEqual(entries[0].Files, []string{"alias.txt", "target.txt"}) {
		t.Fatalf("unexpected root files %v", entries[0].Files)
	}
}

func TestWalkExcludeFilesOmitsOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), "keep")
	outputPath := filepath.Join(root, "snapshot.txt")
	writeFile(t, outputPath, "")

	entries := collectEntries(t, traversal.New(nil, nil).ExcludeFiles(outputPath), root)
	if !reflect.DeepEqual(entries[0].Files, []string{"keep.txt"}) {
		t.Fatalf("expected output file to be omitted, got %v", entries[0].Files)
	}
}

func TestWalkRootErrors(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "file.txt")
	writeFile(t, filePath, "content")

	testCases := []struct {
		name string
		root string
	}{
		{name: "missing", root: filepath.Join(root, "missing")},
		{name: "not_directory", root: filePath},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			visited := false
			err := traversal.New(nil, nil).Walk(testCase.root, func(types.TraversalEntry) error {
				visited = true
				return nil
			})
			if err == nil {
				t.Fatalf("expected an error for %s", testCase.root)
			}
			if visited {
				t.Fatalf("visitor must not run for an invalid root")
			}
		})
	}
}

func TestWalkStopsOnVisitorError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "file.txt"), "content")
	writeFile(t, filepath.Join(root, "b", "file.txt"), "content")

	stopError := errors.New("stop")
	visits := 0
	err := traversal.New(nil, nil).Walk(root, func(types.TraversalEntry) error {
		visits++
		if visits == 2 {
			return stopError
		}
		return nil
	})
	if !errors.Is(err, stopError) {
		t.Fatalf("expected visitor error, got %v", err)
	}
	if visits != 2 {
		t.Fatalf("expected walk to stop after 2 visits, got %d", visits)
	}
}

func TestWalkWarnsAboutUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	lockedDirectory := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(lockedDirectory, "file.txt"), "content")
	writeFile(t, filepath.Join(root, "open", "file.txt"), "content")
	if err := os.Chmod(lockedDirectory, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(lockedDirectory, 0o755) })

	var warnings []string
	traverser := traversal.New(nil, func(message string) { warnings = append(warnings, message) })
	entries := collectEntries(t, traverser, root)
	if len(entries) != 2 {
		t.Fatalf("expected root and open entries, got %d", len(entries))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "locked") {
		t.Fatalf("expected one warning about locked, got %v", warnings)
	}
}

func TestJoinPathAndTrimTrailingSeparators(t *testing.T) {
	separator := string(os.PathSeparator)
	if got := traversal.JoinPath(".", "a"); got != "."+separator+"a" {
		t.Fatalf("JoinPath kept no dot prefix: %s", got)
	}
	if got := traversal.JoinPath(separator, "a"); got != separator+"a" {
		t.Fatalf("JoinPath doubled separator: %s", got)
	}
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "", expected: "."},
		{input: separator, expected: separator},
		{input: "project" + separator, expected: "project"},
		{input: "." + separator + separator, expected: "."},
		{input: "a" + separator + "b", expected: "a" + separator + "b"},
	}
	for _, testCase := range testCases {
		if got := traversal.TrimTrailingSeparators(testCase.input); got != testCase.expected {
			t.Fatalf("TrimTrailingSeparators(%q) = %q, expected %q", testCase.input, got, testCase.expected)
		}
	}
}
