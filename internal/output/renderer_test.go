package output_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/temirov/snapshot/internal/output"
	"github.com/temirov/snapshot/internal/traversal"
	"github.com/temirov/snapshot/internal/types"
	"github.com/temirov/snapshot/internal/utils"
)

var errStubRead = errors.New("boom")

func stubReader(contents map[string]string) output.ContentReader {
	return func(path string) types.FileContent {
		content, found := contents[path]
		if !found {
			return types.FileContent{Path: path, Err: errStubRead}
		}
		return types.FileContent{Path: path, Content: content}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func fixedTime() time.Time {
	return time.Date(2024, time.January, 2, 3, 4, 5, 0, time.Local)
}

func renderAll(t *testing.T, renderer output.StreamRenderer, entries []types.TraversalEntry) {
	t.Helper()
	for _, entry := range entries {
		if err := renderer.Handle(entry); err != nil {
			t.Fatalf("Handle error: %v", err)
		}
	}
	if err := renderer.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
}

func TestTreeRendererProducesStructureThenContents(t *testing.T) {
	subdirectoryPath := traversal.JoinPath(".", "sub")
	firstFile := traversal.JoinPath(".", "a.txt")
	secondFile := traversal.JoinPath(subdirectoryPath, "b.md")
	entries := []types.TraversalEntry{
		{Path: ".", RelativeKey: ".", RelativePath: ".", Name: ".", Depth: 0, Files: []string{"a.txt"}},
		{Path: subdirectoryPath, RelativeKey: subdirectoryPath, RelativePath: "sub", Name: "sub", Depth: 1, Files: []string{"b.md"}},
	}

	var buffer bytes.Buffer
	renderer := output.NewTreeRenderer(&buffer, output.Options{
		GeneratedAt: fixedTime(),
		Reader:      stubReader(map[string]string{firstFile: "alpha"}),
	})
	renderAll(t, renderer, entries)

	expected := "Project Structure Generated on 2024-01-02 03:04:05\n" +
		strings.Repeat("=", 80) + "\n\n" +
		"Directory Structure:\n" +
		strings.Repeat("-", 50) + "\n" +
		"├── ./\n" +
		"│   ├── a.txt\n" +
		"│   ├── sub/\n" +
		"│   │   ├── b.md\n" +
		"\n\nFile Contents:\n" +
		strings.Repeat("=", 80) + "\n" +
		"\n\nFile: " + firstFile + "\n" +
		strings.Repeat("-", 80) + "\n" +
		"alpha\n" +
		"\n\nError reading " + secondFile + ": boom\n"
	if buffer.String() != expected {
		t.Fatalf("unexpected tree output:\n%s\nexpected:\n%s", buffer.String(), expected)
	}
	if strings.Count(buffer.String(), secondFile) != 1 {
		t.Fatalf("expected failing file path to appear only in its error annotation")
	}
}

func TestTreeRendererEmptyWalkStillWritesSections(t *testing.T) {
	var buffer bytes.Buffer
	renderer := output.NewTreeRenderer(&buffer, output.Options{GeneratedAt: fixedTime()})
	if err := renderer.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	rendered := buffer.String()
	if !strings.HasPrefix(rendered, "Project Structure Generated on "+utils.FormatTimestamp(fixedTime())) {
		t.Fatalf("missing header: %q", rendered)
	}
	if !strings.HasSuffix(rendered, "\n\nFile Contents:\n"+strings.Repeat("=", 80)+"\n") {
		t.Fatalf("missing contents section: %q", rendered)
	}
}

func TestDocumentationRendererFramesFencedFiles(t *testing.T) {
	entries := []types.TraversalEntry{
		{Path: ".", RelativeKey: ".", RelativePath: ".", Name: ".", Depth: 0, Files: []string{"index.ts"}},
		{Path: traversal.JoinPath(".", "src"), RelativeKey: traversal.JoinPath(".", "src"), RelativePath: "src", Name: "src", Depth: 1, Files: []string{"app.jsx"}},
	}
	template := output.DocumentationTemplate{
		ProjectName:  "Demo",
		ProjectType:  "CLI",
		SetupSteps:   []string{"Install", "Run"},
		ResumePrompt: "Resume",
	}

	var buffer bytes.Buffer
	renderer := output.NewDocumentationRenderer(&buffer, output.Options{
		GeneratedAt: fixedTime(),
		Reader:      stubReader(map[string]string{"index.ts": "export {}"}),
	}, template)
	renderAll(t, renderer, entries)

	expected := "# Demo Project Documentation\n" +
		"Generated on: 2024-01-02 03:04:05\n" +
		"\n## Project Overview\n" +
		"- Project Type: CLI\n" +
		"\n## Project Structure and File Contents\n" +
		"\n### File: index.ts\n```ts\nexport {}\n```\n" +
		"\n### File: " + filepath.Join("src", "app.jsx") + "\n```jsx\nError reading file: boom\n```\n" +
		"\n## Setup Instructions\n1. Install\n2. Run\n" +
		"\n## To Resume Development\nWhen starting a new chat, say:\n\"Resume\"\n"
	if buffer.String() != expected {
		t.Fatalf("unexpected documentation output:\n%s\nexpected:\n%s", buffer.String(), expected)
	}
}

func TestDocumentationRendererOmitsEmptySections(t *testing.T) {
	var buffer bytes.Buffer
	renderer := output.NewDocumentationRenderer(&buffer, output.Options{GeneratedAt: fixedTime()}, output.DocumentationTemplate{})
	if err := renderer.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	expected := "# Project Documentation\nGenerated on: 2024-01-02 03:04:05\n\n## Project Structure and File Contents\n"
	if buffer.String() != expected {
		t.Fatalf("unexpected output %q", buffer.String())
	}
}

func TestRenderersReportWriteFailures(t *testing.T) {
	entry := types.TraversalEntry{Path: ".", RelativeKey: ".", RelativePath: ".", Name: ".", Files: []string{"a.md"}}
	renderers := map[string]output.StreamRenderer{
		"tree": output.NewTreeRenderer(failingWriter{}, output.Options{GeneratedAt: fixedTime()}),
		"docs": output.NewDocumentationRenderer(failingWriter{}, output.Options{GeneratedAt: fixedTime()}, output.DocumentationTemplate{}),
	}
	for name, renderer := range renderers {
		t.Run(name, func(t *testing.T) {
			if err := renderer.Handle(entry); err == nil {
				t.Fatalf("expected Handle to report the write failure")
			}
			if err := renderer.Flush(); err == nil {
				t.Fatalf("expected Flush to report the write failure")
			}
		})
	}
}
