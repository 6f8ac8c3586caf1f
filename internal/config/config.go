// Package config provides default rule sets, reads ignore files and loads application configuration.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/snapshot/internal/filter"
	"github.com/temirov/snapshot/internal/output"
)

// IgnoreFileName names the optional per-root file listing extra substring patterns, one per line.
const IgnoreFileName = ".snapshotignore"

// DefaultTreeRules returns the rules of the structure-and-contents snapshot: version
// control metadata, dependency caches, framework build output, OS metadata files,
// environment secrets and compiled bytecode. Entries such as "*.pyc" are literal
// substrings, not globs.
func DefaultTreeRules() filter.Rules {
	return filter.Rules{
		Patterns: []string{
			".git", "node_modules", ".next", "out", ".vercel",
			"__pycache__", ".env", ".env.local", "*.pyc", "*.pyo",
			".DS_Store", "Thumbs.db", "coverage", "build",
			"dist", ".cache", ".idea", ".vscode",
		},
	}
}

// DefaultDocumentationRules returns the rules of the markdown documentation: pruned
// directory names, excluded file names and the extension allow-list.
func DefaultDocumentationRules() filter.Rules {
	return filter.Rules{
		DirectoryNames: []string{".git", "node_modules", ".next", "out", "build"},
		FileNames:      []string{".env", ".env.local", ".DS_Store"},
		Extensions:     []string{".ts", ".tsx", ".js", ".jsx", ".css", ".json", ".md"},
	}
}

// DefaultDocumentationTemplate returns the static framing used when nothing is configured.
func DefaultDocumentationTemplate() output.DocumentationTemplate {
	return output.DocumentationTemplate{
		SetupSteps: []string{
			"Clone the repository",
			"Install dependencies: `npm install`",
			"Create .env.local with required environment variables",
			"Run the development server: `npm run dev`",
		},
		ResumePrompt: "I'm continuing development of my project. Here's my full project documentation: [paste relevant sections]. I'd like to [describe next feature].",
	}
}

// LoadIgnoreFile reads substring patterns from path. Blank lines and lines
// starting with "#" are skipped. A missing file yields no patterns.
//
// #nosec G304
func LoadIgnoreFile(path string) ([]string, error) {
	fileHandle, openFileError := os.Open(path)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer fileHandle.Close()

	var patterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
			continue
		}
		patterns = append(patterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("reading %s: %w", path, scanError)
	}
	return patterns, nil
}

// LoadRootIgnoreFile reads IgnoreFileName from the root directory.
func LoadRootIgnoreFile(rootDirectory string) ([]string, error) {
	return LoadIgnoreFile(filepath.Join(rootDirectory, IgnoreFileName))
}

// DeduplicatePatterns removes duplicate and empty patterns while preserving order.
func DeduplicatePatterns(patterns []string) []string {
	encountered := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if _, exists := encountered[pattern]; exists {
			continue
		}
		encountered[pattern] = struct{}{}
		result = append(result, pattern)
	}
	return result
}
