package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/temirov/snapshot/internal/filter"
	"github.com/temirov/snapshot/internal/output"
	"github.com/temirov/snapshot/internal/traversal"
	"github.com/temirov/snapshot/internal/types"
)

const (
	errorUnknownPolicyFormat = "unknown snapshot policy %q"
	errorOutputPathEmpty     = "output path is empty"
	errorAccessRootFormat    = "cannot access root %s: %w"
	errorRootNotDirectory    = "root %s is not a directory"
	errorCreateOutputFormat  = "creating output file %s: %w"
	errorWriteOutputFormat   = "writing output file %s: %w"
	errorCloseOutputFormat   = "closing output file %s: %w"
)

// Request describes one generation run.
type Request struct {
	Root       string
	OutputPath string
	Policy     Policy
	// GeneratedAt defaults to the current time.
	GeneratedAt time.Time
	// Warn receives messages about skipped directories.
	Warn func(message string)
	// Reader overrides how file contents are loaded.
	Reader output.ContentReader
	// Capture, when set, receives a copy of the document as it is written.
	Capture io.Writer
}

// Result reports what a successful run wrote.
type Result struct {
	OutputPath   string
	BytesWritten int64
}

type countingWriter struct {
	destination io.Writer
	count       int64
}

func (writer *countingWriter) Write(data []byte) (int, error) {
	written, writeError := writer.destination.Write(data)
	writer.count += int64(written)
	return written, writeError
}

// Generate walks request.Root and writes the policy's document to request.OutputPath,
// overwriting any existing file. Per-file read failures are rendered inline; any
// failure to access the root or to write the output aborts the run. The output
// file itself is never included in the snapshot.
func Generate(request Request) (Result, error) {
	if request.OutputPath == "" {
		return Result{}, errors.New(errorOutputPathEmpty)
	}
	if policyError := request.Policy.validate(); policyError != nil {
		return Result{}, policyError
	}
	root := traversal.TrimTrailingSeparators(request.Root)
	rootInfo, statError := os.Stat(root)
	if statError != nil {
		return Result{}, fmt.Errorf(errorAccessRootFormat, root, statError)
	}
	if !rootInfo.IsDir() {
		return Result{}, fmt.Errorf(errorRootNotDirectory, root)
	}
	generatedAt := request.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	outputFile, createError := os.Create(request.OutputPath)
	if createError != nil {
		return Result{}, fmt.Errorf(errorCreateOutputFormat, request.OutputPath, createError)
	}
	bufferedWriter := bufio.NewWriter(outputFile)
	counter := &countingWriter{destination: bufferedWriter}
	var destination io.Writer = counter
	if request.Capture != nil {
		destination = io.MultiWriter(counter, request.Capture)
	}

	renderError := render(request, root, generatedAt, destination)
	if renderError == nil {
		if flushError := bufferedWriter.Flush(); flushError != nil {
			renderError = fmt.Errorf(errorWriteOutputFormat, request.OutputPath, flushError)
		}
	}
	if closeError := outputFile.Close(); closeError != nil && renderError == nil {
		renderError = fmt.Errorf(errorCloseOutputFormat, request.OutputPath, closeError)
	}
	if renderError != nil {
		return Result{}, renderError
	}
	return Result{OutputPath: request.OutputPath, BytesWritten: counter.count}, nil
}

func render(request Request, root string, generatedAt time.Time, destination io.Writer) error {
	renderer, rendererError := request.Policy.NewRenderer(destination, output.Options{
		GeneratedAt: generatedAt,
		Reader:      request.Reader,
	})
	if rendererError != nil {
		return rendererError
	}
	traverser := traversal.New(filter.New(request.Policy.Rules), request.Warn).ExcludeFiles(request.OutputPath)
	visit := func(entry types.TraversalEntry) error {
		if handleError := renderer.Handle(entry); handleError != nil {
			return fmt.Errorf(errorWriteOutputFormat, request.OutputPath, handleError)
		}
		return nil
	}
	if walkError := traverser.Walk(root, visit); walkError != nil {
		return walkError
	}
	if flushError := renderer.Flush(); flushError != nil {
		return fmt.Errorf(errorWriteOutputFormat, request.OutputPath, flushError)
	}
	return nil
}
