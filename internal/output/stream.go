// Package output renders traversal entries into a single snapshot document.
package output

import (
	"io"
	"strings"
	"time"

	"github.com/temirov/snapshot/internal/types"
	"github.com/temirov/snapshot/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeBranchPadding   = "│   "

	wideRuleWidth   = 80
	narrowRuleWidth = 50
)

// StreamRenderer consumes traversal entries in order and writes the document on Flush.
type StreamRenderer interface {
	Handle(entry types.TraversalEntry) error
	Flush() error
}

// ContentReader loads one file for rendering. Failures are carried in the result.
type ContentReader func(path string) types.FileContent

// Options holds what every renderer needs besides its destination.
type Options struct {
	// GeneratedAt is stamped into the header; holding it constant makes output reproducible.
	GeneratedAt time.Time
	// Reader defaults to utils.ReadTextFile.
	Reader ContentReader
}

func (options Options) reader() ContentReader {
	if options.Reader == nil {
		return utils.ReadTextFile
	}
	return options.Reader
}

func rule(character string, width int) string {
	return strings.Repeat(character, width)
}

// stickyWriter remembers the first write failure and drops everything after it.
type stickyWriter struct {
	destination io.Writer
	err         error
}

func (writer *stickyWriter) WriteString(text string) {
	if writer.err != nil {
		return
	}
	_, writer.err = io.WriteString(writer.destination, text)
}
