package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/snapshot/internal/traversal"
	"github.com/temirov/snapshot/internal/types"
	"github.com/temirov/snapshot/internal/utils"
)

const (
	treeHeaderFormat        = "Project Structure Generated on %s\n"
	directoryStructureLabel = "Directory Structure:\n"
	fileContentsLabel       = "\n\nFile Contents:\n"
	fileHeaderFormat        = "\n\nFile: %s\n"
	treeReadErrorFormat     = "\n\nError reading %s: %v\n"
)

// treeRenderer writes the plain-text report: a directory structure section
// streamed as entries arrive, then every eligible file's contents on Flush.
type treeRenderer struct {
	writer        *stickyWriter
	options       Options
	headerWritten bool
	filePaths     []string
}

// NewTreeRenderer returns the structure-plus-contents renderer writing to destination.
func NewTreeRenderer(destination io.Writer, options Options) StreamRenderer {
	return &treeRenderer{
		writer:  &stickyWriter{destination: destination},
		options: options,
	}
}

func (renderer *treeRenderer) writeHeader() {
	if renderer.headerWritten {
		return
	}
	renderer.headerWritten = true
	renderer.writer.WriteString(fmt.Sprintf(treeHeaderFormat, utils.FormatTimestamp(renderer.options.GeneratedAt)))
	renderer.writer.WriteString(rule("=", wideRuleWidth) + "\n\n")
	renderer.writer.WriteString(directoryStructureLabel)
	renderer.writer.WriteString(rule("-", narrowRuleWidth) + "\n")
}

func (renderer *treeRenderer) Handle(entry types.TraversalEntry) error {
	renderer.writeHeader()
	directoryIndent := strings.Repeat(treeBranchPadding, entry.Depth)
	renderer.writer.WriteString(directoryIndent + treeBranchConnector + entry.Name + "/\n")
	fileIndent := strings.Repeat(treeBranchPadding, entry.Depth+1)
	for _, fileName := range entry.Files {
		renderer.writer.WriteString(fileIndent + treeBranchConnector + fileName + "\n")
		renderer.filePaths = append(renderer.filePaths, traversal.JoinPath(entry.Path, fileName))
	}
	return renderer.writer.err
}

func (renderer *treeRenderer) Flush() error {
	renderer.writeHeader()
	renderer.writer.WriteString(fileContentsLabel)
	renderer.writer.WriteString(rule("=", wideRuleWidth) + "\n")

	read := renderer.options.reader()
	for _, filePath := range renderer.filePaths {
		if renderer.writer.err != nil {
			break
		}
		fileContent := read(filePath)
		if fileContent.Failed() {
			renderer.writer.WriteString(fmt.Sprintf(treeReadErrorFormat, filePath, fileContent.Err))
			continue
		}
		renderer.writer.WriteString(fmt.Sprintf(fileHeaderFormat, filePath))
		renderer.writer.WriteString(rule("-", wideRuleWidth) + "\n")
		renderer.writer.WriteString(fileContent.Content)
		renderer.writer.WriteString("\n")
	}
	return renderer.writer.err
}
