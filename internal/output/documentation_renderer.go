package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/temirov/snapshot/internal/filter"
	"github.com/temirov/snapshot/internal/types"
	"github.com/temirov/snapshot/internal/utils"
)

const (
	documentationTitleSuffix   = "Project Documentation"
	generatedOnFormat          = "Generated on: %s\n"
	projectOverviewHeading     = "\n## Project Overview\n"
	projectTypeFormat          = "- Project Type: %s\n"
	modelFormat                = "- Model: %s\n"
	sourceURLFormat            = "- Source URL: %s\n"
	fileSectionHeading         = "\n## Project Structure and File Contents\n"
	documentationFileFormat    = "\n### File: %s\n"
	codeFence                  = "```"
	documentationReadErrorText = "Error reading file: %v"
	setupInstructionsHeading   = "\n## Setup Instructions\n"
	setupStepFormat            = "%d. %s\n"
	resumeHeading              = "\n## To Resume Development\n"
	resumeIntroduction         = "When starting a new chat, say:\n"
	resumePromptFormat         = "\"%s\"\n"
)

// DocumentationTemplate carries the static text framing the documentation body.
// None of it is derived from the traversed tree.
type DocumentationTemplate struct {
	ProjectName  string
	ProjectType  string
	Model        string
	SourceURL    string
	SetupSteps   []string
	ResumePrompt string
}

// documentationRenderer writes a markdown document with one fenced block per file.
type documentationRenderer struct {
	writer        *stickyWriter
	options       Options
	template      DocumentationTemplate
	headerWritten bool
}

// NewDocumentationRenderer returns the markdown documentation renderer writing to destination.
func NewDocumentationRenderer(destination io.Writer, options Options, template DocumentationTemplate) StreamRenderer {
	return &documentationRenderer{
		writer:   &stickyWriter{destination: destination},
		options:  options,
		template: template,
	}
}

func (renderer *documentationRenderer) writeHeader() {
	if renderer.headerWritten {
		return
	}
	renderer.headerWritten = true
	template := renderer.template
	title := strings.TrimSpace(strings.TrimSpace(template.ProjectName) + " " + documentationTitleSuffix)
	renderer.writer.WriteString("# " + title + "\n")
	renderer.writer.WriteString(fmt.Sprintf(generatedOnFormat, utils.FormatTimestamp(renderer.options.GeneratedAt)))
	if template.ProjectType != "" || template.Model != "" || template.SourceURL != "" {
		renderer.writer.WriteString(projectOverviewHeading)
		if template.ProjectType != "" {
			renderer.writer.WriteString(fmt.Sprintf(projectTypeFormat, template.ProjectType))
		}
		if template.Model != "" {
			renderer.writer.WriteString(fmt.Sprintf(modelFormat, template.Model))
		}
		if template.SourceURL != "" {
			renderer.writer.WriteString(fmt.Sprintf(sourceURLFormat, template.SourceURL))
		}
	}
	renderer.writer.WriteString(fileSectionHeading)
}

func (renderer *documentationRenderer) Handle(entry types.TraversalEntry) error {
	renderer.writeHeader()
	read := renderer.options.reader()
	for _, fileName := range entry.Files {
		if renderer.writer.err != nil {
			break
		}
		relativePath := filepath.Join(entry.RelativePath, fileName)
		fileContent := read(filepath.Join(entry.Path, fileName))
		body := fileContent.Content
		if fileContent.Failed() {
			body = fmt.Sprintf(documentationReadErrorText, fileContent.Err)
		}
		renderer.writer.WriteString(fmt.Sprintf(documentationFileFormat, relativePath))
		renderer.writer.WriteString(codeFence + filter.LanguageTag(fileName) + "\n")
		renderer.writer.WriteString(body)
		renderer.writer.WriteString("\n" + codeFence + "\n")
	}
	return renderer.writer.err
}

func (renderer *documentationRenderer) Flush() error {
	renderer.writeHeader()
	template := renderer.template
	if len(template.SetupSteps) > 0 {
		renderer.writer.WriteString(setupInstructionsHeading)
		for stepIndex, step := range template.SetupSteps {
			renderer.writer.WriteString(fmt.Sprintf(setupStepFormat, stepIndex+1, step))
		}
	}
	if template.ResumePrompt != "" {
		renderer.writer.WriteString(resumeHeading)
		renderer.writer.WriteString(resumeIntroduction)
		renderer.writer.WriteString(fmt.Sprintf(resumePromptFormat, template.ResumePrompt))
	}
	return renderer.writer.err
}
