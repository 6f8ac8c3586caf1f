// Package snapshot wires traversal, filtering and rendering into one generation run.
package snapshot

import (
	"fmt"
	"io"

	"github.com/temirov/snapshot/internal/filter"
	"github.com/temirov/snapshot/internal/output"
	"github.com/temirov/snapshot/internal/types"
)

// Policy selects the ignore rules, the extension allow-list and the output template of a run.
type Policy struct {
	Name     string
	Rules    filter.Rules
	Template output.DocumentationTemplate
}

// TreePolicy renders the directory structure followed by every eligible file's contents.
func TreePolicy(rules filter.Rules) Policy {
	return Policy{Name: types.CommandTree, Rules: rules}
}

// DocumentationPolicy renders a markdown document of allow-listed files framed by template.
func DocumentationPolicy(rules filter.Rules, template output.DocumentationTemplate) Policy {
	return Policy{Name: types.CommandDocumentation, Rules: rules, Template: template}
}

func (policy Policy) validate() error {
	switch policy.Name {
	case types.CommandTree, types.CommandDocumentation:
		return nil
	default:
		return fmt.Errorf(errorUnknownPolicyFormat, policy.Name)
	}
}

// NewRenderer returns the renderer producing this policy's document.
func (policy Policy) NewRenderer(destination io.Writer, options output.Options) (output.StreamRenderer, error) {
	switch policy.Name {
	case types.CommandTree:
		return output.NewTreeRenderer(destination, options), nil
	case types.CommandDocumentation:
		return output.NewDocumentationRenderer(destination, options, policy.Template), nil
	default:
		return nil, fmt.Errorf(errorUnknownPolicyFormat, policy.Name)
	}
}
