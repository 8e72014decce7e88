package model

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// ErrUnknownTemplate is returned when a template name or label is not part of
// the configured template set.
var ErrUnknownTemplate = errors.New("unknown template")

// Template is a named prompting strategy offered by the classification service.
type Template struct {
	// Name is the identifier sent to the service, e.g. "zero_shot.tpl".
	Name string `yaml:"name" json:"name"`

	// Label is the human-readable name, e.g. "Zero-Shot". The service stores
	// and reports this label on results.
	Label string `yaml:"label" json:"label"`
}

// String returns the template name.
func (t Template) String() string {
	return t.Name
}

// Built-in templates offered by the service.
var (
	// TemplateZeroShot asks the classifier for a direct answer.
	TemplateZeroShot = Template{Name: "zero_shot.tpl", Label: "Zero-Shot"}

	// TemplateChainOfThought asks the classifier to reason before answering.
	TemplateChainOfThought = Template{Name: "cot.tpl", Label: "Chain-of-Thought"}
)

// DefaultTemplates returns the templates the service ships with.
func DefaultTemplates() TemplateSet {
	return TemplateSet{TemplateZeroShot, TemplateChainOfThought}
}

// TemplateSet is the ordered set of templates a user may choose from.
type TemplateSet []Template

// Resolve finds a template by name or label. Matching ignores case, surrounding
// whitespace and a missing ".tpl" suffix, so "COT", "cot.tpl" and
// "chain-of-thought" all resolve to the same template.
func (s TemplateSet) Resolve(input string) (Template, error) {
	key := foldTemplateKey(input)
	if key == "" {
		return Template{}, fmt.Errorf("%w: empty name", ErrUnknownTemplate)
	}

	for _, t := range s {
		if foldTemplateKey(t.Name) == key || foldTemplateKey(t.Label) == key {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTemplate, input, strings.Join(s.Names(), ", "))
}

// Names returns the template names in order.
func (s TemplateSet) Names() []string {
	names := make([]string, len(s))
	for i, t := range s {
		names[i] = t.Name
	}
	return names
}

// LabelFor returns the label of the template with the given name or label,
// or the input unchanged when it is not in the set.
func (s TemplateSet) LabelFor(nameOrLabel string) string {
	t, err := s.Resolve(nameOrLabel)
	if err != nil {
		return nameOrLabel
	}
	return t.Label
}

func foldTemplateKey(s string) string {
	s = cases.Fold().String(strings.TrimSpace(s))
	return strings.TrimSuffix(s, ".tpl")
}
