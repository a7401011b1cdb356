package prompts

import (
	"fmt"
	"strings"
)

// Builder composes a prompt from a registered base and {{variable}}
// substitutions.
type Builder struct {
	base      string
	variables map[string]string
}

// NewBuilder creates a builder seeded with the latest version of the
// registered prompt id.
func NewBuilder(registry *Registry, id string) (*Builder, error) {
	base, err := registry.GetLatest(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get base prompt: %w", err)
	}

	return &Builder{
		base:      base.Content,
		variables: make(map[string]string),
	}, nil
}

// SetVariable sets a variable for template substitution.
func (b *Builder) SetVariable(key, value string) *Builder {
	b.variables[key] = value
	return b
}

// Build constructs the final prompt string.
func (b *Builder) Build() string {
	result := b.base

	for key, value := range b.variables {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}
