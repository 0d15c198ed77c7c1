package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/roundtable/core"
)

// Definition describes one registered agent: its closed identity, a display
// name, the instruction text rendered into its system prompt, and the names
// of the tool capabilities it may use. Definitions are values created once
// at startup and never mutated afterwards.
type Definition struct {
	identity     core.Identity
	name         string
	instructions string
	capabilities []string
}

// DefinitionOption customizes a Definition at construction time.
type DefinitionOption func(*Definition)

// WithName overrides the display name projected from the identity.
func WithName(name string) DefinitionOption {
	return func(d *Definition) { d.name = name }
}

// WithCapabilities grants the definition access to the named tools. The
// wildcard "*" grants every tool the provider enumerates.
func WithCapabilities(names ...string) DefinitionOption {
	return func(d *Definition) { d.capabilities = append(d.capabilities, names...) }
}

// NewDefinition creates an agent definition. Instructions may contain
// template markers (e.g. {{.name}}) expanded when the agent takes a turn.
func NewDefinition(identity core.Identity, instructions string, optFns ...DefinitionOption) (Definition, error) {
	d := Definition{
		identity:     identity,
		name:         identity.String(),
		instructions: instructions,
	}
	for _, fn := range optFns {
		fn(&d)
	}

	if strings.TrimSpace(d.instructions) == "" {
		return Definition{}, fmt.Errorf("definition %s: instructions are required", d.name)
	}
	if strings.TrimSpace(d.name) == "" {
		d.name = identity.String()
	}

	return d, nil
}

// Identity returns the closed identity of the agent.
func (d Definition) Identity() core.Identity { return d.identity }

// Name returns the display name.
func (d Definition) Name() string { return d.name }

// Instructions returns the raw (possibly templated) instruction text.
func (d Definition) Instructions() string { return d.instructions }

// Capabilities returns a copy of the granted tool names.
func (d Definition) Capabilities() []string {
	caps := make([]string, len(d.capabilities))
	copy(caps, d.capabilities)
	return caps
}
