package agent

import (
	"fmt"

	"github.com/hupe1980/roundtable/core"
	"github.com/hupe1980/roundtable/model"
	"github.com/hupe1980/roundtable/tool"
)

// Scope is the read-only per-agent execution context: the shared model
// binding plus exactly the tool bindings the agent's definition grants.
// Each scope's binding set is computed independently at construction, so no
// two scopes ever share a mutable tool collection. An agent whose
// definition grants nothing receives an empty scope and can never invoke a
// tool.
type Scope struct {
	owner core.Identity
	model model.Model
	tools []tool.Tool
	index map[string]tool.Tool
}

// newScope resolves a definition's capability names against the enumerated
// tool universe. The order slice preserves the provider's enumeration order
// for wildcard grants.
func newScope(def Definition, m model.Model, available map[string]tool.Tool, order []string) (*Scope, error) {
	s := &Scope{owner: def.Identity(), model: m, index: map[string]tool.Tool{}}
	for _, name := range def.capabilities {
		if name == Wildcard {
			for _, n := range order {
				s.add(available[n])
			}
			continue
		}
		tl, ok := available[name]
		if !ok {
			return nil, fmt.Errorf("scope %s: unknown capability %q", def.Name(), name)
		}
		s.add(tl)
	}
	return s, nil
}

func (s *Scope) add(tl tool.Tool) {
	if _, dup := s.index[tl.Name()]; dup {
		return
	}
	s.index[tl.Name()] = tl
	s.tools = append(s.tools, tl)
}

// Owner returns the identity the scope belongs to.
func (s *Scope) Owner() core.Identity { return s.owner }

// Model returns the shared model binding.
func (s *Scope) Model() model.Model { return s.model }

// Tools returns a copy of the scope's tool bindings in grant order.
func (s *Scope) Tools() []tool.Tool {
	tools := make([]tool.Tool, len(s.tools))
	copy(tools, s.tools)
	return tools
}

// Tool returns the named binding if and only if this scope grants it.
func (s *Scope) Tool(name string) (tool.Tool, bool) {
	tl, ok := s.index[name]
	return tl, ok
}

// Definitions returns the model-facing declarations for the scope's tools.
func (s *Scope) Definitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(s.tools))
	for _, tl := range s.tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        tl.Name(),
				Description: tl.Description(),
				Parameters:  tl.Parameters(),
			},
		})
	}
	return defs
}
