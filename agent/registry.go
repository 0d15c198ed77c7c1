package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/roundtable/core"
	"github.com/hupe1980/roundtable/logging"
	"github.com/hupe1980/roundtable/model"
	"github.com/hupe1980/roundtable/tool"
)

// Wildcard grants a definition every capability the provider enumerates.
const Wildcard = "*"

// RegistryOptions configure registry construction.
type RegistryOptions struct {
	Logger logging.Logger
}

// Registry holds the fixed set of agent definitions bound to their
// capability scopes. It is built exactly once at startup: the tool provider
// is enumerated a single time and every definition's capability names are
// resolved against that enumeration. After construction the registry is
// immutable and safe for unsynchronized concurrent reads.
type Registry struct {
	defs   map[core.Identity]Definition
	scopes map[core.Identity]*Scope
	names  map[string]core.Identity
}

// NewRegistry builds a registry from the shared model binding, a tool
// provider and the agent definitions. A nil provider is treated as an empty
// capability universe. Enumeration failures and unknown capability names
// are startup errors; nothing about the registry can change afterwards.
func NewRegistry(ctx context.Context, m model.Model, provider tool.Provider, defs []Definition, optFns ...func(o *RegistryOptions)) (*Registry, error) {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if m == nil {
		return nil, fmt.Errorf("registry: model binding is required")
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("registry: at least one agent definition is required")
	}

	available := map[string]tool.Tool{}
	var order []string
	if provider != nil {
		tools, err := provider.ListCapabilities(ctx)
		if err != nil {
			return nil, fmt.Errorf("registry: enumerate capabilities: %w", err)
		}
		for _, tl := range tools {
			if _, dup := available[tl.Name()]; dup {
				return nil, fmt.Errorf("registry: duplicate capability %q", tl.Name())
			}
			available[tl.Name()] = tl
			order = append(order, tl.Name())
		}
	}
	opts.Logger.Debug("capabilities enumerated", "count", len(order))

	r := &Registry{
		defs:   make(map[core.Identity]Definition, len(defs)),
		scopes: make(map[core.Identity]*Scope, len(defs)),
		names:  make(map[string]core.Identity, len(defs)),
	}
	for _, def := range defs {
		if !def.Identity().IsAgent() {
			return nil, fmt.Errorf("registry: %s cannot be registered as an agent", def.Identity())
		}
		if _, dup := r.defs[def.Identity()]; dup {
			return nil, fmt.Errorf("registry: duplicate definition for %s", def.Identity())
		}
		key := strings.ToLower(def.Name())
		if _, dup := r.names[key]; dup {
			return nil, fmt.Errorf("registry: duplicate display name %q", def.Name())
		}
		scope, err := newScope(def, m, available, order)
		if err != nil {
			return nil, err
		}
		r.defs[def.Identity()] = def
		r.scopes[def.Identity()] = scope
		r.names[key] = def.Identity()
		opts.Logger.Info("agent registered", "agent", def.Name(), "tool_count", len(scope.tools))
	}

	return r, nil
}

// Lookup returns the definition registered for the identity.
func (r *Registry) Lookup(id core.Identity) (Definition, bool) {
	def, ok := r.defs[id]
	return def, ok
}

// Scope returns the capability scope bound to the identity.
func (r *Registry) Scope(id core.Identity) (*Scope, bool) {
	scope, ok := r.scopes[id]
	return scope, ok
}

// Resolve maps a display name or canonical identity name onto a registered
// identity. Unregistered and unparsable names report false.
func (r *Registry) Resolve(name string) (core.Identity, bool) {
	if id, ok := r.names[strings.ToLower(strings.TrimSpace(name))]; ok {
		return id, true
	}
	id, ok := core.ParseIdentity(name)
	if !ok {
		return core.IdentityUser, false
	}
	if _, registered := r.defs[id]; !registered {
		return core.IdentityUser, false
	}
	return id, true
}

// Identities returns the registered identities in stable order.
func (r *Registry) Identities() []core.Identity {
	ids := make([]core.Identity, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
