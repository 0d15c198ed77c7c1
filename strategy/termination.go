package strategy

import (
	"context"
	"strings"

	"github.com/hupe1980/roundtable/core"
)

// DefaultContinuationMarker is the phrase signalling that the orchestrator
// has delivered a final answer and is offering to continue ("Is there
// anything else I can help with?"). Matching is case-insensitive.
const DefaultContinuationMarker = "anything else"

// MarkerTerminationOptions configure a MarkerTermination.
type MarkerTerminationOptions struct {
	// ContinuationMarker overrides DefaultContinuationMarker.
	ContinuationMarker string
	// Scope lists the authors whose messages are evaluated. Defaults to the
	// orchestrator alone.
	Scope []core.Identity
}

// MarkerTermination stops the conversation exactly when the most recent
// in-scope message contains the continuation marker. No in-scope message,
// or no marker, means keep going; the loop's turn ceiling bounds the
// conversation either way.
type MarkerTermination struct {
	marker string
	scope  map[core.Identity]struct{}
}

// NewMarkerTermination creates the deterministic termination strategy.
func NewMarkerTermination(optFns ...func(o *MarkerTerminationOptions)) *MarkerTermination {
	opts := MarkerTerminationOptions{
		ContinuationMarker: DefaultContinuationMarker,
		Scope:              []core.Identity{core.IdentityOrchestrator},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	scope := make(map[core.Identity]struct{}, len(opts.Scope))
	for _, id := range opts.Scope {
		scope[id] = struct{}{}
	}

	return &MarkerTermination{
		marker: strings.ToLower(opts.ContinuationMarker),
		scope:  scope,
	}
}

// ShouldStop implements Termination.
func (t *MarkerTermination) ShouldStop(ctx context.Context, history []core.Message) (bool, error) {
	last, ok := lastInScope(history, t.scope)
	if !ok {
		return false, nil
	}
	return strings.Contains(strings.ToLower(last.Text()), t.marker), nil
}

// lastInScope returns the most recent message authored by an identity in
// scope, or false when none exists.
func lastInScope(history []core.Message, scope map[core.Identity]struct{}) (core.Message, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if _, ok := scope[history[i].Author]; ok {
			return history[i], true
		}
	}
	return core.Message{}, false
}
