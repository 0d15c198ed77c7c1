package strategy

import (
	"context"
	"strings"

	"github.com/hupe1980/roundtable/core"
)

// DefaultDelegationMarker is the phrase an orchestrator message must
// contain to hand the next turn to the specialist. Matching is
// case-sensitive: the marker is a protocol token the orchestrator is
// instructed to emit verbatim, not free prose.
const DefaultDelegationMarker = "Asking"

// MarkerSelectionOptions configure a MarkerSelection.
type MarkerSelectionOptions struct {
	// DelegationMarker overrides DefaultDelegationMarker.
	DelegationMarker string
}

// MarkerSelection is the deterministic next-speaker classifier:
//
//   - last message from the user: the orchestrator speaks
//   - last message from the orchestrator containing the delegation marker:
//     the specialist speaks
//   - last message from the specialist: the orchestrator speaks
//   - anything else: the orchestrator speaks
//
// Every branch lands on a registered identity, so Next never fails.
type MarkerSelection struct {
	marker string
}

// NewMarkerSelection creates the deterministic selection strategy.
func NewMarkerSelection(optFns ...func(o *MarkerSelectionOptions)) *MarkerSelection {
	opts := MarkerSelectionOptions{
		DelegationMarker: DefaultDelegationMarker,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &MarkerSelection{marker: opts.DelegationMarker}
}

// Next implements Selection.
func (s *MarkerSelection) Next(ctx context.Context, history []core.Message) (core.Identity, error) {
	last, ok := lastMessage(history)
	if !ok {
		return core.IdentityOrchestrator, nil
	}

	switch last.Author {
	case core.IdentityOrchestrator:
		if strings.Contains(last.Text(), s.marker) {
			return core.IdentitySpecialist, nil
		}
		return core.IdentityOrchestrator, nil
	case core.IdentitySpecialist:
		return core.IdentityOrchestrator, nil
	default:
		return core.IdentityOrchestrator, nil
	}
}
