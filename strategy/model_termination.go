package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/roundtable/core"
	"github.com/hupe1980/roundtable/model"
)

const defaultTerminationTemplate = `You supervise a conversation. Decide whether the most recent message completes the user's request.
Respond with only "yes" or "no".`

// ModelTerminationOptions configure a ModelTermination.
type ModelTerminationOptions struct {
	// Template overrides the instruction text sent to the model.
	Template string
	// Scope lists the authors whose messages are evaluated. Defaults to the
	// orchestrator alone.
	Scope []core.Identity
}

// ModelTermination asks a model whether the conversation is finished,
// showing it only the in-scope slice of the history. Any answer other than
// yes or no yields a TerminationParseError; the loop recovers from it by
// continuing, bounded by the turn ceiling.
type ModelTermination struct {
	model    model.Model
	template string
	scope    map[core.Identity]struct{}
}

// NewModelTermination creates a model-backed termination strategy.
func NewModelTermination(m model.Model, optFns ...func(o *ModelTerminationOptions)) *ModelTermination {
	opts := ModelTerminationOptions{
		Template: defaultTerminationTemplate,
		Scope:    []core.Identity{core.IdentityOrchestrator},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	scope := make(map[core.Identity]struct{}, len(opts.Scope))
	for _, id := range opts.Scope {
		scope[id] = struct{}{}
	}

	return &ModelTermination{
		model:    m,
		template: opts.Template,
		scope:    scope,
	}
}

// ShouldStop implements Termination.
func (t *ModelTermination) ShouldStop(ctx context.Context, history []core.Message) (bool, error) {
	inScope := make([]core.Message, 0, len(history))
	for _, msg := range history {
		if _, ok := t.scope[msg.Author]; ok {
			inScope = append(inScope, msg)
		}
	}
	if len(inScope) == 0 {
		return false, nil
	}

	res, err := model.Collect(ctx, t.model, model.Request{
		Instructions: t.template,
		Messages: []core.Message{
			core.NewUserMessage("Transcript:\n" + renderTranscript(inScope) + "\n\nIs the request complete?"),
		},
	})
	if err != nil {
		return false, fmt.Errorf("termination: %w", err)
	}

	switch strings.ToLower(firstLine(res.Text())) {
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	default:
		return false, &TerminationParseError{Output: firstLine(res.Text())}
	}
}
