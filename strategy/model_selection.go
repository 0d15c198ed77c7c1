package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/roundtable/core"
	"github.com/hupe1980/roundtable/internal/util"
	"github.com/hupe1980/roundtable/model"
)

const defaultSelectionTemplate = `You moderate a conversation between these participants: {{.participants}}.
Read the transcript and decide which participant should speak next.
Respond with only that participant's name and nothing else.`

// ModelSelectionOptions configure a ModelSelection.
type ModelSelectionOptions struct {
	// Template overrides the instruction template. It is rendered with
	// {{.participants}} bound to the comma-joined participant display names.
	Template string
}

// ModelSelection asks a model who should speak next and resolves the answer
// against the registered agent set. An answer that resolves to no
// registered identity yields a SelectionParseError; the loop recovers from
// it by selecting the orchestrator.
type ModelSelection struct {
	model        model.Model
	participants []string
	resolve      Resolver
	template     string
}

// NewModelSelection creates a model-backed selection strategy. The
// participants are the display names advertised to the model; resolve maps
// the model's answer back onto an identity.
func NewModelSelection(m model.Model, participants []string, resolve Resolver, optFns ...func(o *ModelSelectionOptions)) *ModelSelection {
	opts := ModelSelectionOptions{
		Template: defaultSelectionTemplate,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelSelection{
		model:        m,
		participants: participants,
		resolve:      resolve,
		template:     opts.Template,
	}
}

// Next implements Selection.
func (s *ModelSelection) Next(ctx context.Context, history []core.Message) (core.Identity, error) {
	instructions, err := util.RenderTemplate(s.template, map[string]any{
		"participants": strings.Join(s.participants, ", "),
	})
	if err != nil {
		return core.IdentityUser, fmt.Errorf("selection: render instructions: %w", err)
	}

	transcript := renderTranscript(history)
	if transcript == "" {
		transcript = "(no messages yet)"
	}

	res, err := model.Collect(ctx, s.model, model.Request{
		Instructions: instructions,
		Messages: []core.Message{
			core.NewUserMessage("Transcript:\n" + transcript + "\n\nWho speaks next?"),
		},
	})
	if err != nil {
		return core.IdentityUser, fmt.Errorf("selection: %w", err)
	}

	answer := firstLine(res.Text())
	if id, ok := s.resolve(answer); ok {
		return id, nil
	}

	return core.IdentityUser, &SelectionParseError{Output: answer}
}

// firstLine strips a model answer down to a single comparable token: the
// first non-empty line without surrounding punctuation.
func firstLine(output string) string {
	out := strings.TrimSpace(output)
	if i := strings.IndexAny(out, "\r\n"); i >= 0 {
		out = out[:i]
	}
	return strings.Trim(out, " \t.,:;!?\"'`")
}
