package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/roundtable/core"
)

// Selection decides which agent takes the next turn. The full ordered
// history is passed in; the last message is the load-bearing input. The
// returned identity must come from the registered agent set. Errors are
// advisory: the loop recovers by selecting the orchestrator.
type Selection interface {
	Next(ctx context.Context, history []core.Message) (core.Identity, error)
}

// Termination decides whether the conversation is finished. Implementations
// evaluate only messages authored by their configured scope. Errors are
// advisory: the loop recovers by treating the verdict as false.
type Termination interface {
	ShouldStop(ctx context.Context, history []core.Message) (bool, error)
}

// Resolver maps a display name or canonical identity name onto a registered
// identity. agent.Registry.Resolve satisfies this signature.
type Resolver func(name string) (core.Identity, bool)

// SelectionParseError reports a selection output that does not name a
// registered agent.
type SelectionParseError struct {
	Output string
}

func (e *SelectionParseError) Error() string {
	return fmt.Sprintf("selection output %q does not name a registered agent", e.Output)
}

// TerminationParseError reports a termination output that is not a
// recognizable verdict.
type TerminationParseError struct {
	Output string
}

func (e *TerminationParseError) Error() string {
	return fmt.Sprintf("termination output %q is not a recognizable verdict", e.Output)
}

// lastMessage returns the most recent message, or false for empty history.
func lastMessage(history []core.Message) (core.Message, bool) {
	if len(history) == 0 {
		return core.Message{}, false
	}
	return history[len(history)-1], true
}

// renderTranscript flattens history into "Author: text" lines for use in
// model prompts. Messages without textual content are skipped.
func renderTranscript(history []core.Message) string {
	var sb strings.Builder
	for _, msg := range history {
		text := strings.TrimSpace(msg.Text())
		if text == "" {
			continue
		}
		sb.WriteString(msg.Author.String())
		sb.WriteString(": ")
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}
