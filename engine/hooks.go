package engine

import (
	"context"

	"github.com/hupe1980/roundtable/core"
)

// HookType names the loop lifecycle points where hooks run.
type HookType string

const (
	// HookBeforeTurn runs after selection, before the chosen agent is
	// invoked. A hook error vetoes the turn: the turn is recorded as failed
	// and the loop moves on.
	HookBeforeTurn HookType = "before_turn"

	// HookAfterTurn runs after a turn completed, successfully or not.
	// Errors are logged and ignored.
	HookAfterTurn HookType = "after_turn"

	// HookOnError runs when a turn failure is contained. Errors are logged
	// and ignored.
	HookOnError HookType = "on_error"
)

// HookContext carries the loop state a hook may inspect.
type HookContext struct {
	// Agent is the identity taking (or having taken) the turn.
	Agent core.Identity

	// Turn is the turn number, counted from 1 within the conversation.
	// For HookBeforeTurn it is the number the upcoming turn will get.
	Turn int

	// Err is the contained failure. Only set for HookOnError and for
	// HookAfterTurn after a failed turn.
	Err error
}

// Hook observes loop lifecycle events.
type Hook interface {
	// Type returns the lifecycle point this hook handles.
	Type() HookType

	// Execute runs the hook. For HookBeforeTurn a non-nil error vetoes the
	// turn; for other types the error is logged and ignored.
	Execute(ctx context.Context, hookCtx *HookContext) error
}

// FunctionHook wraps a plain function as a Hook.
type FunctionHook struct {
	hookType HookType
	fn       func(ctx context.Context, hookCtx *HookContext) error
}

// NewFunctionHook creates a function-based hook for the given lifecycle
// point.
func NewFunctionHook(hookType HookType, fn func(ctx context.Context, hookCtx *HookContext) error) *FunctionHook {
	return &FunctionHook{
		hookType: hookType,
		fn:       fn,
	}
}

// Type returns the lifecycle point this hook handles.
func (h *FunctionHook) Type() HookType { return h.hookType }

// Execute calls the wrapped function.
func (h *FunctionHook) Execute(ctx context.Context, hookCtx *HookContext) error {
	return h.fn(ctx, hookCtx)
}

// hookSet routes hooks by type. Registration happens at construction time;
// execution is read-only afterwards.
type hookSet struct {
	hooks map[HookType][]Hook
}

func newHookSet(hooks []Hook) *hookSet {
	hs := &hookSet{hooks: make(map[HookType][]Hook)}
	for _, h := range hooks {
		hs.hooks[h.Type()] = append(hs.hooks[h.Type()], h)
	}
	return hs
}

// run executes the hooks registered for the given type in registration
// order, stopping at the first error.
func (hs *hookSet) run(ctx context.Context, hookType HookType, hookCtx *HookContext) error {
	for _, h := range hs.hooks[hookType] {
		if err := h.Execute(ctx, hookCtx); err != nil {
			return err
		}
	}
	return nil
}
