package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/roundtable/agent"
	"github.com/hupe1980/roundtable/core"
	"github.com/hupe1980/roundtable/flow"
	"github.com/hupe1980/roundtable/logging"
	"github.com/hupe1980/roundtable/strategy"
)

// DefaultMaxTurns is the turn ceiling in the reference configuration:
// orchestrator, specialist, orchestrator.
const DefaultMaxTurns = 3

// ErrConversationComplete is returned by Run when the conversation has
// already terminated. The caller must reset it before the next independent
// query; the loop never resets on its own.
var ErrConversationComplete = errors.New("conversation is complete: reset before the next query")

// State identifies a position in the loop's turn cycle.
type State uint8

const (
	// StateIdle waits for user input.
	StateIdle State = iota
	// StateSelecting picks the next speaker.
	StateSelecting
	// StateInvoking runs the chosen agent's turn.
	StateInvoking
	// StateEvaluating checks the ceiling and the termination strategy.
	StateEvaluating
	// StateLooping transitions back to selection for another turn.
	StateLooping
	// StateTerminated marks the conversation complete.
	StateTerminated
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateInvoking:
		return "invoking"
	case StateEvaluating:
		return "evaluating"
	case StateLooping:
		return "looping"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// StopReason explains why a run ended.
type StopReason string

const (
	// ReasonTerminated means the termination strategy ended the run.
	ReasonTerminated StopReason = "terminated"
	// ReasonMaxTurns means the turn ceiling ended the run.
	ReasonMaxTurns StopReason = "max_turns"
)

// Result is the outcome of one loop run.
type Result struct {
	// Messages is the externally visible subsequence of messages produced
	// by this run: orchestrator-authored assistant messages with textual
	// content. Specialist output and tool intermediates stay internal to
	// the conversation.
	Messages []core.Message

	// Reason explains why the run stopped.
	Reason StopReason

	// Turns is the conversation's turn count after the run.
	Turns int
}

// Options configure a Loop.
type Options struct {
	// MaxTurns is the hard ceiling on agent turns per conversation. The
	// loop enforces it regardless of what the termination strategy says.
	// Defaults to DefaultMaxTurns.
	MaxTurns int

	// Selection decides the next speaker. Defaults to the marker-based
	// strategy.
	Selection strategy.Selection

	// Termination decides when to stop. Defaults to the marker-based
	// strategy scoped to the orchestrator.
	Termination strategy.Termination

	// Invoker executes single agent turns. Defaults to flow.NewInvoker().
	Invoker *flow.Invoker

	// Hooks observe the loop at turn boundaries.
	Hooks []Hook

	// Logger receives loop diagnostics.
	Logger logging.Logger
}

// Loop is the orchestration state machine for one conversation. It is
// strictly sequential: a run advances one state at a time with at most one
// agent invocation in flight, and overlapping runs on the same conversation
// are rejected.
type Loop struct {
	registry    *agent.Registry
	conv        *core.Conversation
	selection   strategy.Selection
	termination strategy.Termination
	invoker     *flow.Invoker
	hooks       *hookSet
	maxTurns    int
	logger      logging.Logger
}

// New creates a loop bound to a registry and a conversation. The registry
// must contain the orchestrator; it is the fallback speaker whenever
// selection cannot produce a usable identity.
func New(registry *agent.Registry, conv *core.Conversation, optFns ...func(o *Options)) (*Loop, error) {
	opts := Options{
		MaxTurns:    DefaultMaxTurns,
		Selection:   strategy.NewMarkerSelection(),
		Termination: strategy.NewMarkerTermination(),
		Invoker:     flow.NewInvoker(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if registry == nil {
		return nil, fmt.Errorf("loop: registry is required")
	}
	if conv == nil {
		return nil, fmt.Errorf("loop: conversation is required")
	}
	if _, ok := registry.Lookup(core.IdentityOrchestrator); !ok {
		return nil, fmt.Errorf("loop: registry has no orchestrator to fall back to")
	}
	if opts.MaxTurns <= 0 {
		return nil, fmt.Errorf("loop: max turns must be positive, got %d", opts.MaxTurns)
	}

	return &Loop{
		registry:    registry,
		conv:        conv,
		selection:   opts.Selection,
		termination: opts.Termination,
		invoker:     opts.Invoker,
		hooks:       newHookSet(opts.Hooks),
		maxTurns:    opts.MaxTurns,
		logger:      opts.Logger,
	}, nil
}

// Conversation returns the loop's conversation.
func (l *Loop) Conversation() *core.Conversation { return l.conv }

// Reset clears the conversation so the next independent query starts
// fresh. It fails while a run is in flight.
func (l *Loop) Reset() error { return l.conv.Reset() }

// Run appends the user input to the conversation and drives the turn cycle
// until the termination strategy fires or the turn ceiling is reached.
//
// Run returns core.ErrConversationBusy when another run is in flight and
// ErrConversationComplete when the conversation already terminated. All
// other failures are contained inside the run: the result reports what the
// orchestrator said, however the turns went.
func (l *Loop) Run(ctx context.Context, input string) (*Result, error) {
	if err := l.conv.Begin(); err != nil {
		return nil, err
	}
	defer l.conv.End()

	if l.conv.IsComplete() {
		return nil, ErrConversationComplete
	}

	start := l.conv.Len()
	l.conv.Append(core.NewUserMessage(input))

	reason := l.advance(ctx)

	result := &Result{
		Messages: visibleMessages(l.conv.Messages()[start:]),
		Reason:   reason,
		Turns:    l.conv.Turns(),
	}

	l.logger.Info("run complete",
		"reason", string(result.Reason),
		"turns", result.Turns,
		"visible_messages", len(result.Messages),
	)

	return result, nil
}

// advance drives the state machine from Selecting to Terminated and
// returns the stop reason.
func (l *Loop) advance(ctx context.Context) StopReason {
	state := StateSelecting
	current := core.IdentityOrchestrator
	reason := ReasonMaxTurns

	for state != StateTerminated {
		l.logger.Debug("state transition", "state", state.String(), "agent", current.String())

		switch state {
		case StateSelecting:
			current = l.selectNext(ctx)
			state = StateInvoking

		case StateInvoking:
			l.takeTurn(ctx, current)
			state = StateEvaluating

		case StateEvaluating:
			if l.conv.Turns() >= l.maxTurns {
				reason = ReasonMaxTurns
				state = StateTerminated
				break
			}
			if l.shouldStop(ctx) {
				reason = ReasonTerminated
				state = StateTerminated
				break
			}
			state = StateLooping

		case StateLooping:
			state = StateSelecting
		}
	}

	l.conv.MarkComplete()
	return reason
}

// selectNext asks the selection strategy for the next speaker. Strategy
// errors and unregistered identities both fall back to the orchestrator;
// selection never fails a run.
func (l *Loop) selectNext(ctx context.Context) core.Identity {
	id, err := l.selection.Next(ctx, l.conv.Messages())
	if err != nil {
		l.logger.Warn("selection failed, falling back to orchestrator", "error", err.Error())
		return core.IdentityOrchestrator
	}
	if _, ok := l.registry.Lookup(id); !ok {
		l.logger.Warn("selection returned unregistered identity, falling back to orchestrator", "identity", id.String())
		return core.IdentityOrchestrator
	}
	return id
}

// takeTurn runs one agent turn and appends its output. A failed turn is
// converted into an in-conversation message attributed to the failing
// agent; either way the turn counter advances by exactly one.
func (l *Loop) takeTurn(ctx context.Context, id core.Identity) {
	def, _ := l.registry.Lookup(id)
	scope, _ := l.registry.Scope(id)

	hookCtx := &HookContext{Agent: id, Turn: l.conv.Turns() + 1}

	err := l.hooks.run(ctx, HookBeforeTurn, hookCtx)
	if err == nil {
		var msgs []core.Message
		msgs, err = l.invoker.Invoke(ctx, def, scope, l.conv.Messages())
		for _, msg := range msgs {
			l.conv.Append(msg)
		}
	}

	if err != nil {
		l.logger.Warn("turn failed", "agent", def.Name(), "error", err.Error())
		l.conv.Append(core.NewAssistantMessage(id, fmt.Sprintf("I could not complete my turn: %v", err)))

		hookCtx.Err = err
		if hookErr := l.hooks.run(ctx, HookOnError, hookCtx); hookErr != nil {
			l.logger.Warn("on-error hook failed", "error", hookErr.Error())
		}
	}

	turn := l.conv.AdvanceTurn()
	l.logger.Debug("turn complete", "agent", def.Name(), "turn", turn, "failed", err != nil)

	if hookErr := l.hooks.run(ctx, HookAfterTurn, hookCtx); hookErr != nil {
		l.logger.Warn("after-turn hook failed", "error", hookErr.Error())
	}
}

// shouldStop consults the termination strategy. Errors degrade to false:
// ambiguity keeps the conversation going, bounded by the ceiling.
func (l *Loop) shouldStop(ctx context.Context) bool {
	stop, err := l.termination.ShouldStop(ctx, l.conv.Messages())
	if err != nil {
		l.logger.Warn("termination failed, continuing", "error", err.Error())
		return false
	}
	return stop
}

// visibleMessages filters a run's appended messages down to the external
// view: orchestrator-authored assistant messages with textual content.
func visibleMessages(msgs []core.Message) []core.Message {
	var visible []core.Message
	for _, msg := range msgs {
		if msg.Author != core.IdentityOrchestrator || msg.Role != core.RoleAssistant {
			continue
		}
		if strings.TrimSpace(msg.Text()) == "" {
			continue
		}
		visible = append(visible, msg)
	}
	return visible
}
