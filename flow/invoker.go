package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/hupe1980/roundtable/agent"
	"github.com/hupe1980/roundtable/core"
	"github.com/hupe1980/roundtable/internal/util"
	"github.com/hupe1980/roundtable/logging"
	"github.com/hupe1980/roundtable/model"
)

// DefaultMaxModelCalls bounds the number of model calls a single agent turn
// may make before the turn is aborted.
const DefaultMaxModelCalls = 10

// InvocationError reports a failure during an agent's turn. The loop does
// not retry it; the failure is surfaced as an in-conversation message
// attributed to the failing agent and the conversation moves on.
type InvocationError struct {
	Agent core.Identity
	Name  string
	Err   error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("agent %s: %v", e.Name, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// InvokerOptions configure an Invoker.
type InvokerOptions struct {
	// MaxModelCalls limits the number of model calls per turn. Zero means
	// unlimited.
	MaxModelCalls int
	// MaxHistory truncates the history sent to the model to the most recent
	// n messages. Zero means the full history is sent.
	MaxHistory int
	// Logger receives per-call diagnostics.
	Logger logging.Logger
}

// Invoker runs one agent turn at a time: model call, tool execution, model
// call again, until the model answers without requesting tools.
type Invoker struct {
	maxCalls   int
	maxHistory int
	logger     logging.Logger
}

// NewInvoker creates a turn invoker.
func NewInvoker(optFns ...func(o *InvokerOptions)) *Invoker {
	opts := InvokerOptions{
		MaxModelCalls: DefaultMaxModelCalls,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Invoker{
		maxCalls:   opts.MaxModelCalls,
		maxHistory: opts.MaxHistory,
		logger:     opts.Logger,
	}
}

// Invoke executes one turn for the given agent. It returns every message
// the turn produced, in emission order: assistant messages (which may carry
// tool calls) interleaved with tool response messages, ending with the
// final assistant response. On error the messages produced so far are
// returned alongside an *InvocationError.
func (inv *Invoker) Invoke(ctx context.Context, def agent.Definition, scope *agent.Scope, history []core.Message) ([]core.Message, error) {
	instructions, err := util.RenderTemplate(def.Instructions(), map[string]any{
		"name": def.Name(),
	})
	if err != nil {
		return nil, inv.fail(def, fmt.Errorf("render instructions: %w", err))
	}

	working := history
	if inv.maxHistory > 0 && len(working) > inv.maxHistory {
		working = working[len(working)-inv.maxHistory:]
	}

	limiter := NewCallLimiter(inv.maxCalls)
	tools := scope.Definitions()

	var produced []core.Message
	for {
		if err := limiter.Increment(); err != nil {
			return produced, inv.fail(def, err)
		}

		req := model.Request{
			Instructions: instructions,
			Messages:     append(append([]core.Message{}, working...), produced...),
			Tools:        tools,
		}

		start := time.Now()
		res, err := model.Collect(ctx, scope.Model(), req)
		if err != nil {
			return produced, inv.fail(def, err)
		}

		inv.logger.Debug("model call complete",
			"agent", def.Name(),
			"call", limiter.Count(),
			"duration_ms", time.Since(start).Milliseconds(),
		)

		msg := core.NewMessage(def.Identity(), core.RoleAssistant, res.Parts...)
		produced = append(produced, msg)

		calls := res.FunctionCalls()
		if len(calls) == 0 {
			return produced, nil
		}

		for _, call := range calls {
			if ctx.Err() != nil {
				return produced, inv.fail(def, ctx.Err())
			}
			produced = append(produced, inv.executeCall(ctx, def, scope, call))
		}
	}
}

// executeCall runs one tool call through the agent's scope and converts the
// outcome into a tool response message. Lookup misses, argument decoding
// failures, panics and tool errors all land in the response message rather
// than aborting the turn; the model decides what to do with them.
func (inv *Invoker) executeCall(ctx context.Context, def agent.Definition, scope *agent.Scope, call core.FunctionCall) core.Message {
	start := time.Now()
	result, err := inv.runTool(ctx, scope, call)
	dur := time.Since(start)

	inv.logger.Info("tool executed",
		"agent", def.Name(),
		"tool", call.Name,
		"duration_ms", dur.Milliseconds(),
		"error", err != nil,
	)

	return core.NewFunctionResponseMessage(def.Identity(), call.ID, call.Name, result, err)
}

func (inv *Invoker) runTool(ctx context.Context, scope *agent.Scope, call core.FunctionCall) (result any, err error) {
	impl, ok := scope.Tool(call.Name)
	if !ok {
		return nil, fmt.Errorf("tool %s not found", call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return nil, fmt.Errorf("failed to unmarshal args: %w", err)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			inv.logger.Error("tool panic", "tool", call.Name, "recover", r, "stack", string(debug.Stack()))
			result = nil
			err = fmt.Errorf("tool %s panicked", call.Name)
		}
	}()

	return impl.Call(ctx, args)
}

func (inv *Invoker) fail(def agent.Definition, err error) *InvocationError {
	return &InvocationError{Agent: def.Identity(), Name: def.Name(), Err: err}
}
