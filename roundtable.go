// Package roundtable provides a high-level façade over the orchestration
// loop, the agent registry and the decision strategies, enabling rapid
// construction of bounded multi-agent conversations. Most applications
// interact with this package by:
//  1. Creating a Roundtable via New() with a model binding and an optional
//     tool provider
//  2. Asking questions (Ask) and reading the orchestrator's visible answers
//  3. Resetting the conversation (Reset) between independent queries
//
// The façade delegates orchestration to engine.Loop while keeping setup
// ergonomics concise: it registers the reference pair of agents, an
// orchestrator that coordinates and a specialist that holds the tool
// capabilities, and wires the marker-based strategies by default. All
// defaults are safe for local development and testing; production
// deployments typically supply a structured logger and tuned instructions.
package roundtable

import (
	"context"

	"github.com/hupe1980/roundtable/agent"
	"github.com/hupe1980/roundtable/core"
	"github.com/hupe1980/roundtable/engine"
	"github.com/hupe1980/roundtable/flow"
	"github.com/hupe1980/roundtable/logging"
	"github.com/hupe1980/roundtable/model"
	"github.com/hupe1980/roundtable/strategy"
	"github.com/hupe1980/roundtable/tool"
)

// DefaultOrchestratorInstructions steer the coordinating agent. They encode
// the marker protocol the default strategies recognize: delegation lines
// start with "Asking", final answers end with an offer to continue.
const DefaultOrchestratorInstructions = `You are {{.name}}, coordinating a conversation between a user and a specialist.
When the request needs data or tool work, delegate by writing a line that starts with "Asking" followed by the specialist's name and what you need.
When you have everything required, deliver the final answer and close with an offer such as "Is there anything else I can help with?"`

// DefaultSpecialistInstructions steer the tool-holding agent.
const DefaultSpecialistInstructions = `You are {{.name}}. Use your tools to gather the requested data, then report the facts back concisely. Do not address the user directly; you are reporting to the coordinator.`

// Options configures a Roundtable instance.
type Options struct {
	// OrchestratorInstructions replace DefaultOrchestratorInstructions.
	OrchestratorInstructions string

	// SpecialistInstructions replace DefaultSpecialistInstructions.
	SpecialistInstructions string

	// SpecialistName is the specialist's display name. Defaults to
	// "Specialist".
	SpecialistName string

	// SpecialistCapabilities are the tool names granted to the specialist.
	// Defaults to every tool the provider enumerates. The orchestrator
	// always has an empty capability set.
	SpecialistCapabilities []string

	// MaxTurns is the hard ceiling on agent turns per conversation.
	// Defaults to engine.DefaultMaxTurns.
	MaxTurns int

	// Selection overrides the marker-based selection strategy.
	Selection strategy.Selection

	// Termination overrides the marker-based termination strategy.
	Termination strategy.Termination

	// MaxModelCalls limits model calls per agent turn. Zero keeps the
	// invoker default.
	MaxModelCalls int

	// MaxHistory truncates the history sent to the model to the most recent
	// n messages. Zero sends everything.
	MaxHistory int

	// Hooks observe the loop at turn boundaries.
	Hooks []engine.Hook

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Roundtable is the high-level façade aggregating the registry, the
// conversation and the loop.
type Roundtable struct {
	registry *agent.Registry
	conv     *core.Conversation
	loop     *engine.Loop
}

// New creates a Roundtable bound to a model and an optional tool provider.
// The provider is enumerated once here; enumeration or wiring failures are
// startup errors. A nil provider yields a specialist without tools.
func New(ctx context.Context, m model.Model, provider tool.Provider, optFns ...func(o *Options)) (*Roundtable, error) {
	opts := Options{
		OrchestratorInstructions: DefaultOrchestratorInstructions,
		SpecialistInstructions:   DefaultSpecialistInstructions,
		SpecialistName:           "Specialist",
		SpecialistCapabilities:   []string{agent.Wildcard},
		MaxTurns:                 engine.DefaultMaxTurns,
		Logger:                   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	orch, err := agent.NewDefinition(core.IdentityOrchestrator, opts.OrchestratorInstructions)
	if err != nil {
		return nil, err
	}

	spec, err := agent.NewDefinition(core.IdentitySpecialist, opts.SpecialistInstructions,
		agent.WithName(opts.SpecialistName),
		agent.WithCapabilities(opts.SpecialistCapabilities...),
	)
	if err != nil {
		return nil, err
	}

	registry, err := agent.NewRegistry(ctx, m, provider, []agent.Definition{orch, spec}, func(o *agent.RegistryOptions) {
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	conv := core.NewConversation()

	loop, err := engine.New(registry, conv, func(o *engine.Options) {
		o.MaxTurns = opts.MaxTurns
		if opts.Selection != nil {
			o.Selection = opts.Selection
		}
		if opts.Termination != nil {
			o.Termination = opts.Termination
		}
		o.Invoker = flow.NewInvoker(func(io *flow.InvokerOptions) {
			if opts.MaxModelCalls > 0 {
				io.MaxModelCalls = opts.MaxModelCalls
			}
			io.MaxHistory = opts.MaxHistory
			io.Logger = opts.Logger
		})
		o.Hooks = opts.Hooks
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	return &Roundtable{
		registry: registry,
		conv:     conv,
		loop:     loop,
	}, nil
}

// Ask runs one full conversation loop over the input and returns the
// orchestrator's visible messages. A completed conversation must be Reset
// before the next independent query; Ask reports
// engine.ErrConversationComplete otherwise.
func (r *Roundtable) Ask(ctx context.Context, input string) (*engine.Result, error) {
	return r.loop.Run(ctx, input)
}

// Reset clears the conversation for the next independent query.
func (r *Roundtable) Reset() error { return r.loop.Reset() }

// Registry returns the immutable agent registry.
func (r *Roundtable) Registry() *agent.Registry { return r.registry }

// Conversation returns the underlying conversation.
func (r *Roundtable) Conversation() *core.Conversation { return r.conv }
