// Command roundtable runs a bounded two-agent conversation as an
// interactive REPL. Each input line drives one full orchestration loop;
// "reset" starts a fresh conversation and "exit" quits. Configuration comes
// from an optional YAML file plus ROUNDTABLE_* environment overrides.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/roundtable"
	"github.com/hupe1980/roundtable/agent"
	"github.com/hupe1980/roundtable/config"
	"github.com/hupe1980/roundtable/core"
	"github.com/hupe1980/roundtable/engine"
	"github.com/hupe1980/roundtable/flow"
	"github.com/hupe1980/roundtable/logging"
	"github.com/hupe1980/roundtable/model"
	"github.com/hupe1980/roundtable/model/anthropic"
	"github.com/hupe1980/roundtable/model/openai"
	"github.com/hupe1980/roundtable/strategy"
	"github.com/hupe1980/roundtable/tool"
	"github.com/hupe1980/roundtable/tool/mcp"
)

const queryTimeout = 3 * time.Minute

func main() {
	configPath := flag.String("config", "roundtable.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.NewSlogLogger(logging.ParseLogLevel(cfg.Logger.Level), cfg.Logger.Format, false)

	m, err := buildModel(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	var provider tool.Provider

	if cfg.MCP.Enabled {
		mcpProvider, err := mcp.NewProvider(ctx, serverConfigs(cfg), func(o *mcp.Options) {
			o.Logger = logger
		})
		if err != nil {
			log.Fatalf("connect mcp servers: %v", err)
		}

		defer mcpProvider.Close()

		provider = mcpProvider
	}

	loop, registry, err := buildLoop(ctx, cfg, m, provider, logger)
	if err != nil {
		log.Fatalf("build loop: %v", err)
	}

	fmt.Println("=== Roundtable ===")
	fmt.Printf("Participants: %s\n", strings.Join(participantNames(registry), ", "))
	fmt.Println(`Type a request, "reset" to start a fresh conversation, "exit" to quit.`)

	repl(ctx, loop, registry)
}

// buildModel constructs the configured provider binding. The SDKs read
// their API keys from the environment; a missing key is a startup failure.
func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Model.Provider {
	case "openai":
		if os.Getenv("OPENAI_API_KEY") == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}

		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
			if cfg.Model.Temperature > 0 {
				o.Temperature = cfg.Model.Temperature
			}
			if cfg.Model.MaxTokens > 0 {
				o.MaxCompletionTokens = cfg.Model.MaxTokens
			}
		}), nil
	case "anthropic":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
		}

		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Model.Name)
			}
			if cfg.Model.Temperature > 0 {
				o.Temperature = cfg.Model.Temperature
			}
			if cfg.Model.MaxTokens > 0 {
				o.MaxTokens = cfg.Model.MaxTokens
			}
		}), nil
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.Model.Provider)
	}
}

// buildLoop wires the registry, the strategies and the orchestration loop
// from configuration.
func buildLoop(ctx context.Context, cfg *config.Config, m model.Model, provider tool.Provider, logger logging.Logger) (*engine.Loop, *agent.Registry, error) {
	orchInstructions := cfg.Agents.OrchestratorInstructions
	if orchInstructions == "" {
		orchInstructions = roundtable.DefaultOrchestratorInstructions
	}

	specInstructions := cfg.Agents.SpecialistInstructions
	if specInstructions == "" {
		specInstructions = roundtable.DefaultSpecialistInstructions
	}

	orch, err := agent.NewDefinition(core.IdentityOrchestrator, orchInstructions)
	if err != nil {
		return nil, nil, err
	}

	spec, err := agent.NewDefinition(core.IdentitySpecialist, specInstructions,
		agent.WithName(cfg.Agents.SpecialistName),
		agent.WithCapabilities(cfg.Agents.SpecialistCapabilities...),
	)
	if err != nil {
		return nil, nil, err
	}

	registry, err := agent.NewRegistry(ctx, m, provider, []agent.Definition{orch, spec}, func(o *agent.RegistryOptions) {
		o.Logger = logger
	})
	if err != nil {
		return nil, nil, err
	}

	selection := buildSelection(cfg, m, registry)
	termination := buildTermination(cfg, m)

	conv := core.NewConversation()

	loop, err := engine.New(registry, conv, func(o *engine.Options) {
		o.MaxTurns = cfg.Loop.MaxTurns
		o.Selection = selection
		o.Termination = termination
		o.Invoker = flow.NewInvoker(func(io *flow.InvokerOptions) {
			io.MaxModelCalls = cfg.Loop.MaxModelCalls
			io.MaxHistory = cfg.Loop.MaxHistory
			io.Logger = logger
		})
		o.Logger = logger
	})
	if err != nil {
		return nil, nil, err
	}

	return loop, registry, nil
}

func buildSelection(cfg *config.Config, m model.Model, registry *agent.Registry) strategy.Selection {
	if cfg.Strategy.Selection == "model" {
		return strategy.NewModelSelection(m, participantNames(registry), registry.Resolve)
	}

	return strategy.NewMarkerSelection(func(o *strategy.MarkerSelectionOptions) {
		o.DelegationMarker = cfg.Strategy.DelegationMarker
	})
}

func buildTermination(cfg *config.Config, m model.Model) strategy.Termination {
	if cfg.Strategy.Termination == "model" {
		return strategy.NewModelTermination(m)
	}

	return strategy.NewMarkerTermination(func(o *strategy.MarkerTerminationOptions) {
		o.ContinuationMarker = cfg.Strategy.ContinuationMarker
	})
}

// repl reads input lines and runs one orchestration loop per line. Runtime
// failures never exit the process; they print as error lines and the next
// prompt follows.
func repl(ctx context.Context, loop *engine.Loop, registry *agent.Registry) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\n> ")

		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "exit":
			return
		case "reset":
			if err := loop.Reset(); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}

			fmt.Println("Conversation reset.")

			continue
		}

		runCtx, cancel := context.WithTimeout(ctx, queryTimeout)
		result, err := loop.Run(runCtx, line)

		cancel()

		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		printResult(result, registry)
	}
}

func printResult(result *engine.Result, registry *agent.Registry) {
	if len(result.Messages) == 0 {
		fmt.Println("(no visible response)")
		return
	}

	for _, msg := range result.Messages {
		fmt.Printf("\n[%s]\n%s\n", displayName(registry, msg.Author), msg.Text())
	}

	if result.Reason == engine.ReasonMaxTurns {
		fmt.Printf("(stopped after %d turns; \"reset\" to start over)\n", result.Turns)
	}
}

func participantNames(registry *agent.Registry) []string {
	var names []string

	for _, id := range registry.Identities() {
		names = append(names, displayName(registry, id))
	}

	return names
}

func displayName(registry *agent.Registry, id core.Identity) string {
	if def, ok := registry.Lookup(id); ok {
		return def.Name()
	}

	return id.String()
}

func serverConfigs(cfg *config.Config) []mcp.ServerConfig {
	servers := make([]mcp.ServerConfig, 0, len(cfg.MCP.Servers))
	for _, s := range cfg.MCP.Servers {
		servers = append(servers, mcp.ServerConfig{
			Name:      s.Name,
			Transport: s.Transport,
			Command:   s.Command,
			Args:      s.Args,
			Env:       s.Env,
			URL:       s.URL,
		})
	}

	return servers
}
