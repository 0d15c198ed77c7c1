package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level CLI configuration.
type Config struct {
	Logger   LoggerConfig   `yaml:"logger"`
	Model    ModelConfig    `yaml:"model"`
	Loop     LoopConfig     `yaml:"loop"`
	Strategy StrategyConfig `yaml:"strategy"`
	Agents   AgentsConfig   `yaml:"agents"`
	MCP      MCPConfig      `yaml:"mcp"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// ModelConfig selects the backing language model. API keys are never part of
// the file; the provider SDKs read them from their usual environment
// variables.
type ModelConfig struct {
	Provider    string  `yaml:"provider"` // openai or anthropic
	Name        string  `yaml:"name,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int64   `yaml:"max_tokens,omitempty"`
}

// LoopConfig holds turn-taking limits.
type LoopConfig struct {
	// MaxTurns caps agent turns per run.
	MaxTurns int `yaml:"max_turns"`

	// MaxModelCalls caps model calls within a single agent turn.
	MaxModelCalls int `yaml:"max_model_calls"`

	// MaxHistory truncates the history handed to agents. Zero keeps
	// everything.
	MaxHistory int `yaml:"max_history,omitempty"`
}

// StrategyConfig selects how the next speaker and the stopping point are
// decided.
type StrategyConfig struct {
	Selection          string `yaml:"selection"`   // marker or model
	Termination        string `yaml:"termination"` // marker or model
	DelegationMarker   string `yaml:"delegation_marker"`
	ContinuationMarker string `yaml:"continuation_marker"`
}

// AgentsConfig holds the participant definitions. Empty instruction fields
// fall back to the built-in prompts.
type AgentsConfig struct {
	OrchestratorInstructions string   `yaml:"orchestrator_instructions,omitempty"`
	SpecialistName           string   `yaml:"specialist_name"`
	SpecialistInstructions   string   `yaml:"specialist_instructions,omitempty"`
	SpecialistCapabilities   []string `yaml:"specialist_capabilities"`
}

// MCPConfig holds Model Context Protocol server connections. When disabled
// the specialist runs without external tools.
type MCPConfig struct {
	Enabled bool           `yaml:"enabled"`
	Servers []ServerConfig `yaml:"servers,omitempty"`
}

// ServerConfig configures one MCP server connection.
type ServerConfig struct {
	Name      string            `yaml:"name"`
	Transport string            `yaml:"transport"` // stdio or http
	Command   string            `yaml:"command,omitempty"`
	Args      []string          `yaml:"args,omitempty"`
	URL       string            `yaml:"url,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
}

// Defaults returns a Config with sensible defaults. The marker strings
// mirror the strategy package defaults.
func Defaults() *Config {
	return &Config{
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
		},
		Model: ModelConfig{
			Provider: "openai",
		},
		Loop: LoopConfig{
			MaxTurns:      3,
			MaxModelCalls: 10,
		},
		Strategy: StrategyConfig{
			Selection:          "marker",
			Termination:        "marker",
			DelegationMarker:   "Asking",
			ContinuationMarker: "anything else",
		},
		Agents: AgentsConfig{
			SpecialistName:         "Specialist",
			SpecialistCapabilities: []string{"*"},
		},
	}
}

// Load reads a YAML config file and applies env var overrides. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}

			return cfg, nil
		}

		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps ROUNDTABLE_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROUNDTABLE_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("ROUNDTABLE_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("ROUNDTABLE_MODEL_PROVIDER"); v != "" {
		cfg.Model.Provider = v
	}
	if v := os.Getenv("ROUNDTABLE_MODEL_NAME"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("ROUNDTABLE_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Loop.MaxTurns = n
		}
	}
	if v := os.Getenv("ROUNDTABLE_MAX_MODEL_CALLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Loop.MaxModelCalls = n
		}
	}
	if v := os.Getenv("ROUNDTABLE_SELECTION"); v != "" {
		cfg.Strategy.Selection = v
	}
	if v := os.Getenv("ROUNDTABLE_TERMINATION"); v != "" {
		cfg.Strategy.Termination = v
	}
	if v := os.Getenv("ROUNDTABLE_DELEGATION_MARKER"); v != "" {
		cfg.Strategy.DelegationMarker = v
	}
	if v := os.Getenv("ROUNDTABLE_CONTINUATION_MARKER"); v != "" {
		cfg.Strategy.ContinuationMarker = v
	}
	if v := os.Getenv("ROUNDTABLE_SPECIALIST_NAME"); v != "" {
		cfg.Agents.SpecialistName = v
	}
	if v := os.Getenv("ROUNDTABLE_SPECIALIST_CAPABILITIES"); v != "" {
		cfg.Agents.SpecialistCapabilities = splitAndTrim(v, ",")
	}
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}
