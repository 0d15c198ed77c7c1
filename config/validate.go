package config

import (
	"fmt"
	"strings"
)

// ValidationError accumulates config validation errors so a broken file
// reports every problem at once.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

var validProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
}

var validStrategyModes = map[string]bool{
	"marker": true,
	"model":  true,
}

var validTransports = map[string]bool{
	"stdio": true,
	"http":  true,
}

// Validate checks cfg for structural correctness. It returns a
// *ValidationError when one or more problems are found.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateLogger(cfg, ve)
	validateModel(cfg, ve)
	validateLoop(cfg, ve)
	validateStrategy(cfg, ve)
	validateAgents(cfg, ve)
	validateMCP(cfg, ve)

	if ve.HasErrors() {
		return ve
	}

	return nil
}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogLevels[cfg.Logger.Level] {
		ve.Add("logger.level %q is not one of debug, info, warn, error", cfg.Logger.Level)
	}
	if !validLogFormats[cfg.Logger.Format] {
		ve.Add("logger.format %q is not one of text, json", cfg.Logger.Format)
	}
}

func validateModel(cfg *Config, ve *ValidationError) {
	if !validProviders[cfg.Model.Provider] {
		ve.Add("model.provider %q is not one of openai, anthropic", cfg.Model.Provider)
	}
	if cfg.Model.Temperature < 0 {
		ve.Add("model.temperature must not be negative")
	}
	if cfg.Model.MaxTokens < 0 {
		ve.Add("model.max_tokens must not be negative")
	}
}

func validateLoop(cfg *Config, ve *ValidationError) {
	if cfg.Loop.MaxTurns <= 0 {
		ve.Add("loop.max_turns must be > 0")
	}
	if cfg.Loop.MaxModelCalls <= 0 {
		ve.Add("loop.max_model_calls must be > 0")
	}
	if cfg.Loop.MaxHistory < 0 {
		ve.Add("loop.max_history must not be negative")
	}
}

func validateStrategy(cfg *Config, ve *ValidationError) {
	if !validStrategyModes[cfg.Strategy.Selection] {
		ve.Add("strategy.selection %q is not one of marker, model", cfg.Strategy.Selection)
	}
	if !validStrategyModes[cfg.Strategy.Termination] {
		ve.Add("strategy.termination %q is not one of marker, model", cfg.Strategy.Termination)
	}
	if strings.TrimSpace(cfg.Strategy.DelegationMarker) == "" {
		ve.Add("strategy.delegation_marker must not be empty")
	}
	if strings.TrimSpace(cfg.Strategy.ContinuationMarker) == "" {
		ve.Add("strategy.continuation_marker must not be empty")
	}
}

func validateAgents(cfg *Config, ve *ValidationError) {
	if strings.TrimSpace(cfg.Agents.SpecialistName) == "" {
		ve.Add("agents.specialist_name must not be empty")
	}
}

func validateMCP(cfg *Config, ve *ValidationError) {
	if !cfg.MCP.Enabled {
		return
	}

	if len(cfg.MCP.Servers) == 0 {
		ve.Add("mcp.servers must not be empty when mcp is enabled")
	}

	seen := map[string]bool{}

	for i, srv := range cfg.MCP.Servers {
		if srv.Name == "" {
			ve.Add("mcp.servers[%d].name must not be empty", i)
		} else if seen[srv.Name] {
			ve.Add("mcp.servers[%d].name %q is duplicated", i, srv.Name)
		}

		seen[srv.Name] = true

		switch {
		case !validTransports[srv.Transport]:
			ve.Add("mcp.servers[%d].transport %q is not one of stdio, http", i, srv.Transport)
		case srv.Transport == "stdio" && srv.Command == "":
			ve.Add("mcp.servers[%d].command is required for stdio transport", i)
		case srv.Transport == "http" && srv.URL == "":
			ve.Add("mcp.servers[%d].url is required for http transport", i)
		}
	}
}
