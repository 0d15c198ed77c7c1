// Package tool implements the capability subsystem that lets agents invoke
// structured external functions (APIs, computations, side effects) with
// schema validated arguments and consistent error handling. Capability sets
// are enumerated once at startup through a Provider and bound to agents by
// the registry; agents without bindings can never reach a tool.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/roundtable/internal/util"
)

// Tool defines the interface for a single external capability.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case recommended)
//   - Define a proper JSON schema for parameters
//   - Handle errors gracefully and be safe for repeated calls
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool
	// does. It is surfaced to models to guide function calling.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]interface{}

	// Call executes the tool with already-decoded arguments. Implementations
	// must respect context cancellation for transport-backed tools.
	Call(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Provider enumerates the tool bindings available to the agent registry.
// ListCapabilities is consulted exactly once at startup; implementations may
// keep live transport connections that the returned tools use afterwards.
// A provider construction or enumeration failure is fatal to startup.
type Provider interface {
	ListCapabilities(ctx context.Context) ([]Tool, error)
}

// StaticProvider serves a fixed, in-process tool set. It is the provider of
// choice for built-in function tools and for tests.
type StaticProvider struct {
	tools []Tool
}

// NewStaticProvider creates a provider over the given tools.
func NewStaticProvider(tools ...Tool) *StaticProvider {
	return &StaticProvider{tools: tools}
}

// ListCapabilities returns a copy of the registered tool set.
func (p *StaticProvider) ListCapabilities(_ context.Context) ([]Tool, error) {
	tools := make([]Tool, len(p.tools))
	copy(tools, p.tools)
	return tools, nil
}

// ValidationError represents parameter validation errors with detailed
// information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string      `json:"tool"`              // Name of the tool that failed
	Message string      `json:"message"`           // Error message
	Code    string      `json:"code"`              // Error code for categorization
	Details interface{} `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
