// Package agent defines the immutable participant setup of a roundtable:
//
//   - Definition (identity, display name, instructions, capability names)
//   - Registry (the fixed agent set, built once at startup against the
//     model binding and the tool provider's single capability enumeration)
//   - Scope (per-agent read-only view over the shared model plus exactly
//     the tool bindings that agent is authorized to use)
//
// Scopes never share mutable binding sets; an agent granted no capabilities
// receives an empty scope and can never reach a tool, even indirectly.
package agent
