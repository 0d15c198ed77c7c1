// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with language models inside Roundtable.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate deterministic mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (flow, strategies, engine) remain decoupled from
// vendor SDKs.
package model
