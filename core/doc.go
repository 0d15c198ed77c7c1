// Package core provides the foundational domain types used by every layer of
// Roundtable. It defines the core abstractions for:
//
//   - Identity (the closed set of conversation participants)
//   - Message and its content Parts (immutable communication records)
//   - Conversation (ordered message log with turn counter and completion
//     flag, owned by exactly one orchestration loop at a time)
//
// The package intentionally keeps implementation concerns (model transports,
// tool execution, loop orchestration, configuration) out of scope so that
// higher layers can depend on it without cycles.
package core
