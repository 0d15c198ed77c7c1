// Package strategy contains the two decision functions that drive a
// conversation forward:
//
//   - Selection: inspects the conversation history and names the agent that
//     takes the next turn.
//   - Termination: inspects the history, restricted to a configured set of
//     authors, and decides whether the conversation is finished.
//
// Both come in a deterministic marker-matching flavor and a model-backed
// flavor. Strategy failures are recoverable: the loop falls back to the
// orchestrator when selection fails and keeps going when termination fails,
// so a misbehaving strategy can degrade a conversation but never abort it.
package strategy
