// Package engine implements the orchestration loop that drives a
// multi-agent conversation.
//
// The Loop composes the selection strategy, the turn invoker and the
// termination strategy into a bounded turn cycle over a single
// conversation. It owns the control flow; the pieces it composes stay
// swappable for testing.
//
// # State Machine
//
// A run advances through a fixed set of states:
//
//	Idle -> Selecting -> Invoking -> Evaluating -> {Looping | Terminated}
//
//   - Idle: waiting for user input (initial and post-reset state).
//   - Selecting: the selection strategy names the next speaker. A failure
//     here falls back to the orchestrator; selection never aborts a run.
//   - Invoking: the chosen agent takes one turn through its capability
//     scope. Every message the turn produces is appended to the
//     conversation and the turn counter advances by one, whether the turn
//     succeeded or failed.
//   - Evaluating: the turn ceiling is checked first and wins
//     unconditionally; only then is the termination strategy consulted.
//   - Looping: back to Selecting for another turn.
//   - Terminated: the conversation is marked complete and control returns
//     to the caller.
//
// # Failure Containment
//
// Per-turn failures never escape a run. An agent whose turn fails gets a
// visible in-conversation message attributed to it, the turn still counts,
// and the loop proceeds to Evaluating. Strategy failures degrade to safe
// defaults (orchestrator, keep going). The only errors Run returns concern
// the conversation itself: it is busy, or it is complete and needs a reset.
//
// # Lifecycle Hooks
//
// Hooks observe the loop at turn boundaries without modifying its logic.
// A BeforeTurn hook may veto a turn by returning an error; the veto is
// treated like any other turn failure.
package engine
