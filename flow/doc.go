// Package flow executes single agent turns.
//
// The Invoker drives one request -> model -> (optional tool loop) cycle for
// a scoped agent: it renders the agent's instructions, sends the
// conversation history together with the scope's tool declarations to the
// model, executes any requested tool calls through the scope, and feeds the
// results back until the model produces a final textual response. All
// messages produced along the way are returned in emission order so the
// caller can append them to the conversation.
//
// Tool calls run sequentially in request order; message order is a protocol
// invariant of the conversation, so no parallel dispatch happens here. A
// per-turn call limiter bounds runaway tool loops.
package flow
