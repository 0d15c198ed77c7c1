package testutil

import "github.com/hupe1980/roundtable/core"

// Transcript provides a fluent helper for constructing message histories in
// tests. Example:
//
//	history := NewTranscript().
//		User("What is repo X about?").
//		Orchestrator("Asking Specialist to look it up").
//		Specialist("Repo X is a YAML parser.").
//		Messages()
//
// Chain only the turns you need; each call appends one message in order.
type Transcript struct {
	messages []core.Message
}

// NewTranscript creates an empty transcript builder.
func NewTranscript() *Transcript { return &Transcript{} }

// User appends a user-authored text message (chainable).
func (t *Transcript) User(text string) *Transcript {
	t.messages = append(t.messages, core.NewUserMessage(text))
	return t
}

// Orchestrator appends an orchestrator-authored assistant message (chainable).
func (t *Transcript) Orchestrator(text string) *Transcript {
	t.messages = append(t.messages, core.NewAssistantMessage(core.IdentityOrchestrator, text))
	return t
}

// Specialist appends a specialist-authored assistant message (chainable).
func (t *Transcript) Specialist(text string) *Transcript {
	t.messages = append(t.messages, core.NewAssistantMessage(core.IdentitySpecialist, text))
	return t
}

// FunctionCall appends an assistant message carrying a single function call
// part with the provided name and JSON argument string (chainable).
func (t *Transcript) FunctionCall(author core.Identity, id, name, args string) *Transcript {
	t.messages = append(t.messages, core.NewMessage(author, core.RoleAssistant,
		core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: id, Name: name, Arguments: args}}))
	return t
}

// FunctionResponse appends a tool-role message recording the outcome of a
// function call (chainable).
func (t *Transcript) FunctionResponse(author core.Identity, id, name string, result interface{}, err error) *Transcript {
	t.messages = append(t.messages, core.NewFunctionResponseMessage(author, id, name, result, err))
	return t
}

// Add appends an arbitrary prebuilt message (chainable).
func (t *Transcript) Add(msg core.Message) *Transcript {
	t.messages = append(t.messages, msg)
	return t
}

// Messages returns the accumulated history. The returned slice is a copy so
// callers may append to it without affecting the builder.
func (t *Transcript) Messages() []core.Message {
	out := make([]core.Message, len(t.messages))
	copy(out, t.messages)
	return out
}
