package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the conversational role of a message as seen by models.
type Role string

const (
	// RoleUser marks input originating from the external user.
	RoleUser Role = "user"
	// RoleAssistant marks content produced by an agent.
	RoleAssistant Role = "assistant"
	// RoleTool marks intermediate tool results produced during a turn.
	RoleTool Role = "tool"
)

// Message is the unit of conversation history. Once appended to a
// Conversation it is treated as immutable. Author carries the closed
// identity used by decision logic; Role carries the model-facing
// conversational role; Parts hold the ordered heterogeneous content.
type Message struct {
	ID        string    `json:"id"`
	Author    Identity  `json:"author"`
	Role      Role      `json:"role"`
	Parts     []Part    `json:"parts"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message authored by the given identity.
func NewMessage(author Identity, role Role, parts ...Part) Message {
	return Message{
		ID:        NewID(),
		Author:    author,
		Role:      role,
		Parts:     parts,
		Timestamp: time.Now().UTC(),
	}
}

// NewTextMessage creates a message carrying a single text part.
func NewTextMessage(author Identity, role Role, text string) Message {
	return NewMessage(author, role, TextPart{Text: text})
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return NewTextMessage(IdentityUser, RoleUser, text)
}

// NewAssistantMessage creates an agent-authored text message.
func NewAssistantMessage(author Identity, text string) Message {
	return NewTextMessage(author, RoleAssistant, text)
}

// NewFunctionResponseMessage records the completion result (or error) of a
// tool invocation performed during the author's turn. If err is non-nil its
// message is copied into the response's Error field.
func NewFunctionResponseMessage(author Identity, id, name string, result interface{}, err error) Message {
	fr := FunctionResponse{ID: id, Name: name, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	return NewMessage(author, RoleTool, FunctionResponsePart{FunctionResponse: fr})
}

// NewID generates a new unique identifier for messages.
func NewID() string { return uuid.NewString() }

// Text concatenates all text parts preserving order. Messages carrying only
// function calls or responses yield an empty string.
func (m Message) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}

// FunctionCalls returns any FunctionCall parts contained within the message
// preserving their original order.
func (m Message) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// FunctionResponses returns any FunctionResponse parts contained within the
// message preserving their original order.
func (m Message) FunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range m.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// IsFinalResponse reports whether the message completes an agent turn: no
// function calls remain pending and it is not itself a tool result.
func (m Message) IsFinalResponse() bool {
	return len(m.FunctionCalls()) == 0 && len(m.FunctionResponses()) == 0
}
