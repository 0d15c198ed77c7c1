package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/roundtable/core"
)

// ErrNoResponse is returned by Collect when a model closes its channels
// without producing a final response or an error.
var ErrNoResponse = errors.New("model: no final response")

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (draft agnostic, minimal subset
// expected).
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by the turn executor
// and the model-backed strategies. Instructions carry the system prompt;
// Messages carry the conversation history in strict order.
type Request struct {
	Instructions string           `json:"instructions"`
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model. Parts carry the
// produced content; the author identity is stamped by the caller, since
// models are shared across agents.
type Response struct {
	Partial      bool        `json:"partial"`
	Parts        []core.Part `json:"parts"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Text concatenates the text parts of the response.
func (r Response) Text() string {
	var out string
	for _, p := range r.Parts {
		if tp, ok := p.(core.TextPart); ok {
			out += tp.Text
		}
	}
	return out
}

// FunctionCalls returns any function call parts in emission order.
func (r Response) FunctionCalls() []core.FunctionCall {
	var calls []core.FunctionCall
	for _, p := range r.Parts {
		if fc, ok := p.(core.FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required to drive generation. Generate
// returns a response channel and an error channel; both are closed when the
// call finishes. At most one error is emitted per call.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Collect drains a single Generate call to completion and returns its final
// response. It is the synchronous consumption point used by the turn
// executor and the model-backed strategies; by the time it returns, the
// model call is fully resolved.
func Collect(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var final Response
	var got bool
	for respCh != nil || errCh != nil {
		select {
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !r.Partial {
				final = r
				got = true
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
	if !got {
		return Response{}, ErrNoResponse
	}
	return final, nil
}

// MockTurn is one scripted MockModel emission: either a set of parts or an
// error.
type MockTurn struct {
	Parts []core.Part
	Err   error
}

// MockModel is a deterministic in-memory Model for tests and offline
// examples. Scripted turns are consumed in order; when the script is
// exhausted it falls back to prompt-keyed canned responses, then to a
// generic echo. All received requests are recorded for assertions.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	script    []MockTurn
	responses map[string]string
	requests  []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// EnqueueText appends a scripted plain-text turn.
func (m *MockModel) EnqueueText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, MockTurn{Parts: []core.Part{core.TextPart{Text: text}}})
}

// EnqueueParts appends a scripted turn with arbitrary parts (e.g. function
// calls).
func (m *MockModel) EnqueueParts(parts ...core.Part) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, MockTurn{Parts: parts})
}

// EnqueueError appends a scripted failing turn.
func (m *MockModel) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, MockTurn{Err: err})
}

// AddResponse registers a canned completion keyed by the text of the last
// request message. Used when no scripted turns remain.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Requests returns a copy of all requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

func (m *MockModel) next(req Request) MockTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.script) > 0 {
		turn := m.script[0]
		m.script = m.script[1:]
		return turn
	}

	var inputText string
	if len(req.Messages) > 0 {
		inputText = req.Messages[len(req.Messages)-1].Text()
	}
	full := m.responses[inputText]
	if full == "" {
		full = fmt.Sprintf("Mock response to: %s", inputText)
	}
	return MockTurn{Parts: []core.Part{core.TextPart{Text: full}}}
}

// Generate implements Model; emits optional streaming text chunks then the
// final response, or the scripted error.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}

		turn := m.next(req)
		if turn.Err != nil {
			errCh <- turn.Err
			return
		}

		if req.Stream {
			for _, r := range turn.Parts {
				tp, ok := r.(core.TextPart)
				if !ok {
					continue
				}
				for _, ch := range tp.Text {
					select {
					case <-ctx.Done():
						errCh <- ctx.Err()
						return
					case respCh <- Response{Partial: true, Parts: []core.Part{core.TextPart{Text: string(ch)}}}:
					}
				}
			}
		}

		respCh <- Response{Partial: false, Parts: turn.Parts, FinishReason: "stop"}
	}()

	return respCh, errCh
}

// Info implements the Model interface.
func (m *MockModel) Info() Info { return m.info }
