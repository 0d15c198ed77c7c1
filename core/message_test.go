package core

import (
	"errors"
	"testing"
)

func TestMessage_TextConcatenatesParts(t *testing.T) {
	m := NewMessage(IdentityOrchestrator, RoleAssistant,
		TextPart{Text: "Hello, "},
		FunctionCallPart{FunctionCall: FunctionCall{Name: "lookup"}},
		TextPart{Text: "world"},
	)
	if got := m.Text(); got != "Hello, world" {
		t.Errorf("Text() = %q, want %q", got, "Hello, world")
	}
}

func TestMessage_FunctionCallExtraction(t *testing.T) {
	m := NewMessage(IdentitySpecialist, RoleAssistant,
		FunctionCallPart{FunctionCall: FunctionCall{ID: "c1", Name: "repo_info", Arguments: `{"repo":"x"}`}},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "c2", Name: "repo_info"}},
	)
	calls := m.FunctionCalls()
	if len(calls) != 2 || calls[0].ID != "c1" || calls[1].ID != "c2" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	if m.IsFinalResponse() {
		t.Error("message with pending calls must not be final")
	}
}

func TestNewFunctionResponseMessage(t *testing.T) {
	m := NewFunctionResponseMessage(IdentitySpecialist, "c1", "repo_info", nil, errors.New("boom"))
	if m.Role != RoleTool {
		t.Errorf("role = %q, want %q", m.Role, RoleTool)
	}
	responses := m.FunctionResponses()
	if len(responses) != 1 || responses[0].Error != "boom" {
		t.Fatalf("unexpected responses: %+v", responses)
	}
	if m.IsFinalResponse() {
		t.Error("tool result must not be final")
	}
}

func TestNewUserMessage(t *testing.T) {
	m := NewUserMessage("hi")
	if m.Author != IdentityUser || m.Role != RoleUser {
		t.Errorf("unexpected author/role: %v/%v", m.Author, m.Role)
	}
	if m.ID == "" {
		t.Error("expected generated id")
	}
	if !m.IsFinalResponse() {
		t.Error("plain text message is final")
	}
}
