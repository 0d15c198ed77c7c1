package model

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/roundtable/core"
)

func TestMockModel_ScriptOrder(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.EnqueueText("first")
	m.EnqueueText("second")

	req := Request{Messages: []core.Message{core.NewUserMessage("hi")}}

	for _, want := range []string{"first", "second"} {
		resp, err := Collect(context.Background(), m, req)
		if err != nil {
			t.Fatalf("collect: %v", err)
		}
		if got := resp.Text(); got != want {
			t.Errorf("scripted response = %q, want %q", got, want)
		}
	}
}

func TestMockModel_KeyedFallback(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddResponse("hi", "hello there")

	resp, err := Collect(context.Background(), m, Request{Messages: []core.Message{core.NewUserMessage("hi")}})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if resp.Text() != "hello there" {
		t.Errorf("keyed response = %q", resp.Text())
	}

	resp, err = Collect(context.Background(), m, Request{Messages: []core.Message{core.NewUserMessage("unknown")}})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if resp.Text() != "Mock response to: unknown" {
		t.Errorf("echo response = %q", resp.Text())
	}
}

func TestMockModel_ScriptedError(t *testing.T) {
	m := NewMockModel("mock", "mock")
	boom := errors.New("upstream down")
	m.EnqueueError(boom)

	_, err := Collect(context.Background(), m, Request{Messages: []core.Message{core.NewUserMessage("hi")}})
	if !errors.Is(err, boom) {
		t.Errorf("collect err = %v, want scripted error", err)
	}
}

func TestMockModel_RecordsRequests(t *testing.T) {
	m := NewMockModel("mock", "mock")
	req := Request{
		Instructions: "be brief",
		Messages:     []core.Message{core.NewUserMessage("hi")},
		Tools:        []ToolDefinition{{Type: "function", Function: FunctionDefinition{Name: "repo_info"}}},
	}
	if _, err := Collect(context.Background(), m, req); err != nil {
		t.Fatalf("collect: %v", err)
	}

	reqs := m.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 recorded request, got %d", len(reqs))
	}
	if len(reqs[0].Tools) != 1 || reqs[0].Tools[0].Function.Name != "repo_info" {
		t.Errorf("tools not recorded: %+v", reqs[0].Tools)
	}
}

func TestCollect_StreamingPartials(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.EnqueueText("abc")

	resp, err := Collect(context.Background(), m, Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
		Stream:   true,
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if resp.Text() != "abc" {
		t.Errorf("final response = %q, want full text despite partial chunks", resp.Text())
	}
}

func TestResponse_FunctionCalls(t *testing.T) {
	r := Response{Parts: []core.Part{
		core.TextPart{Text: "calling"},
		core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "c1", Name: "repo_info"}},
	}}
	calls := r.FunctionCalls()
	if len(calls) != 1 || calls[0].Name != "repo_info" {
		t.Errorf("unexpected calls: %+v", calls)
	}
	if r.Text() != "calling" {
		t.Errorf("text = %q", r.Text())
	}
}
