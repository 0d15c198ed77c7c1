package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/roundtable/agent"
	"github.com/hupe1980/roundtable/core"
	"github.com/hupe1980/roundtable/internal/testutil"
	"github.com/hupe1980/roundtable/model"
	"github.com/hupe1980/roundtable/tool"
)

func setupAgent(t *testing.T, m model.Model, tools ...tool.Tool) (agent.Definition, *agent.Scope) {
	t.Helper()

	names := make([]string, 0, len(tools))
	for _, tl := range tools {
		names = append(names, tl.Name())
	}

	def, err := agent.NewDefinition(core.IdentitySpecialist, "You are {{.name}}. Fetch repository data.",
		agent.WithName("GitHubSpecialist"),
		agent.WithCapabilities(names...),
	)
	require.NoError(t, err)

	registry, err := agent.NewRegistry(context.Background(), m, tool.NewStaticProvider(tools...), []agent.Definition{def})
	require.NoError(t, err)

	scope, ok := registry.Scope(core.IdentitySpecialist)
	require.True(t, ok)

	return def, scope
}

func fetchTool(t *testing.T, fn func(ctx context.Context, args map[string]interface{}) (interface{}, error)) tool.Tool {
	t.Helper()

	return tool.NewFunctionTool("fetch_repo", "Fetches repository metadata.", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"repo": map[string]interface{}{"type": "string"},
		},
	}, fn)
}

func TestInvokerPlainTurn(t *testing.T) {
	ctx := context.Background()
	m := model.NewMockModel("mock", "mock")
	m.EnqueueText("Repo X is a YAML parser.")

	def, scope := setupAgent(t, m)

	inv := NewInvoker()
	history := []core.Message{core.NewUserMessage("What is repo X about?")}

	produced, err := inv.Invoke(ctx, def, scope, history)
	require.NoError(t, err)
	require.Len(t, produced, 1)

	assert.Equal(t, core.IdentitySpecialist, produced[0].Author)
	assert.Equal(t, core.RoleAssistant, produced[0].Role)
	assert.Equal(t, "Repo X is a YAML parser.", produced[0].Text())
}

func TestInvokerRendersInstructions(t *testing.T) {
	ctx := context.Background()
	m := model.NewMockModel("mock", "mock")
	m.EnqueueText("done")

	def, scope := setupAgent(t, m)

	inv := NewInvoker()
	_, err := inv.Invoke(ctx, def, scope, []core.Message{core.NewUserMessage("hi")})
	require.NoError(t, err)

	requests := m.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "You are GitHubSpecialist. Fetch repository data.", requests[0].Instructions)
}

func TestInvokerToolLoop(t *testing.T) {
	ctx := context.Background()

	var gotArgs map[string]interface{}
	tl := fetchTool(t, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		gotArgs = args
		return map[string]interface{}{"stars": 42}, nil
	})

	m := model.NewMockModel("mock", "mock")
	m.EnqueueParts(core.FunctionCallPart{FunctionCall: core.FunctionCall{
		ID:        "call-1",
		Name:      "fetch_repo",
		Arguments: `{"repo":"X"}`,
	}})
	m.EnqueueText("Repo X has 42 stars.")

	def, scope := setupAgent(t, m, tl)

	inv := NewInvoker()
	history := []core.Message{core.NewUserMessage("How popular is repo X?")}

	produced, err := inv.Invoke(ctx, def, scope, history)
	require.NoError(t, err)
	require.Len(t, produced, 3)

	assert.Equal(t, map[string]interface{}{"repo": "X"}, gotArgs)

	// Call request, tool response, final answer.
	require.Len(t, produced[0].FunctionCalls(), 1)
	responses := produced[1].FunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "call-1", responses[0].ID)
	assert.Empty(t, responses[0].Error)
	assert.Equal(t, core.RoleTool, produced[1].Role)
	assert.Equal(t, "Repo X has 42 stars.", produced[2].Text())

	// The second model call must have seen the tool response.
	requests := m.Requests()
	require.Len(t, requests, 2)
	assert.Len(t, requests[1].Messages, 3)
}

func TestInvokerOutOfScopeTool(t *testing.T) {
	ctx := context.Background()

	m := model.NewMockModel("mock", "mock")
	m.EnqueueParts(core.FunctionCallPart{FunctionCall: core.FunctionCall{
		ID:   "call-1",
		Name: "delete_repo",
	}})
	m.EnqueueText("I could not do that.")

	def, scope := setupAgent(t, m) // empty scope

	inv := NewInvoker()
	produced, err := inv.Invoke(ctx, def, scope, []core.Message{core.NewUserMessage("delete repo X")})
	require.NoError(t, err)
	require.Len(t, produced, 3)

	responses := produced[1].FunctionResponses()
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].Error, "tool delete_repo not found")
}

func TestInvokerBadArguments(t *testing.T) {
	ctx := context.Background()

	tl := fetchTool(t, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		t.Fatal("tool must not run on undecodable arguments")
		return nil, nil
	})

	m := model.NewMockModel("mock", "mock")
	m.EnqueueParts(core.FunctionCallPart{FunctionCall: core.FunctionCall{
		ID:        "call-1",
		Name:      "fetch_repo",
		Arguments: `{not json`,
	}})
	m.EnqueueText("Something went wrong with the lookup.")

	def, scope := setupAgent(t, m, tl)

	inv := NewInvoker()
	produced, err := inv.Invoke(ctx, def, scope, []core.Message{core.NewUserMessage("hi")})
	require.NoError(t, err)

	responses := produced[1].FunctionResponses()
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].Error, "unmarshal")
}

func TestInvokerToolPanic(t *testing.T) {
	ctx := context.Background()

	tl := fetchTool(t, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		panic("boom")
	})

	m := model.NewMockModel("mock", "mock")
	m.EnqueueParts(core.FunctionCallPart{FunctionCall: core.FunctionCall{
		ID:   "call-1",
		Name: "fetch_repo",
	}})
	m.EnqueueText("The lookup failed.")

	def, scope := setupAgent(t, m, tl)

	inv := NewInvoker()
	produced, err := inv.Invoke(ctx, def, scope, []core.Message{core.NewUserMessage("hi")})
	require.NoError(t, err)

	responses := produced[1].FunctionResponses()
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].Error, "panicked")
}

func TestInvokerModelFailure(t *testing.T) {
	ctx := context.Background()

	m := model.NewMockModel("mock", "mock")
	m.EnqueueError(errors.New("rate limited"))

	def, scope := setupAgent(t, m)

	inv := NewInvoker()
	produced, err := inv.Invoke(ctx, def, scope, []core.Message{core.NewUserMessage("hi")})
	require.Error(t, err)
	assert.Empty(t, produced)

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, core.IdentitySpecialist, invErr.Agent)
	assert.Equal(t, "GitHubSpecialist", invErr.Name)
	assert.Contains(t, invErr.Error(), "GitHubSpecialist")
	assert.Contains(t, invErr.Error(), "rate limited")
}

func TestInvokerCallLimit(t *testing.T) {
	ctx := context.Background()

	tl := fetchTool(t, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return "data", nil
	})

	m := model.NewMockModel("mock", "mock")
	for i := 0; i < 5; i++ {
		m.EnqueueParts(core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:   "call",
			Name: "fetch_repo",
		}})
	}

	def, scope := setupAgent(t, m, tl)

	inv := NewInvoker(func(o *InvokerOptions) {
		o.MaxModelCalls = 3
	})

	produced, err := inv.Invoke(ctx, def, scope, []core.Message{core.NewUserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded max model calls")
	// Three completed call/response rounds before the limiter tripped.
	assert.Len(t, produced, 6)
}

func TestInvokerHistoryTruncation(t *testing.T) {
	ctx := context.Background()

	m := model.NewMockModel("mock", "mock")
	m.EnqueueText("ok")

	def, scope := setupAgent(t, m)

	inv := NewInvoker(func(o *InvokerOptions) {
		o.MaxHistory = 2
	})

	history := testutil.NewTranscript().User("one").User("two").User("three").Messages()
	_, err := inv.Invoke(ctx, def, scope, history)
	require.NoError(t, err)

	requests := m.Requests()
	require.Len(t, requests, 1)
	require.Len(t, requests[0].Messages, 2)
	assert.True(t, strings.Contains(requests[0].Messages[0].Text(), "two"))
	assert.True(t, strings.Contains(requests[0].Messages[1].Text(), "three"))
}
