package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repoArgs struct {
	Repo  string `json:"repo" description:"Repository as owner/name"`
	Limit *int   `json:"limit" description:"Optional result limit"`
}

func TestFunctionTool_Success(t *testing.T) {
	ft := NewFunctionToolFromStruct("repo_info", "Fetch repo info", repoArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			return map[string]any{"repo": args["repo"], "stars": 42}, nil
		})

	assert.Equal(t, "repo_info", ft.Name())
	assert.Equal(t, "Fetch repo info", ft.Description())

	result, err := ft.Call(context.Background(), map[string]any{"repo": "hupe1980/roundtable"})
	require.NoError(t, err)
	m, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 42, m["stars"])
}

func TestFunctionTool_ValidationError(t *testing.T) {
	ft := NewFunctionToolFromStruct("repo_info", "Fetch repo info", repoArgs{},
		func(_ context.Context, _ map[string]any) (any, error) {
			t.Fatal("function must not run on invalid args")
			return nil, nil
		})

	_, err := ft.Call(context.Background(), map[string]any{"limit": 3})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
	assert.Equal(t, "repo_info", toolErr.Tool)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	ft := NewFunctionTool("broken", "Always fails", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("backend down")
		})

	_, err := ft.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Message, "backend down")
}

func TestFunctionTool_PassthroughToolError(t *testing.T) {
	custom := NewToolError("custom", "rate limited", "RATE_LIMITED")
	ft := NewFunctionTool("custom", "Custom failure", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, custom
		})

	_, err := ft.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Same(t, custom, toolErr)
}

func TestStaticProvider_ListCapabilities(t *testing.T) {
	a := NewFunctionTool("a", "first", map[string]any{"type": "object", "properties": map[string]any{}}, func(_ context.Context, _ map[string]any) (any, error) { return nil, nil })
	b := NewFunctionTool("b", "second", map[string]any{"type": "object", "properties": map[string]any{}}, func(_ context.Context, _ map[string]any) (any, error) { return nil, nil })
	p := NewStaticProvider(a, b)

	tools, err := p.ListCapabilities(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 2)

	tools[0] = b
	again, err := p.ListCapabilities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Name(), "provider slice must be copied on read")
}

func TestToolErrorFormatting(t *testing.T) {
	withCode := NewToolError("x", "boom", "EXECUTION_ERROR")
	assert.Equal(t, "tool error [EXECUTION_ERROR] in x: boom", withCode.Error())

	noCode := &ToolError{Tool: "x", Message: "boom"}
	assert.Equal(t, "tool error in x: boom", noCode.Error())
}
