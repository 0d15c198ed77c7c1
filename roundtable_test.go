package roundtable

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/roundtable/core"
	"github.com/hupe1980/roundtable/engine"
	"github.com/hupe1980/roundtable/model"
	"github.com/hupe1980/roundtable/tool"
)

func TestRoundtable(t *testing.T) {
	ctx := context.Background()

	searchTool := tool.NewFunctionTool("search_repo", "Searches repository metadata.", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{"type": "string"},
		},
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return "roundtable: multi-agent orchestration", nil
	})

	t.Run("full conversation", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")
		m.EnqueueText("Asking GitHubSpecialist to look up repo X")
		m.EnqueueText("Repo X is a multi-agent orchestration library.")
		m.EnqueueText("Repo X orchestrates multi-agent conversations. Is there anything else I can help with?")

		rt, err := New(ctx, m, tool.NewStaticProvider(searchTool), func(o *Options) {
			o.SpecialistName = "GitHubSpecialist"
			o.MaxTurns = 5
		})
		require.NoError(t, err)

		result, err := rt.Ask(ctx, "What is repo X about?")
		require.NoError(t, err)

		assert.Equal(t, engine.ReasonTerminated, result.Reason)
		require.Len(t, result.Messages, 2)
		for _, msg := range result.Messages {
			assert.Equal(t, core.IdentityOrchestrator, msg.Author)
		}
	})

	t.Run("reset enables the next query", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")
		m.EnqueueText("Done. Anything else I can help with?")
		m.EnqueueText("Also done. Anything else I can help with?")

		rt, err := New(ctx, m, nil)
		require.NoError(t, err)

		_, err = rt.Ask(ctx, "first")
		require.NoError(t, err)

		_, err = rt.Ask(ctx, "second")
		require.ErrorIs(t, err, engine.ErrConversationComplete)

		require.NoError(t, rt.Reset())

		result, err := rt.Ask(ctx, "second")
		require.NoError(t, err)
		require.Len(t, result.Messages, 1)
	})

	t.Run("specialist holds the tools, orchestrator none", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")

		rt, err := New(ctx, m, tool.NewStaticProvider(searchTool), func(o *Options) {
			o.SpecialistName = "GitHubSpecialist"
		})
		require.NoError(t, err)

		orchScope, ok := rt.Registry().Scope(core.IdentityOrchestrator)
		require.True(t, ok)
		assert.Empty(t, orchScope.Tools())

		specScope, ok := rt.Registry().Scope(core.IdentitySpecialist)
		require.True(t, ok)
		assert.Len(t, specScope.Tools(), 1)
	})

	t.Run("unknown capability fails construction", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")

		_, err := New(ctx, m, tool.NewStaticProvider(searchTool), func(o *Options) {
			o.SpecialistCapabilities = []string{"missing_tool"}
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown capability")
	})
}
