package strategy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/roundtable/core"
	"github.com/hupe1980/roundtable/internal/testutil"
	"github.com/hupe1980/roundtable/model"
)

func testResolver(name string) (core.Identity, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "orchestrator":
		return core.IdentityOrchestrator, true
	case "specialist", "githubspecialist":
		return core.IdentitySpecialist, true
	default:
		return core.IdentityUser, false
	}
}

func TestMarkerSelection(t *testing.T) {
	ctx := context.Background()
	s := NewMarkerSelection()

	testCases := []struct {
		name    string
		history []core.Message
		want    core.Identity
	}{
		{
			name:    "empty history goes to the orchestrator",
			history: nil,
			want:    core.IdentityOrchestrator,
		},
		{
			name:    "user message goes to the orchestrator",
			history: testutil.NewTranscript().User("What is repo X about?").Messages(),
			want:    core.IdentityOrchestrator,
		},
		{
			name: "delegation marker hands off to the specialist",
			history: testutil.NewTranscript().
				User("What is repo X about?").
				Orchestrator("Asking GitHubSpecialist to fetch info about X").
				Messages(),
			want: core.IdentitySpecialist,
		},
		{
			name:    "orchestrator without marker keeps the floor",
			history: testutil.NewTranscript().Orchestrator("Let me reason about that first.").Messages(),
			want:    core.IdentityOrchestrator,
		},
		{
			name:    "specialist hands back to the orchestrator",
			history: testutil.NewTranscript().Specialist("Repo X is a YAML parser.").Messages(),
			want:    core.IdentityOrchestrator,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Next(ctx, tc.history)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMarkerSelectionCustomMarker(t *testing.T) {
	ctx := context.Background()
	s := NewMarkerSelection(func(o *MarkerSelectionOptions) {
		o.DelegationMarker = "HANDOFF:"
	})

	history := testutil.NewTranscript().Orchestrator("HANDOFF: fetch the data").Messages()
	got, err := s.Next(ctx, history)
	require.NoError(t, err)
	assert.Equal(t, core.IdentitySpecialist, got)

	history = testutil.NewTranscript().Orchestrator("Asking the specialist").Messages()
	got, err = s.Next(ctx, history)
	require.NoError(t, err)
	assert.Equal(t, core.IdentityOrchestrator, got, "default marker must not fire anymore")
}

func TestMarkerTermination(t *testing.T) {
	ctx := context.Background()
	s := NewMarkerTermination()

	testCases := []struct {
		name    string
		history []core.Message
		want    bool
	}{
		{
			name: "offer to continue stops the conversation",
			history: testutil.NewTranscript().
				Orchestrator("Repo X parses YAML. Is there anything else I can help with?").
				Messages(),
			want: true,
		},
		{
			name:    "marker matches case-insensitively",
			history: testutil.NewTranscript().Orchestrator("Done. Anything Else?").Messages(),
			want:    true,
		},
		{
			name: "marker outside the scope is ignored",
			history: testutil.NewTranscript().
				Specialist("anything else you need from the API?").
				Orchestrator("Still working on it.").
				Messages(),
			want: false,
		},
		{
			name: "no in-scope message keeps going",
			history: testutil.NewTranscript().
				User("hello").
				Specialist("anything else?").
				Messages(),
			want: false,
		},
		{
			name:    "plain answer keeps going",
			history: testutil.NewTranscript().Orchestrator("Here is the summary you asked for.").Messages(),
			want:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.ShouldStop(ctx, tc.history)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMarkerTerminationCustomScope(t *testing.T) {
	ctx := context.Background()
	s := NewMarkerTermination(func(o *MarkerTerminationOptions) {
		o.Scope = []core.Identity{core.IdentitySpecialist}
	})

	history := testutil.NewTranscript().
		Specialist("All done, anything else?").
		Orchestrator("Still thinking.").
		Messages()
	got, err := s.ShouldStop(ctx, history)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestModelSelection(t *testing.T) {
	ctx := context.Background()
	participants := []string{"Orchestrator", "GitHubSpecialist"}

	t.Run("resolves a display name", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")
		m.EnqueueText("GitHubSpecialist")

		s := NewModelSelection(m, participants, testResolver)
		got, err := s.Next(ctx, []core.Message{core.NewUserMessage("hi")})
		require.NoError(t, err)
		assert.Equal(t, core.IdentitySpecialist, got)
	})

	t.Run("tolerates punctuation and trailing prose", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")
		m.EnqueueText("\"Specialist.\"\nBecause tool access is required.")

		s := NewModelSelection(m, participants, testResolver)
		got, err := s.Next(ctx, []core.Message{core.NewUserMessage("hi")})
		require.NoError(t, err)
		assert.Equal(t, core.IdentitySpecialist, got)
	})

	t.Run("unrecognized answer is a parse error", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")
		m.EnqueueText("the weather seems fine today")

		s := NewModelSelection(m, participants, testResolver)
		_, err := s.Next(ctx, []core.Message{core.NewUserMessage("hi")})
		require.Error(t, err)

		var parseErr *SelectionParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Output, "weather")
	})

	t.Run("model failure is not a parse error", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")
		m.EnqueueError(errors.New("transport down"))

		s := NewModelSelection(m, participants, testResolver)
		_, err := s.Next(ctx, []core.Message{core.NewUserMessage("hi")})
		require.Error(t, err)

		var parseErr *SelectionParseError
		assert.False(t, errors.As(err, &parseErr))
	})

	t.Run("prompt names participants and carries the transcript", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")
		m.EnqueueText("Orchestrator")

		s := NewModelSelection(m, participants, testResolver)
		_, err := s.Next(ctx, []core.Message{core.NewUserMessage("What is repo X about?")})
		require.NoError(t, err)

		requests := m.Requests()
		require.Len(t, requests, 1)
		assert.Contains(t, requests[0].Instructions, "Orchestrator, GitHubSpecialist")
		assert.Contains(t, requests[0].Messages[0].Text(), "User: What is repo X about?")
	})
}

func TestModelTermination(t *testing.T) {
	ctx := context.Background()
	history := testutil.NewTranscript().
		User("What is repo X about?").
		Orchestrator("Repo X parses YAML.").
		Messages()

	t.Run("yes stops", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")
		m.EnqueueText("Yes.")

		s := NewModelTermination(m)
		got, err := s.ShouldStop(ctx, history)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("no continues", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")
		m.EnqueueText("no")

		s := NewModelTermination(m)
		got, err := s.ShouldStop(ctx, history)
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("gibberish is a parse error treated as continue", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")
		m.EnqueueText("perhaps, depending on the moon phase")

		s := NewModelTermination(m)
		got, err := s.ShouldStop(ctx, history)
		require.Error(t, err)
		assert.False(t, got)

		var parseErr *TerminationParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("no in-scope message skips the model", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")

		s := NewModelTermination(m)
		got, err := s.ShouldStop(ctx, testutil.NewTranscript().
			User("hi").
			Specialist("raw data").
			Messages())
		require.NoError(t, err)
		assert.False(t, got)
		assert.Empty(t, m.Requests())
	})

	t.Run("out-of-scope content never reaches the model", func(t *testing.T) {
		m := model.NewMockModel("mock", "mock")
		m.EnqueueText("no")

		s := NewModelTermination(m)
		_, err := s.ShouldStop(ctx, testutil.NewTranscript().
			User("hi").
			Specialist("internal specialist detail").
			Orchestrator("Working on it.").
			Messages())
		require.NoError(t, err)

		requests := m.Requests()
		require.Len(t, requests, 1)
		prompt := requests[0].Messages[0].Text()
		assert.NotContains(t, prompt, "internal specialist detail")
		assert.Contains(t, prompt, "Working on it.")
	})
}
