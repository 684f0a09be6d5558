package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	model   string
	content string
	err     error
	calls   []llm.CompletionRequest
}

func (s *stubHandler) CompletePrompt(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content}, nil
}

func (s *stubHandler) GetModel() llm.ModelResponse {
	return llm.ModelResponse{ID: s.model, Provider: llm.ProviderOpenAI}
}

func TestDefaultProfiles(t *testing.T) {
	profiles := DefaultProfiles()

	planner := profiles.Planner()
	assert.Equal(t, PlannerName, planner.Name)
	assert.Equal(t, "Senior Software Project Planner", planner.Role)
	assert.Equal(t, "o3-mini", planner.ModelID)
	assert.InDelta(t, 0.7, planner.Temperature, 1e-9)
	assert.False(t, planner.AllowDelegation)

	documenter := profiles.Documenter()
	assert.Equal(t, DocumenterName, documenter.Name)
	assert.Equal(t, "Technical Documentation Specialist", documenter.Role)
	assert.Contains(t, documenter.Goal, "README")
	assert.False(t, documenter.AllowDelegation)
}

func TestNewProfiles_Overrides(t *testing.T) {
	temp := 0.2
	profiles := NewProfiles("gpt-4o", 0.5, map[string]Override{
		DocumenterName: {Model: "claude-sonnet-4-20250514", Temperature: &temp, Role: "Writer"},
	})

	assert.Equal(t, "gpt-4o", profiles.Planner().ModelID)
	assert.InDelta(t, 0.5, profiles.Planner().Temperature, 1e-9)

	doc := profiles.Documenter()
	assert.Equal(t, "claude-sonnet-4-20250514", doc.ModelID)
	assert.InDelta(t, 0.2, doc.Temperature, 1e-9)
	assert.Equal(t, "Writer", doc.Role)
	assert.Contains(t, doc.Backstory, "technical writer")
}

func TestNewProfiles_BlankModelUsesDefault(t *testing.T) {
	profiles := NewProfiles("  ", DefaultTemperature, nil)
	assert.Equal(t, DefaultModelID, profiles.Planner().ModelID)
}

func TestHandlerExecutor_Execute(t *testing.T) {
	planner := &stubHandler{model: "o3-mini", content: "analysis"}
	documenter := &stubHandler{model: "o3-mini", content: "readme"}

	profiles := DefaultProfiles()
	exec, err := NewHandlerExecutor(profiles, func(p Profile) (llm.ApiHandler, error) {
		if p.Name == PlannerName {
			return planner, nil
		}
		return documenter, nil
	}, 4096)
	require.NoError(t, err)

	out, err := exec.Execute(context.Background(), Task{
		Description:    "Analyze X",
		ExpectedOutput: "A plan",
		Agent:          profiles.Planner(),
	})
	require.NoError(t, err)
	assert.Equal(t, "analysis", out)

	require.Len(t, planner.calls, 1)
	assert.Empty(t, documenter.calls)
	req := planner.calls[0]
	assert.Equal(t, "Analyze X", req.Prompt)
	assert.Equal(t, 4096, req.MaxTokens)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.7, *req.Temperature, 1e-9)
	assert.Contains(t, req.SystemPrompt, "Senior Software Project Planner")
	assert.Contains(t, req.SystemPrompt, "A plan")
}

func TestHandlerExecutor_Errors(t *testing.T) {
	boom := errors.New("quota exceeded")
	profiles := DefaultProfiles()

	exec, err := NewHandlerExecutor(profiles, func(p Profile) (llm.ApiHandler, error) {
		if p.Name == PlannerName {
			return &stubHandler{err: boom}, nil
		}
		return &stubHandler{content: " \n "}, nil
	}, 0)
	require.NoError(t, err)

	_, err = exec.Execute(context.Background(), Task{Agent: profiles.Planner()})
	assert.ErrorIs(t, err, boom)

	_, err = exec.Execute(context.Background(), Task{Agent: profiles.Documenter()})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)

	_, err = exec.Execute(context.Background(), Task{Agent: Profile{Name: "reviewer"}})
	assert.Error(t, err)
}

func TestNewHandlerExecutor_BuildFailure(t *testing.T) {
	_, err := NewHandlerExecutor(DefaultProfiles(), func(Profile) (llm.ApiHandler, error) {
		return nil, errors.New("no provider")
	}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner")
}
