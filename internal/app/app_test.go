package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/entrepeneur4lyf/buildpilot/internal/config"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoHandler struct {
	model   string
	content string
}

func (h *echoHandler) CompletePrompt(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: h.content}, nil
}

func (h *echoHandler) GetModel() llm.ModelResponse {
	return llm.ModelResponse{ID: h.model}
}

func testConfig() *config.Config {
	return &config.Config{
		LLM:       config.LLMConfig{Model: "o3-mini", Temperature: 0.7, MaxTokens: 1024},
		Output:    config.OutputConfig{Directory: "."},
		Providers: map[llm.ProviderType]config.Provider{},
	}
}

func TestNewWithConfig_RunsPipeline(t *testing.T) {
	a, err := NewWithConfig(testConfig(), &AppConfig{
		OutputDir: t.TempDir(),
		HandlerFactory: func(p agent.Profile) (llm.ApiHandler, error) {
			if p.Name == agent.PlannerName {
				return &echoHandler{model: p.ModelID, content: "analysis"}, nil
			}
			return &echoHandler{model: p.ModelID, content: "```markdown\n# Demo\n```"}, nil
		},
	})
	require.NoError(t, err)

	result, err := a.Pipeline.Generate(context.Background(), "Demo", "A demo app")
	require.NoError(t, err)
	assert.Equal(t, "# Demo", result.NormalizedText)

	path, err := a.Store.Save("Demo", result.NormalizedText)
	require.NoError(t, err)
	assert.Equal(t, "demo_plan.md", filepath.Base(path))
}

func TestNewWithConfig_BuildsRealHandlers(t *testing.T) {
	a, err := NewWithConfig(testConfig(), &AppConfig{})
	require.NoError(t, err)
	assert.Equal(t, "o3-mini", a.Profiles.Planner().ModelID)

	var ce *config.ConfigurationError
	assert.ErrorAs(t, a.CheckCredentials(), &ce)
}

func TestNewWithConfig_PromptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`agents:
  documenter:
    role: Release Writer
`), 0o644))

	temp := 0.1
	cfg := testConfig()
	cfg.Prompts.File = path
	cfg.Agents = map[string]config.AgentConfig{agent.DocumenterName: {Model: "gpt-4o", Temperature: &temp}}

	a, err := NewWithConfig(cfg, &AppConfig{})
	require.NoError(t, err)

	doc := a.Profiles.Documenter()
	assert.Equal(t, "Release Writer", doc.Role)
	assert.Equal(t, "gpt-4o", doc.ModelID)
	assert.InDelta(t, 0.1, doc.Temperature, 1e-9)
	assert.Equal(t, "Senior Software Project Planner", a.Profiles.Planner().Role)
}

func TestNewWithConfig_InvalidPromptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`readme:
  template: "README for {{.ProjectName}}"
`), 0o644))

	cfg := testConfig()
	cfg.Prompts.File = path

	_, err := NewWithConfig(cfg, &AppConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid prompt templates")
}
