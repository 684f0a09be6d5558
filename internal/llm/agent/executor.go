package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
)

// Executor runs a task against the language model bound to its agent
type Executor interface {
	Execute(ctx context.Context, task Task) (string, error)
}

// HandlerFactory builds the provider handler for a profile
type HandlerFactory func(Profile) (llm.ApiHandler, error)

// HandlerExecutor executes tasks through one ApiHandler per agent.
// The handler map is filled at construction and never written again.
type HandlerExecutor struct {
	handlers  map[string]llm.ApiHandler
	maxTokens int
}

// NewHandlerExecutor builds a handler for every profile up front
func NewHandlerExecutor(profiles Profiles, build HandlerFactory, maxTokens int) (*HandlerExecutor, error) {
	handlers := make(map[string]llm.ApiHandler, 2)
	for _, p := range profiles.All() {
		h, err := build(p)
		if err != nil {
			return nil, fmt.Errorf("failed to build handler for %s agent: %w", p.Name, err)
		}
		handlers[p.Name] = h
	}

	return &HandlerExecutor{
		handlers:  handlers,
		maxTokens: maxTokens,
	}, nil
}

// Execute sends the task description as the user message with the agent persona as system prompt
func (e *HandlerExecutor) Execute(ctx context.Context, task Task) (string, error) {
	handler, ok := e.handlers[task.Agent.Name]
	if !ok {
		return "", fmt.Errorf("no handler registered for agent %q", task.Agent.Name)
	}

	req := llm.CompletionRequest{
		SystemPrompt: SystemPrompt(task.Agent, task.ExpectedOutput),
		Prompt:       task.Description,
		MaxTokens:    e.maxTokens,
		Temperature:  llm.Float(task.Agent.Temperature),
	}

	model := handler.GetModel()
	log.Debug("Executing agent task",
		"agent", task.Agent.Name,
		"provider", model.Provider,
		"model", model.ID,
		"prompt_tokens_est", llm.CountTokens(req.SystemPrompt)+llm.CountTokens(req.Prompt))

	start := time.Now()
	resp, err := handler.CompletePrompt(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", llm.ErrEmptyResponse
	}

	fields := []any{"agent", task.Agent.Name, "duration", time.Since(start)}
	if resp.Usage != nil {
		fields = append(fields, "total_tokens", resp.Usage.TotalTokens)
	}
	log.Debug("Agent task completed", fields...)

	return resp.Content, nil
}

// SystemPrompt renders the agent persona and the expected result description
func SystemPrompt(p Profile, expectedOutput string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s. %s\n", p.Role, p.Backstory)
	fmt.Fprintf(&sb, "Your personal goal is: %s\n", p.Goal)
	if expectedOutput != "" {
		fmt.Fprintf(&sb, "\nThis is the expected criteria for your final answer: %s\n", expectedOutput)
	}
	sb.WriteString("You MUST return the actual complete content as the final answer, not a summary.")
	return sb.String()
}
