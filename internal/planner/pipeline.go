// Package planner runs the two-stage plan generation: a planner agent analyzes
// the project, then a documenter agent turns that analysis into a README.
package planner

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm/agent"
	"github.com/entrepeneur4lyf/buildpilot/internal/metrics"
	"github.com/google/uuid"
)

// PromptBuilder renders the task prompts for both stages
type PromptBuilder interface {
	BuildAnalysisPrompt(projectName, projectDescription string) string
	BuildReadmePrompt(projectName, analysis string) string
	AnalysisExpectedOutput() string
	ReadmeExpectedOutput() string
}

// Result is the output of one generation run
type Result struct {
	RunID          string `json:"run_id"`
	RawText        string `json:"raw_text"`
	NormalizedText string `json:"normalized_text"`
}

// Pipeline sequences the analysis and README stages. It holds no per-run
// state, so a single instance can serve concurrent callers.
type Pipeline struct {
	prompts  PromptBuilder
	profiles agent.Profiles
	executor agent.Executor
	recorder metrics.Recorder
}

// New creates a pipeline. A nil recorder discards metrics.
func New(prompts PromptBuilder, profiles agent.Profiles, executor agent.Executor, recorder metrics.Recorder) *Pipeline {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return &Pipeline{
		prompts:  prompts,
		profiles: profiles,
		executor: executor,
		recorder: recorder,
	}
}

// Generate produces a README-style project plan. Both stages block for the
// full model round trip; cancel ctx to abort.
func (p *Pipeline) Generate(ctx context.Context, projectName, projectDescription string) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(projectName) == "" {
		p.recorder.ObserveRun(metrics.OutcomeValidationError, time.Since(start))
		return nil, &ValidationError{Field: "project_name"}
	}
	if strings.TrimSpace(projectDescription) == "" {
		p.recorder.ObserveRun(metrics.OutcomeValidationError, time.Since(start))
		return nil, &ValidationError{Field: "project_description"}
	}

	runID := uuid.New().String()
	logger := log.With("run_id", runID, "project", projectName)
	logger.Info("Starting plan generation")

	planner := p.profiles.Planner()
	analysis, err := p.runStage(ctx, logger, StageAnalysis, agent.Task{
		Description:    p.prompts.BuildAnalysisPrompt(projectName, projectDescription),
		ExpectedOutput: p.prompts.AnalysisExpectedOutput(),
		Agent:          planner,
	})
	if err != nil {
		p.recorder.ObserveRun(metrics.OutcomeAnalysisError, time.Since(start))
		return nil, err
	}

	documenter := p.profiles.Documenter()
	readme, err := p.runStage(ctx, logger, StageReadme, agent.Task{
		Description:    p.prompts.BuildReadmePrompt(projectName, analysis),
		ExpectedOutput: p.prompts.ReadmeExpectedOutput(),
		Agent:          documenter,
	})
	if err != nil {
		p.recorder.ObserveRun(metrics.OutcomeReadmeError, time.Since(start))
		return nil, err
	}

	result := &Result{
		RunID:          runID,
		RawText:        readme,
		NormalizedText: Clean(readme),
	}

	p.recorder.ObserveRun(metrics.OutcomeSuccess, time.Since(start))
	logger.Info("Plan generation completed", "duration", time.Since(start), "length", len(result.NormalizedText))
	return result, nil
}

func (p *Pipeline) runStage(ctx context.Context, logger *log.Logger, stage Stage, task agent.Task) (string, error) {
	logger.Debug("Running stage", "stage", stage, "agent", task.Agent.Name, "prompt_tokens_est", llm.CountTokens(task.Description))

	start := time.Now()
	out, err := p.executor.Execute(ctx, task)
	if err == nil && strings.TrimSpace(out) == "" {
		err = llm.ErrEmptyResponse
	}
	p.recorder.ObserveStage(string(stage), task.Agent.ModelID, err == nil, time.Since(start))

	if err != nil {
		logger.Error("Stage failed", "stage", stage, "error", err)
		return "", &GenerationError{Stage: stage, Err: err}
	}

	logger.Debug("Stage completed", "stage", stage, "duration", time.Since(start), "output_tokens_est", llm.CountTokens(out))
	return out, nil
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
