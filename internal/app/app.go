// Package app wires configuration, prompts, agents and the pipeline together.
package app

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/buildpilot/internal/config"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm/agent"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm/prompt"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm/providers"
	"github.com/entrepeneur4lyf/buildpilot/internal/metrics"
	"github.com/entrepeneur4lyf/buildpilot/internal/planner"
	"github.com/entrepeneur4lyf/buildpilot/internal/plans"
)

// App holds the fully wired application
type App struct {
	Config   *config.Config
	Profiles agent.Profiles
	Prompts  *prompt.Builder
	Executor agent.Executor
	Pipeline *planner.Pipeline
	Store    *plans.Store
}

// AppConfig represents configuration for app initialization
type AppConfig struct {
	ConfigPath string
	Debug      bool

	// OutputDir overrides output.directory when set
	OutputDir string

	// Recorder receives pipeline metrics; nil discards them
	Recorder metrics.Recorder

	// HandlerFactory overrides provider handler construction
	HandlerFactory agent.HandlerFactory
}

// New loads configuration and builds every component. Missing credentials are
// not an error here; callers check them before generating.
func New(appConfig *AppConfig) (*App, error) {
	cfg, err := config.Load(appConfig.ConfigPath, appConfig.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg, appConfig)
}

// NewWithConfig builds the application from an already loaded configuration
func NewWithConfig(cfg *config.Config, appConfig *AppConfig) (*App, error) {
	overrides, err := prompt.LoadOverrides(cfg.Prompts.File)
	if err != nil {
		return nil, err
	}

	builder, err := prompt.NewBuilder(overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid prompt templates: %w", err)
	}

	profiles := agent.NewProfiles(cfg.LLM.Model, cfg.LLM.Temperature, mergeOverrides(cfg.AgentOverrides(), overrides))

	factory := appConfig.HandlerFactory
	if factory == nil {
		factory = func(p agent.Profile) (llm.ApiHandler, error) {
			opts, err := cfg.HandlerOptions(p)
			if err != nil {
				return nil, err
			}
			return providers.BuildApiHandler(opts)
		}
	}

	executor, err := agent.NewHandlerExecutor(profiles, factory, cfg.LLM.MaxTokens)
	if err != nil {
		return nil, err
	}

	outputDir := cfg.Output.Directory
	if appConfig.OutputDir != "" {
		outputDir = appConfig.OutputDir
	}

	for _, p := range profiles.All() {
		log.Debug("Agent configured", "agent", p.Name, "model", p.ModelID, "temperature", p.Temperature)
	}

	return &App{
		Config:   cfg,
		Profiles: profiles,
		Prompts:  builder,
		Executor: executor,
		Pipeline: planner.New(builder, profiles, executor, appConfig.Recorder),
		Store:    plans.NewStore(outputDir),
	}, nil
}

// CheckCredentials verifies the selected providers have secrets configured
func (a *App) CheckCredentials() error {
	return a.Config.CheckCredentials(a.Profiles)
}

// mergeOverrides adds persona text from the prompt file to the config overrides
func mergeOverrides(fromConfig map[string]agent.Override, file *prompt.Overrides) map[string]agent.Override {
	if file == nil {
		return fromConfig
	}
	merged := make(map[string]agent.Override, len(fromConfig))
	for name, o := range fromConfig {
		merged[name] = o
	}
	for name, text := range file.Agents {
		o := merged[name]
		o.Role = text.Role
		o.Goal = text.Goal
		o.Backstory = text.Backstory
		merged[name] = o
	}
	return merged
}
