package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/buildpilot/internal/app"
	"github.com/entrepeneur4lyf/buildpilot/internal/markdown"
	"github.com/entrepeneur4lyf/buildpilot/internal/planner"
	"github.com/spf13/cobra"
)

// errReported exits non-zero without printing the error again
var errReported = errors.New("error already reported")

// logToStderr marks commands that keep logging on stderr instead of the log file
const logToStderr = "logToStderr"

var (
	configFile string
	debug      bool
	logFile    *os.File // For cleanup
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	promptStyle  = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// setupLogging redirects log output to .buildpilot/buildpilot.log
func setupLogging(cmd *cobra.Command) error {
	if debug || cmd.Annotations[logToStderr] == "true" {
		return nil
	}

	logDir := ".buildpilot"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "buildpilot.log")
	var err error
	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	log.SetOutput(logFile)
	return nil
}

// cleanupLogging closes the log file if it was opened
func cleanupLogging() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// loadApp builds the application and applies the configured log level
func loadApp(appConfig *app.AppConfig) (*app.App, error) {
	appConfig.ConfigPath = configFile
	appConfig.Debug = debug

	a, err := app.New(appConfig)
	if err != nil {
		return nil, err
	}
	if level, err := log.ParseLevel(a.Config.Log.Level); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("Unknown log level", "level", a.Config.Log.Level)
	}
	return a, nil
}

// printCredentialsError explains how to supply a missing provider key
func printCredentialsError(out io.Writer, err error) {
	fmt.Fprintln(out, errorStyle.Render("Error: "+err.Error()))
	fmt.Fprintln(out, mutedStyle.Render("   Please create a .env file or export the key in your environment."))
}

// renderPlan prints the plan as styled markdown, falling back to the raw text
func renderPlan(out io.Writer, plan string) {
	renderer, err := markdown.NewRenderer(markdown.DefaultConfig())
	if err == nil {
		var rendered string
		if rendered, err = renderer.Render(plan); err == nil {
			fmt.Fprintln(out, rendered)
			return
		}
	}
	log.Debug("Markdown rendering failed", "error", err)
	fmt.Fprintln(out, plan)
}

var rootCmd = &cobra.Command{
	Use:   "buildpilot",
	Short: "AI project planning assistant",
	Long: `BuildPilot turns a project name and description into a project plan and README.

A planner agent analyzes the project, then a documentation agent writes the README.

Usage:
  buildpilot                                   # Interactive mode
  buildpilot generate --name X --description Y # One-shot generation
  buildpilot serve                             # Run the web API`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}
		return nil
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is $HOME/.buildpilot.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
}

// Execute runs the root command
func Execute() {
	defer cleanupLogging()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("An error occurred: %v", err)))
		}
		cleanupLogging()
		os.Exit(1)
	}
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(out, titleStyle.Render("Welcome to BuildPilot!"))
	fmt.Fprintln(out, "==================================================")

	a, err := loadApp(&app.AppConfig{})
	if err != nil {
		return err
	}
	if err := a.CheckCredentials(); err != nil {
		printCredentialsError(out, err)
		return fmt.Errorf("%w: %w", errReported, err)
	}

	prompter := NewPrompter(cmd.InOrStdin(), out)
	var name, description string
	err = interruptible(ctx, func() error {
		var err error
		name, description, err = prompter.ProjectDetails()
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
			fmt.Fprintln(out, "\n\nGoodbye! Project planning cancelled.")
			return nil
		}
		return err
	}

	fmt.Fprintln(out, titleStyle.Render("\nGenerating your project plan..."))
	fmt.Fprintln(out, mutedStyle.Render("This may take a few minutes..."))

	stopSpinner := startSpinner(out, "Working")
	result, err := a.Pipeline.Generate(ctx, name, description)
	stopSpinner()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(out, "\n\nGoodbye! Project planning cancelled.")
			return nil
		}
		var genErr *planner.GenerationError
		if errors.As(err, &genErr) {
			fmt.Fprintln(out, mutedStyle.Render("Please check your setup and try again."))
		}
		return err
	}

	rule := "============================================================"
	fmt.Fprintln(out, "\n"+rule)
	fmt.Fprintln(out, successStyle.Render("PROJECT PLAN GENERATED SUCCESSFULLY!"))
	fmt.Fprintln(out, rule)
	renderPlan(out, result.NormalizedText)

	path, err := a.Store.Save(name, result.NormalizedText)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("\nError saving file: %v", err)))
		return nil
	}
	fmt.Fprintln(out, successStyle.Render("\nProject plan saved to: ")+path)
	return nil
}

// interruptible runs fn until it returns or ctx is cancelled. A blocked
// terminal read cannot be cancelled, so fn is left running in that case.
func interruptible(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
