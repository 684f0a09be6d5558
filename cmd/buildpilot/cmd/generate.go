package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrepeneur4lyf/buildpilot/internal/app"
	"github.com/spf13/cobra"
)

var (
	genName        string
	genDescription string
	genOutDir      string
	genNoSave      bool
	genRaw         bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a project plan without prompts",
	Long: `Generate a project plan and README in one shot.

The description may be piped on stdin:
  cat idea.txt | buildpilot generate --name "Task Tracker"`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genName, "name", "n", "", "Project name")
	generateCmd.Flags().StringVarP(&genDescription, "description", "d", "", "Project description (read from stdin when omitted)")
	generateCmd.Flags().StringVarP(&genOutDir, "out", "o", "", "Directory for the saved plan (overrides output.directory)")
	generateCmd.Flags().BoolVar(&genNoSave, "no-save", false, "Print the plan without saving it")
	generateCmd.Flags().BoolVar(&genRaw, "raw", false, "Print markdown without terminal styling")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	description := genDescription
	if description == "" && hasStdinInput() {
		var err error
		if description, err = readAll(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	a, err := loadApp(&app.AppConfig{OutputDir: genOutDir})
	if err != nil {
		return err
	}
	if err := a.CheckCredentials(); err != nil {
		printCredentialsError(errOut, err)
		return fmt.Errorf("%w: %w", errReported, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopSpinner := startSpinner(errOut, "Generating your project plan")
	result, err := a.Pipeline.Generate(ctx, genName, description)
	stopSpinner()
	if err != nil {
		return err
	}

	if genRaw {
		fmt.Fprintln(out, result.NormalizedText)
	} else {
		renderPlan(out, result.NormalizedText)
	}

	if genNoSave {
		return nil
	}
	path, err := a.Store.Save(genName, result.NormalizedText)
	if err != nil {
		fmt.Fprintln(errOut, errorStyle.Render(fmt.Sprintf("Error saving file: %v", err)))
		return nil
	}
	fmt.Fprintln(errOut, successStyle.Render("Project plan saved to: ")+path)
	return nil
}

func hasStdinInput() bool {
	// Check if stdin is not a terminal (pipe or redirect)
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}

	// If stdin is not a character device, it's piped or redirected
	return (stat.Mode() & os.ModeCharDevice) == 0
}
