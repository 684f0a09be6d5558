// Package prompt renders the two task prompts that drive plan generation.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tpl.md
var templateFS embed.FS

const (
	analysisTemplateName = "analysis.tpl.md"
	readmeTemplateName   = "readme.tpl.md"
)

// Expected output hints attached to each task
const (
	ExpectedAnalysisOutput = "A detailed project analysis with comprehensive project structure planning " +
		"and API design as the main focus, in plain text format"
	ExpectedReadmeOutput = "A complete, professional README.md file with detailed project structure " +
		"and API documentation as the main focus, in raw markdown format"
)

// AnalysisData is the data passed to the analysis template
type AnalysisData struct {
	ProjectName        string
	ProjectDescription string
}

// ReadmeData is the data passed to the README template
type ReadmeData struct {
	ProjectName string
	Analysis    string
}

// Builder renders the analysis and README prompts. Safe for concurrent use.
type Builder struct {
	analysis *template.Template
	readme   *template.Template

	analysisExpected string
	readmeExpected   string
}

// NewBuilder parses the embedded templates, applies overrides and validates the result.
// A nil overrides value keeps the built-in text.
func NewBuilder(overrides *Overrides) (*Builder, error) {
	analysisText, err := templateFS.ReadFile("templates/" + analysisTemplateName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", analysisTemplateName, err)
	}
	readmeText, err := templateFS.ReadFile("templates/" + readmeTemplateName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", readmeTemplateName, err)
	}

	b := &Builder{
		analysisExpected: ExpectedAnalysisOutput,
		readmeExpected:   ExpectedReadmeOutput,
	}

	analysisSrc, readmeSrc := string(analysisText), string(readmeText)
	if overrides != nil {
		if overrides.Analysis.Template != "" {
			analysisSrc = overrides.Analysis.Template
		}
		if overrides.Readme.Template != "" {
			readmeSrc = overrides.Readme.Template
		}
		if overrides.Analysis.ExpectedOutput != "" {
			b.analysisExpected = overrides.Analysis.ExpectedOutput
		}
		if overrides.Readme.ExpectedOutput != "" {
			b.readmeExpected = overrides.Readme.ExpectedOutput
		}
	}

	if b.analysis, err = parse(analysisTemplateName, analysisSrc); err != nil {
		return nil, err
	}
	if b.readme, err = parse(readmeTemplateName, readmeSrc); err != nil {
		return nil, err
	}

	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func parse(name, src string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

const (
	sentinelName        = "\x1fproject-name\x1f"
	sentinelDescription = "\x1fproject-description\x1f"
	sentinelAnalysis    = "\x1fanalysis\x1f"
)

// validate renders both templates with sentinel values and checks every input survives
func (b *Builder) validate() error {
	analysis, err := render(b.analysis, AnalysisData{ProjectName: sentinelName, ProjectDescription: sentinelDescription})
	if err != nil {
		return err
	}
	for field, sentinel := range map[string]string{"ProjectName": sentinelName, "ProjectDescription": sentinelDescription} {
		if !strings.Contains(analysis, sentinel) {
			return fmt.Errorf("template %s must include {{.%s}}", analysisTemplateName, field)
		}
	}

	readme, err := render(b.readme, ReadmeData{ProjectName: sentinelName, Analysis: sentinelAnalysis})
	if err != nil {
		return err
	}
	for field, sentinel := range map[string]string{"ProjectName": sentinelName, "Analysis": sentinelAnalysis} {
		if !strings.Contains(readme, sentinel) {
			return fmt.Errorf("template %s must include {{.%s}}", readmeTemplateName, field)
		}
	}
	return nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// mustRender is only reached with templates that passed validate, so a failure is a programming error
func mustRender(tmpl *template.Template, data any) string {
	out, err := render(tmpl, data)
	if err != nil {
		panic(err)
	}
	return out
}

// BuildAnalysisPrompt renders the planner's task. Inputs are inserted verbatim.
func (b *Builder) BuildAnalysisPrompt(projectName, projectDescription string) string {
	return mustRender(b.analysis, AnalysisData{ProjectName: projectName, ProjectDescription: projectDescription})
}

// BuildReadmePrompt renders the documenter's task with the complete analysis text
func (b *Builder) BuildReadmePrompt(projectName, analysis string) string {
	return mustRender(b.readme, ReadmeData{ProjectName: projectName, Analysis: analysis})
}

// AnalysisExpectedOutput returns the expected output hint for the analysis task
func (b *Builder) AnalysisExpectedOutput() string {
	return b.analysisExpected
}

// ReadmeExpectedOutput returns the expected output hint for the README task
func (b *Builder) ReadmeExpectedOutput() string {
	return b.readmeExpected
}
