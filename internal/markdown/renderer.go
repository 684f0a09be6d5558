// Package markdown renders generated plans for the terminal.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

// RendererConfig holds configuration for markdown rendering
type RendererConfig struct {
	Width int
	// Style is a glamour standard style name ("dark", "light", "notty") or "auto"
	Style string
}

// DefaultConfig returns a default renderer configuration
func DefaultConfig() *RendererConfig {
	return &RendererConfig{
		Width: 100,
		Style: "auto",
	}
}

// PlainConfig returns a configuration without colors, for pipes and logs
func PlainConfig() *RendererConfig {
	return &RendererConfig{
		Width: 100,
		Style: "notty",
	}
}

// Renderer wraps glamour with plan-specific configuration
type Renderer struct {
	glamourRenderer *glamour.TermRenderer
	config          *RendererConfig
}

// NewRenderer creates a new markdown renderer with the given configuration
func NewRenderer(config *RendererConfig) (*Renderer, error) {
	if config == nil {
		config = DefaultConfig()
	}

	styleOpt := glamour.WithAutoStyle()
	if config.Style != "" && config.Style != "auto" {
		styleOpt = glamour.WithStandardStyle(config.Style)
	}

	glamourRenderer, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(config.Width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create glamour renderer: %w", err)
	}

	return &Renderer{
		glamourRenderer: glamourRenderer,
		config:          config,
	}, nil
}

// Render renders markdown content to styled terminal output
func (r *Renderer) Render(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	rendered, err := r.glamourRenderer.Render(r.preprocessMarkdown(markdown))
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return r.postprocessOutput(rendered), nil
}

// preprocessMarkdown trims trailing whitespace outside of fence lines
func (r *Renderer) preprocessMarkdown(markdown string) string {
	lines := strings.Split(markdown, "\n")
	processed := make([]string, 0, len(lines))

	for _, line := range lines {
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), "```"):
			processed = append(processed, line)
		case strings.TrimSpace(line) == "":
			processed = append(processed, "")
		default:
			processed = append(processed, strings.TrimRight(line, " \t"))
		}
	}

	return strings.Join(processed, "\n")
}

// postprocessOutput collapses runs of blank lines. Styled output pads empty
// lines with escape sequences, so blankness is judged on the stripped text.
func (r *Renderer) postprocessOutput(rendered string) string {
	lines := strings.Split(rendered, "\n")
	result := make([]string, 0, len(lines))
	blankCount := 0

	for _, line := range lines {
		if strings.TrimSpace(ansi.Strip(line)) == "" {
			blankCount++
			if blankCount <= 1 { // Allow max 1 consecutive blank line
				result = append(result, line)
			}
		} else {
			blankCount = 0
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
