package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer(PlainConfig())
	require.NoError(t, err)

	out, err := r.Render("# TodoApp\n\nA task tracker.\n\n## API\n\n- `GET /tasks`")
	require.NoError(t, err)
	assert.Contains(t, out, "TodoApp")
	assert.Contains(t, out, "A task tracker.")
	assert.Contains(t, out, "GET /tasks")
	assert.NotContains(t, out, "\n\n\n")
}

func TestRenderer_Empty(t *testing.T) {
	r, err := NewRenderer(PlainConfig())
	require.NoError(t, err)

	out, err := r.Render("  \n")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRenderer_PreprocessKeepsFenceLines(t *testing.T) {
	r := &Renderer{config: DefaultConfig()}
	in := "text   \n  ```go  \ncode\t\n```"
	out := r.preprocessMarkdown(in)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "text", lines[0])
	assert.Equal(t, "  ```go  ", lines[1])
	assert.Equal(t, "code", lines[2])
}

func TestRenderer_PostprocessCollapsesBlankLines(t *testing.T) {
	r := &Renderer{config: DefaultConfig()}
	assert.Equal(t, "a\n\nb", r.postprocessOutput("a\n\n\n\nb"))
}

func TestRenderer_PostprocessTreatsStyledPaddingAsBlank(t *testing.T) {
	r := &Renderer{config: DefaultConfig()}
	styledBlank := "\x1b[0m  \x1b[0m"
	out := r.postprocessOutput("a\n" + styledBlank + "\n" + styledBlank + "\n" + styledBlank + "\nb")
	assert.Equal(t, []string{"a", styledBlank, "b"}, strings.Split(out, "\n"))
}

func TestNewRenderer_NilConfig(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)
	assert.Equal(t, "auto", r.config.Style)
}
