package cmd

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPrompter(t *testing.T, input string) (string, string, string, error) {
	t.Helper()
	var out bytes.Buffer
	name, description, err := NewPrompter(strings.NewReader(input), &out).ProjectDetails()
	return name, description, out.String(), err
}

func TestPrompter_ProjectDetails(t *testing.T) {
	name, description, out, err := runPrompter(t, "Task Tracker\nA small app\nwith two lines\ndone\ny\n")
	require.NoError(t, err)
	assert.Equal(t, "Task Tracker", name)
	assert.Equal(t, "A small app\nwith two lines", description)
	assert.Contains(t, out, "PROJECT SUMMARY")
	assert.Contains(t, out, "Name: Task Tracker")
}

func TestPrompter_RetriesEmptyName(t *testing.T) {
	name, _, out, err := runPrompter(t, "\n   \nApp\ndesc\ndone\nyes\n")
	require.NoError(t, err)
	assert.Equal(t, "App", name)
	assert.Equal(t, 2, strings.Count(out, "Project name cannot be empty"))
}

func TestPrompter_EmptyDescriptionRestarts(t *testing.T) {
	name, description, out, err := runPrompter(t, "First\n\ndone\nSecond\nbody\nDONE\nY\n")
	require.NoError(t, err)
	assert.Equal(t, "Second", name)
	assert.Equal(t, "body", description)
	assert.Contains(t, out, "Project description cannot be empty")
}

func TestPrompter_RejectedSummaryRestarts(t *testing.T) {
	name, description, out, err := runPrompter(t, "A\nx\ndone\nn\nB\ny\ndone\nyes\n")
	require.NoError(t, err)
	assert.Equal(t, "B", name)
	assert.Equal(t, "y", description)
	assert.Contains(t, out, "Let's try again")
}

func TestPrompter_WindowsLineEndings(t *testing.T) {
	name, description, _, err := runPrompter(t, "App\r\nline\r\ndone\r\ny\r\n")
	require.NoError(t, err)
	assert.Equal(t, "App", name)
	assert.Equal(t, "line", description)
}

func TestPrompter_EOF(t *testing.T) {
	_, _, _, err := runPrompter(t, "App\nunfinished")
	assert.ErrorIs(t, err, io.EOF)

	_, _, _, err = runPrompter(t, "")
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadAll(t *testing.T) {
	got, err := readAll(strings.NewReader("\nfirst\nsecond\n\n"))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got)
}
