package planner

import (
	"regexp"
	"strings"
)

var (
	// A fence around the entire response, optionally tagged markdown
	wholeFencePattern = regexp.MustCompile("(?s)\\A`{3,}(?:markdown|md)?[ \\t]*\\r?\\n(.*)\\r?\\n[ \\t]*`{3,}\\z")

	// An opening fence line with an optional info string. A word glued to the
	// fence only counts as an info string when a newline follows it, so
	// "```markdownBody" keeps its text. A bare "```markdown" is all fence.
	leadingFenceLinePattern = regexp.MustCompile("\\A`{3,}(?:[\\w+#.-]*[ \\t]*\\r?\\n|(?:markdown|md)[ \\t]*\\z)")
	leadingFencePattern     = regexp.MustCompile("\\A`{3,}")
	trailingFencePattern    = regexp.MustCompile("`{3,}\\z")
)

// Clean removes code-fence wrappers the model put around its answer.
// Fences inside the document are left alone; only ones anchored at the very
// start or end are stripped. The result never starts or ends with a fence and
// Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	for {
		next := cleanOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func cleanOnce(text string) string {
	text = strings.TrimSpace(text)

	if m := wholeFencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	if loc := leadingFenceLinePattern.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	} else {
		text = leadingFencePattern.ReplaceAllString(text, "")
	}
	text = trailingFencePattern.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}
