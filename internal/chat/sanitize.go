package chat

import (
	"regexp"
	"strings"
)

var (
	// thinkBlock matches the shortest complete reasoning block; an opening tag
	// without a close is not matched.
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
	// blankRun matches a newline followed by whitespace-only content and at
	// least one more newline.
	blankRun = regexp.MustCompile(`\n\s*\n+`)
)

// Clean strips reasoning blocks from model output, collapses runs of blank
// lines into a single paragraph break and trims surrounding whitespace.
// Clean(Clean(s)) == Clean(s).
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	s := raw
	// Removing one block can join its neighbours into another.
	for {
		next := thinkBlock.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
