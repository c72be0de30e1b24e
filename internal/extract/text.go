package extract

import (
	"regexp"
	"strings"
)

var blankLines = regexp.MustCompile(`\n[ \t]*\n+`)

// extractText splits plain text into paragraphs separated by blank lines.
func extractText(data []byte) ([]string, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimPrefix(text, "\uFEFF")
	return blankLines.Split(text, -1), nil
}
