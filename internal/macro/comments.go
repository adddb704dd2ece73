package macro

import (
	"strings"

	"latex-cleaner/internal/tokenizer"
)

// CommentMarker starts a comment that runs to the end of the line.
const CommentMarker = "%"

// StripComments removes comment text from each line. A line that had a
// comment keeps a trailing "%" so that the absence of a line break is
// preserved; escaped markers (\%) are kept as text. Lines are trimmed of
// surrounding white space, and runs of blank lines collapse into a single
// blank line that is only emitted after some non-blank output.
func StripComments(lines []string) []string {
	out := make([]string, 0, len(lines))
	canHaveEmpty := false
	for _, line := range lines {
		line = stripLineComment(line)
		if line != "" {
			canHaveEmpty = true
			out = append(out, line)
		} else if canHaveEmpty {
			out = append(out, "")
			canHaveEmpty = false
		}
	}
	return out
}

func stripLineComment(line string) string {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, CommentMarker) {
		return line
	}
	if hits := tokenizer.FindUnescaped(line, '%'); len(hits) > 0 {
		return line[:hits[0]] + CommentMarker
	}
	return line
}

// SplitLines splits text into lines, accepting both "\n" and "\r\n".
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
