package cleaner

import (
	"strings"

	"latex-cleaner/internal/tokenizer"
)

var (
	beginPattern = tokenizer.Compile(`\begin`)
	endPattern   = tokenizer.Compile(`\end`)
)

const (
	beginDocument = `\begin{document}`
	endDocument   = `\end{document}`
)

type outLine struct {
	text  string
	blank bool
}

// Format lays out an expanded document: comment-only lines are dropped,
// runs of blank lines collapse to one, the preamble and the inside of
// figure environments lose their blank lines, no blank line follows or
// precedes a \begin or \end line, and the body is indented with one tab
// per open environment.
func Format(document string) string {
	var out []outLine
	inDocument := false
	previousBlank := true
	previousEndBegin := false
	depth := 0
	inFigure := 0

	dropTrailingBlanks := func() {
		for len(out) > 0 && out[len(out)-1].blank {
			out = out[:len(out)-1]
		}
	}
	indent := func() string {
		return strings.Repeat("\t", depth)
	}

	for _, line := range strings.Split(document, "\n") {
		endComment := strings.HasSuffix(line, "%") && !strings.HasSuffix(line, `\%`)
		if endComment {
			line = line[:len(line)-1]
		}
		blank := line == ""
		if blank && (endComment || previousBlank || previousEndBegin || !inDocument || inFigure > 0) {
			continue
		}
		previousBlank = false
		previousEndBegin = false
		suffix := ""
		if endComment {
			suffix = "%"
		}

		begins := len(beginPattern.FindAll(line))
		ends := len(endPattern.FindAll(line))
		switch {
		case strings.Contains(line, beginDocument):
			inDocument = true
			out = append(out, outLine{text: line + suffix})
			depth++
		case strings.Contains(line, endDocument):
			if depth > 0 {
				depth--
			}
			out = append(out, outLine{text: line + suffix})
		case begins > ends:
			if strings.Contains(line, `\begin{figure`) {
				inFigure++
			}
			dropTrailingBlanks()
			out = append(out, outLine{text: indent() + line + suffix})
			depth++
			previousEndBegin = true
		case ends > begins:
			if strings.Contains(line, `\end{figure`) && inFigure > 0 {
				inFigure--
			}
			dropTrailingBlanks()
			if depth > 0 {
				depth--
			}
			out = append(out, outLine{text: indent() + line + suffix})
			previousEndBegin = true
		default:
			text := line + suffix
			if !blank {
				text = indent() + text
			}
			out = append(out, outLine{text: text, blank: blank})
		}
		if blank {
			previousBlank = true
		}
	}

	lines := make([]string, len(out))
	for i, l := range out {
		lines[i] = l.text
	}
	return strings.Join(lines, "\n")
}
