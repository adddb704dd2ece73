package macro

import (
	"fmt"
	"strings"

	"latex-cleaner/internal/tokenizer"
)

// Replacer computes the replacement for one environment or math span from
// its content.
type Replacer func(content string) string

// Literal returns a Replacer that always yields s.
func Literal(s string) Replacer {
	return func(string) string { return s }
}

// Keep is the identity Replacer: it drops the delimiters but keeps the content.
func Keep(content string) string {
	return content
}

// ReplaceEnvironment replaces every \begin{name}...\end{name} span in
// document with r applied to the enclosed content. Each begin marker is
// paired with the first end marker after it. A begin marker without a
// later end marker is an ErrUnmatchedEnvironment.
func ReplaceEnvironment(document, name string, r Replacer) (string, error) {
	begin, end := EnvironmentKeys(name)
	if !strings.Contains(document, begin) {
		return document, nil
	}

	parts := strings.Split(document, begin)
	var sb strings.Builder
	sb.WriteString(parts[0])
	offset := len(parts[0])
	for _, seg := range parts[1:] {
		i := strings.Index(seg, end)
		if i < 0 {
			return "", newSyntaxError(ErrUnmatchedEnvironment, document, offset,
				fmt.Sprintf("%s has no matching %s", begin, end))
		}
		sb.WriteString(r(seg[:i]))
		sb.WriteString(seg[i+len(end):])
		offset += len(begin) + len(seg)
	}
	return sb.String(), nil
}

// ReplaceInlineMath replaces every $...$ span in document with r applied
// to the math content. Escaped dollars (\$) are text. An odd number of
// delimiters is an ErrUnbalancedMath; $$...$$ display math is an
// ErrDisplayMath.
func ReplaceInlineMath(document string, r Replacer) (string, error) {
	dollars := tokenizer.FindUnescaped(document, '$')
	if len(dollars) == 0 {
		return document, nil
	}
	if len(dollars)%2 != 0 {
		last := dollars[len(dollars)-1]
		return "", newSyntaxError(ErrUnbalancedMath, document, last,
			fmt.Sprintf("%d math delimiters", len(dollars)))
	}

	var sb strings.Builder
	last := 0
	for k := 0; k < len(dollars); k += 2 {
		open, closing := dollars[k], dollars[k+1]
		if closing == open+1 {
			return "", newSyntaxError(ErrDisplayMath, document, open, "")
		}
		sb.WriteString(document[last:open])
		sb.WriteString(r(document[open+1 : closing]))
		last = closing + 1
	}
	sb.WriteString(document[last:])
	return sb.String(), nil
}
