package macro

import "fmt"

// Delimiters is an opening/closing character pair enclosing a scope.
type Delimiters struct {
	Open, Close byte
}

var (
	// Braces delimit mandatory arguments and bodies.
	Braces = Delimiters{Open: '{', Close: '}'}
	// Brackets delimit optional arguments and arity declarations.
	Brackets = Delimiters{Open: '[', Close: ']'}
)

// Escape makes the following character lose its delimiter meaning.
const Escape = '\\'

// Policy decides what happens when the input ends inside an open scope.
type Policy int

const (
	// Strict reports ErrUnterminatedScope.
	Strict Policy = iota
	// Lenient returns everything up to the end of the input as the content.
	Lenient
)

func (p Policy) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}

// SkipBlank returns the first index at or after pos that is neither white
// space nor a comment marker.
func SkipBlank(text string, pos int) int {
	for pos < len(text) {
		switch text[pos] {
		case ' ', '\t', '\n', '\r', '%':
			pos++
		default:
			return pos
		}
	}
	return pos
}

// FindScope locates the balanced scope that opens at the first significant
// character at or after start. It returns the text strictly inside the
// outermost delimiters and the index just past the closing delimiter.
func FindScope(text string, start int, d Delimiters) (string, int, error) {
	return Strict.FindScope(text, start, d)
}

// FindScope is like the package-level FindScope, with p deciding how a scope
// truncated by the end of input is treated.
func (p Policy) FindScope(text string, start int, d Delimiters) (string, int, error) {
	i := SkipBlank(text, start)
	if i >= len(text) {
		return "", i, newSyntaxError(ErrMalformedScope, text, i,
			fmt.Sprintf("expected %q, found end of input", d.Open))
	}
	if text[i] != d.Open {
		return "", i, newSyntaxError(ErrMalformedScope, text, i,
			fmt.Sprintf("expected %q, found %q", d.Open, text[i]))
	}

	level := 1
	j := i + 1
	escape := false
	for level > 0 && j < len(text) {
		c := text[j]
		switch {
		case escape:
			escape = false
		case c == d.Open:
			level++
		case c == d.Close:
			level--
		case c == Escape:
			escape = true
		}
		j++
	}

	if level > 0 {
		if p == Strict {
			return "", j, newSyntaxError(ErrUnterminatedScope, text, i,
				fmt.Sprintf("%q is never closed", d.Open))
		}
		return text[i+1:], j, nil
	}
	return text[i+1 : j-1], j, nil
}
