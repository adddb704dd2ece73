// Package tokenizer splits LaTeX source into a flat, position-addressable
// token stream. It knows nothing about macro meaning; it only decides where
// control sequences, spaces and special characters begin and end, so that
// callers can match macro names on token boundaries instead of raw substrings.
package tokenizer

import "strings"

// Kind is used to enumerate different types of token
type Kind int

// The different token kinds used by this package.
const (
	// Control is a control sequence: a backslash followed by either a run
	// of ASCII letters or by exactly one other character.
	Control Kind = iota
	// Space is a run of spaces, tabs and newlines.
	Space
	// Special is one of the characters { } [ ] $ % # & ~ ^ _
	Special
	// Text is a run of characters that are none of the above.
	Text
)

func (k Kind) String() string {
	switch k {
	case Control:
		return "Control"
	case Space:
		return "Space"
	case Special:
		return "Special"
	case Text:
		return "Text"
	default:
		return "Unknown"
	}
}

// Token is a single syntactic unit. Text is always the exact source slice
// s[Pos:Pos+len(Text)].
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Pos + len(t.Text)
}

// IsLetter reports whether c may appear in a control word.
func IsLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// IsSpace reports whether c is treated as white space.
func IsSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// IsSpecial reports whether c forms a Special token on its own.
func IsSpecial(c byte) bool {
	return strings.IndexByte("{}[]$%#&~^_", c) >= 0
}

// Tokenize splits s into tokens. Concatenating the Text of all returned
// tokens reproduces s.
func Tokenize(s string) []Token {
	var toks []Token
	for pos := 0; pos < len(s); {
		n := ControlLen(s, pos)
		kind := Control
		switch {
		case n > 0:
		case IsSpace(s[pos]):
			kind = Space
			n = 1
			for pos+n < len(s) && IsSpace(s[pos+n]) {
				n++
			}
		case IsSpecial(s[pos]):
			kind = Special
			n = 1
		default:
			kind = Text
			n = 1
			for pos+n < len(s) {
				c := s[pos+n]
				if c == '\\' || IsSpace(c) || IsSpecial(c) {
					break
				}
				n++
			}
		}
		toks = append(toks, Token{Kind: kind, Text: s[pos : pos+n], Pos: pos})
		pos += n
	}
	return toks
}

// ControlLen returns the length of the control sequence starting at s[pos],
// or 0 if s[pos] is not a backslash.
func ControlLen(s string, pos int) int {
	if pos >= len(s) || s[pos] != '\\' {
		return 0
	}
	if pos+1 >= len(s) {
		return 1
	}
	if !IsLetter(s[pos+1]) {
		return 2
	}
	n := 2
	for pos+n < len(s) && IsLetter(s[pos+n]) {
		n++
	}
	return n
}

// Pattern is a compiled macro key such as `\foo`, `\section*` or
// `\begin{figure}`. A pattern matches at a control token whose text equals
// Head, followed literally by Tail.
type Pattern struct {
	Head string
	Tail string
}

// Compile splits key into its leading control sequence and literal tail.
// Keys that do not start with a control sequence have an empty Head and
// match anywhere as plain substrings.
func Compile(key string) Pattern {
	n := ControlLen(key, 0)
	return Pattern{Head: key[:n], Tail: key[n:]}
}

// String returns the original key.
func (p Pattern) String() string {
	return p.Head + p.Tail
}

// FindAll returns the start offsets of all non-overlapping occurrences of
// p in s, in increasing order.
func (p Pattern) FindAll(s string) []int {
	key := p.String()
	if key == "" {
		return nil
	}
	var hits []int
	if p.Head == "" {
		for pos := 0; ; {
			i := strings.Index(s[pos:], key)
			if i < 0 {
				return hits
			}
			hits = append(hits, pos+i)
			pos += i + len(key)
		}
	}

	next := 0
	for _, tok := range Tokenize(s) {
		if tok.Pos < next || tok.Kind != Control || tok.Text != p.Head {
			continue
		}
		if strings.HasPrefix(s[tok.End():], p.Tail) {
			hits = append(hits, tok.Pos)
			next = tok.Pos + len(key)
		}
	}
	return hits
}

// Split cuts s around every occurrence of p, like strings.Split but
// honouring token boundaries. The returned slice always has one more
// element than there are occurrences.
func (p Pattern) Split(s string) []string {
	hits := p.FindAll(s)
	parts := make([]string, 0, len(hits)+1)
	last := 0
	for _, h := range hits {
		parts = append(parts, s[last:h])
		last = h + len(p.String())
	}
	return append(parts, s[last:])
}

// FindUnescaped returns the offsets of every occurrence of the single byte
// c that is not part of a control symbol (so `\$` is skipped for c == '$').
func FindUnescaped(s string, c byte) []int {
	var hits []int
	for pos := 0; pos < len(s); pos++ {
		if n := ControlLen(s, pos); n > 0 {
			pos += n - 1
			continue
		}
		if s[pos] == c {
			hits = append(hits, pos)
		}
	}
	return hits
}
