package macro

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds of a document-processing run. All
// of them are reported wrapped in a *SyntaxError carrying the position.
var (
	// ErrMalformedScope means the expected opening delimiter was not found.
	ErrMalformedScope = errors.New("malformed scope")
	// ErrUnterminatedScope means the input ended inside a scope (Strict policy only).
	ErrUnterminatedScope = errors.New("unterminated scope")
	// ErrMalformedDirective means a \newcommand or \newenvironment could not be parsed.
	ErrMalformedDirective = errors.New("malformed directive")
	// ErrUnmatchedEnvironment means a \begin{X} has no later \end{X}.
	ErrUnmatchedEnvironment = errors.New("unmatched environment")
	// ErrUnboundedScope means a macro invocation is missing a required argument.
	ErrUnboundedScope = errors.New("missing macro argument")
	// ErrUnbalancedMath means the document has an odd number of unescaped '$'.
	ErrUnbalancedMath = errors.New("unbalanced inline math")
	// ErrDisplayMath means the document uses $$...$$ display math.
	ErrDisplayMath = errors.New("display math is not supported")
	// ErrUnknownMacro means the expansion order names a macro missing from the table.
	ErrUnknownMacro = errors.New("unknown macro")
)

// SyntaxError locates a failure inside the text being processed.
type SyntaxError struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Pos is the byte offset of the fault in the processed text, or -1.
	Pos int
	// Near is a short excerpt of the text around Pos.
	Near string
	Msg  string
	// Err is the underlying failure, if any.
	Err error
}

func (e *SyntaxError) Error() string {
	msg := e.Kind.Error()
	if e.Pos >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Pos)
	}
	if e.Near != "" {
		msg += fmt.Sprintf(" near %q", e.Near)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap makes both the kind and the underlying failure visible to errors.Is.
func (e *SyntaxError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

const nearRadius = 20

func newSyntaxError(kind error, text string, pos int, msg string) *SyntaxError {
	return &SyntaxError{Kind: kind, Pos: pos, Near: excerpt(text, pos), Msg: msg}
}

func excerpt(text string, pos int) string {
	if pos < 0 || text == "" {
		return ""
	}
	if pos > len(text) {
		pos = len(text)
	}
	lo := max(pos-nearRadius, 0)
	hi := min(pos+nearRadius, len(text))
	return text[lo:hi]
}
