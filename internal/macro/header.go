package macro

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/tokenizer"
)

// HeaderOptions controls EvaluateHeader.
type HeaderOptions struct {
	// Prefix is prepended to every emitted body line.
	Prefix string
	// KeepBlankLines emits empty lines instead of dropping them.
	KeepBlankLines bool
	// Policy applies to definitions still unterminated at the end of input.
	Policy Policy
}

// Header is the result of evaluating a document preamble.
type Header struct {
	// Body holds the active, non-directive lines.
	Body []string
	// Macros is the predefined table extended by every active definition.
	Macros Table
	// Order lists macro keys in the order their definitions were seen.
	Order []string
}

type directive int

const (
	dirNone directive = iota
	dirIf
	dirElse
	dirFi
	dirCommand
	dirEnvironment
)

var directives = map[string]directive{
	`\ifdefined`:        dirIf,
	`\else`:             dirElse,
	`\fi`:               dirFi,
	`\newcommand`:       dirCommand,
	`\renewcommand`:     dirCommand,
	`\providecommand`:   dirCommand,
	`\newenvironment`:   dirEnvironment,
	`\renewenvironment`: dirEnvironment,
}

// condFrame is one open \ifdefined block.
type condFrame struct {
	parent bool
	cond   bool
	inElse bool
}

func (f condFrame) active() bool {
	return f.parent && f.cond != f.inElse
}

type headerEvaluator struct {
	opts    HeaderOptions
	defines map[string]bool
	stack   []condFrame
	header  *Header
}

// EvaluateHeader walks the comment-stripped lines of a document, evaluates
// \ifdefined/\else/\fi blocks against defines, collects macro and
// environment definitions into a copy of predefined, and returns the
// remaining active lines.
func EvaluateHeader(lines []string, defines []string, predefined Table, opts HeaderOptions) (*Header, error) {
	h := &headerEvaluator{
		opts:    opts,
		defines: make(map[string]bool, len(defines)),
		header: &Header{
			Macros: predefined.Clone(),
		},
	}
	for _, d := range defines {
		if d = strings.TrimSpace(d); d != "" {
			h.defines[d] = true
		}
	}

	for n := 0; n < len(lines); n++ {
		line := strings.TrimSuffix(lines[n], "\n")
		dir, tok := classify(line)

		switch dir {
		case dirIf:
			name := flagName(line[tok.End():])
			h.push(h.defines[name])
			logger.Debug("conditional opened",
				logger.String("flag", name),
				logger.Bool("active", h.active()),
				logger.Int("depth", len(h.stack)),
				logger.Int("line", n+1))
			continue
		case dirElse:
			if len(h.stack) > 0 {
				h.stack[len(h.stack)-1].inElse = !h.stack[len(h.stack)-1].inElse
				continue
			}
			logger.Warn("\\else outside of a conditional block", logger.Int("line", n+1))
		case dirFi:
			if len(h.stack) > 0 {
				h.stack = h.stack[:len(h.stack)-1]
				continue
			}
			logger.Warn("\\fi outside of a conditional block", logger.Int("line", n+1))
		}

		if !h.active() {
			continue
		}

		switch dir {
		case dirCommand, dirEnvironment:
			consumed, err := h.define(lines, n, tok)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n+1, err)
			}
			n += consumed
			continue
		}

		if line == CommentMarker || (line == "" && !h.opts.KeepBlankLines) {
			continue
		}
		h.header.Body = append(h.header.Body, h.opts.Prefix+line)
	}

	if len(h.stack) > 0 {
		logger.Warn("unclosed conditional blocks at end of input", logger.Int("depth", len(h.stack)))
	}
	return h.header, nil
}

// flagName returns the flag tested by \ifdefined: a control sequence, or
// else the text up to the first blank or comment marker.
func flagName(rest string) string {
	rest = strings.TrimLeft(rest, " \t")
	if n := tokenizer.ControlLen(rest, 0); n > 0 {
		return rest[:n]
	}
	if i := strings.IndexAny(rest, " \t%"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// classify returns the first directive control word in line.
func classify(line string) (directive, tokenizer.Token) {
	if !strings.Contains(line, `\`) {
		return dirNone, tokenizer.Token{}
	}
	for _, tok := range tokenizer.Tokenize(line) {
		if tok.Kind != tokenizer.Control {
			continue
		}
		if d, ok := directives[tok.Text]; ok {
			return d, tok
		}
	}
	return dirNone, tokenizer.Token{}
}

func (h *headerEvaluator) active() bool {
	if len(h.stack) == 0 {
		return true
	}
	return h.stack[len(h.stack)-1].active()
}

func (h *headerEvaluator) push(cond bool) {
	h.stack = append(h.stack, condFrame{parent: h.active(), cond: cond})
}

// define parses the definition starting on lines[n]. Definitions whose
// scopes do not close on their line are continued on the following lines.
// It returns the number of extra lines consumed.
func (h *headerEvaluator) define(lines []string, n int, tok tokenizer.Token) (int, error) {
	src := lines[n]
	extra := 0
	for {
		defs, err := parseDefinition(src, tok, Strict)
		if errors.Is(err, ErrUnterminatedScope) {
			if n+extra+1 < len(lines) {
				extra++
				src += "\n" + lines[n+extra]
				continue
			}
			if h.opts.Policy == Lenient {
				defs, err = parseDefinition(src, tok, Lenient)
			}
		}
		if err != nil {
			return extra, err
		}
		h.store(tok.Text, defs)
		return extra, nil
	}
}

type namedDefinition struct {
	name string
	def  Definition
}

func (h *headerEvaluator) store(keyword string, defs []namedDefinition) {
	for _, nd := range defs {
		if _, exists := h.header.Macros[nd.name]; exists && keyword == `\providecommand` {
			continue
		}
		h.header.Macros[nd.name] = nd.def
		h.header.Order = append(h.header.Order, nd.name)
		logger.Debug("macro defined",
			logger.String("name", nd.name),
			logger.Int("arity", nd.def.Arity))
	}
}

func parseDefinition(src string, tok tokenizer.Token, policy Policy) ([]namedDefinition, error) {
	if strings.TrimSpace(src[:tok.Pos]) != "" {
		return nil, newSyntaxError(ErrMalformedDirective, src, tok.Pos,
			tok.Text+" must start its line")
	}
	isEnv := directives[tok.Text] == dirEnvironment

	i := tok.End()
	if i < len(src) && src[i] == '*' {
		i++
	}

	name, i, err := parseName(src, i, isEnv, tok.Text)
	if err != nil {
		return nil, err
	}

	def := Definition{}
	j := SkipBlank(src, i)
	if j < len(src) && src[j] == '[' {
		sargs, end, err := policy.FindScope(src, j, Brackets)
		if err != nil {
			return nil, err
		}
		def.Arity, err = strconv.Atoi(strings.TrimSpace(sargs))
		if err != nil || def.Arity < 0 || def.Arity > 9 {
			return nil, newSyntaxError(ErrMalformedDirective, src, j,
				fmt.Sprintf("invalid argument count %q for %s", sargs, name))
		}
		i = end

		if j = SkipBlank(src, i); j < len(src) && src[j] == '[' {
			def.Default, i, err = policy.FindScope(src, j, Brackets)
			if err != nil {
				return nil, err
			}
			def.HasDefault = def.Arity > 0
		}
	}

	def.Body, i, err = policy.FindScope(src, i, Braces)
	if err != nil {
		return nil, err
	}
	if !isEnv {
		return []namedDefinition{{name: name, def: def}}, nil
	}

	endBody, _, err := policy.FindScope(src, i, Braces)
	if err != nil {
		return nil, err
	}
	begin, end := EnvironmentKeys(name)
	return []namedDefinition{
		{name: begin, def: def},
		{name: end, def: Definition{Body: endBody}},
	}, nil
}

// parseName reads the macro name right after the directive keyword, either
// as a braced scope or, for commands, as a bare control sequence.
func parseName(src string, i int, isEnv bool, keyword string) (string, int, error) {
	j := i
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	if j < len(src) && src[j] == '{' {
		name, end, err := FindScope(src, j, Braces)
		if errors.Is(err, ErrUnterminatedScope) {
			return "", end, err
		}
		name = strings.TrimSpace(name)
		if err != nil || name == "" {
			return "", j, newSyntaxError(ErrMalformedDirective, src, j, "empty name after "+keyword)
		}
		if !isEnv && !strings.HasPrefix(name, `\`) {
			return "", j, newSyntaxError(ErrMalformedDirective, src, j,
				fmt.Sprintf("command name %q must start with a backslash", name))
		}
		return name, end, nil
	}
	if !isEnv {
		if n := tokenizer.ControlLen(src, j); n > 1 {
			return src[j : j+n], j + n, nil
		}
	}
	return "", j, newSyntaxError(ErrMalformedDirective, src, j, "expected a name after "+keyword)
}
