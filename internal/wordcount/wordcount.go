// Package wordcount counts the words of a LaTeX document body the way
// journals with word limits expect: macros are expanded, markup is
// neutralised, math becomes a single token and floats are tallied apart.
package wordcount

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/unicode/norm"

	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/macro"
	"latex-cleaner/internal/pipeline"
	"latex-cleaner/internal/presets"
	"latex-cleaner/internal/source"
	"latex-cleaner/internal/tokenizer"
	"latex-cleaner/internal/types"
)

const (
	// InlineMathWord replaces every $...$ span when inline math is counted.
	InlineMathWord = "EQN"
	// SeparateMathWord replaces every displayed equation when it is counted.
	SeparateMathWord = "SEPARATEEQN"
)

// SeparateMathEnvironments are replaced by SeparateMathWord.
var SeparateMathEnvironments = []string{"align", "align*", "equation", "equation*"}

var (
	figureEnvironments = []string{"figure", "figure*"}
	tableEnvironments  = []string{"table", "table*"}
	appendixPattern    = tokenizer.Compile(`\appendix`)
)

// Options selects what contributes to the count.
type Options struct {
	Defines []string

	CountReferences      bool // each citation counts as words
	CountFootnotes       bool
	CountInlineMath      bool // each $...$ counts as one word
	CountSeparateMath    bool // each displayed equation counts as one word
	CountSectionHeadings bool
	CountAppendix        bool
	CountFigureCaptions  bool
	CountTableCaptions   bool

	Policy macro.Policy
	// Extra macros are expanded before the built-in ones.
	Extra presets.Preset
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		CountReferences:   true,
		CountInlineMath:   true,
		CountSeparateMath: true,
	}
}

// ApplyConfig overlays the word-count section of a config file on o.
func (o *Options) ApplyConfig(cfg types.WordCountConfig) {
	o.CountReferences = types.BoolOr(cfg.CountReferences, o.CountReferences)
	o.CountInlineMath = types.BoolOr(cfg.CountInlineMath, o.CountInlineMath)
	o.CountSeparateMath = types.BoolOr(cfg.CountSeparateMath, o.CountSeparateMath)
	o.CountFootnotes = o.CountFootnotes || cfg.CountFootnotes
	o.CountSectionHeadings = o.CountSectionHeadings || cfg.CountSectionHeadings
	o.CountAppendix = o.CountAppendix || cfg.CountAppendix
}

// Result holds the tallies of one document.
type Result struct {
	RunID   string
	Words   int
	Figures int
	Tables  int
}

func (r *Result) String() string {
	return fmt.Sprintf("#words:   %s\n#figures: %d\n#tables:  %d\n",
		humanize.Comma(int64(r.Words)), r.Figures, r.Tables)
}

// CountFile reads path and counts it.
func CountFile(path string, opts Options) (*Result, error) {
	text, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Count(text, opts)
}

// Count expands the macros of text and counts the words of its document body.
func Count(text string, opts Options) (*Result, error) {
	defines := make([]string, 0, len(opts.Defines))
	for _, d := range opts.Defines {
		if d = strings.TrimSpace(d); d == "" {
			continue
		}
		if !strings.HasPrefix(d, `\`) {
			d = `\` + d
		}
		defines = append(defines, d)
	}

	res, err := pipeline.Run(text, pipeline.Options{
		Defines:    defines,
		Predefined: Preset(opts).Then(presets.Revision()).Then(opts.Extra),
		Policy:     opts.Policy,
	})
	if err != nil {
		return nil, err
	}

	doc, err := documentBody(res.Document)
	if err != nil {
		return nil, err
	}

	doc, err = macro.ReplaceInlineMath(doc, macro.Literal(word(opts.CountInlineMath, InlineMathWord)))
	if err != nil {
		return nil, types.NewAppError(types.ErrMalformedInput, "failed to replace inline math", err)
	}
	for _, env := range SeparateMathEnvironments {
		doc, err = macro.ReplaceEnvironment(doc, env, macro.Literal(word(opts.CountSeparateMath, SeparateMathWord)))
		if err != nil {
			return nil, types.NewAppError(types.ErrMalformedInput, "failed to replace math environment", err)
		}
	}

	result := &Result{
		RunID:   res.RunID,
		Figures: strings.Count(doc, `\begin{figure`),
		Tables:  strings.Count(doc, `\begin{table`),
	}
	if doc, err = replaceFloats(doc, figureEnvironments, opts.CountFigureCaptions); err != nil {
		return nil, err
	}
	if doc, err = replaceFloats(doc, tableEnvironments, opts.CountTableCaptions); err != nil {
		return nil, err
	}

	parts := appendixPattern.Split(doc)
	if opts.CountAppendix {
		doc = strings.Join(parts, " ")
	} else {
		doc = parts[0]
	}

	result.Words = len(Words(doc))
	logger.Info("words counted",
		logger.String("run", res.RunID),
		logger.Int("words", result.Words),
		logger.Int("figures", result.Figures),
		logger.Int("tables", result.Tables))
	return result, nil
}

func word(count bool, w string) string {
	if count {
		return w
	}
	return ""
}

func documentBody(document string) (string, error) {
	begin, end := macro.EnvironmentKeys("document")
	i := strings.Index(document, begin)
	if i < 0 {
		return "", types.NewAppError(types.ErrInvalidInput, "no "+begin+" found", nil)
	}
	body := document[i+len(begin):]
	if j := strings.Index(body, end); j >= 0 {
		body = body[:j]
	} else {
		logger.Warn("no " + end + " found, counting to the end of input")
	}
	return body, nil
}

func replaceFloats(doc string, envs []string, keep bool) (string, error) {
	r := macro.Literal("")
	if keep {
		r = macro.Keep
	}
	var err error
	for _, env := range envs {
		if doc, err = macro.ReplaceEnvironment(doc, env, r); err != nil {
			return "", types.NewAppError(types.ErrMalformedInput, "failed to replace "+env, err)
		}
	}
	return doc, nil
}

var (
	markupRemover   = strings.NewReplacer("{", "", "}", "", "(", "", ")", "", "[", "", "]", "", `\`, "", "%", "")
	separatorSpacer = strings.NewReplacer(",", " ", "?", " ", "-", " ")
)

// Words strips remaining markup from text and splits it into words.
func Words(text string) []string {
	text = markupRemover.Replace(text)
	text = separatorSpacer.Replace(text)
	return strings.Fields(norm.NFC.String(text))
}
