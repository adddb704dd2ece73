// Package pipeline runs one document through comment stripping, preamble
// evaluation and macro expansion.
package pipeline

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/macro"
	"latex-cleaner/internal/presets"
	"latex-cleaner/internal/types"
)

// Options configures a run.
type Options struct {
	// Defines are the \ifdefined flags that evaluate to true.
	Defines []string
	// Predefined macros are available to the document; their order is
	// appended after the document's own declaration order.
	Predefined presets.Preset
	Policy     macro.Policy
	// KeepBlankLines keeps empty body lines (paragraph breaks).
	KeepBlankLines bool
}

// Result is the outcome of a run.
type Result struct {
	RunID string
	// Document is the fully expanded text.
	Document string
	// Macros is the final macro table, with bodies expanded.
	Macros macro.Table
	// Order is the expansion order used: declaration order reversed.
	Order []string
}

// Run processes text. Every failure is returned as a *types.AppError with
// code ErrMalformedInput wrapping the macro error.
func Run(text string, opts Options) (*Result, error) {
	runID := uuid.NewString()
	lines := macro.SplitLines(text)
	logger.Info("processing document",
		logger.String("run", runID),
		logger.Int("lines", len(lines)),
		logger.Strings("defines", opts.Defines),
		logger.String("policy", opts.Policy.String()))

	stripped := macro.StripComments(lines)
	header, err := macro.EvaluateHeader(stripped, opts.Defines, opts.Predefined.Macros, macro.HeaderOptions{
		KeepBlankLines: opts.KeepBlankLines,
		Policy:         opts.Policy,
	})
	if err != nil {
		logger.Error("failed to evaluate header", err, logger.String("run", runID))
		return nil, types.NewAppError(types.ErrMalformedInput, "failed to evaluate header", err)
	}

	order := lo.Reverse(append(slices.Clone(header.Order), opts.Predefined.Order...))
	logger.Debug("expansion order",
		logger.String("run", runID),
		logger.Int("declared", len(header.Order)),
		logger.Int("predefined", len(opts.Predefined.Order)))

	doc, table, err := macro.Expander{Policy: opts.Policy}.Expand(strings.Join(header.Body, "\n"), order, header.Macros)
	if err != nil {
		logger.Error("failed to expand macros", err, logger.String("run", runID))
		return nil, types.NewAppError(types.ErrMalformedInput, "failed to expand macros", err)
	}

	logger.Info("document expanded",
		logger.String("run", runID),
		logger.Int("macros", len(table)),
		logger.Int("bytes", len(doc)))
	logger.Debug("macro table", logger.String("run", runID), logger.Strings("names", table.Names()))

	return &Result{
		RunID:    runID,
		Document: doc,
		Macros:   table,
		Order:    order,
	}, nil
}
