// Package cleaner produces a self-contained, macro-free copy of a LaTeX
// document: definitions from the preamble are expanded into the body, the
// result is re-indented, the bibliography is reduced to cited entries and
// graphics are collected into the output directory.
package cleaner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/macro"
	"latex-cleaner/internal/pipeline"
	"latex-cleaner/internal/presets"
	"latex-cleaner/internal/source"
	"latex-cleaner/internal/types"
)

// Options configures a cleaning run.
type Options struct {
	Input  string
	Output string
	OutDir string

	Defines []string
	Policy  macro.Policy
	// Extra macros are expanded before the revision macros.
	Extra           presets.Preset
	ImageExtensions []string
}

// Report summarises a finished run.
type Report struct {
	RunID        string
	OutputPath   string
	Bytes        int
	Macros       int
	Bibliography *BibliographyResult
	Assets       []Asset
}

func (o Options) validate() error {
	switch {
	case o.Input == "":
		return types.NewAppError(types.ErrInvalidInput, "no input file given", nil)
	case o.Output == "":
		return types.NewAppError(types.ErrInvalidInput, "no output file given", nil)
	case o.OutDir == "":
		return types.NewAppError(types.ErrInvalidInput, "no output directory given", nil)
	}
	return nil
}

// Run cleans opts.Input and writes the result to <OutDir>/<base of Output>.
func Run(opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(opts.ImageExtensions) == 0 {
		opts.ImageExtensions = []string{""}
	}

	text, err := source.ReadFile(opts.Input)
	if err != nil {
		return nil, err
	}

	res, err := pipeline.Run(text, pipeline.Options{
		Defines:        opts.Defines,
		Predefined:     presets.Revision().Then(opts.Extra),
		Policy:         opts.Policy,
		KeepBlankLines: true,
	})
	if err != nil {
		return nil, err
	}

	doc := Format(res.Document)

	baseDir := filepath.Dir(opts.Input)
	outName := filepath.Base(opts.Output)
	stem := strings.TrimSuffix(outName, filepath.Ext(outName))

	doc, bib, err := RewriteBibliography(doc, baseDir, opts.OutDir, stem)
	if err != nil {
		return nil, err
	}

	doc, assets, err := RewriteGraphics(doc, baseDir, opts.ImageExtensions, opts.Policy)
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(opts.OutDir, outName)
	if err := source.WriteFile(outPath, doc); err != nil {
		return nil, err
	}
	if bib != nil {
		if err := source.WriteFile(bib.Path, bib.Content); err != nil {
			return nil, err
		}
	}
	if err := CopyAssets(assets, opts.OutDir); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:        res.RunID,
		OutputPath:   outPath,
		Bytes:        len(doc),
		Macros:       len(res.Macros),
		Bibliography: bib,
		Assets:       assets,
	}
	logger.Info("document cleaned",
		logger.String("run", res.RunID),
		logger.String("output", outPath),
		logger.Int("assets", len(assets)))
	return report, nil
}

// String renders the report for the terminal.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "output:       %s (%s)\n", r.OutputPath, humanize.Bytes(uint64(r.Bytes)))
	fmt.Fprintf(&sb, "macros:       %d\n", r.Macros)
	if r.Bibliography != nil {
		fmt.Fprintf(&sb, "bibliography: %s (%d entries from %s)\n",
			r.Bibliography.Path, r.Bibliography.Entries, strings.Join(r.Bibliography.Sources, ", "))
	}
	var total int64
	for _, a := range r.Assets {
		total += a.Size
	}
	fmt.Fprintf(&sb, "graphics:     %d files (%s)\n", len(r.Assets), humanize.Bytes(uint64(total)))
	return sb.String()
}
