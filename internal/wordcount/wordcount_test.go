package wordcount

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latex-cleaner/internal/macro"
	"latex-cleaner/internal/types"
)

const article = `\documentclass{article}
\newcommand{\model}{SHA}
\begin{document}
\maketitle
\section{Introduction}
The \model{} model is \textbf{fast} \citep{a} indeed.% comment
We solve $x^2=1$ here.
\begin{align}
a=b
\end{align}
\begin{figure}
\includegraphics[width=1cm]{f}
\caption{Figure caption words}
\end{figure}
\begin{itemize}
\item One-two
\end{itemize}
\footnote{ignored note}
\appendix
Appendix text here.
\end{document}
`

func TestCount(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		words  int
	}{
		{"defaults", func(*Options) {}, 14},
		{"appendix", func(o *Options) { o.CountAppendix = true }, 17},
		{"figure captions", func(o *Options) { o.CountFigureCaptions = true }, 17},
		{"section headings", func(o *Options) { o.CountSectionHeadings = true }, 15},
		{"footnotes", func(o *Options) { o.CountFootnotes = true }, 16},
		{"no math", func(o *Options) {
			o.CountInlineMath = false
			o.CountSeparateMath = false
		}, 12},
		{"no references", func(o *Options) { o.CountReferences = false }, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			res, err := Count(article, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.words, res.Words)
			assert.Equal(t, 1, res.Figures)
			assert.Equal(t, 0, res.Tables)
		})
	}
}

func TestCountDefines(t *testing.T) {
	doc := "\\ifdefined\\long\n\\newcommand{\\extra}{three more words}\n\\else\n\\newcommand{\\extra}{}\n\\fi\n\\begin{document}\nBase \\extra\n\\end{document}"

	res, err := Count(doc, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Words)

	opts := DefaultOptions()
	opts.Defines = []string{"long"}
	res, err = Count(doc, opts)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Words)
}

func TestCountTables(t *testing.T) {
	doc := "\\begin{document}\nText.\n\\begin{table*}\n\\caption{Four words of caption}\n\\end{table*}\n\\begin{table}\nx\n\\end{table}\n\\end{document}"

	res, err := Count(doc, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tables)
	assert.Equal(t, 1, res.Words)

	opts := DefaultOptions()
	opts.CountTableCaptions = true
	res, err = Count(doc, opts)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Words)
}

func TestCountErrors(t *testing.T) {
	_, err := Count("no document here", DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidInput, types.CodeOf(err))

	_, err = Count("\\begin{document}\n$$x$$\n\\end{document}", DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, types.ErrMalformedInput, types.CodeOf(err))
	assert.True(t, errors.Is(err, macro.ErrDisplayMath))

	_, err = Count("\\begin{document}\n\\begin{figure}\nx\n\\end{document}", DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, macro.ErrUnmatchedEnvironment))
}

func TestApplyConfig(t *testing.T) {
	off := false
	opts := DefaultOptions()
	opts.ApplyConfig(types.WordCountConfig{CountReferences: &off, CountAppendix: true})
	assert.False(t, opts.CountReferences)
	assert.True(t, opts.CountAppendix)
	assert.True(t, opts.CountInlineMath)
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, Words(`{a},b?c-d (e)%`))
	assert.Equal(t, []string{"caf\u00e9"}, Words("cafe\u0301"))
	assert.Empty(t, Words("{}[]()"))
}

func TestCountFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.tex")
	require.NoError(t, os.WriteFile(path, []byte(article), 0644))

	res, err := CountFile(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 14, res.Words)
	assert.Equal(t, "#words:   14\n#figures: 1\n#tables:  0\n", res.String())
}
