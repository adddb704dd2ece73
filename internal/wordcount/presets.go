package wordcount

import (
	"latex-cleaner/internal/macro"
	"latex-cleaner/internal/presets"
)

func body(keep bool, text string) string {
	if keep {
		return text
	}
	return ""
}

var sectionCommands = []string{
	`\chapter`, `\section`, `\section*`,
	`\subsection`, `\subsection*`,
	`\subsubsection`, `\subsubsection*`,
}

// Preset returns the macros that neutralise formatting, citations, lists
// and headings for counting, in the order they are appended after the
// document's own definitions.
func Preset(opts Options) presets.Preset {
	var p presets.Preset
	p.Add(`\color`, macro.Definition{Arity: 1})
	p.Add(`\textbf`, macro.Definition{Arity: 1, Body: "#1"})
	p.Add(`\texttt`, macro.Definition{Arity: 1, Body: "#1"})
	p.Add(`\textit`, macro.Definition{Arity: 1})
	p.Add(`\citep`, macro.Definition{Arity: 1, Body: body(opts.CountReferences, "(#1)")})
	p.Add(`\citet`, macro.Definition{Arity: 1, Body: body(opts.CountReferences, "#1, (YEAR)")})
	p.Add(`\label`, macro.Definition{Arity: 1})
	p.Add(`\ref`, macro.Definition{Arity: 1, Body: "REF"})
	p.Add(`\includegraphics`, macro.Definition{Arity: 2, HasDefault: true})
	p.Add(`\maketitle`, macro.Definition{})
	p.Add(`\citeauthor`, macro.Definition{Arity: 1, Body: "#1"})
	p.Add(`\caption`, macro.Definition{Arity: 1, Body: "#1"})

	for _, env := range []string{"center", "itemize"} {
		begin, end := macro.EnvironmentKeys(env)
		p.Add(begin, macro.Definition{})
		p.Add(end, macro.Definition{})
	}
	p.Add(`\item`, macro.Definition{})
	begin, end := macro.EnvironmentKeys("enumerate")
	p.Add(begin, macro.Definition{})
	p.Add(end, macro.Definition{})

	p.Add(`\footnote`, macro.Definition{Arity: 1, Body: body(opts.CountFootnotes, " #1 ")})

	for _, name := range sectionCommands {
		p.Add(name, macro.Definition{Arity: 1, Body: body(opts.CountSectionHeadings, "#1")})
	}
	return p
}
