// Package presets holds predefined macro tables that drivers hand to the
// pipeline before a document's own definitions are read.
package presets

import (
	"slices"

	"latex-cleaner/internal/macro"
	"latex-cleaner/internal/types"
)

// Preset is a macro table together with the order in which its entries
// are appended after the document's own declaration order.
type Preset struct {
	Macros macro.Table
	Order  []string
}

// Add appends a single definition.
func (p *Preset) Add(name string, def macro.Definition) {
	if p.Macros == nil {
		p.Macros = macro.Table{}
	}
	p.Macros[name] = def
	p.Order = append(p.Order, name)
}

// Then returns a new preset with the entries of next appended after p's.
func (p Preset) Then(next Preset) Preset {
	out := Preset{
		Macros: p.Macros.Clone(),
		Order:  append(slices.Clone(p.Order), next.Order...),
	}
	out.Macros.Merge(next.Macros)
	return out
}

// revision lists the macros of the LaTeX "changes" package in declaration
// order, each reduced to the accepted text.
var revision = []struct {
	name string
	def  macro.Definition
}{
	{`\replaced`, macro.Definition{Arity: 2, Body: "#2"}},
	{`\added`, macro.Definition{Arity: 1, Body: "#1"}},
	{`\deleted`, macro.Definition{Arity: 1, Body: ""}},
	{`\replacedincaption`, macro.Definition{Arity: 2, Body: "#2"}},
	{`\addedincaption`, macro.Definition{Arity: 1, Body: "#1"}},
	{`\deletedincaption`, macro.Definition{Arity: 1, Body: ""}},
	{`\listofchanges`, macro.Definition{Body: ""}},
	{`\replacedlabel`, macro.Definition{Arity: 1, Body: `\label{#1}`}},
	{`\drafttrue`, macro.Definition{Body: ""}},
	{`\countchange`, macro.Definition{Body: ""}},
}

// Revision returns the revision-tracking macros degraded to their final
// text: \replaced{old}{new} becomes new, \deleted{x} disappears, and so on.
func Revision() Preset {
	var p Preset
	for _, r := range revision {
		p.Add(r.name, r.def)
	}
	return p
}

// FromSpecs builds a preset from config-file macro specs, in sorted key order.
func FromSpecs(specs map[string]types.MacroSpec) Preset {
	var p Preset
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		s := specs[name]
		p.Add(name, macro.Definition{Arity: s.Arity, Body: s.Body})
	}
	return p
}
