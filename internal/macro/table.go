// Package macro implements the macro-expansion engine: balanced scope
// scanning, comment stripping, preamble evaluation (\ifdefined guards,
// \newcommand and \newenvironment), ordered iterative macro substitution,
// and environment / inline-math replacement.
package macro

import (
	"slices"
	"strings"
)

// Definition is a text substitution rule with positional placeholders
// #1..#Arity in Body.
type Definition struct {
	Arity int
	Body  string

	// When HasDefault is set the first argument is optional: an invocation
	// without a leading [...] argument uses Default for #1.
	HasDefault bool
	Default    string
}

// Apply substitutes args for the placeholders in the body. Placeholders
// are replaced in a single left-to-right pass, so argument text is never
// itself searched for placeholders. Placeholders beyond len(args) are kept.
func (d Definition) Apply(args []string) string {
	if !strings.Contains(d.Body, "#") {
		return d.Body
	}
	var sb strings.Builder
	body := d.Body
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '#' && i+1 < len(body) {
			n := body[i+1]
			if n >= '1' && n <= '9' && int(n-'0') <= len(args) {
				sb.WriteString(args[n-'1'])
				i++
				continue
			}
			if n == '#' {
				sb.WriteString("##")
				i++
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// Table maps macro keys (`\foo`, `\begin{env}`, `\end{env}`) to their
// definitions. A Table belongs to one document-processing run.
type Table map[string]Definition

// Clone returns an independent copy of t.
func (t Table) Clone() Table {
	c := make(Table, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// Merge copies every entry of other into t, overwriting existing keys.
func (t Table) Merge(other Table) {
	for k, v := range other {
		t[k] = v
	}
}

// Names returns the keys of t in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for k := range t {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// EnvironmentKeys returns the table keys used for the begin and end half
// of environment name.
func EnvironmentKeys(name string) (begin, end string) {
	return `\begin{` + name + `}`, `\end{` + name + `}`
}
