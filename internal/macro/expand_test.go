package macro

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_Arguments(t *testing.T) {
	table := Table{"\\foo": {Arity: 2, Body: "(#1,#2)"}}
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"braces", "\\foo{1}{2}", "(1,2)"},
		{"brackets", "\\foo[1]{2}", "(1,2)"},
		{"blank between arguments", "\\foo{1} {2}", "(1,2)"},
		{"comment marker between arguments", "\\foo{1}%\n{2}", "(1,2)"},
		{"several invocations", "a \\foo{1}{2} b \\foo{x}{y}.", "a (1,2) b (x,y)."},
		{"longer name untouched", "\\foobar{1}{2}", "\\foobar{1}{2}"},
		{"nested in argument", "\\foo{\\foo{a}{b}}{c}", "((a,b),c)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := Expand(tt.doc, []string{"\\foo"}, table)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpand_OrderSensitive(t *testing.T) {
	// B is declared after A and refers to it.
	table := Table{
		"A": {Body: "x"},
		"B": {Body: "A"},
	}
	got, _, err := Expand("B", []string{"B", "A"}, table)
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	table = Table{
		"\\A": {Body: "x"},
		"\\B": {Body: "\\A"},
	}
	got, _, err = Expand("\\B", []string{"\\B", "\\A"}, table)
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestExpand_CrossBodySubstitution(t *testing.T) {
	// \A was declared first but refers to \B, declared later.
	table := Table{
		"\\A": {Arity: 1, Body: "a(#1)\\B"},
		"\\B": {Body: "b"},
	}
	got, updated, err := Expand("\\A{1}", []string{"\\B", "\\A"}, table)
	require.NoError(t, err)
	assert.Equal(t, "a(1)b", got)
	assert.Equal(t, "a(#1)b", updated["\\A"].Body)
	// the caller's table keeps the original body
	assert.Equal(t, "a(#1)\\B", table["\\A"].Body)
}

func TestExpand_EndToEnd(t *testing.T) {
	lines := StripComments(strings.Split(`\documentclass{article}
\newcommand{\greet}[1]{Hello, #1!} % salutation
\begin{document}
\greet{World}
\end{document}`, "\n"))

	h, err := EvaluateHeader(lines, nil, nil, HeaderOptions{})
	require.NoError(t, err)

	got, _, err := Expand(strings.Join(h.Body, "\n"), h.Order, h.Macros)
	require.NoError(t, err)
	assert.Equal(t, "\\documentclass{article}\n\\begin{document}\nHello, World!\n\\end{document}", got)
}

func TestExpand_Environment(t *testing.T) {
	h, err := EvaluateHeader([]string{
		"\\newenvironment{note}[1]{[#1: }{]}",
		"\\begin{note}{Aside}text\\end{note}",
	}, nil, nil, HeaderOptions{})
	require.NoError(t, err)

	order := append([]string(nil), h.Order...)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	got, _, err := Expand(strings.Join(h.Body, "\n"), order, h.Macros)
	require.NoError(t, err)
	assert.Equal(t, "[Aside: text]", got)
}

func TestExpand_OptionalDefault(t *testing.T) {
	table := Table{"\\hi": {Arity: 2, Body: "Hi #1 and #2", HasDefault: true, Default: "World"}}

	got, _, err := Expand("\\hi{you}", []string{"\\hi"}, table)
	require.NoError(t, err)
	assert.Equal(t, "Hi World and you", got)

	got, _, err = Expand("\\hi[there]{you}", []string{"\\hi"}, table)
	require.NoError(t, err)
	assert.Equal(t, "Hi there and you", got)
}

func TestExpand_MissingArgument(t *testing.T) {
	table := Table{"\\foo": {Arity: 2, Body: "(#1,#2)"}}
	_, _, err := Expand("\\foo{1} and more", []string{"\\foo"}, table)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnboundedScope)
	assert.ErrorIs(t, err, ErrMalformedScope)

	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 0, serr.Pos)
}

func TestExpand_TruncatedArgument(t *testing.T) {
	table := Table{"\\foo": {Arity: 2, Body: "(#1,#2)"}}

	_, _, err := Expand("\\foo{1}{2", []string{"\\foo"}, table)
	assert.ErrorIs(t, err, ErrUnterminatedScope)

	got, _, err := Expander{Policy: Lenient}.Expand("\\foo{1}{2", []string{"\\foo"}, table)
	require.NoError(t, err)
	assert.Equal(t, "(1,2)", got)
}

func TestExpand_UnknownMacro(t *testing.T) {
	_, _, err := Expand("x", []string{"\\missing"}, Table{})
	assert.ErrorIs(t, err, ErrUnknownMacro)
}

func TestExpand_NoSelfRecursion(t *testing.T) {
	table := Table{"\\x": {Body: "\\x!"}}
	got, _, err := Expand("\\x", []string{"\\x"}, table)
	require.NoError(t, err)
	assert.Equal(t, "\\x!", got)
}

func TestExpand_BodyInvocationWithoutArguments(t *testing.T) {
	// \wrap takes its argument from \outer's call site
	table := Table{
		"\\outer": {Arity: 1, Body: "\\wrap{#1}"},
		"\\wrap":  {Arity: 1, Body: "<#1>"},
		"\\bare":  {Body: "\\wrap"},
	}
	got, _, err := Expand("\\outer{x}", []string{"\\wrap", "\\bare", "\\outer"}, table)
	require.NoError(t, err)
	assert.Equal(t, "<x>", got)
}

func TestDefinitionApply(t *testing.T) {
	def := Definition{Arity: 2, Body: "#1#2 ## #3"}
	assert.Equal(t, "#2y ## #3", def.Apply([]string{"#2", "y"}))
	assert.Equal(t, "plain", Definition{Body: "plain"}.Apply(nil))
}

func TestSubstitute(t *testing.T) {
	out, err := Expander{}.Substitute("\\b{x} \\b{y}", "\\b", Definition{Arity: 1, Body: "*#1*"})
	require.NoError(t, err)
	assert.Equal(t, "*x* *y*", out)
}
