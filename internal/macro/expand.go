package macro

import (
	"fmt"
	"strings"

	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/tokenizer"
)

// Expander substitutes macros throughout a document.
type Expander struct {
	// Policy applies to argument scopes truncated by the end of input.
	Policy Policy
}

// Expand is Expander{}.Expand, using the Strict policy.
func Expand(document string, order []string, table Table) (string, Table, error) {
	return Expander{}.Expand(document, order, table)
}

// Expand replaces every invocation of every macro in order, processing the
// names front to back. After a macro has been expanded in the document it
// is also expanded inside the bodies of all macros that come later in
// order, so a body that refers to an already-processed macro still
// resolves once its own turn comes. Callers pass the declaration order
// reversed: latest definitions first.
//
// The returned table is a copy of table holding the rewritten bodies.
func (e Expander) Expand(document string, order []string, table Table) (string, Table, error) {
	table = table.Clone()
	for i, name := range order {
		def, ok := table[name]
		if !ok {
			return "", nil, &SyntaxError{Kind: ErrUnknownMacro, Pos: -1, Msg: name}
		}
		pat := tokenizer.Compile(name)

		out, count, err := e.substitute(document, pat, def, false)
		if err != nil {
			return "", nil, fmt.Errorf("expanding %s: %w", name, err)
		}
		document = out

		for _, later := range order[i+1:] {
			ld, ok := table[later]
			if !ok {
				continue
			}
			if ld.Body, _, err = e.substitute(ld.Body, pat, def, true); err != nil {
				return "", nil, fmt.Errorf("expanding %s in %s: %w", name, later, err)
			}
			if ld.HasDefault {
				if ld.Default, _, err = e.substitute(ld.Default, pat, def, true); err != nil {
					return "", nil, fmt.Errorf("expanding %s in %s: %w", name, later, err)
				}
			}
			table[later] = ld
		}

		if count > 0 {
			logger.Debug("macro expanded",
				logger.String("name", name),
				logger.Int("occurrences", count))
		}
	}
	return document, table, nil
}

// Substitute replaces every invocation of the single macro name in s.
func (e Expander) Substitute(s, name string, def Definition) (string, error) {
	out, _, err := e.substitute(s, tokenizer.Compile(name), def, false)
	return out, err
}

// substitute replaces the occurrences of pat in s and reports how many
// were replaced. Inside macro bodies (inBody) an invocation whose
// arguments lie outside the body is left untouched instead of failing.
func (e Expander) substitute(s string, pat tokenizer.Pattern, def Definition, inBody bool) (string, int, error) {
	hits := pat.FindAll(s)
	if len(hits) == 0 {
		return s, 0, nil
	}

	key := pat.String()
	var sb strings.Builder
	last, count := 0, 0
	for _, h := range hits {
		if h < last {
			// consumed as part of an earlier invocation's arguments
			continue
		}
		sb.WriteString(s[last:h])

		args, end, err := e.readArgs(s, h+len(key), def)
		if err != nil {
			if inBody {
				logger.Debug("macro invocation left unexpanded in body",
					logger.String("name", key), logger.Err(err))
				sb.WriteString(key)
				last = h + len(key)
				continue
			}
			return "", count, &SyntaxError{
				Kind: ErrUnboundedScope,
				Pos:  h,
				Near: excerpt(s, h),
				Msg:  fmt.Sprintf("%s expects %d argument(s)", key, def.Arity),
				Err:  err,
			}
		}

		// Arguments may themselves invoke the macro.
		for k, arg := range args {
			if args[k], _, err = e.substitute(arg, pat, def, inBody); err != nil {
				return "", count, err
			}
		}

		sb.WriteString(def.Apply(args))
		last = end
		count++
	}
	sb.WriteString(s[last:])
	return sb.String(), count, nil
}

// readArgs reads def.Arity arguments starting at pos. Each argument is a
// bracket scope if its next significant character is '[', otherwise a
// brace scope.
func (e Expander) readArgs(s string, pos int, def Definition) ([]string, int, error) {
	if def.Arity == 0 {
		return nil, pos, nil
	}
	args := make([]string, 0, def.Arity)
	for k := 0; k < def.Arity; k++ {
		j := SkipBlank(s, pos)
		d := Braces
		if j < len(s) && s[j] == '[' {
			d = Brackets
		} else if k == 0 && def.HasDefault {
			args = append(args, def.Default)
			continue
		}
		arg, end, err := e.Policy.FindScope(s, pos, d)
		if err != nil {
			return nil, pos, err
		}
		args = append(args, arg)
		pos = end
	}
	return args, pos, nil
}
