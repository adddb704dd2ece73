package cleaner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/macro"
	"latex-cleaner/internal/tokenizer"
	"latex-cleaner/internal/types"
)

var bibliographyPattern = tokenizer.Compile(`\bibliography`)

// Entry types without a citation key; they are always kept.
var keylessEntryTypes = []string{"string", "preamble", "comment"}

// Bibliography maps citation keys to the trimmed source lines of their entry.
type Bibliography map[string][]string

// ParseBibliography reads BibTeX entries from r. Blank lines and lines
// starting with % are skipped. An entry starts at a line beginning with @
// and its key runs from the first { to the first comma.
func ParseBibliography(r io.Reader) (Bibliography, error) {
	bib := Bibliography{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var key string
	var lines []string
	flush := func() {
		if key != "" {
			bib[key] = lines
		}
	}

	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		if !strings.HasPrefix(line, "@") {
			if key != "" {
				lines = append(lines, line)
			}
			continue
		}

		flush()
		open := strings.IndexByte(line, '{')
		if open < 0 {
			return nil, fmt.Errorf("line %d: entry without '{': %q", n, line)
		}
		entryType := strings.ToLower(strings.TrimSpace(line[1:open]))
		if slices.Contains(keylessEntryTypes, entryType) {
			key = fmt.Sprintf("@%s:%d", entryType, n)
		} else {
			rest := line[open+1:]
			if i := strings.IndexByte(rest, ','); i >= 0 {
				rest = rest[:i]
			}
			key = strings.TrimSpace(rest)
		}
		lines = []string{line}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return bib, nil
}

// Cited returns the keys of b that occur in document, in sorted order.
// Keyless entries are always included, ahead of the cited keys in file order.
func (b Bibliography) Cited(document string) []string {
	keys := lo.Keys(b)
	slices.Sort(keys)
	isKeyless := func(k string, _ int) bool {
		return strings.HasPrefix(k, "@")
	}
	keyless, keyed := lo.Filter(keys, isKeyless), lo.Reject(keys, isKeyless)
	slices.SortFunc(keyless, func(a, c string) int {
		return lineOf(a) - lineOf(c)
	})
	cited := lo.Filter(keyed, func(k string, _ int) bool {
		return strings.Contains(document, k)
	})
	return append(keyless, cited...)
}

func lineOf(key string) int {
	n, _ := strconv.Atoi(key[strings.LastIndexByte(key, ':')+1:])
	return n
}

// Write writes the entries named by keys to w, each followed by a blank line.
func (b Bibliography) Write(w io.Writer, keys []string) error {
	for _, k := range keys {
		if _, err := io.WriteString(w, strings.Join(b[k], "\n")+"\n\n"); err != nil {
			return err
		}
	}
	return nil
}

// BibliographyResult describes a rewritten bibliography.
type BibliographyResult struct {
	Sources []string
	Path    string
	Entries int
	// Content is the reduced .bib text to be written to Path.
	Content string
}

// RewriteBibliography reduces the bibliography files named by the single
// \bibliography command of document to the cited entries, rendered for
// <outDir>/<stem>.bib, and points the command at the new file. Nothing is
// written; the caller saves Content once the whole run has succeeded. Documents
// without exactly one \bibliography command are returned unchanged with a
// nil result.
func RewriteBibliography(document, baseDir, outDir, stem string) (string, *BibliographyResult, error) {
	hits := bibliographyPattern.FindAll(document)
	if len(hits) != 1 {
		if len(hits) > 1 {
			logger.Warn("multiple \\bibliography commands, leaving bibliography untouched", logger.Int("count", len(hits)))
		}
		return document, nil, nil
	}

	argStart := hits[0] + len(bibliographyPattern.String())
	arg, end, err := macro.FindScope(document, argStart, macro.Braces)
	if err != nil {
		return "", nil, types.NewAppError(types.ErrMalformedInput, "invalid \\bibliography argument", err)
	}

	bib := Bibliography{}
	result := &BibliographyResult{Path: filepath.Join(outDir, stem+".bib")}
	for _, name := range strings.Split(arg, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		path, err := resolveBibFile(baseDir, name)
		if err != nil {
			return "", nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return "", nil, types.NewAppErrorWithDetails(types.ErrIO, "failed to open bibliography", path, err)
		}
		parsed, err := ParseBibliography(f)
		f.Close()
		if err != nil {
			return "", nil, types.NewAppErrorWithDetails(types.ErrMalformedInput, "failed to parse bibliography", path, err)
		}
		for k, v := range parsed {
			bib[k] = v
		}
		result.Sources = append(result.Sources, path)
		logger.Debug("read bibliography", logger.String("path", path), logger.Int("entries", len(parsed)))
	}

	cited := bib.Cited(document)
	result.Entries = len(cited)

	var sb strings.Builder
	if err := bib.Write(&sb, cited); err != nil {
		return "", nil, types.NewAppError(types.ErrInternal, "failed to render bibliography", err)
	}
	result.Content = sb.String()

	logger.Info("bibliography reduced",
		logger.Strings("sources", result.Sources),
		logger.Int("entries", len(bib)),
		logger.Int("cited", len(cited)))

	rewritten := document[:hits[0]] + `\bibliography{` + stem + `}` + document[end:]
	return rewritten, result, nil
}

func resolveBibFile(baseDir, name string) (string, error) {
	candidates := []string{name}
	if !strings.HasSuffix(name, ".bib") {
		candidates = append(candidates, name+".bib")
	}
	for _, c := range candidates {
		path := c
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", types.NewAppErrorWithDetails(types.ErrIO, "failed to stat bibliography", path, err)
		}
	}
	return "", types.NewAppErrorWithDetails(types.ErrFileNotFound, "bibliography file not found", name, nil)
}
