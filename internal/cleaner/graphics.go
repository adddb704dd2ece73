package cleaner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/macro"
	"latex-cleaner/internal/source"
	"latex-cleaner/internal/tokenizer"
	"latex-cleaner/internal/types"
)

var includeGraphicsPattern = tokenizer.Compile(`\includegraphics`)

// Asset is a graphics file referenced by the document.
type Asset struct {
	// Ref is the path as written in the document.
	Ref string
	// Source is the resolved file on disk.
	Source string
	// Name is the file name in the output directory.
	Name string
	Size int64
}

// RewriteGraphics flattens every \includegraphics path in document to its
// base name and returns the files to copy. Paths are resolved against
// baseDir by trying each of extensions in order. Two different files that
// flatten to the same name are an ErrInvalidInput.
func RewriteGraphics(document, baseDir string, extensions []string, policy macro.Policy) (string, []Asset, error) {
	hits := includeGraphicsPattern.FindAll(document)
	if len(hits) == 0 {
		return document, nil, nil
	}

	var sb strings.Builder
	var assets []Asset
	seen := map[string]string{}
	last := 0
	for _, hit := range hits {
		if hit < last {
			continue
		}
		pos := hit + len(includeGraphicsPattern.String())
		if i := macro.SkipBlank(document, pos); i < len(document) && document[i] == '[' {
			_, end, err := policy.FindScope(document, pos, macro.Brackets)
			if err != nil {
				return "", nil, types.NewAppError(types.ErrMalformedInput, "invalid \\includegraphics options", err)
			}
			pos = end
		}
		ref, end, err := policy.FindScope(document, pos, macro.Braces)
		if err != nil {
			return "", nil, types.NewAppError(types.ErrMalformedInput, "invalid \\includegraphics path", err)
		}

		ref = strings.TrimSpace(ref)
		asset, err := resolveAsset(baseDir, ref, extensions)
		if err != nil {
			return "", nil, err
		}
		flat := path.Base(ref)
		for _, key := range []string{asset.Name, flat} {
			if prev, ok := seen[key]; ok && prev != asset.Source {
				return "", nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
					"graphics files flatten to the same name",
					fmt.Sprintf("%s: %s and %s", key, prev, asset.Source), nil)
			}
		}
		if _, ok := seen[asset.Name]; !ok {
			assets = append(assets, asset)
		}
		seen[asset.Name] = asset.Source
		seen[flat] = asset.Source

		sb.WriteString(document[last:pos])
		sb.WriteString("{" + flat + "}")
		last = end
	}
	sb.WriteString(document[last:])
	return sb.String(), assets, nil
}

func resolveAsset(baseDir, ref string, extensions []string) (Asset, error) {
	for _, ext := range extensions {
		p := filepath.FromSlash(ref + ext)
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return Asset{
				Ref:    ref,
				Source: p,
				Name:   path.Base(ref) + ext,
				Size:   info.Size(),
			}, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Asset{}, types.NewAppErrorWithDetails(types.ErrIO, "failed to stat graphics file", p, err)
		}
	}
	return Asset{}, types.NewAppErrorWithDetails(types.ErrFileNotFound, "graphics file not found", ref, nil)
}

// CopyAssets copies every asset into outDir.
func CopyAssets(assets []Asset, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return types.NewAppErrorWithDetails(types.ErrIO, "failed to create output directory", outDir, err)
	}
	for _, a := range assets {
		dst := filepath.Join(outDir, a.Name)
		if err := source.CopyFile(a.Source, dst); err != nil {
			return types.NewAppErrorWithDetails(types.ErrIO, "failed to copy graphics file", a.Source, err)
		}
		logger.Debug("copied graphics file", logger.String("src", a.Source), logger.String("dst", dst))
	}
	return nil
}
