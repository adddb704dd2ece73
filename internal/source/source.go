// Package source reads LaTeX input files in whatever encoding they were
// saved with and writes results back as UTF-8.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/types"
)

// Encoding names a detected text encoding
type Encoding string

const (
	UTF8    Encoding = "UTF-8"
	UTF8BOM Encoding = "UTF-8-BOM"
	UTF16LE Encoding = "UTF-16LE"
	UTF16BE Encoding = "UTF-16BE"
	GBK     Encoding = "GBK"
	Unknown Encoding = "UNKNOWN"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// DetectEncoding guesses the encoding of data from its byte order mark,
// falling back to UTF-8 validation and then GBK.
func DetectEncoding(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return UTF16LE
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return UTF16BE
	case utf8.Valid(data):
		return UTF8
	case isValidGBK(data):
		return GBK
	}
	return Unknown
}

func isValidGBK(data []byte) bool {
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return false
	}
	return utf8.Valid(decoded)
}

// Decode converts data to a UTF-8 string.
func Decode(data []byte) (string, Encoding, error) {
	enc := DetectEncoding(data)

	var decoded []byte
	var err error
	switch enc {
	case UTF8:
		decoded = data
	case UTF8BOM:
		decoded = data[len(bomUTF8):]
	case GBK:
		decoded, err = simplifiedchinese.GBK.NewDecoder().Bytes(data)
	case UTF16LE:
		decoded, err = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
	case UTF16BE:
		decoded, err = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(data)
	default:
		return "", enc, fmt.Errorf("unsupported encoding: %s", enc)
	}
	if err != nil {
		return "", enc, fmt.Errorf("failed to decode %s: %w", enc, err)
	}
	return string(decoded), enc, nil
}

// ReadFile reads path and returns its content as UTF-8.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", types.NewAppErrorWithDetails(types.ErrFileNotFound, "input file not found", path, err)
		}
		return "", types.NewAppErrorWithDetails(types.ErrIO, "failed to read file", path, err)
	}

	content, enc, err := Decode(data)
	if err != nil {
		return "", types.NewAppErrorWithDetails(types.ErrInvalidInput, "failed to decode file", path, err)
	}
	logger.Debug("read source file",
		logger.String("path", path),
		logger.String("encoding", string(enc)),
		logger.Int("bytes", len(data)))
	return content, nil
}

// WriteFile writes content to path through a temporary file in the same
// directory, so a failed write never leaves a truncated file behind.
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.NewAppErrorWithDetails(types.ErrIO, "failed to create directory", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrIO, "failed to create temp file", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return types.NewAppErrorWithDetails(types.ErrIO, "failed to write file", path, err)
	}
	if err := tmp.Close(); err != nil {
		return types.NewAppErrorWithDetails(types.ErrIO, "failed to write file", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return types.NewAppErrorWithDetails(types.ErrIO, "failed to set permissions", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return types.NewAppErrorWithDetails(types.ErrIO, "failed to replace file", path, err)
	}

	logger.Debug("wrote file", logger.String("path", path), logger.Int("bytes", len(content)))
	return nil
}

// CopyFile copies src to dst, keeping the source permissions.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	if err := destFile.Sync(); err != nil {
		return err
	}

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return err
	}
	return os.Chmod(dst, sourceInfo.Mode())
}
