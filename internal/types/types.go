// Package types defines the data types shared by the cleaner and word-count tools.
package types

import "errors"

// MacroSpec is a user-supplied macro definition as stored in a config file.
type MacroSpec struct {
	Arity int    `json:"arity" yaml:"arity"`
	Body  string `json:"body" yaml:"body"`
}

// Config is the application configuration
type Config struct {
	Defines         []string             `json:"defines" yaml:"defines"`                   // \ifdefined flags that evaluate to true
	Strict          *bool                `json:"strict,omitempty" yaml:"strict,omitempty"` // fail on truncated scopes; default true
	LogLevel        string               `json:"log_level" yaml:"log_level"`
	LogFile         string               `json:"log_file" yaml:"log_file"`
	ExtraMacros     map[string]MacroSpec `json:"extra_macros" yaml:"extra_macros"` // appended after the presets
	ImageExtensions []string             `json:"image_extensions" yaml:"image_extensions"`
	WordCount       WordCountConfig      `json:"wordcount" yaml:"wordcount"`
}

// WordCountConfig holds the word-count toggles that are not exposed as flags
type WordCountConfig struct {
	CountReferences      *bool `json:"count_references,omitempty" yaml:"count_references,omitempty"`
	CountFootnotes       bool  `json:"count_footnotes" yaml:"count_footnotes"`
	CountInlineMath      *bool `json:"count_inline_math,omitempty" yaml:"count_inline_math,omitempty"`
	CountSeparateMath    *bool `json:"count_separate_math,omitempty" yaml:"count_separate_math,omitempty"`
	CountSectionHeadings bool  `json:"count_section_headings" yaml:"count_section_headings"`
	CountAppendix        bool  `json:"count_appendix" yaml:"count_appendix"`
}

// IsStrict reports whether truncated scopes are fatal.
func (c *Config) IsStrict() bool {
	return c.Strict == nil || *c.Strict
}

// BoolOr dereferences b, falling back to def when b is unset.
func BoolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// ErrorCode 错误代码枚举
type ErrorCode string

const (
	ErrMalformedInput ErrorCode = "MALFORMED_INPUT"
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrConfig         ErrorCode = "CONFIG_ERROR"
	ErrIO             ErrorCode = "IO_ERROR"
	ErrInternal       ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or
// ErrInternal if there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}
