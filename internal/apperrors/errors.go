// Package apperrors defines the error kinds surfaced by the ledger.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrRateLimited       = errors.New("rate limited")
)

// ParseError represents a value that could not be parsed. Extractors log and
// skip the affected line or row.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError is returned when no extractor handles a file name.
type UnsupportedFormatError struct {
	FileName  string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("invalid file format: %q (extension %q)", e.FileName, e.Extension)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// InvalidFormatError means the document does not conform to the format its
// extension announced.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
	Err            error
}

func (e *InvalidFormatError) Error() string {
	msg := fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

// CategorizationError represents a failed categorization attempt. The
// categorizer recovers from it with the fallback category.
type CategorizationError struct {
	Description string
	Strategy    string
	Err         error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization failed for %q using %s: %v",
		e.Description, e.Strategy, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// RateLimitError marks a provider response that asked the caller to slow down.
type RateLimitError struct {
	Provider string
	Err      error
}

func (e *RateLimitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: rate limited (429)", e.Provider)
	}
	return fmt.Sprintf("%s: rate limited (429): %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidCategoryError rejects a category outside the allow-list.
type InvalidCategoryError struct {
	Category string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category %q", e.Category)
}

func (e *InvalidCategoryError) Is(target error) bool {
	return target == ErrInvalidCategory
}
