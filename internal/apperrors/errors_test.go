package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		expected string
	}{
		{
			name: "amount",
			err: &ParseError{
				Parser: "CSV",
				Field:  "amount",
				Value:  "abc",
				Err:    errors.New("can't convert abc to decimal"),
			},
			expected: "CSV: failed to parse amount='abc': can't convert abc to decimal",
		},
		{
			name: "empty value",
			err: &ParseError{
				Parser: "PDF",
				Field:  "amount",
				Value:  "",
				Err:    errors.New("empty"),
			},
			expected: "PDF: failed to parse amount='': empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &ParseError{Parser: "CSV", Field: "amount", Err: inner}
	assert.True(t, errors.Is(err, inner))
}

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", &NotFoundError{Entity: "transaction", ID: 7}, ErrNotFound},
		{"unsupported format", &UnsupportedFormatError{FileName: "a.txt", Extension: ".txt"}, ErrUnsupportedFormat},
		{"invalid category", &InvalidCategoryError{Category: "Groceries"}, ErrInvalidCategory},
		{"rate limited", &RateLimitError{Provider: "gemini"}, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("wrapped: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "transaction 7 not found", (&NotFoundError{Entity: "transaction", ID: 7}).Error())
	assert.Equal(t, `invalid file format: "a.txt" (extension ".txt")`,
		(&UnsupportedFormatError{FileName: "a.txt", Extension: ".txt"}).Error())
	assert.Equal(t, "gemini: rate limited (429)", (&RateLimitError{Provider: "gemini"}).Error())
	assert.Equal(t, "anthropic: rate limited (429): slow down",
		(&RateLimitError{Provider: "anthropic", Err: errors.New("slow down")}).Error())
}

func TestInvalidFormatError(t *testing.T) {
	inner := errors.New("missing header")
	err := &InvalidFormatError{FilePath: "x.csv", ExpectedFormat: "CSV with header row", Msg: "empty file", Err: inner}

	assert.Equal(t, "invalid format in file 'x.csv': empty file. Expected: CSV with header row: missing header", err.Error())
	assert.True(t, errors.Is(err, inner))

	var target *InvalidFormatError
	assert.True(t, errors.As(fmt.Errorf("ingest: %w", err), &target))
}

func TestCategorizationError(t *testing.T) {
	inner := &RateLimitError{Provider: "gemini"}
	err := &CategorizationError{Description: "UBER", Strategy: "AI", Err: inner}

	assert.Equal(t, `categorization failed for "UBER" using AI: gemini: rate limited (429)`, err.Error())
	assert.True(t, errors.Is(err, ErrRateLimited))
}
