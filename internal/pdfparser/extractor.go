package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// PDFExtractor turns a PDF file into plain text with pages separated by form
// feeds, the way pdftotext renders them.
type PDFExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// PdftotextExtractor runs poppler's pdftotext in layout mode.
type PdftotextExtractor struct {
	// Binary defaults to "pdftotext" when empty.
	Binary string
}

// NewPdftotextExtractor creates a PdftotextExtractor using the binary on PATH.
func NewPdftotextExtractor() *PdftotextExtractor {
	return &PdftotextExtractor{}
}

// ExtractText writes the text layer of pdfPath to stdout and returns it.
func (e *PdftotextExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	bin := e.Binary
	if bin == "" {
		bin = "pdftotext"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-layout", "-enc", "UTF-8", pdfPath, "-") // #nosec G204 -- binary is configuration, path is a temp file
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running %s: %w: %s", bin, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.String(), nil
}

// MockPDFExtractor returns canned text, for tests.
type MockPDFExtractor struct {
	MockText string
	MockErr  error
	Calls    int
}

// NewMockPDFExtractor creates a MockPDFExtractor.
func NewMockPDFExtractor(mockText string, mockErr error) *MockPDFExtractor {
	return &MockPDFExtractor{MockText: mockText, MockErr: mockErr}
}

func (e *MockPDFExtractor) ExtractText(_ context.Context, _ string) (string, error) {
	e.Calls++
	if e.MockErr != nil {
		return "", e.MockErr
	}
	return e.MockText, nil
}
