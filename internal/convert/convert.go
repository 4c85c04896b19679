// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns PDF bytes into plain text with pluggable backends.
// The native backend reads the PDF in process; the pdftotext backend pipes
// it through the poppler command-line tool.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/citeverify/pkg/types"
)

// ErrNoText is returned when a PDF parses but yields no text, as with
// scanned documents without an OCR layer.
var ErrNoText = errors.New("no text extracted from PDF")

// Converter transforms a PDF into plain text. Line breaks in the output
// approximate the visual lines of the document.
type Converter interface {
	// Name identifies the backend in logs.
	Name() string

	// Convert returns the text of the PDF held in data.
	Convert(ctx context.Context, data []byte) (string, error)
}

// New returns the converter for cfg.Backend. An empty backend selects the
// native converter.
func New(cfg types.ConversionConfig) (Converter, error) {
	switch cfg.Backend {
	case "", types.BackendNative:
		return NewNative(), nil
	case types.BackendPdftotext:
		return NewPdftotext()
	default:
		return nil, fmt.Errorf("unknown conversion backend %q", cfg.Backend)
	}
}

// ConvertFile reads the PDF at path and converts it with c.
func ConvertFile(ctx context.Context, c Converter, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading PDF %s: %w", path, err)
	}
	text, err := c.Convert(ctx, data)
	if err != nil {
		return "", fmt.Errorf("converting %s with %s: %w", path, c.Name(), err)
	}
	return text, nil
}

// checkText returns ErrNoText for output that is empty after trimming.
func checkText(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrNoText
	}
	return s, nil
}
