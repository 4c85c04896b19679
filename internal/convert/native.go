// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeConverter extracts text page by page with ledongthuc/pdf. Pages
// that fail to decode are skipped.
type NativeConverter struct{}

// NewNative returns the in-process converter.
func NewNative() *NativeConverter { return &NativeConverter{} }

// Name implements Converter.
func (*NativeConverter) Name() string { return "native" }

// Convert implements Converter.
func (*NativeConverter) Convert(ctx context.Context, data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		s, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(s)
		b.WriteString("\n")
	}
	return checkText(b.String())
}
