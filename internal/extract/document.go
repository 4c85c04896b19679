// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/citeverify/internal/normalize"
	"github.com/pdiddy/citeverify/pkg/types"
)

// UnknownTitle is reported when no paper title can be found.
const UnknownTitle = "Unknown Title"

// Result is the outcome of extracting citations from one paper.
type Result struct {
	Title     string
	Section   string
	Citations []types.Citation
}

// Document extracts every citation from the full text of a paper. It
// fails with ErrEmptyDocument or ErrNoReferences; partial results are
// never returned.
func Document(text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	text = normalize.Layout(text)

	section, ok := LocateReferences(text)
	if !ok {
		return nil, fmt.Errorf("%w: no References, Bibliography, Works Cited or Literature heading", ErrNoReferences)
	}

	segs := Split(section)
	citations := make([]types.Citation, 0, len(segs))
	for _, s := range segs {
		citations = append(citations, Fields(s.Text, s.Label))
	}

	return &Result{
		Title:     PaperTitle(text),
		Section:   section,
		Citations: citations,
	}, nil
}

// PaperTitle returns the first substantial line among the first 20: longer
// than 20 characters, not all capitals, and not an Abstract, Introduction
// or Keywords heading.
func PaperTitle(text string) string {
	lines := strings.SplitN(text, "\n", 21)
	if len(lines) > 20 {
		lines = lines[:20]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= 20 || isUpper(line) {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "abstract") ||
			strings.HasPrefix(lower, "introduction") ||
			strings.HasPrefix(lower, "keywords") {
			continue
		}
		return normalize.Title(line)
	}
	return UnknownTitle
}

// isUpper reports whether s has at least one cased letter and no
// lowercase letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
