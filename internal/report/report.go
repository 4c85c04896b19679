// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders pipeline reports as a table, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citeverify/internal/pipeline"
	"github.com/pdiddy/citeverify/pkg/types"
)

// Format selects an output renderer.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates s. Empty selects the table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q: use table, json or yaml", s)
}

// Write renders rep to w in format f.
func Write(w io.Writer, rep *pipeline.Report, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatYAML:
		return WriteYAML(w, rep)
	case FormatTable, "":
		WriteTable(w, rep)
		return nil
	}
	return fmt.Errorf("unsupported format %q", f)
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep *pipeline.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteYAML writes rep as YAML.
func WriteYAML(w io.Writer, rep *pipeline.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// WriteTable writes rep as a human-readable table. Reports without
// verification show extracted fields only.
func WriteTable(w io.Writer, rep *pipeline.Report) {
	fmt.Fprintf(w, "Paper: %s\n", rep.PaperTitle)
	fmt.Fprintf(w, "Input: %s\n\n", rep.Input)

	if len(rep.Citations) == 0 {
		fmt.Fprintln(w, "No citations to show.")
	} else if rep.Verified {
		writeVerified(w, rep.Citations)
	} else {
		writeExtracted(w, rep.Citations)
	}

	if !rep.Verified {
		fmt.Fprintf(w, "\n%d citations extracted\n", len(rep.Citations))
		return
	}
	s := rep.Summary
	fmt.Fprintf(w, "\n%d citations: %d verified, %d partial, %d unverified, %d errors",
		s.Total(), s.Verified, s.Partial, s.Unverified, s.Errors)
	if s.Filtered > 0 {
		fmt.Fprintf(w, " (%d below quality minimum hidden)", s.Filtered)
	}
	fmt.Fprintln(w)
}

func writeVerified(w io.Writer, citations []types.VerifiedCitation) {
	fmt.Fprintf(w, "%-4s  %-50s  %-20s  %-4s  %-10s  %-5s  %-7s  %s\n",
		"#", "Title", "Authors", "Year", "Status", "Conf", "Quality", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 125))

	for _, vc := range citations {
		d := vc.Display()
		r := vc.Verification
		quality := ""
		if vc.Quality != nil {
			quality = fmt.Sprintf("%d", vc.Quality.Total)
		}
		fmt.Fprintf(w, "%-4s  %-50s  %-20s  %-4s  %-10s  %-5.2f  %-7s  %s\n",
			truncate(d.Number, 4), truncate(titleOf(d), 50), formatAuthors(d.Authors), formatYear(d.Year),
			r.Status, r.Confidence, quality, r.PrimarySource())
		for _, note := range r.Discrepancies {
			fmt.Fprintf(w, "      ! %s\n", note)
		}
		if vc.Quality != nil && vc.Quality.Explanation != "" {
			fmt.Fprintf(w, "      %s\n", vc.Quality.Explanation)
		}
	}
}

func writeExtracted(w io.Writer, citations []types.VerifiedCitation) {
	fmt.Fprintf(w, "%-4s  %-50s  %-20s  %-4s  %s\n", "#", "Title", "Authors", "Year", "Identifier")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, vc := range citations {
		c := vc.Citation
		id := c.DOI
		if id == "" && c.ArxivID != "" {
			id = "arXiv:" + c.ArxivID
		}
		fmt.Fprintf(w, "%-4s  %-50s  %-20s  %-4s  %s\n",
			truncate(c.Number, 4), truncate(titleOf(c), 50), formatAuthors(c.Authors), formatYear(c.Year), id)
	}
}

func titleOf(c types.Citation) string {
	if c.Title != "" {
		return c.Title
	}
	return "(no title)"
}

func formatYear(y int) string {
	if y == 0 {
		return ""
	}
	return fmt.Sprintf("%d", y)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 13) + " et al."
	}
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
