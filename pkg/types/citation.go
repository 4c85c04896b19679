// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citeverify pipeline:
// extracted citations, verification results, quality scores, and the
// configuration consumed by each stage.
package types

// MaxAuthors caps the number of author names kept on a Citation.
const MaxAuthors = 10

// Citation is one reference parsed out of a paper's references section.
// Every field except Number and RawText is best-effort and may be empty;
// a segment that yields nothing is still a valid Citation.
type Citation struct {
	// Number is the label as it appeared in the source ("1", "12", ...).
	// It is not guaranteed to be contiguous.
	Number string `json:"number" yaml:"number"`

	// RawText is the unmodified segment the fields were derived from.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// Title is the cited work's title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors lists author names in source order, at most MaxAuthors.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year, 0 when absent.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is the normalized DOI ("10.1234/x").
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID is the normalized arXiv identifier without version suffix.
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// URL is the first http(s) link found in the segment.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Journal is the venue, when one could be recognized.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
}

// VerificationStatus is the outcome of reconciling a citation against
// external sources.
type VerificationStatus string

const (
	StatusVerified   VerificationStatus = "verified"
	StatusPartial    VerificationStatus = "partial"
	StatusUnverified VerificationStatus = "unverified"
	// StatusError means a source query failed transiently. It is distinct
	// from StatusUnverified, which means no match was found.
	StatusError VerificationStatus = "error"
)

// Valid reports whether s is one of the known statuses.
func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusVerified, StatusPartial, StatusUnverified, StatusError:
		return true
	}
	return false
}

// VerificationResult is the normalized outcome of verifying one Citation.
// Matched fields come from the first entry of VerifiedSources and supersede
// the citation's parsed fields when merged for display.
type VerificationResult struct {
	Status     VerificationStatus `json:"status" yaml:"status"`
	Confidence float64            `json:"confidence" yaml:"confidence"`

	MatchedTitle   string   `json:"matched_title,omitempty" yaml:"matched_title,omitempty"`
	MatchedAuthors []string `json:"matched_authors,omitempty" yaml:"matched_authors,omitempty"`
	MatchedYear    int      `json:"matched_year,omitempty" yaml:"matched_year,omitempty"`
	DOI            string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID        string   `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// VerifiedSources lists the sources that contributed, authoritative first.
	VerifiedSources []string `json:"verified_sources" yaml:"verified_sources"`

	// Discrepancies are human-readable, non-fatal mismatch notes.
	Discrepancies []string `json:"discrepancies" yaml:"discrepancies"`

	// Metadata is an opaque bag of source-specific fields (citation count,
	// license, venue, publisher) read later by the quality scorer.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// PrimarySource returns the authoritative source name, or "" if none.
func (r VerificationResult) PrimarySource() string {
	if len(r.VerifiedSources) == 0 {
		return ""
	}
	return r.VerifiedSources[0]
}

// QualityScore breaks a citation's 0-100 quality score into its dimensions.
type QualityScore struct {
	Total         int    `json:"total" yaml:"total"`
	Verification  int    `json:"verification" yaml:"verification"`
	PeerReview    int    `json:"peer_review" yaml:"peer_review"`
	Recency       int    `json:"recency" yaml:"recency"`
	Citations     int    `json:"citations" yaml:"citations"`
	Accessibility int    `json:"accessibility" yaml:"accessibility"`
	Venue         int    `json:"venue" yaml:"venue"`
	Explanation   string `json:"explanation" yaml:"explanation"`
}

// VerifiedCitation wraps a Citation with its verification outcome and score.
type VerifiedCitation struct {
	Citation     `yaml:",inline"`
	Verification *VerificationResult `json:"verification,omitempty" yaml:"verification,omitempty"`
	Quality      *QualityScore       `json:"quality_score,omitempty" yaml:"quality_score,omitempty"`
}

// Display returns the citation merged with its matched fields: matched
// values from the verification result win over parsed values.
func (v VerifiedCitation) Display() Citation {
	c := v.Citation
	if v.Verification == nil {
		return c
	}
	r := v.Verification
	if r.MatchedTitle != "" {
		c.Title = r.MatchedTitle
	}
	if len(r.MatchedAuthors) > 0 {
		c.Authors = r.MatchedAuthors
	}
	if r.MatchedYear != 0 {
		c.Year = r.MatchedYear
	}
	if r.DOI != "" {
		c.DOI = r.DOI
	}
	if r.ArxivID != "" {
		c.ArxivID = r.ArxivID
	}
	return c
}
