// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score rates verified citations on a 0-100 scale across six
// dimensions: verification (25), peer review (20), recency (15),
// citation count (15), accessibility (15) and venue (10).
package score

import (
	"strings"
	"time"

	"github.com/pdiddy/citeverify/internal/sources"
	"github.com/pdiddy/citeverify/pkg/types"
)

// Maximum points per dimension.
const (
	MaxVerification  = 25
	MaxPeerReview    = 20
	MaxRecency       = 15
	MaxCitations     = 15
	MaxAccessibility = 15
	MaxVenue         = 10
)

// topVenues are matched as substrings of the lowercased container title.
var topVenues = []string{
	"nature", "science", "cell", "lancet",
	"neurips", "icml", "iclr", "cvpr", "aaai",
	"acl", "emnlp", "naacl", "iccv", "eccv",
}

var reputablePublishers = []string{
	"springer", "elsevier", "ieee", "acm", "oxford", "cambridge", "wiley",
}

// Scorer computes quality scores. The zero value scores against the
// current year.
type Scorer struct {
	// Now returns the reference time for recency. Defaults to time.Now.
	Now func() time.Time
}

// New returns a Scorer using the wall clock.
func New() *Scorer { return &Scorer{Now: time.Now} }

func (s *Scorer) year() int {
	if s == nil || s.Now == nil {
		return time.Now().Year()
	}
	return s.Now().Year()
}

// Score rates c given its verification result. A nil result scores as
// unverified.
func (s *Scorer) Score(c types.Citation, r *types.VerificationResult) types.QualityScore {
	if r == nil {
		r = &types.VerificationResult{Status: types.StatusUnverified}
	}
	m := metadata(r.Metadata)
	now := s.year()

	q := types.QualityScore{
		Verification:  verificationPoints(r),
		PeerReview:    peerReviewPoints(c, r, m),
		Recency:       recencyPoints(c, r, now),
		Citations:     citationPoints(r, m, now),
		Accessibility: accessibilityPoints(c, r, m),
		Venue:         venuePoints(m),
	}
	q.Total = q.Verification + q.PeerReview + q.Recency + q.Citations + q.Accessibility + q.Venue
	q.Explanation = explain(q)
	return q
}

func verificationPoints(r *types.VerificationResult) int {
	switch r.Status {
	case types.StatusVerified:
		switch {
		case len(r.VerifiedSources) >= 2:
			return 25
		case r.Confidence > 0.95:
			return 20
		default:
			return 15
		}
	case types.StatusPartial:
		return 10
	}
	return 0
}

func peerReviewPoints(c types.Citation, r *types.VerificationResult, m meta) int {
	switch m.str(sources.MetaType) {
	case "journal-article":
		return 20
	case "proceedings-article", "book-chapter":
		return 15
	case "posted-content":
		return 10
	}

	doi := firstNonEmpty(r.DOI, c.DOI)
	arxivID := firstNonEmpty(r.ArxivID, c.ArxivID)
	switch {
	case arxivID != "" && doi == "":
		return 10
	case arxivID != "":
		return 20
	}

	for _, src := range r.VerifiedSources {
		if src == sources.SemanticScholarName && (m.str(sources.MetaVenue) != "" || c.Journal != "") {
			return 15
		}
	}
	return 5
}

func recencyPoints(c types.Citation, r *types.VerificationResult, now int) int {
	year := r.MatchedYear
	if year == 0 {
		year = c.Year
	}
	if year == 0 {
		return 8
	}
	switch age := now - year; {
	case age <= 2:
		return 15
	case age <= 5:
		return 12
	case age <= 10:
		return 8
	case age <= 20:
		return 5
	default:
		return 3
	}
}

func citationPoints(r *types.VerificationResult, m meta, now int) int {
	n, ok := m.num(sources.MetaCitationCount)
	if ok && n > 0 {
		switch {
		case n >= 1000:
			return 15
		case n >= 500:
			return 12
		case n >= 100:
			return 10
		case n >= 20:
			return 7
		case n >= 5:
			return 5
		default:
			return 3
		}
	}
	// Recent papers have not had time to accumulate citations.
	if r.MatchedYear != 0 && r.MatchedYear >= now-1 {
		return 5
	}
	return 0
}

func accessibilityPoints(c types.Citation, r *types.VerificationResult, m meta) int {
	if firstNonEmpty(r.ArxivID, c.ArxivID) != "" {
		return 15
	}
	for _, lic := range m.strs(sources.MetaLicenses) {
		if strings.Contains(strings.ToLower(lic), "creativecommons.org") {
			return 15
		}
	}
	if m.str(sources.MetaOpenAccessPDF) != "" {
		return 15
	}
	if firstNonEmpty(r.DOI, c.DOI) != "" {
		return 10
	}
	return 5
}

func venuePoints(m meta) int {
	container := strings.ToLower(m.str(sources.MetaContainer))
	if container != "" {
		for _, v := range topVenues {
			if strings.Contains(container, v) {
				return 10
			}
		}
	}
	publisher := strings.ToLower(m.str(sources.MetaPublisher))
	if publisher != "" {
		for _, p := range reputablePublishers {
			if strings.Contains(publisher, p) {
				return 8
			}
		}
	}
	if m.str(sources.MetaType) == "journal-article" {
		return 7
	}
	return 5
}

func explain(q types.QualityScore) string {
	var tags []string
	switch {
	case q.Verification >= 20:
		tags = append(tags, "Verified")
	case q.Verification < 10:
		tags = append(tags, "Verification issues")
	}
	switch {
	case q.PeerReview >= 15:
		tags = append(tags, "Peer-reviewed")
	case q.PeerReview == 10:
		tags = append(tags, "Preprint")
	}
	if q.Recency <= 5 {
		tags = append(tags, "Older reference")
	}
	if q.Citations >= 12 {
		tags = append(tags, "Highly cited")
	}
	switch {
	case q.Accessibility >= 15:
		tags = append(tags, "Open access")
	case q.Accessibility <= 5:
		tags = append(tags, "Paywalled")
	}
	if len(tags) == 0 {
		return "Standard citation"
	}
	return strings.Join(tags, " • ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
