// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/citeverify/internal/ident"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,authors,year,externalIds,citationCount,venue,openAccessPdf"

// SemanticScholar searches titles against the Semantic Scholar graph API.
type SemanticScholar struct {
	Client        *http.Client
	UserAgent     string
	APIKey        string
	Limiter       *Limiter
	SearchTimeout time.Duration
}

// Name returns the source identifier.
func (s *SemanticScholar) Name() string { return SemanticScholarName }

// Search returns up to limit papers matching title.
func (s *SemanticScholar) Search(ctx context.Context, title string, limit int) ([]Record, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{
		"query":  {title},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}

	body, err := fetch(ctx, s.Client, s.Limiter, request{
		source: SemanticScholarName,
		url:    semanticAPIBase + "?" + params.Encode(),
		header: map[string]string{
			"User-Agent": s.UserAgent,
			"x-api-key":  s.APIKey,
		},
		timeout: s.SearchTimeout,
	})
	if err != nil {
		return nil, err
	}

	var sr semanticResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	records := make([]Record, 0, len(sr.Data))
	for _, p := range sr.Data {
		r := Record{
			Source:  SemanticScholarName,
			Title:   p.Title,
			Year:    p.Year,
			DOI:     ident.NormalizeDOI(p.ExternalIDs.DOI),
			ArxivID: p.ExternalIDs.ArXiv,
			Metadata: map[string]any{
				MetaCitationCount: p.CitationCount,
			},
		}
		for _, a := range p.Authors {
			if a.Name != "" {
				r.Authors = append(r.Authors, a.Name)
			}
		}
		if p.Venue != "" {
			r.Metadata[MetaVenue] = p.Venue
		}
		if p.OpenAccessPDF != nil && p.OpenAccessPDF.URL != "" {
			r.Metadata[MetaOpenAccessPDF] = p.OpenAccessPDF.URL
		}
		records = append(records, r)
	}
	return records, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string              `json:"paperId"`
	Title         string              `json:"title"`
	Year          int                 `json:"year"`
	Venue         string              `json:"venue"`
	CitationCount int                 `json:"citationCount"`
	Authors       []semanticAuthor    `json:"authors"`
	ExternalIDs   semanticExternalIDs `json:"externalIds"`
	OpenAccessPDF *semanticPDF        `json:"openAccessPdf"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

type semanticPDF struct {
	URL string `json:"url"`
}
