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

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// OpenAlex searches titles against the OpenAlex works index.
type OpenAlex struct {
	Client    *http.Client
	UserAgent string
	// Mailto is sent as the mailto parameter for polite pool access.
	Mailto        string
	Limiter       *Limiter
	SearchTimeout time.Duration
}

// Name returns the source identifier.
func (o *OpenAlex) Name() string { return OpenAlexName }

// Search returns up to limit works whose title matches title.
func (o *OpenAlex) Search(ctx context.Context, title string, limit int) ([]Record, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("empty OpenAlex query")
	}
	if limit <= 0 {
		limit = 5
	}
	if limit > 200 {
		limit = 200
	}

	params := url.Values{
		"search":   {title},
		"per_page": {strconv.Itoa(limit)},
		"page":     {"1"},
	}
	if o.Mailto != "" {
		params.Set("mailto", o.Mailto)
	}

	body, err := fetch(ctx, o.Client, o.Limiter, request{
		source:  OpenAlexName,
		url:     openAlexSearchBase + "?" + params.Encode(),
		header:  map[string]string{"User-Agent": o.UserAgent},
		timeout: o.SearchTimeout,
	})
	if err != nil {
		return nil, err
	}

	var oar openAlexResponse
	if err := json.Unmarshal(body, &oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	records := make([]Record, 0, len(oar.Results))
	for _, w := range oar.Results {
		// OpenAlex reports DOIs as https://doi.org/ URLs.
		r := Record{
			Source: OpenAlexName,
			Title:  w.Title,
			Year:   w.PublicationYear,
			DOI:    ident.NormalizeDOI(w.DOI),
			Metadata: map[string]any{
				MetaCitationCount: w.CitedByCount,
			},
		}
		for _, a := range w.Authorships {
			if a.Author.DisplayName != "" {
				r.Authors = append(r.Authors, a.Author.DisplayName)
			}
		}
		if w.Type != "" {
			r.Metadata[MetaType] = w.Type
		}
		if src := w.PrimaryLocation.Source; src != nil && src.DisplayName != "" {
			r.Metadata[MetaVenue] = src.DisplayName
			r.Metadata[MetaContainer] = src.DisplayName
		}
		if w.OpenAccess.IsOA && w.OpenAccess.OAURL != "" {
			r.Metadata[MetaOpenAccessPDF] = w.OpenAccess.OAURL
		}
		records = append(records, r)
	}
	return records, nil
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	Type            string               `json:"type"`
	PublicationYear int                  `json:"publication_year"`
	CitedByCount    int                  `json:"cited_by_count"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	OpenAccess      openAlexOpenAccess   `json:"open_access"`
	PrimaryLocation openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA  bool   `json:"is_oa"`
	OAURL string `json:"oa_url"`
}

type openAlexLocation struct {
	Source *openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}
