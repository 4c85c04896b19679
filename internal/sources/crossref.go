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

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossRef resolves DOIs and searches titles against the CrossRef API.
type CrossRef struct {
	Client    *http.Client
	UserAgent string
	// Mailto is sent as the mailto parameter for polite pool access.
	Mailto        string
	Limiter       *Limiter
	LookupTimeout time.Duration
	SearchTimeout time.Duration
}

// Name returns the source identifier.
func (c *CrossRef) Name() string { return CrossRefName }

// Lookup fetches the work registered under doi. An unknown DOI yields an
// error matching ErrNotFound.
func (c *CrossRef) Lookup(ctx context.Context, doi string) (*Record, error) {
	doi = ident.NormalizeDOI(doi)
	if doi == "" {
		return nil, fmt.Errorf("empty DOI")
	}

	segments := strings.Split(doi, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	reqURL := crossrefAPIBase + "/" + strings.Join(segments, "/")
	if c.Mailto != "" {
		reqURL += "?" + url.Values{"mailto": {c.Mailto}}.Encode()
	}

	body, err := fetch(ctx, c.Client, c.Limiter, request{
		source:  CrossRefName,
		url:     reqURL,
		header:  map[string]string{"User-Agent": c.UserAgent},
		timeout: c.LookupTimeout,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Message crossrefWork `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}
	rec := resp.Message.record()
	if rec.DOI == "" {
		rec.DOI = doi
	}
	return &rec, nil
}

// Search returns up to limit works matching title, in CrossRef's
// relevance order.
func (c *CrossRef) Search(ctx context.Context, title string, limit int) ([]Record, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("empty CrossRef query")
	}
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{
		"query": {title},
		"rows":  {strconv.Itoa(limit)},
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}

	body, err := fetch(ctx, c.Client, c.Limiter, request{
		source:  CrossRefName,
		url:     crossrefAPIBase + "?" + params.Encode(),
		header:  map[string]string{"User-Agent": c.UserAgent},
		timeout: c.SearchTimeout,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Message struct {
			Items []crossrefWork `json:"items"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}

	records := make([]Record, 0, len(resp.Message.Items))
	for _, item := range resp.Message.Items {
		records = append(records, item.record())
	}
	return records, nil
}

// CrossRef API JSON structures.
type crossrefWork struct {
	DOI             string            `json:"DOI"`
	URL             string            `json:"URL"`
	Title           []string          `json:"title"`
	Author          []crossrefAuthor  `json:"author"`
	PublishedPrint  crossrefDate      `json:"published-print"`
	PublishedOnline crossrefDate      `json:"published-online"`
	Created         crossrefDate      `json:"created"`
	Type            string            `json:"type"`
	ContainerTitle  []string          `json:"container-title"`
	Publisher       string            `json:"publisher"`
	License         []crossrefLicense `json:"license"`
	ReferencedBy    int               `json:"is-referenced-by-count"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefLicense struct {
	URL string `json:"URL"`
}

func (d crossrefDate) year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

// year prefers the print date, then the online date, then the record's
// creation date.
func (w crossrefWork) year() int {
	for _, d := range []crossrefDate{w.PublishedPrint, w.PublishedOnline, w.Created} {
		if y := d.year(); y > 0 {
			return y
		}
	}
	return 0
}

func (w crossrefWork) record() Record {
	r := Record{
		Source: CrossRefName,
		Year:   w.year(),
		DOI:    ident.NormalizeDOI(w.DOI),
		Metadata: map[string]any{
			MetaCitationCount: w.ReferencedBy,
		},
	}
	if len(w.Title) > 0 {
		r.Title = strings.TrimSpace(w.Title[0])
	}
	for _, a := range w.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			r.Authors = append(r.Authors, name)
		}
	}

	if w.Type != "" {
		r.Metadata[MetaType] = w.Type
	}
	if len(w.ContainerTitle) > 0 {
		r.Metadata[MetaContainer] = w.ContainerTitle[0]
	}
	if w.Publisher != "" {
		r.Metadata[MetaPublisher] = w.Publisher
	}
	if w.URL != "" {
		r.Metadata[MetaURL] = w.URL
	}
	var licenses []string
	for _, l := range w.License {
		if l.URL != "" {
			licenses = append(licenses, l.URL)
		}
	}
	if len(licenses) > 0 {
		r.Metadata[MetaLicenses] = licenses
	}
	return r
}
