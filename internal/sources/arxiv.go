// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/citeverify/internal/ident"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Arxiv resolves arXiv IDs and searches titles against the arXiv API.
type Arxiv struct {
	Client        *http.Client
	UserAgent     string
	Limiter       *Limiter
	LookupTimeout time.Duration
	SearchTimeout time.Duration
}

// Name returns the source identifier.
func (a *Arxiv) Name() string { return ArxivName }

// Lookup fetches the preprint with the given ID. An ID the feed does not
// return yields an error matching ErrNotFound.
func (a *Arxiv) Lookup(ctx context.Context, id string) (*Record, error) {
	id = ident.NormalizeArxivID(id)
	if id == "" {
		return nil, fmt.Errorf("invalid arXiv ID format")
	}

	params := url.Values{
		"id_list":     {id},
		"max_results": {"1"},
	}
	records, err := a.query(ctx, params, a.LookupTimeout)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ArxivID == id {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("arXiv ID %s: %w", id, ErrNotFound)
}

// Search returns up to limit preprints matching title, ordered by
// arXiv relevance.
func (a *Arxiv) Search(ctx context.Context, title string, limit int) ([]Record, error) {
	terms := strings.Fields(title)
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if limit <= 0 {
		limit = 15
	}

	params := url.Values{
		"search_query": {"all:" + strings.Join(terms, " AND all:")},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limit)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}
	return a.query(ctx, params, a.SearchTimeout)
}

func (a *Arxiv) query(ctx context.Context, params url.Values, timeout time.Duration) ([]Record, error) {
	body, err := fetch(ctx, a.Client, a.Limiter, request{
		source:  ArxivName,
		url:     arxivAPIBase + "?" + params.Encode(),
		header:  map[string]string{"User-Agent": a.UserAgent},
		timeout: timeout,
	})
	if err != nil {
		return nil, err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var records []Record
	for _, entry := range feed.Entries {
		if r, ok := entry.record(); ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
	DOI       string        `xml:"http://arxiv.org/schemas/atom doi"`
	Journal   string        `xml:"http://arxiv.org/schemas/atom journal_ref"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// record converts an entry; error entries, which carry no /abs/ ID, are
// skipped.
func (e arxivEntry) record() (Record, bool) {
	id := extractArxivID(e.ID)
	if id == "" {
		return Record{}, false
	}

	r := Record{
		Source:   ArxivName,
		Title:    strings.Join(strings.Fields(e.Title), " "),
		ArxivID:  id,
		DOI:      ident.NormalizeDOI(e.DOI),
		Metadata: map[string]any{},
	}
	for _, au := range e.Authors {
		if name := strings.TrimSpace(au.Name); name != "" {
			r.Authors = append(r.Authors, name)
		}
	}
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		r.Year = t.Year()
	}

	if s := strings.TrimSpace(e.Summary); s != "" {
		r.Metadata[MetaAbstract] = s
	}
	pdf := ""
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			pdf = l.Href
			break
		}
	}
	if pdf == "" {
		pdf = ident.PDFURL(ident.TypeArxiv, id)
	}
	r.Metadata[MetaPDFURL] = pdf
	if j := strings.TrimSpace(e.Journal); j != "" {
		r.Metadata[MetaVenue] = j
	}
	return r, true
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
