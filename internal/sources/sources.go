// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources implements clients for the external bibliographic
// databases a citation is checked against: CrossRef and arXiv for
// identifier lookup, and CrossRef, arXiv, Semantic Scholar and OpenAlex
// for title search. Every client maps its own response schema onto a
// Record and keeps source-specific extras in Record.Metadata under the
// Meta* keys.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pdiddy/citeverify/internal/httputil"
)

// Source identifiers, as they appear in VerificationResult.VerifiedSources.
const (
	CrossRefName        = "crossref"
	ArxivName           = "arxiv"
	SemanticScholarName = "semantic_scholar"
	OpenAlexName        = "openalex"
)

// Metadata keys shared by all sources. Values are strings, ints or
// []string; after a JSON round trip through the cache numbers come back
// as float64 and lists as []any.
const (
	MetaType          = "type"
	MetaContainer     = "container_title"
	MetaPublisher     = "publisher"
	MetaLicenses      = "licenses"
	MetaCitationCount = "citation_count"
	MetaVenue         = "venue"
	MetaOpenAccessPDF = "open_access_pdf"
	MetaAbstract      = "abstract"
	MetaPDFURL        = "pdf_url"
	MetaURL           = "url"
)

var (
	// ErrNotFound is returned by an identifier lookup when the source has
	// no record for the identifier.
	ErrNotFound = errors.New("record not found")

	// ErrRateLimited is matched by an HTTPError carrying status 429.
	ErrRateLimited = errors.New("rate limited")
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 16 << 20

// HTTPError reports a non-200 response from a source.
type HTTPError struct {
	Source     string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s API returned HTTP %d", e.Source, e.StatusCode)
}

// Unwrap maps 404 to ErrNotFound and 429 to ErrRateLimited so callers
// can use errors.Is.
func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

// IsTimeout reports whether err came from a request deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Record is one candidate work returned by a source.
type Record struct {
	Source  string
	Title   string
	Authors []string
	Year    int
	DOI     string
	ArxivID string

	// Metadata carries source-specific extras under the Meta* keys.
	Metadata map[string]any
}

// Searcher finds works by approximate title.
type Searcher interface {
	Name() string
	Search(ctx context.Context, title string, limit int) ([]Record, error)
}

// Resolver fetches the single authoritative record for an identifier.
// It returns an error matching ErrNotFound when the identifier is unknown.
type Resolver interface {
	Name() string
	Lookup(ctx context.Context, id string) (*Record, error)
}

// request describes one GET issued through fetch.
type request struct {
	source  string
	url     string
	header  map[string]string
	timeout time.Duration
}

// fetch issues a GET under the source's limiter and per-call timeout and
// returns the body of a 200 response. The limiter slot is released on
// every return path.
func fetch(ctx context.Context, client *http.Client, lim *Limiter, r request) ([]byte, error) {
	if err := lim.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("%s: waiting for limiter: %w", r.source, err)
	}
	defer lim.Release()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range r.header {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%s API request: %w", r.source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &HTTPError{Source: r.source, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", r.source, err)
	}
	return body, nil
}
