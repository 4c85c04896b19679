// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document resolves a user input into paper text. An input is a
// PDF file, a plain-text or Markdown file, or an arXiv ID or arxiv.org
// URL whose PDF is downloaded into memory.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/citeverify/internal/convert"
	"github.com/pdiddy/citeverify/internal/httputil"
	"github.com/pdiddy/citeverify/internal/ident"
	"github.com/pdiddy/citeverify/internal/sources"
)

// ErrUnsupportedInput is returned for inputs that are neither a readable
// document file nor an arXiv identifier.
var ErrUnsupportedInput = errors.New("unsupported input")

// maxPDFBytes bounds a downloaded PDF.
const maxPDFBytes = 100 << 20

// Kind says how a Source was obtained.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindText  Kind = "text"
	KindArxiv Kind = "arxiv"
)

// Source is a resolved input ready for citation extraction.
type Source struct {
	Input string
	Kind  Kind
	Text  string

	// Title is the authoritative paper title when one is known before
	// extraction (the arXiv record title); empty otherwise.
	Title string

	// ArxivID is set for arXiv inputs.
	ArxivID string
}

// Loader turns inputs into Sources.
type Loader struct {
	// Converter extracts text from PDFs.
	Converter convert.Converter

	// Client downloads arXiv PDFs. Defaults to http.DefaultClient.
	Client *http.Client

	UserAgent       string
	DownloadTimeout time.Duration

	// Arxiv, when set, supplies the paper title for arXiv inputs.
	Arxiv sources.Resolver
}

var textExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
}

// Load resolves input. Existing paths win over identifier parsing, so a
// file named like an arXiv ID is read from disk.
func (l *Loader) Load(ctx context.Context, input string) (*Source, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedInput)
	}

	if info, err := os.Stat(input); err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedInput, input)
		}
		return l.loadFile(ctx, input)
	}

	idType, id := ident.Classify(input)
	if idType != ident.TypeArxiv {
		return nil, fmt.Errorf("%w: %q is not a file or an arXiv ID", ErrUnsupportedInput, input)
	}
	return l.loadArxiv(ctx, input, id)
}

func (l *Loader) loadFile(ctx context.Context, path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf" || bytes.HasPrefix(data, []byte("%PDF-")):
		text, err := l.convert(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("converting %s: %w", path, err)
		}
		return &Source{Input: path, Kind: KindPDF, Text: text}, nil
	case textExtensions[ext]:
		return &Source{Input: path, Kind: KindText, Text: string(data)}, nil
	default:
		return nil, fmt.Errorf("%w: %s has unknown extension %q", ErrUnsupportedInput, path, ext)
	}
}

func (l *Loader) loadArxiv(ctx context.Context, input, id string) (*Source, error) {
	log := zerolog.Ctx(ctx)
	url := ident.PDFURL(ident.TypeArxiv, id)

	log.Debug().Str("arxiv_id", id).Str("url", url).Msg("downloading paper")
	data, err := l.download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("downloading arXiv %s: %w", id, err)
	}
	text, err := l.convert(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("converting arXiv %s: %w", id, err)
	}

	src := &Source{Input: input, Kind: KindArxiv, Text: text, ArxivID: id}
	if l.Arxiv != nil {
		rec, err := l.Arxiv.Lookup(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("arxiv_id", id).Msg("arXiv metadata unavailable, using extracted title")
		} else {
			src.Title = rec.Title
		}
	}
	return src, nil
}

func (l *Loader) convert(ctx context.Context, data []byte) (string, error) {
	c := l.Converter
	if c == nil {
		c = convert.NewNative()
	}
	return c.Convert(ctx, data)
}

// download fetches url into memory, retrying transient failures.
func (l *Loader) download(ctx context.Context, url string) ([]byte, error) {
	if l.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.DownloadTimeout)
		defer cancel()
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading download: %w", err)
	}
	if len(data) > maxPDFBytes {
		return nil, fmt.Errorf("download from %s exceeds %d bytes", url, maxPDFBytes)
	}
	return data, nil
}
