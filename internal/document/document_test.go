// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citeverify/internal/httputil"
	"github.com/pdiddy/citeverify/internal/ident"
	"github.com/pdiddy/citeverify/internal/sources"
)

// echoConverter returns the PDF bytes as text.
type echoConverter struct{ calls int }

func (c *echoConverter) Name() string { return "echo" }

func (c *echoConverter) Convert(_ context.Context, data []byte) (string, error) {
	c.calls++
	return string(data), nil
}

type stubResolver struct {
	title string
	err   error
}

func (s stubResolver) Name() string { return sources.ArxivName }

func (s stubResolver) Lookup(context.Context, string) (*sources.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &sources.Record{Source: sources.ArxivName, Title: s.title}, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTextFile(t *testing.T) {
	conv := &echoConverter{}
	l := &Loader{Converter: conv}

	for _, name := range []string{"paper.txt", "paper.md", "PAPER.MARKDOWN"} {
		src, err := l.Load(context.Background(), writeFile(t, name, "References\n[1] x"))
		require.NoError(t, err, name)
		assert.Equal(t, KindText, src.Kind)
		assert.Equal(t, "References\n[1] x", src.Text)
	}
	assert.Equal(t, 0, conv.calls, "text files are not converted")
}

func TestLoadPDFFile(t *testing.T) {
	conv := &echoConverter{}
	l := &Loader{Converter: conv}

	src, err := l.Load(context.Background(), writeFile(t, "paper.pdf", "%PDF-1.5 body"))
	require.NoError(t, err)
	assert.Equal(t, KindPDF, src.Kind)
	assert.Equal(t, "%PDF-1.5 body", src.Text)

	src, err = l.Load(context.Background(), writeFile(t, "download", "%PDF-1.7 sniffed"))
	require.NoError(t, err)
	assert.Equal(t, KindPDF, src.Kind, "PDF header is recognized without an extension")
	assert.Equal(t, 2, conv.calls)
}

func TestLoadUnsupported(t *testing.T) {
	l := &Loader{Converter: &echoConverter{}}
	inputs := []string{
		"",
		"not-a-file-or-id",
		"10.1234/some.doi",
		writeFile(t, "paper.docx", "binary"),
		t.TempDir(),
	}
	for _, in := range inputs {
		_, err := l.Load(context.Background(), in)
		assert.ErrorIs(t, err, ErrUnsupportedInput, "input %q", in)
	}
}

func TestLoadArxiv(t *testing.T) {
	var gotPath, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("%PDF-1.4 arxiv paper"))
	}))
	defer ts.Close()

	old := ident.ArxivPDFBase
	ident.ArxivPDFBase = ts.URL + "/pdf/"
	t.Cleanup(func() { ident.ArxivPDFBase = old })

	l := &Loader{
		Converter:       &echoConverter{},
		Client:          ts.Client(),
		DownloadTimeout: 5 * time.Second,
		Arxiv:           stubResolver{title: "Attention Is All You Need"},
	}

	for _, in := range []string{"1706.03762", "arXiv:1706.03762v5", "https://arxiv.org/abs/1706.03762"} {
		src, err := l.Load(context.Background(), in)
		require.NoError(t, err, in)
		assert.Equal(t, KindArxiv, src.Kind)
		assert.Equal(t, "1706.03762", src.ArxivID)
		assert.Equal(t, "Attention Is All You Need", src.Title)
		assert.Equal(t, "%PDF-1.4 arxiv paper", src.Text)
		assert.Equal(t, "/pdf/1706.03762", gotPath)
		assert.Equal(t, "application/pdf", gotAccept)
	}
}

func TestLoadArxivTitleUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4"))
	}))
	defer ts.Close()

	old := ident.ArxivPDFBase
	ident.ArxivPDFBase = ts.URL + "/pdf/"
	t.Cleanup(func() { ident.ArxivPDFBase = old })

	l := &Loader{Converter: &echoConverter{}, Client: ts.Client(), Arxiv: stubResolver{err: errors.New("down")}}
	src, err := l.Load(context.Background(), "1706.03762")
	require.NoError(t, err)
	assert.Empty(t, src.Title)
}

func TestLoadArxivDownloadFailure(t *testing.T) {
	oldDelay := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	t.Cleanup(func() { httputil.RetryBaseDelay = oldDelay })

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	old := ident.ArxivPDFBase
	ident.ArxivPDFBase = ts.URL + "/pdf/"
	t.Cleanup(func() { ident.ArxivPDFBase = old })

	l := &Loader{Converter: &echoConverter{}, Client: ts.Client()}
	_, err := l.Load(context.Background(), "1706.03762")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
