// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"testing"

	"github.com/pdiddy/citeverify/pkg/types"
)

func TestNewSet(t *testing.T) {
	cfg := types.DefaultConfig().Sources
	set := New(cfg, nil)

	if set.DOI == nil || set.DOI.Name() != CrossRefName {
		t.Fatalf("DOI resolver = %v, want crossref", set.DOI)
	}
	if set.Arxiv == nil || set.Arxiv.Name() != ArxivName {
		t.Fatalf("arXiv resolver = %v, want arxiv", set.Arxiv)
	}
	want := []string{CrossRefName, SemanticScholarName, ArxivName, OpenAlexName}
	if len(set.Searchers) != len(want) {
		t.Fatalf("got %d searchers, want %d", len(set.Searchers), len(want))
	}
	for i, s := range set.Searchers {
		if s.Name() != want[i] {
			t.Errorf("searcher %d = %q, want %q", i, s.Name(), want[i])
		}
	}

	ax := set.Arxiv.(*Arxiv)
	if ax.Limiter.Cap() != cfg.Arxiv.Concurrency {
		t.Errorf("arxiv limiter cap = %d, want %d", ax.Limiter.Cap(), cfg.Arxiv.Concurrency)
	}
}

func TestNewSetDisabled(t *testing.T) {
	cfg := types.DefaultConfig().Sources
	cfg.CrossRef.Enabled = false
	cfg.OpenAlex.Enabled = false
	set := New(cfg, nil)

	if set.DOI != nil {
		t.Errorf("DOI resolver should be nil when crossref is disabled")
	}
	if len(set.Searchers) != 2 {
		t.Errorf("got %d searchers, want 2", len(set.Searchers))
	}
}
