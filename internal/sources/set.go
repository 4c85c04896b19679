// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"net/http"

	"github.com/pdiddy/citeverify/pkg/types"
)

// Set groups the clients one verification engine uses. Each client owns
// its Limiter, so limits are per engine and per source.
type Set struct {
	// DOI resolves DOIs (CrossRef); nil when CrossRef is disabled.
	DOI Resolver
	// Arxiv resolves arXiv IDs; nil when arXiv is disabled.
	Arxiv Resolver
	// Searchers are queried concurrently by title, in this order.
	Searchers []Searcher
}

// New builds the enabled clients from cfg, sharing client for transport.
func New(cfg types.SourcesConfig, client *http.Client) Set {
	if client == nil {
		client = &http.Client{}
	}
	var set Set

	if cfg.CrossRef.Enabled {
		cr := &CrossRef{
			Client:        client,
			UserAgent:     cfg.UserAgent,
			Mailto:        cfg.Mailto,
			Limiter:       NewLimiter(cfg.CrossRef.Concurrency, cfg.CrossRef.RatePerSecond),
			LookupTimeout: cfg.LookupTimeout,
			SearchTimeout: cfg.SearchTimeout,
		}
		set.DOI = cr
		set.Searchers = append(set.Searchers, cr)
	}
	if cfg.SemanticScholar.Enabled {
		set.Searchers = append(set.Searchers, &SemanticScholar{
			Client:        client,
			UserAgent:     cfg.UserAgent,
			APIKey:        cfg.SemanticScholarAPIKey,
			Limiter:       NewLimiter(cfg.SemanticScholar.Concurrency, cfg.SemanticScholar.RatePerSecond),
			SearchTimeout: cfg.SearchTimeout,
		})
	}
	if cfg.Arxiv.Enabled {
		ax := &Arxiv{
			Client:        client,
			UserAgent:     cfg.UserAgent,
			Limiter:       NewLimiter(cfg.Arxiv.Concurrency, cfg.Arxiv.RatePerSecond),
			LookupTimeout: cfg.LookupTimeout,
			SearchTimeout: cfg.SearchTimeout,
		}
		set.Arxiv = ax
		set.Searchers = append(set.Searchers, ax)
	}
	if cfg.OpenAlex.Enabled {
		set.Searchers = append(set.Searchers, &OpenAlex{
			Client:        client,
			UserAgent:     cfg.UserAgent,
			Mailto:        cfg.Mailto,
			Limiter:       NewLimiter(cfg.OpenAlex.Concurrency, cfg.OpenAlex.RatePerSecond),
			SearchTimeout: cfg.SearchTimeout,
		})
	}
	return set
}
