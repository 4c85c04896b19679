// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify reconciles an extracted citation against external
// bibliographic sources. Verification is strictly ordered: DOI lookup,
// then arXiv ID lookup, then a concurrent title search across every
// configured source, then fallback title queries. Each step runs only if
// the previous one did not verify the citation.
package verify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/citeverify/internal/cache"
	"github.com/pdiddy/citeverify/internal/normalize"
	"github.com/pdiddy/citeverify/internal/observability"
	"github.com/pdiddy/citeverify/internal/sources"
	"github.com/pdiddy/citeverify/pkg/types"
)

// Engine verifies citations. Source clients, their limiters and the
// cache are fixed at construction; an Engine is safe for concurrent use.
type Engine struct {
	cfg       types.VerifyConfig
	doi       sources.Resolver
	arxiv     sources.Resolver
	searchers []sources.Searcher
	cache     cache.Store
	log       zerolog.Logger
	metrics   *observability.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the matching parameters. Zero fields keep defaults.
func WithConfig(cfg types.VerifyConfig) Option {
	return func(e *Engine) {
		def := types.DefaultConfig().Verify
		if cfg.Threshold <= 0 {
			cfg.Threshold = def.Threshold
		}
		if cfg.PrefixScore <= 0 {
			cfg.PrefixScore = def.PrefixScore
		}
		if cfg.VerifiedAbove <= 0 {
			cfg.VerifiedAbove = def.VerifiedAbove
		}
		if cfg.SearchRows <= 0 {
			cfg.SearchRows = def.SearchRows
		}
		if cfg.ArxivSearchRows <= 0 {
			cfg.ArxivSearchRows = def.ArxivSearchRows
		}
		e.cfg = cfg
	}
}

// WithSources installs the identifier resolvers and title searchers.
func WithSources(set sources.Set) Option {
	return func(e *Engine) {
		e.doi = set.DOI
		e.arxiv = set.Arxiv
		e.searchers = set.Searchers
	}
}

// WithCache enables result caching. A nil store disables it.
func WithCache(s cache.Store) Option {
	return func(e *Engine) { e.cache = s }
}

// WithLogger sets the logger used for per-citation debug tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics records source, cache and outcome metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New returns an Engine. Without WithSources it verifies nothing and
// reports every citation as unverified.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg: types.DefaultConfig().Verify,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the minimum title similarity for a match.
func (e *Engine) Threshold() float64 { return e.cfg.Threshold }

// Similarity scores two titles with the engine's prefix score.
func (e *Engine) Similarity(a, b string) float64 {
	return similarity(a, b, e.cfg.PrefixScore)
}

// attempt tracks what happened across the steps of one verification.
type attempt struct {
	// failures are transient identifier lookup errors, already phrased
	// for the discrepancy list.
	failures []string
	// answered is set once any source gave a definitive response.
	answered bool
	// searchFailed is set when every title source failed.
	searchFailed bool
}

// Verify returns the verification result for c. It never returns nil and
// never fails: transport problems are reflected in the status and
// discrepancies.
func (e *Engine) Verify(ctx context.Context, c types.Citation) *types.VerificationResult {
	start := time.Now()
	log := observability.WithCitation(e.log, c.Number)
	ctx = log.WithContext(ctx)

	r := e.verify(ctx, c, &log)
	if r.Discrepancies == nil {
		r.Discrepancies = []string{}
	}
	if r.VerifiedSources == nil {
		r.VerifiedSources = []string{}
	}

	e.metrics.RecordVerification(string(r.Status), time.Since(start))
	log.Debug().
		Str("status", string(r.Status)).
		Float64("confidence", r.Confidence).
		Str("source", r.PrimarySource()).
		Msg("verification finished")
	return r
}

func (e *Engine) verify(ctx context.Context, c types.Citation, log *zerolog.Logger) *types.VerificationResult {
	var at attempt

	if c.DOI != "" && e.doi != nil {
		if r := e.cached(ctx, cache.QueryDOI, c.DOI, log); r != nil {
			return r
		}
		r := e.lookupDOI(ctx, c)
		e.note(&at, r)
		log.Debug().Str("query_type", cache.QueryDOI).Str("source", e.doi.Name()).
			Str("status", string(r.Status)).Msg("identifier lookup")
		if r.Status == types.StatusVerified {
			e.store(ctx, cache.QueryDOI, c.DOI, r, log)
			return r
		}
	}

	if c.ArxivID != "" && e.arxiv != nil {
		if r := e.cached(ctx, cache.QueryArxiv, c.ArxivID, log); r != nil {
			return r
		}
		r := e.lookupArxiv(ctx, c)
		e.note(&at, r)
		log.Debug().Str("query_type", cache.QueryArxiv).Str("source", e.arxiv.Name()).
			Str("status", string(r.Status)).Msg("identifier lookup")
		if r.Status == types.StatusVerified {
			e.store(ctx, cache.QueryArxiv, c.ArxivID, r, log)
			return r
		}
	}

	title := normalize.Title(c.Title)
	if title != "" && len(e.searchers) > 0 {
		if r := e.cached(ctx, cache.QueryTitle, title, log); r != nil {
			return r
		}

		r := e.searchTitle(ctx, c, title, title, &at)
		if r == nil && e.cfg.FallbackRetries {
			for _, q := range fallbackQueries(title, c.Journal) {
				log.Debug().Str("query", q).Msg("retrying title search")
				if r = e.searchTitle(ctx, c, title, q, &at); r != nil {
					break
				}
			}
		}
		if r != nil {
			e.store(ctx, cache.QueryTitle, title, r, log)
			return r
		}
	}

	return e.unmatched(c, title, at)
}

// note folds an identifier lookup outcome into at.
func (e *Engine) note(at *attempt, r *types.VerificationResult) {
	if r.Status == types.StatusError {
		at.failures = append(at.failures, r.Discrepancies...)
		return
	}
	at.answered = true
}

// unmatched builds the final result when no step produced a match. It is
// an error only if an identifier lookup failed and no source answered.
func (e *Engine) unmatched(c types.Citation, title string, at attempt) *types.VerificationResult {
	var reasons []string
	if c.DOI == "" {
		reasons = append(reasons, "No DOI")
	}
	if c.ArxivID == "" {
		reasons = append(reasons, "No arXiv ID")
	}
	if title == "" {
		reasons = append(reasons, "No title extracted")
	} else {
		reasons = append(reasons, fmt.Sprintf("Title similarity below threshold (%g)", e.cfg.Threshold))
	}
	if at.searchFailed {
		reasons = append(reasons, "All title search sources failed")
	}
	reasons = append(at.failures, reasons...)

	status := types.StatusUnverified
	if len(at.failures) > 0 && !at.answered {
		status = types.StatusError
	}
	return &types.VerificationResult{Status: status, Discrepancies: reasons}
}

func (e *Engine) cached(ctx context.Context, queryType, value string, log *zerolog.Logger) *types.VerificationResult {
	if e.cache == nil {
		return nil
	}
	r, err := e.cache.Get(ctx, queryType, value)
	switch {
	case err == nil:
		e.metrics.RecordCacheLookup(observability.CacheHit)
		log.Debug().Str("query_type", queryType).Msg("cache hit")
		return r
	case errors.Is(err, cache.ErrMiss):
		e.metrics.RecordCacheLookup(observability.CacheMiss)
	default:
		e.metrics.RecordCacheLookup(observability.CacheError)
		log.Warn().Err(err).Str("query_type", queryType).Msg("cache read failed")
	}
	return nil
}

func (e *Engine) store(ctx context.Context, queryType, value string, r *types.VerificationResult, log *zerolog.Logger) {
	if e.cache == nil || r.Status == types.StatusError {
		return
	}
	if err := e.cache.Set(ctx, queryType, value, r); err != nil {
		log.Warn().Err(err).Str("query_type", queryType).Msg("cache write failed")
	}
}

// observe records a source call's metrics and returns the outcome label.
func (e *Engine) observe(source, operation string, err error, start time.Time) string {
	outcome := observability.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, sources.ErrNotFound):
		outcome = observability.OutcomeNotFound
	case sources.IsTimeout(err):
		outcome = observability.OutcomeTimeout
	default:
		outcome = observability.OutcomeError
	}
	e.metrics.RecordSourceRequest(source, operation, outcome, time.Since(start))
	return outcome
}

// yearDiscrepancies notes a year difference of more than one.
func yearDiscrepancies(cited, matched int) []string {
	if cited == 0 || matched == 0 {
		return nil
	}
	d := cited - matched
	if d > 1 || d < -1 {
		return []string{fmt.Sprintf("Year mismatch: %d vs %d", cited, matched)}
	}
	return nil
}

// matched builds a result from a source record.
func matched(rec *sources.Record, status types.VerificationStatus, confidence float64, cited types.Citation) *types.VerificationResult {
	return &types.VerificationResult{
		Status:          status,
		Confidence:      confidence,
		MatchedTitle:    rec.Title,
		MatchedAuthors:  rec.Authors,
		MatchedYear:     rec.Year,
		DOI:             rec.DOI,
		ArxivID:         rec.ArxivID,
		VerifiedSources: []string{rec.Source},
		Discrepancies:   yearDiscrepancies(cited.Year, rec.Year),
		Metadata:        rec.Metadata,
	}
}

func (e *Engine) lookupDOI(ctx context.Context, c types.Citation) *types.VerificationResult {
	start := time.Now()
	rec, err := e.doi.Lookup(ctx, c.DOI)
	e.observe(e.doi.Name(), "lookup", err, start)

	var he *sources.HTTPError
	switch {
	case err == nil:
		return matched(rec, types.StatusVerified, 1.0, c)
	case errors.Is(err, sources.ErrNotFound):
		return &types.VerificationResult{Status: types.StatusUnverified, Discrepancies: []string{"DOI not found in CrossRef"}}
	case sources.IsTimeout(err):
		return &types.VerificationResult{Status: types.StatusError, Discrepancies: []string{"CrossRef timeout"}}
	case errors.As(err, &he):
		return &types.VerificationResult{Status: types.StatusError, Discrepancies: []string{fmt.Sprintf("CrossRef API error: %d", he.StatusCode)}}
	default:
		return &types.VerificationResult{Status: types.StatusError, Discrepancies: []string{fmt.Sprintf("CrossRef error: %v", err)}}
	}
}

func (e *Engine) lookupArxiv(ctx context.Context, c types.Citation) *types.VerificationResult {
	start := time.Now()
	rec, err := e.arxiv.Lookup(ctx, c.ArxivID)
	e.observe(e.arxiv.Name(), "lookup", err, start)

	switch {
	case err == nil:
		return matched(rec, types.StatusVerified, 1.0, c)
	case errors.Is(err, sources.ErrNotFound):
		return &types.VerificationResult{Status: types.StatusUnverified, Discrepancies: []string{"arXiv ID not found"}}
	case sources.IsTimeout(err):
		return &types.VerificationResult{Status: types.StatusError, Discrepancies: []string{"arXiv timeout"}}
	default:
		return &types.VerificationResult{Status: types.StatusError, Discrepancies: []string{fmt.Sprintf("arXiv error: %v", err)}}
	}
}

// searchTitle queries every searcher concurrently with query and waits
// for all of them. Each source's best record is scored against title;
// candidates under the threshold are dropped. The best arXiv candidate
// wins if there is one, otherwise the best overall. Failed sources are
// logged and skipped. It returns nil when nothing matched.
func (e *Engine) searchTitle(ctx context.Context, c types.Citation, title, query string, at *attempt) *types.VerificationResult {
	type sourceResult struct {
		idx       int
		candidate *types.VerificationResult
		err       error
	}

	ch := make(chan sourceResult, len(e.searchers))
	var wg sync.WaitGroup
	for i, s := range e.searchers {
		wg.Add(1)
		go func(i int, s sources.Searcher) {
			defer wg.Done()
			cand, err := e.searchOne(ctx, s, c, title, query)
			ch <- sourceResult{idx: i, candidate: cand, err: err}
		}(i, s)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	log := zerolog.Ctx(ctx)
	candidates := make([]*types.VerificationResult, len(e.searchers))
	failed := 0
	for sr := range ch {
		if sr.err != nil {
			failed++
			log.Warn().Err(sr.err).Str("source", e.searchers[sr.idx].Name()).Msg("title search failed")
			continue
		}
		candidates[sr.idx] = sr.candidate
	}
	if failed == len(e.searchers) {
		at.searchFailed = true
	} else {
		at.answered = true
		at.searchFailed = false
	}

	best := pick(candidates)
	if best != nil {
		log.Debug().Str("query_type", cache.QueryTitle).Str("source", best.PrimarySource()).
			Float64("confidence", best.Confidence).Msg("title match")
	}
	return best
}

// pick applies the tie-break policy: the highest-confidence arXiv
// candidate if any, else the highest-confidence candidate. Ties keep the
// earlier source.
func pick(candidates []*types.VerificationResult) *types.VerificationResult {
	var best, bestArxiv *types.VerificationResult
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if best == nil || c.Confidence > best.Confidence {
			best = c
		}
		if c.PrimarySource() == sources.ArxivName && (bestArxiv == nil || c.Confidence > bestArxiv.Confidence) {
			bestArxiv = c
		}
	}
	if bestArxiv != nil {
		return bestArxiv
	}
	return best
}

// searchOne runs one source's title search and returns its best
// candidate at or above the threshold, or nil.
func (e *Engine) searchOne(ctx context.Context, s sources.Searcher, c types.Citation, title, query string) (*types.VerificationResult, error) {
	rows := e.cfg.SearchRows
	if s.Name() == sources.ArxivName {
		rows = e.cfg.ArxivSearchRows
	}

	start := time.Now()
	recs, err := s.Search(ctx, query, rows)
	e.observe(s.Name(), "search", err, start)
	if err != nil {
		return nil, err
	}

	var best *sources.Record
	bestSim := 0.0
	for i := range recs {
		if sim := e.Similarity(title, recs[i].Title); sim > bestSim {
			best, bestSim = &recs[i], sim
		}
	}
	if best == nil || bestSim < e.cfg.Threshold {
		return nil, nil
	}

	status := types.StatusPartial
	if s.Name() == sources.ArxivName || bestSim > e.cfg.VerifiedAbove {
		status = types.StatusVerified
	}
	return matched(best, status, bestSim, c), nil
}
