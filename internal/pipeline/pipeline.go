// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one paper through extraction, verification and
// scoring. Citations are verified one at a time, in document order.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/citeverify/internal/document"
	"github.com/pdiddy/citeverify/internal/extract"
	"github.com/pdiddy/citeverify/internal/observability"
	"github.com/pdiddy/citeverify/internal/score"
	"github.com/pdiddy/citeverify/pkg/types"
)

// Loader resolves an input into document text.
type Loader interface {
	Load(ctx context.Context, input string) (*document.Source, error)
}

// Verifier verifies one citation. It must not return nil.
type Verifier interface {
	Verify(ctx context.Context, c types.Citation) *types.VerificationResult
}

// Summary counts verification outcomes for one run.
type Summary struct {
	Verified   int `json:"verified" yaml:"verified"`
	Partial    int `json:"partial" yaml:"partial"`
	Unverified int `json:"unverified" yaml:"unverified"`
	Errors     int `json:"errors" yaml:"errors"`
	// Filtered counts citations hidden by the quality minimum.
	Filtered int `json:"filtered,omitempty" yaml:"filtered,omitempty"`
}

// Total returns the number of citations verified.
func (s Summary) Total() int {
	return s.Verified + s.Partial + s.Unverified + s.Errors
}

// HasFailures reports whether any verification ended in error.
func (s Summary) HasFailures() bool {
	return s.Errors > 0
}

func (s *Summary) add(status types.VerificationStatus) {
	switch status {
	case types.StatusVerified:
		s.Verified++
	case types.StatusPartial:
		s.Partial++
	case types.StatusUnverified:
		s.Unverified++
	case types.StatusError:
		s.Errors++
	}
}

// Report is the result of one run.
type Report struct {
	RunID       string                   `json:"run_id" yaml:"run_id"`
	Input       string                   `json:"input" yaml:"input"`
	PaperTitle  string                   `json:"paper_title" yaml:"paper_title"`
	Verified    bool                     `json:"verified" yaml:"verified"`
	Citations   []types.VerifiedCitation `json:"citations" yaml:"citations"`
	Summary     Summary                  `json:"summary" yaml:"summary"`
	GeneratedAt time.Time                `json:"generated_at" yaml:"generated_at"`
}

// Pipeline wires the stages of a run.
type Pipeline struct {
	Loader Loader

	// Verifier is skipped when nil or when SkipVerify is set; the report
	// then carries extraction results only.
	Verifier   Verifier
	SkipVerify bool

	Scorer  *score.Scorer
	Metrics *observability.Metrics
	Log     zerolog.Logger

	// QualityMin drops scored citations with a lower total from the
	// report. Zero keeps everything.
	QualityMin int

	// Progress receives one line per verified citation. Nil disables it.
	Progress io.Writer
}

// Run loads input and processes it. Load and extraction failures abort
// the run; verification problems are reported per citation.
func (p *Pipeline) Run(ctx context.Context, input string) (*Report, error) {
	runID := uuid.NewString()
	ctx = p.runContext(ctx, runID, input)

	src, err := p.Loader.Load(ctx, input)
	if err != nil {
		return nil, err
	}
	return p.process(ctx, runID, src)
}

// Process runs extraction, verification and scoring on an already loaded
// source.
func (p *Pipeline) Process(ctx context.Context, src *document.Source) (*Report, error) {
	runID := uuid.NewString()
	return p.process(p.runContext(ctx, runID, src.Input), runID, src)
}

func (p *Pipeline) runContext(ctx context.Context, runID, input string) context.Context {
	log := observability.WithRun(p.Log, runID).With().Str("input", input).Logger()
	return log.WithContext(ctx)
}

func (p *Pipeline) process(ctx context.Context, runID string, src *document.Source) (*Report, error) {
	log := zerolog.Ctx(ctx)
	start := time.Now()

	res, err := extract.Document(src.Text)
	if err != nil {
		return nil, fmt.Errorf("extracting citations from %s: %w", src.Input, err)
	}
	p.Metrics.RecordExtracted(len(res.Citations))
	log.Info().Int("citations", len(res.Citations)).Msg("citations extracted")

	title := res.Title
	if src.Title != "" {
		title = src.Title
	}
	report := &Report{
		RunID:      runID,
		Input:      src.Input,
		PaperTitle: title,
		Citations:  make([]types.VerifiedCitation, 0, len(res.Citations)),
	}

	if p.SkipVerify || p.Verifier == nil {
		for _, c := range res.Citations {
			report.Citations = append(report.Citations, types.VerifiedCitation{Citation: c})
		}
		report.GeneratedAt = time.Now().UTC()
		return report, nil
	}
	report.Verified = true

	scorer := p.Scorer
	if scorer == nil {
		scorer = score.New()
	}

	for i, c := range res.Citations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := p.Verifier.Verify(ctx, c)
		q := scorer.Score(c, r)
		p.Metrics.RecordQualityScore(q.Total)
		report.Summary.add(r.Status)

		if p.Progress != nil {
			fmt.Fprintf(p.Progress, "[%d/%d] %-10s %s\n", i+1, len(res.Citations), r.Status, c.Number)
		}
		if p.QualityMin > 0 && q.Total < p.QualityMin {
			report.Summary.Filtered++
			continue
		}
		report.Citations = append(report.Citations, types.VerifiedCitation{
			Citation:     c,
			Verification: r,
			Quality:      &q,
		})
	}

	report.GeneratedAt = time.Now().UTC()
	s := report.Summary
	log.Info().
		Int("verified", s.Verified).
		Int("partial", s.Partial).
		Int("unverified", s.Unverified).
		Int("errors", s.Errors).
		Dur("elapsed", time.Since(start)).
		Msg("verification finished")
	return report, nil
}
