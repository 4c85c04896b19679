// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Source request outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeTimeout  = "timeout"
	OutcomeError    = "error"
)

// Cache lookup results used as the "result" label.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics holds the Prometheus collectors for one run. Each Metrics owns
// its registry so several instances can coexist. All Record methods are
// safe on a nil *Metrics.
type Metrics struct {
	Registry *prometheus.Registry

	// CitationsExtracted counts citations parsed out of documents.
	CitationsExtracted prometheus.Counter

	// Verifications counts verification outcomes, labeled by status.
	Verifications *prometheus.CounterVec

	// VerifyDuration observes per-citation verification time in seconds.
	VerifyDuration prometheus.Histogram

	// SourceRequests counts external source calls, labeled by source,
	// operation (lookup, search) and outcome.
	SourceRequests *prometheus.CounterVec

	// SourceDuration observes external source call time in seconds.
	SourceDuration *prometheus.HistogramVec

	// CacheLookups counts cache reads, labeled by result.
	CacheLookups *prometheus.CounterVec

	// QualityScores observes the distribution of total quality scores.
	QualityScores prometheus.Histogram
}

// NewMetrics creates a Metrics instance on a fresh registry. The
// namespace prefixes every metric name.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		CitationsExtracted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "citations_extracted_total",
			Help:      "Total number of citations extracted from documents",
		}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Total number of citation verifications by status",
		}, []string{"status"}),
		VerifyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verify_duration_seconds",
			Help:      "Duration of one citation verification in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		SourceRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Total number of external source requests",
		}, []string{"source", "operation", "outcome"}),
		SourceDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Duration of external source requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "operation"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of result cache lookups by result",
		}, []string{"result"}),
		QualityScores: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quality_score",
			Help:      "Distribution of citation quality scores",
			Buckets:   prometheus.LinearBuckets(10, 10, 9),
		}),
	}
}

// RecordExtracted records n citations extracted from one document.
func (m *Metrics) RecordExtracted(n int) {
	if m == nil {
		return
	}
	m.CitationsExtracted.Add(float64(n))
}

// RecordVerification records one finished verification.
func (m *Metrics) RecordVerification(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(status).Inc()
	m.VerifyDuration.Observe(d.Seconds())
}

// RecordSourceRequest records one call to an external source.
func (m *Metrics) RecordSourceRequest(source, operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SourceRequests.WithLabelValues(source, operation, outcome).Inc()
	m.SourceDuration.WithLabelValues(source, operation).Observe(d.Seconds())
}

// RecordCacheLookup records one cache read.
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordQualityScore records one citation's total score.
func (m *Metrics) RecordQualityScore(total int) {
	if m == nil {
		return
	}
	m.QualityScores.Observe(float64(total))
}

// WriteTextfile writes the registry in the Prometheus text format to
// path, for pickup by the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
