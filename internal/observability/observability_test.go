// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citeverify/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewLoggerToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(types.LoggingConfig{Level: "info", Format: "json"}, &buf)

	logger.Debug().Msg("hidden")
	WithCitation(WithRun(logger, "run-1"), "7").Info().Str("source", "crossref").Msg("verified")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug line must be filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "verified", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "7", entry["citation"])
	assert.Equal(t, "crossref", entry["source"])
	assert.Contains(t, entry, "time")
}

func TestNewLoggerToConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(types.LoggingConfig{Level: "debug"}, &buf)
	logger.Debug().Msg("cache hit")
	assert.Contains(t, buf.String(), "cache hit")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "console format is not JSON")
}

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics("test")

	m.RecordExtracted(12)
	m.RecordVerification("verified", 150*time.Millisecond)
	m.RecordVerification("verified", time.Second)
	m.RecordVerification("unverified", time.Second)
	m.RecordSourceRequest("crossref", "lookup", OutcomeOK, 20*time.Millisecond)
	m.RecordSourceRequest("arxiv", "search", OutcomeTimeout, 10*time.Second)
	m.RecordCacheLookup(CacheHit)
	m.RecordCacheLookup(CacheMiss)
	m.RecordCacheLookup(CacheMiss)
	m.RecordQualityScore(85)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.CitationsExtracted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Verifications.WithLabelValues("verified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("unverified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceRequests.WithLabelValues("arxiv", "search", OutcomeTimeout)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(CacheMiss)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.SourceRequests))
}

func TestMetricsIndependentRegistries(t *testing.T) {
	a := NewMetrics("citeverify")
	b := NewMetrics("citeverify")
	a.RecordExtracted(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(a.CitationsExtracted))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CitationsExtracted))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordExtracted(1)
	m.RecordVerification("verified", time.Second)
	m.RecordSourceRequest("crossref", "lookup", OutcomeOK, time.Second)
	m.RecordCacheLookup(CacheHit)
	m.RecordQualityScore(50)
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics("citeverify")
	m.RecordVerification("partial", time.Second)

	path := filepath.Join(t.TempDir(), "citeverify.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `citeverify_verifications_total{status="partial"} 1`)
}
