// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citeverify/internal/cache"
	"github.com/pdiddy/citeverify/internal/report"
	"github.com/pdiddy/citeverify/pkg/types"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetEnvPrefix("CITEVERIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	require.NoError(t, setDefaults(v, types.DefaultConfig()))
	bindSecretEnv(v)
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("CITEVERIFY_VERIFY_THRESHOLD", "0.85")
	t.Setenv("CITEVERIFY_CACHE_BACKEND", "memory")
	t.Setenv("CITEVERIFY_CACHE_TTL", "1h")
	t.Setenv("CITEVERIFY_SOURCES_MAILTO", "lab@example.org")

	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, 0.85, cfg.Verify.Threshold)
	assert.Equal(t, types.CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "lab@example.org", cfg.Sources.Mailto)
	assert.Equal(t, 15, cfg.Verify.ArxivSearchRows, "untouched keys keep defaults")
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citeverify.yaml")
	content := "verify:\n  search_rows: 8\nsources:\n  arxiv:\n    enabled: false\nlogging:\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Verify.SearchRows)
	assert.Equal(t, 0.7, cfg.Verify.Threshold)
	assert.False(t, cfg.Sources.Arxiv.Enabled)
	assert.Equal(t, 3, cfg.Sources.Arxiv.Concurrency)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestWriteStats(t *testing.T) {
	st := cache.Stats{
		Total: 3, Valid: 2, Expired: 1,
		ByType:   map[string]int{"title": 1, "doi": 2},
		Location: "/tmp/cache.db",
		TTL:      time.Hour,
	}

	var buf bytes.Buffer
	require.NoError(t, writeStats(&buf, st, report.FormatTable))
	out := buf.String()
	assert.Contains(t, out, "Entries:  3 (2 valid, 1 expired)")
	assert.Less(t, strings.Index(out, "doi"), strings.Index(out, "title"), "types are sorted")

	buf.Reset()
	require.NoError(t, writeStats(&buf, st, report.FormatJSON))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3.0, decoded["total_entries"])
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "citeverify dev\n", buf.String())
}
