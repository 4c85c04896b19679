// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// VerifyConfig holds the verification engine's matching parameters.
type VerifyConfig struct {
	// Threshold is the minimum title similarity for a candidate to be
	// considered at all (default 0.7).
	Threshold float64 `json:"threshold" yaml:"threshold" mapstructure:"threshold"`

	// PrefixScore is returned by the similarity function when one title is
	// a word-prefix of the other (default 0.95).
	PrefixScore float64 `json:"prefix_score" yaml:"prefix_score" mapstructure:"prefix_score"`

	// VerifiedAbove is the similarity above which a fuzzy match is
	// VERIFIED rather than PARTIAL (default 0.8).
	VerifiedAbove float64 `json:"verified_above" yaml:"verified_above" mapstructure:"verified_above"`

	// SearchRows caps results requested from each title-search source (default 5).
	SearchRows int `json:"search_rows" yaml:"search_rows" mapstructure:"search_rows"`

	// ArxivSearchRows caps results requested from arXiv title search (default 15).
	ArxivSearchRows int `json:"arxiv_search_rows" yaml:"arxiv_search_rows" mapstructure:"arxiv_search_rows"`

	// FallbackRetries enables the subtitle and venue-extended retries.
	FallbackRetries bool `json:"fallback_retries" yaml:"fallback_retries" mapstructure:"fallback_retries"`
}

// SourceConfig holds per-source settings.
type SourceConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Concurrency caps simultaneous in-flight requests to the source.
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// RatePerSecond paces request starts; 0 disables pacing.
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// SourcesConfig holds settings shared by the external source clients.
type SourcesConfig struct {
	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// Mailto is a contact address sent to CrossRef and OpenAlex for
	// polite-pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty" mapstructure:"mailto"`

	// SemanticScholarAPIKey is an optional key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	LookupTimeout   time.Duration `json:"lookup_timeout" yaml:"lookup_timeout" mapstructure:"lookup_timeout"`
	SearchTimeout   time.Duration `json:"search_timeout" yaml:"search_timeout" mapstructure:"search_timeout"`
	DownloadTimeout time.Duration `json:"download_timeout" yaml:"download_timeout" mapstructure:"download_timeout"`

	CrossRef        SourceConfig `json:"crossref" yaml:"crossref" mapstructure:"crossref"`
	Arxiv           SourceConfig `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	SemanticScholar SourceConfig `json:"semantic_scholar" yaml:"semantic_scholar" mapstructure:"semantic_scholar"`
	OpenAlex        SourceConfig `json:"openalex" yaml:"openalex" mapstructure:"openalex"`
}

// CacheBackend selects the result cache implementation.
type CacheBackend string

const (
	CacheSQLite CacheBackend = "sqlite"
	CacheRedis  CacheBackend = "redis"
	CacheMemory CacheBackend = "memory"
	CacheNone   CacheBackend = "none"
)

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Backend CacheBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Dir holds the SQLite database (default ~/.citeverify).
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// TTL is how long an entry stays valid (default 7 days).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`

	RedisAddr   string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisPrefix string `json:"redis_prefix,omitempty" yaml:"redis_prefix,omitempty" mapstructure:"redis_prefix"`
}

// ConversionBackend identifies the PDF-to-text tool.
type ConversionBackend string

const (
	BackendNative    ConversionBackend = "native"
	BackendPdftotext ConversionBackend = "pdftotext"
)

// ConversionConfig holds settings for PDF text extraction.
type ConversionConfig struct {
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`
}

// LoggingConfig controls logger construction.
type LoggingConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output is "stderr" or "stdout".
	Output string `json:"output" yaml:"output" mapstructure:"output"`
}

// Config groups the settings of every stage.
type Config struct {
	Verify     VerifyConfig     `json:"verify" yaml:"verify" mapstructure:"verify"`
	Sources    SourcesConfig    `json:"sources" yaml:"sources" mapstructure:"sources"`
	Cache      CacheConfig      `json:"cache" yaml:"cache" mapstructure:"cache"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultConfig() Config {
	return Config{
		Verify: VerifyConfig{
			Threshold:       0.7,
			PrefixScore:     0.95,
			VerifiedAbove:   0.8,
			SearchRows:      5,
			ArxivSearchRows: 15,
			FallbackRetries: true,
		},
		Sources: SourcesConfig{
			UserAgent:       "citeverify/0.1",
			LookupTimeout:   10 * time.Second,
			SearchTimeout:   10 * time.Second,
			DownloadTimeout: 60 * time.Second,
			CrossRef:        SourceConfig{Enabled: true, Concurrency: 5},
			Arxiv:           SourceConfig{Enabled: true, Concurrency: 3, RatePerSecond: 1},
			SemanticScholar: SourceConfig{Enabled: true, Concurrency: 2, RatePerSecond: 1},
			OpenAlex:        SourceConfig{Enabled: true, Concurrency: 5},
		},
		Cache: CacheConfig{
			Backend:     CacheSQLite,
			TTL:         7 * 24 * time.Hour,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "citeverify:",
		},
		Conversion: ConversionConfig{Backend: BackendNative},
		Logging:    LoggingConfig{Level: "info", Format: "console", Output: "stderr"},
	}
}
