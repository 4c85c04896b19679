// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citeverify/internal/cache"
	"github.com/pdiddy/citeverify/internal/observability"
	"github.com/pdiddy/citeverify/pkg/types"
)

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citeverify")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citeverify"))
		}
	}

	viper.SetEnvPrefix("CITEVERIFY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := setDefaults(viper.GetViper(), types.DefaultConfig()); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
	bindSecretEnv(viper.GetViper())
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

// setDefaults registers every field of cfg as a viper default so that
// environment variables such as CITEVERIFY_VERIFY_THRESHOLD resolve.
func setDefaults(v *viper.Viper, cfg types.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decoding default config: %w", err)
	}
	for k, val := range m {
		v.SetDefault(k, val)
	}
	return nil
}

// bindSecretEnv binds keys that have no default and so are not picked up
// by AutomaticEnv during Unmarshal.
func bindSecretEnv(v *viper.Viper) {
	_ = v.BindEnv("sources.mailto")
	_ = v.BindEnv("sources.semantic_scholar_api_key")
	_ = v.BindEnv("cache.redis_addr")
}

// app is the state shared by every command.
type app struct {
	cfg types.Config
	log zerolog.Logger
}

func newApp() (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}
	return &app{cfg: cfg, log: observability.NewLogger(cfg.Logging)}, nil
}

// loadConfig decodes v over the defaults.
func loadConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

// openCache opens the configured result cache. It returns a nil Store
// when caching is disabled or the backend cannot be reached; verification
// then runs against live sources only. --clear-cache and an unknown
// backend name stay hard errors.
func (a *app) openCache(ctx context.Context, cmd *cobra.Command) (cache.Store, error) {
	cfg := a.cfg.Cache
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Backend = types.CacheNone
	}
	clearFirst, _ := cmd.Flags().GetBool("clear-cache")

	store, err := cache.Open(ctx, cfg)
	if err != nil {
		if clearFirst || errors.Is(err, cache.ErrUnknownBackend) {
			return nil, fmt.Errorf("opening %s cache: %w", cfg.Backend, err)
		}
		a.log.Warn().Err(err).Str("backend", string(cfg.Backend)).
			Msg("result cache unavailable, verifying without it")
		return nil, nil
	}
	if store == nil {
		a.log.Debug().Msg("result cache disabled")
		return nil, nil
	}

	if clearFirst {
		n, err := store.Clear(ctx)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("clearing cache: %w", err)
		}
		a.log.Info().Int("entries", n).Msg("cache cleared")
	}
	return store, nil
}
