// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citeverify CLI. It extracts the
// references of a paper, verifies each citation against CrossRef, arXiv,
// Semantic Scholar and OpenAlex, and scores citation quality.
package main

import (
	"context"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citeverify/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// current holds the configuration and logger built before each command.
var current *app

// rootCmd is the base command for the citeverify CLI.
var rootCmd = &cobra.Command{
	Use:   "citeverify",
	Short: "Extract, verify and score the citations of a research paper",
	Long: `citeverify reads a paper (PDF, text or Markdown file, or an arXiv ID),
locates its references section and splits it into citations. Each citation
is verified by DOI, then arXiv ID, then title search across CrossRef, arXiv,
Semantic Scholar and OpenAlex, and receives a 0-100 quality score.

Results are cached (SQLite by default) so repeated runs avoid live queries.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx := a.log.WithContext(cmd.Context())
		s, err := secrets.Load(ctx, secrets.DefaultDir)
		if err != nil {
			return err
		}
		secrets.Apply(s, &a.cfg.Sources)
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			a.log.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		if f := viper.ConfigFileUsed(); f != "" {
			a.log.Debug().Str("file", f).Msg("using config file")
		}

		current = a
		cmd.SetContext(ctx)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./citeverify.yaml or ~/.config/citeverify/citeverify.yaml)")
	pf.BoolP("verbose", "v", false, "log every verification step")
	pf.StringP("format", "f", "table", "output format: table, json or yaml")
	pf.String("cache", "", "cache backend: sqlite, redis, memory or none")
	pf.String("log-format", "", "log format: console or json")

	_ = viper.BindPFlag("cache.backend", pf.Lookup("cache"))
	_ = viper.BindPFlag("logging.format", pf.Lookup("log-format"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
