// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citeverify/internal/convert"
	"github.com/pdiddy/citeverify/internal/document"
	"github.com/pdiddy/citeverify/internal/observability"
	"github.com/pdiddy/citeverify/internal/pipeline"
	"github.com/pdiddy/citeverify/internal/report"
	"github.com/pdiddy/citeverify/internal/score"
	"github.com/pdiddy/citeverify/internal/sources"
	"github.com/pdiddy/citeverify/internal/verify"
	"github.com/pdiddy/citeverify/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check <pdf|text file|arXiv ID>",
	Short: "Extract, verify and score the citations of a paper",
	Long: `Check extracts the references of a paper and verifies every citation:
first by DOI against CrossRef, then by arXiv ID, then by title across all
enabled sources. Each citation gets a status (verified, partial, unverified
or error), a confidence and a 0-100 quality score.

Citations are verified one at a time; progress lines go to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], false)
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <pdf|text file|arXiv ID>",
	Short: "Extract citations without verifying them",
	Long: `Extract locates the references section of a paper and prints the
parsed citations (title, authors, year, DOI, arXiv ID). No external source
is queried except to download arXiv inputs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], true)
	},
}

func init() {
	checkCmd.Flags().Bool("no-verify", false, "extract citations only, like the extract command")
	checkCmd.Flags().Int("quality-min", 0, "hide citations with a quality score below this value")
	checkCmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
	checkCmd.Flags().Bool("clear-cache", false, "clear the result cache before verifying")
	checkCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this file after the run")
	checkCmd.Flags().Float64("threshold", 0, "minimum title similarity for a match (default 0.7)")

	for _, c := range []*cobra.Command{checkCmd, extractCmd} {
		c.Flags().String("converter", "", "PDF converter: native or pdftotext")
	}
	_ = viper.BindPFlag("verify.threshold", checkCmd.Flags().Lookup("threshold"))

	rootCmd.AddCommand(checkCmd, extractCmd)
}

func runPipeline(cmd *cobra.Command, input string, extractOnly bool) error {
	ctx := cmd.Context()
	a := current

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	convCfg := a.cfg.Conversion
	if name, _ := cmd.Flags().GetString("converter"); name != "" {
		convCfg.Backend = types.ConversionBackend(name)
	}
	conv, err := convert.New(convCfg)
	if err != nil {
		return err
	}

	noVerify, _ := cmd.Flags().GetBool("no-verify")
	qualityMin, _ := cmd.Flags().GetInt("quality-min")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	client := &http.Client{}
	set := sources.New(a.cfg.Sources, client)
	metrics := observability.NewMetrics("citeverify")

	p := &pipeline.Pipeline{
		Loader: &document.Loader{
			Converter:       conv,
			Client:          client,
			UserAgent:       a.cfg.Sources.UserAgent,
			DownloadTimeout: a.cfg.Sources.DownloadTimeout,
			Arxiv:           set.Arxiv,
		},
		SkipVerify: extractOnly || noVerify,
		Scorer:     score.New(),
		Metrics:    metrics,
		Log:        a.log,
		QualityMin: qualityMin,
		Progress:   cmd.ErrOrStderr(),
	}

	if !p.SkipVerify {
		store, err := a.openCache(ctx, cmd)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}
		p.Verifier = verify.New(
			verify.WithConfig(a.cfg.Verify),
			verify.WithSources(set),
			verify.WithCache(store),
			verify.WithLogger(a.log),
			verify.WithMetrics(metrics),
		)
	}

	rep, err := p.Run(ctx, input)
	if err != nil {
		return err
	}
	if err := report.Write(cmd.OutOrStdout(), rep, format); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}
	return nil
}
