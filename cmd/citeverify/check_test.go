// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citeverify/pkg/types"
)

const paper = `Verifying Citations in Machine Learning Papers
Abstract
We study citations.
References
[1] A. Smith. A study of deep things. In Proceedings of NeurIPS, 2017.
[2] B. Jones. Another study of things. Journal of Things, 2019.
`

// offlineApp returns an app with every source disabled and the cache
// pointed at a Redis server that is no longer listening.
func offlineApp(t *testing.T, logs *bytes.Buffer) *app {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := types.DefaultConfig()
	cfg.Sources.CrossRef.Enabled = false
	cfg.Sources.Arxiv.Enabled = false
	cfg.Sources.SemanticScholar.Enabled = false
	cfg.Sources.OpenAlex.Enabled = false
	cfg.Cache.Backend = types.CacheRedis
	cfg.Cache.RedisAddr = addr
	return &app{cfg: cfg, log: zerolog.New(logs)}
}

func newCheckCommand(out, progress *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().Bool("clear-cache", false, "")
	cmd.SetContext(context.Background())
	cmd.SetOut(out)
	cmd.SetErr(progress)
	return cmd
}

func TestCheckRunsWithoutReachableCache(t *testing.T) {
	var logs, out, progress bytes.Buffer
	prev := current
	current = offlineApp(t, &logs)
	t.Cleanup(func() { current = prev })

	input := filepath.Join(t.TempDir(), "paper.txt")
	require.NoError(t, os.WriteFile(input, []byte(paper), 0o644))

	require.NoError(t, runPipeline(newCheckCommand(&out, &progress), input, false))

	assert.Contains(t, out.String(), "2 citations: 0 verified, 0 partial, 2 unverified, 0 errors")
	assert.Equal(t, 2, strings.Count(progress.String(), "\n"))
	assert.Contains(t, logs.String(), "result cache unavailable")
}

func TestOpenCacheUnreachable(t *testing.T) {
	var logs, out, progress bytes.Buffer
	a := offlineApp(t, &logs)

	cmd := newCheckCommand(&out, &progress)
	store, err := a.openCache(cmd.Context(), cmd)
	require.NoError(t, err)
	assert.Nil(t, store)

	require.NoError(t, cmd.Flags().Set("clear-cache", "true"))
	_, err = a.openCache(cmd.Context(), cmd)
	assert.Error(t, err, "clearing an unreachable cache fails")

	a.cfg.Cache.Backend = "bogus"
	require.NoError(t, cmd.Flags().Set("clear-cache", "false"))
	_, err = a.openCache(cmd.Context(), cmd)
	assert.Error(t, err, "unknown backends are configuration errors")
}
