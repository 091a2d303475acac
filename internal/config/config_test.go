package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NBA_DB_PATH", "/tmp/x.db")
	t.Setenv("MIN_SEASON", "2021")
	t.Setenv("FEED_REFRESH_SEC", "60")
	t.Setenv("FEED_PORT", "not-a-number")

	cfg := Load()
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 2021, cfg.MinSeason)
	assert.Equal(t, time.Minute, cfg.FeedRefresh)
	assert.Equal(t, 8766, cfg.FeedPort)
	assert.Equal(t, "fanduel", cfg.OddsBookmaker)
}

func TestLoadWeights(t *testing.T) {
	w, err := LoadWeights("")
	require.NoError(t, err)
	assert.Equal(t, 0.30, w.Components["four_factors"])

	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("components:\n  elo: 1.0\n"), 0o644))
	_, err = LoadWeights(path)
	assert.ErrorContains(t, err, "missing component")

	_, err = LoadWeights(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read weights")
}
