package learn

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/core/predict"
	"github.com/charleschow/courtvision/internal/core/predict/heuristic"
)

func input() predict.Input {
	return predict.Input{
		Home: nba.Team{Abbr: "BOS", Wins: 30, Losses: 10, PPG: 118, PAPG: 108, PPGL10: 120, PAPGL10: 107, HomeWins: 18, HomeLosses: 3},
		Away: nba.Team{Abbr: "DET", Wins: 10, Losses: 30, PPG: 108, PAPG: 117, PPGL10: 106, PAPGL10: 118, AwayWins: 4, AwayLosses: 16},
		Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMissingArtifactIsUnavailable(t *testing.T) {
	p := NewPredictor(NewHandle(filepath.Join(t.TempDir(), "absent.json")))
	_, err := p.Predict(input())
	assert.ErrorIs(t, err, predict.ErrModelUnavailable)

	_, err = NewPredictor(NewHandle("")).Predict(input())
	assert.ErrorIs(t, err, predict.ErrModelUnavailable)
}

func TestFallbackMatchesHeuristicWhenArtifactMissing(t *testing.T) {
	h := heuristic.NewDefault()
	fb := predict.NewFallback(NewPredictor(NewHandle(filepath.Join(t.TempDir(), "absent.json"))), h)

	got, err := fb.Predict(input())
	require.NoError(t, err)
	want, err := h.Predict(input())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, nba.SourceHeuristic, got.Source)
}

func TestLearnedPredictionShape(t *testing.T) {
	X, spread, total := synthetic(200, 11)
	art, err := Train(X, spread, total, DefaultConfig(KindRidge))
	require.NoError(t, err)

	p, err := NewPredictor(Preloaded(art)).Predict(input())
	require.NoError(t, err)
	assert.Equal(t, nba.SourceLearned, p.Source)
	assert.Equal(t, art.Version, p.ModelVersion)
	assert.Equal(t, float64(p.HomeScore-p.AwayScore), p.Spread)
	assert.GreaterOrEqual(t, p.Spread, -16.0)
	assert.LessOrEqual(t, p.Spread, 16.0)
	assert.GreaterOrEqual(t, p.AwayScore, 95)
	assert.LessOrEqual(t, p.HomeScore, 135)
	assert.GreaterOrEqual(t, p.Confidence, 40.0)
	assert.LessOrEqual(t, p.Confidence, 90.0)
	if p.Spread > 0 {
		assert.Greater(t, p.HomeWinProb, 0.5)
	}
}

func TestHandleLoadsOnce(t *testing.T) {
	X, spread, total := synthetic(100, 12)
	art, err := Train(X, spread, total, DefaultConfig(KindRidge))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, Save(path, art))

	h := NewHandle(path)
	first, err := h.Artifact()
	require.NoError(t, err)
	second, err := h.Artifact()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestDamagedArtifactFallsBackToHeuristic(t *testing.T) {
	art := constantArtifact(3, 220)
	art.Kind = KindBoosted
	art.Spread = Regressor{Boosted: &Boosted{LearningRate: 0.1, Trees: []Tree{{Nodes: []Node{{Feature: 99, Left: 1, Right: 2}}}}}}
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, Save(path, art))

	h := heuristic.NewDefault()
	got, err := predict.NewFallback(NewPredictor(NewHandle(path)), h).Predict(input())
	require.NoError(t, err)
	want, err := h.Predict(input())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPanickingModelReportsUnavailable(t *testing.T) {
	// Preloaded skips Validate, so the bad tree reaches Predict.
	art := constantArtifact(3, 220)
	art.Spread = Regressor{Boosted: &Boosted{Trees: []Tree{{}}}}

	_, err := NewPredictor(Preloaded(art)).Predict(input())
	assert.ErrorIs(t, err, predict.ErrModelUnavailable)
}

func TestConfidenceScalesWithCombinedGames(t *testing.T) {
	in := input()
	in.Home.Wins, in.Home.Losses = 12, 8
	in.Away.Wins, in.Away.Losses = 8, 12

	p, err := NewPredictor(Preloaded(constantArtifact(10, 220))).Predict(in)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.Spread)
	assert.Equal(t, 115, p.HomeScore)
	assert.InDelta(t, 60.0, p.Confidence, 1e-9)

	in.Home.Wins, in.Home.Losses = 6, 4
	in.Away.Wins, in.Away.Losses = 5, 5
	p, err = NewPredictor(Preloaded(constantArtifact(10, 220))).Predict(in)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, p.Confidence, 1e-9) // 60 * 20/40 = 30, floored
}
