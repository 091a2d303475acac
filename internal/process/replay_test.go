package process

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/courtvision/internal/config"
	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/events"
	"github.com/charleschow/courtvision/internal/store"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func seed(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	games := []nba.Game{
		{ID: "1", Season: 2022, Date: day(2023, 3, 1), Home: "BOS", Away: "NYK", HomeScore: 110, AwayScore: 100, Status: nba.StatusFinal},
		{ID: "2", Season: 2023, Date: day(2023, 10, 25), Home: "BOS", Away: "NYK", HomeScore: 104, AwayScore: 108, Status: nba.StatusFinal},
		{ID: "3", Season: 2023, Date: day(2023, 10, 27), Home: "NYK", Away: "BOS", HomeScore: 99, AwayScore: 112, Status: nba.StatusFinal},
		{ID: "4", Season: 2023, Date: day(2023, 10, 29), Home: "BOS", Away: "NYK", Status: nba.StatusScheduled},
		{ID: "5", Season: 2023, Date: day(2023, 10, 29), Home: "XYZ", Away: "NYK", Status: nba.StatusScheduled},
	}
	_, err = st.UpsertGames(context.Background(), games)
	require.NoError(t, err)
	return st
}

func TestReplayPersistsAndFallsBack(t *testing.T) {
	st := seed(t)
	p, err := NewPredictor(&config.Config{ModelPath: filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)

	res, err := Replay(context.Background(), st, ReplayOptions{Predictor: p, Persist: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Completed)
	assert.Equal(t, 1, res.Predicted)
	assert.Len(t, res.Skipped, 1)

	recent, err := st.RecentGames(context.Background(), 10)
	require.NoError(t, err)
	var upcoming *nba.Game
	for i := range recent {
		if recent[i].ID == "4" {
			upcoming = &recent[i]
		}
	}
	require.NotNil(t, upcoming)
	require.NotNil(t, upcoming.Prediction)
	assert.Equal(t, nba.SourceHeuristic, upcoming.Prediction.Source)
	require.NotNil(t, upcoming.PreGame)

	stored, err := st.LoadTeams(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestReplayIndependentMatchesSeasonFloor(t *testing.T) {
	st := seed(t)
	seq, err := Replay(context.Background(), st, ReplayOptions{MinSeason: 2023})
	require.NoError(t, err)
	ind, err := Replay(context.Background(), st, ReplayOptions{Independent: true})
	require.NoError(t, err)

	// The 2023 partition of an independent replay starts from scratch, like
	// a sequential replay that never saw 2022.
	var indRows int
	for _, r := range ind.Rows {
		if r.Season == 2023 {
			indRows++
		}
	}
	assert.Equal(t, len(seq.Rows), indRows)
}

func TestPublishEmitsUpcomingAndSummary(t *testing.T) {
	st := seed(t)
	p, err := NewPredictor(&config.Config{})
	require.NoError(t, err)
	res, err := Replay(context.Background(), st, ReplayOptions{Predictor: p})
	require.NoError(t, err)

	bus := events.NewBus()
	var preds []events.PredictionEvent
	var summary events.ReplaySummary
	bus.Subscribe(events.EventPrediction, func(e events.Event) error {
		preds = append(preds, e.Payload.(events.PredictionEvent))
		return nil
	})
	bus.Subscribe(events.EventReplay, func(e events.Event) error {
		summary = e.Payload.(events.ReplaySummary)
		return nil
	})

	n := Publish(bus, res, time.Second)
	assert.Equal(t, 1, n)
	require.Len(t, preds, 1)
	assert.Equal(t, "BOS", preds[0].Home)
	assert.InDelta(t, 0.5, preds[0].HomeWinProb, 0.35)
	assert.Equal(t, 3, summary.Completed)
	assert.Equal(t, 1, summary.Skipped["unknown_team"])
}
