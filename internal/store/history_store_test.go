package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/courtvision/internal/core/nba"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "nba.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func d(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }

func TestUpsertAndLoadGames(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	n, err := s.UpsertGames(ctx, []nba.Game{
		{ID: "2", Season: 2024, Date: d(3), Home: "BOS", Away: "NYK", Status: nba.StatusScheduled},
		{ID: "1", Season: 2024, Date: d(1), Home: "LAL", Away: "DEN", HomeScore: 101, AwayScore: 99, Status: nba.StatusFinal},
		{ID: "0", Season: 2022, Date: d(1).AddDate(-2, 0, 0), Home: "LAL", Away: "DEN", HomeScore: 90, AwayScore: 99, Status: nba.StatusFinal},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Same identity: score and status refresh in place.
	_, err = s.UpsertGames(ctx, []nba.Game{
		{ID: "2", Season: 2024, Date: d(3), Home: "BOS", Away: "NYK", HomeScore: 112, AwayScore: 104, Status: nba.StatusFinal},
	})
	require.NoError(t, err)

	games, err := s.LoadGames(ctx, 2023)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "1", games[0].ID)
	assert.Equal(t, d(1), games[0].Date)
	assert.Equal(t, nba.StatusFinal, games[1].Status)
	assert.Equal(t, 112, games[1].HomeScore)
	assert.Nil(t, games[1].PreGame)
	assert.Nil(t, games[1].Prediction)

	c, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Games: 3, Final: 3}, c)
}

func TestSaveReplayAndMarketLine(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	g := nba.Game{ID: "9", Season: 2024, Date: d(5), Home: "MIA", Away: "ORL", Status: nba.StatusScheduled}
	_, err := s.UpsertGames(ctx, []nba.Game{g})
	require.NoError(t, err)

	g.PreGame = &nba.PreGame{HomeRestDays: 2, AwayRestDays: 1, AwayB2B: true, HomeElo: 1530, AwayElo: 1490, Features: []float64{1, 2}}
	g.Prediction = &nba.Prediction{HomeWinProb: 0.62, Confidence: 58, Spread: 4, HomeScore: 112, AwayScore: 108, Source: nba.SourceHeuristic}
	ghost := nba.Game{Date: d(6), Home: "X", Away: "Y"}

	n, err := s.SaveReplay(ctx, []nba.Game{g, ghost})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := s.UpdateMarketLine(ctx, d(5), "MIA", "ORL", nba.MarketLine{Bookmaker: "fanduel", Spread: 3.5, Total: 219.5, HomeML: -160, AwayML: 135})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.UpdateMarketLine(ctx, d(5), "ORL", "MIA", nba.MarketLine{})
	require.NoError(t, err)
	assert.False(t, ok)

	recent, err := s.RecentGames(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	got := recent[0]
	assert.Equal(t, g.PreGame, got.PreGame)
	require.NotNil(t, got.Prediction)
	assert.InDelta(t, 0.62, got.Prediction.HomeWinProb, 1e-9)
	assert.Equal(t, 112, got.Prediction.HomeScore)
	assert.Equal(t, nba.SourceHeuristic, got.Prediction.Source)
	require.NotNil(t, got.Market)
	assert.Equal(t, -160, got.Market.HomeML)
}

func TestSaveAndLoadTeams(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.SaveTeams(ctx, []nba.Team{
		{Abbr: "BOS", Wins: 30, Losses: 10, Elo: 1650, LastGameDate: d(4)},
		{Abbr: "DET", Wins: 8, Losses: 32, Elo: 1380},
	}))
	require.NoError(t, s.SaveTeams(ctx, []nba.Team{{Abbr: "DET", Wins: 9, Losses: 32, Elo: 1390}}))

	teams, err := s.LoadTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "BOS", teams[0].Abbr)
	assert.True(t, d(4).Equal(teams[0].LastGameDate))
	assert.Equal(t, 9, teams[1].Wins)
}

func TestCorruptPregameKeepsGame(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	_, err := s.UpsertGames(ctx, []nba.Game{
		{ID: "1", Season: 2024, Date: d(1), Home: "LAL", Away: "DEN", HomeScore: 101, AwayScore: 99, Status: nba.StatusFinal},
		{ID: "2", Season: 2024, Date: d(2), Home: "BOS", Away: "NYK", HomeScore: 110, AwayScore: 100, Status: nba.StatusFinal},
	})
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, `UPDATE games SET pregame = '{"home":' WHERE id = '1'`)
	require.NoError(t, err)

	games, err := s.LoadGames(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "1", games[0].ID)
	assert.Nil(t, games[0].PreGame)
	assert.Equal(t, 101, games[0].HomeScore)
}
