package features

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/core/predict/heuristic"
)

var teamsUnderTest = []string{"ATL", "BOS", "CHI", "DAL", "DEN", "LAL"}

func start() time.Time { return time.Date(2023, 10, 24, 0, 0, 0, 0, time.UTC) }

// season builds a round-robin slate of completed games, every team playing
// roughly every other day.
func season(seed int64, days int, year int) []nba.Game {
	rng := rand.New(rand.NewSource(seed))
	var games []nba.Game
	n := len(teamsUnderTest)
	for d := 0; d < days; d++ {
		date := start().AddDate(year-2023, 0, d*2+rng.Intn(2))
		perm := rng.Perm(n)
		for i := 0; i+1 < n; i += 2 {
			home, away := teamsUnderTest[perm[i]], teamsUnderTest[perm[i+1]]
			hs, as := 95+rng.Intn(35), 95+rng.Intn(35)
			if hs == as {
				hs++
			}
			games = append(games, nba.Game{
				ID:     fmt.Sprintf("%d-%d-%d", year, d, i),
				Season: year,
				Date:   date,
				Home:   home, Away: away,
				HomeScore: hs, AwayScore: as,
				Status: nba.StatusFinal,
			})
		}
	}
	return games
}

func TestPrefixReplayReproducesSnapshots(t *testing.T) {
	games := season(1, 30, 2023)
	b := NewBuilder(WithKnownTeams(teamsUnderTest))
	full := b.Run(games)
	require.Len(t, full.Games, len(games))

	cutoff := start().AddDate(0, 0, 31)
	var prefix []nba.Game
	for _, g := range games {
		if g.Date.Before(cutoff) {
			prefix = append(prefix, g)
		}
	}
	partial := b.Run(prefix)

	byID := make(map[string]*nba.PreGame)
	for _, g := range full.Games {
		byID[g.ID] = g.PreGame
	}
	require.NotEmpty(t, partial.Games)
	for _, g := range partial.Games {
		assert.Equal(t, byID[g.ID], g.PreGame, g.ID)
	}
}

func TestReplayIgnoresInputOrder(t *testing.T) {
	games := season(2, 20, 2023)
	shuffled := make([]nba.Game, len(games))
	copy(shuffled, games)
	rand.New(rand.NewSource(9)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	a := NewBuilder().Run(games)
	b := NewBuilder().Run(shuffled)
	assert.Equal(t, a.Teams, b.Teams)
	for i := 1; i < len(b.Games); i++ {
		assert.False(t, b.Games[i].Date.Before(b.Games[i-1].Date))
	}
}

func TestSnapshotPrecedesUpdate(t *testing.T) {
	d := start()
	games := []nba.Game{
		{ID: "1", Season: 2023, Date: d, Home: "BOS", Away: "ATL", HomeScore: 120, AwayScore: 100, Status: nba.StatusFinal},
		{ID: "2", Season: 2023, Date: d.AddDate(0, 0, 1), Home: "ATL", Away: "BOS", HomeScore: 101, AwayScore: 99, Status: nba.StatusFinal},
	}
	res := NewBuilder().Run(games)
	require.Len(t, res.Games, 2)

	first := res.Games[0].PreGame
	assert.Equal(t, nba.InitialElo, first.HomeElo)
	assert.Equal(t, nba.InitialElo, first.AwayElo)
	assert.Equal(t, 0, first.HomeStreak)
	assert.Equal(t, 3, first.HomeRestDays)
	assert.Zero(t, first.HomeH2HWins+first.AwayH2HWins)

	second := res.Games[1].PreGame
	assert.Less(t, second.HomeElo, nba.InitialElo) // ATL lost game 1
	assert.Greater(t, second.AwayElo, nba.InitialElo)
	assert.Equal(t, -1, second.HomeStreak)
	assert.Equal(t, 1, second.AwayStreak)
	assert.True(t, second.HomeB2B)
	assert.True(t, second.AwayB2B)
	assert.Equal(t, 0, second.HomeH2HWins)
	assert.Equal(t, 1, second.AwayH2HWins)

	// Only the second game has history on both sides.
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "2", res.Rows[0].GameID)
	assert.Equal(t, 2.0, res.Rows[0].Spread)
	assert.Equal(t, 200.0, res.Rows[0].Total)
	assert.Len(t, res.Rows[0].Features, Dim)
}

func TestEloIsConservedAcrossPass(t *testing.T) {
	res := NewBuilder().Run(season(3, 40, 2023))
	sum := 0.0
	for _, tm := range res.Teams {
		sum += tm.Elo
	}
	assert.InDelta(t, nba.InitialElo*float64(len(teamsUnderTest)), sum, 1e-6)
}

func TestBadRecordsAreSkipped(t *testing.T) {
	d := start()
	games := []nba.Game{
		{ID: "ok", Date: d, Home: "BOS", Away: "ATL", HomeScore: 110, AwayScore: 100, Status: nba.StatusFinal},
		{ID: "unknown", Date: d, Home: "XYZ", Away: "ATL", HomeScore: 110, AwayScore: 100, Status: nba.StatusFinal},
		{ID: "noscore", Date: d, Home: "CHI", Away: "DAL", Status: nba.StatusFinal},
		{ID: "tie", Date: d, Home: "DEN", Away: "LAL", HomeScore: 100, AwayScore: 100, Status: nba.StatusFinal},
		{ID: "nodate", Home: "DEN", Away: "LAL", HomeScore: 100, AwayScore: 90, Status: nba.StatusFinal},
		{ID: "empty", Date: d, Home: "", Away: "LAL"},
	}
	res := NewBuilder(WithKnownTeams(teamsUnderTest)).Run(games)

	require.Len(t, res.Games, 1)
	assert.Equal(t, "ok", res.Games[0].ID)
	assert.Equal(t, 1, res.Completed)
	assert.Equal(t, map[SkipReason]int{
		SkipUnknownTeam:  1,
		SkipMissingScore: 1,
		SkipTiedScore:    1,
		SkipBadDate:      1,
		SkipEmptyTeam:    1,
	}, res.SkipCounts())
	// Skipped teams are never read or written.
	for _, tm := range res.Teams {
		assert.Contains(t, []string{"BOS", "ATL"}, tm.Abbr)
	}
}

func TestScheduledGamesArePredicted(t *testing.T) {
	games := season(4, 20, 2023)
	last := games[len(games)-1].Date
	games = append(games,
		nba.Game{ID: "s1", Season: 2023, Date: last.AddDate(0, 0, 2), Home: "BOS", Away: "LAL", Status: nba.StatusScheduled},
		nba.Game{ID: "s2", Season: 2023, Date: last.AddDate(0, 0, 2), Home: "DEN", Away: "CHI", Status: nba.StatusScheduled},
	)
	res := NewBuilder(WithPredictor(heuristic.NewDefault())).Run(games)

	assert.Equal(t, 2, res.Predicted)
	for _, g := range res.Games {
		if g.Completed() {
			assert.Nil(t, g.Prediction)
			continue
		}
		require.NotNil(t, g.Prediction, g.ID)
		assert.Equal(t, nba.SourceHeuristic, g.Prediction.Source)
		assert.Equal(t, float64(g.Prediction.HomeScore-g.Prediction.AwayScore), g.Prediction.Spread)
	}
}

func TestBacktestPredictsCompletedGames(t *testing.T) {
	res := NewBuilder(WithPredictor(heuristic.NewDefault()), WithBacktest()).Run(season(5, 5, 2023))
	assert.Equal(t, res.Completed, res.Predicted)
}

func TestSeasonRolloverKeepsElo(t *testing.T) {
	games := append(season(6, 20, 2023), season(7, 20, 2024)...)
	res := NewBuilder().Run(games)

	var firstOf2024 *nba.Game
	for i := range res.Games {
		if res.Games[i].Season == 2024 {
			firstOf2024 = &res.Games[i]
			break
		}
	}
	require.NotNil(t, firstOf2024)
	assert.Equal(t, 0, firstOf2024.PreGame.HomeStreak)
	assert.Zero(t, firstOf2024.PreGame.HomeH2HWins+firstOf2024.PreGame.AwayH2HWins)
	assert.Equal(t, 3, firstOf2024.PreGame.HomeRestDays)
	assert.NotEqual(t, nba.InitialElo, firstOf2024.PreGame.HomeElo)
}

func TestReplayIndependentMatchesSequential(t *testing.T) {
	games := append(season(8, 15, 2022), season(9, 15, 2023)...)
	seasons, parts := PartitionBySeason(games)
	assert.Equal(t, []int{2022, 2023}, seasons)

	b := NewBuilder()
	results, err := ReplayIndependent(context.Background(), b, parts)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for i, part := range parts {
		assert.Equal(t, b.Run(part).Teams, results[i].Teams)
	}
	merged := Merge(results)
	assert.Equal(t, len(games), merged.Completed)
}

func TestReplayIndependentHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReplayIndependent(ctx, NewBuilder(), [][]nba.Game{season(10, 2, 2023)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVectorDefaults(t *testing.T) {
	v := Vector(nba.Team{}, nba.Team{}, nba.PreGame{HomeRestDays: 3, AwayRestDays: 1})
	require.Len(t, v, len(Names))
	assert.Equal(t, 0.5, v[0])
	assert.Equal(t, nba.LeaguePoints, v[3])
	assert.Equal(t, 2.0, v[15])
	assert.Equal(t, 0.5, v[18])
	assert.Equal(t, nba.LeaguePoints, v[19])
	assert.Equal(t, nba.LeaguePoints, v[20])
}

func TestVectorAveragesCombinedScoring(t *testing.T) {
	home := nba.Team{PPGL10: 120, PAPGL10: 110}
	away := nba.Team{PPG: 104, PAPG: 116}
	v := Vector(home, away, nba.PreGame{})
	assert.Equal(t, 112.0, v[19])
	assert.Equal(t, 113.0, v[20])
}
