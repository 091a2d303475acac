package heuristic

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/core/predict"
)

var gameDay = time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

func TestZeroHistoryMatchupIsHomeCourtOnly(t *testing.T) {
	m := NewDefault()
	in := predict.Input{Home: nba.Team{Abbr: "AAA"}, Away: nba.Team{Abbr: "BBB"}, Date: gameDay}

	p, err := m.Predict(in)
	require.NoError(t, err)
	assert.InDelta(t, 0.54, p.HomeWinProb, 0.01)
	assert.Equal(t, 0.5, p.Components[FourFactors])
	assert.Equal(t, 0.5, p.Components[Schedule])
	assert.Equal(t, 0.5, p.Components[Streak])
	assert.Equal(t, 0.5, p.Components[HeadToHead])
	assert.Equal(t, 0.5, p.Components[Momentum])
	assert.Equal(t, 0.5, p.Components[StrengthOfSchedule])

	swapped, err := m.Predict(predict.Input{Home: in.Away, Away: in.Home, Date: gameDay})
	require.NoError(t, err)
	assert.InDelta(t, p.HomeWinProb, swapped.HomeWinProb, 1e-12)
	assert.Equal(t, nba.SourceHeuristic, p.Source)
}

func TestStrongRestedHomeSideIsFavoured(t *testing.T) {
	home := nba.Team{Abbr: "HOM", Wins: 10, Losses: 2, Elo: 1600, OffRating: 118, DefRating: 108}
	away := nba.Team{Abbr: "AWY", Wins: 4, Losses: 8, Elo: 1450, OffRating: 108, DefRating: 116}
	pg := &nba.PreGame{HomeRestDays: 2, AwayRestDays: 1, AwayB2B: true, HomeElo: 1600, AwayElo: 1450}

	p, err := NewDefault().Predict(predict.Input{Home: home, Away: away, Date: gameDay, PreGame: pg})
	require.NoError(t, err)
	assert.Greater(t, p.HomeWinProb, 0.65)
	assert.Greater(t, p.Spread, 0.0)
	assert.Greater(t, p.HomeScore, p.AwayScore)
	assert.Equal(t, float64(p.HomeScore-p.AwayScore), p.Spread)
}

func TestRestedSideWinsScheduleComponent(t *testing.T) {
	twin := nba.Team{Wins: 20, Losses: 20, Elo: 1500, OffRating: 114, DefRating: 114}
	home, away := twin, twin
	home.Abbr, away.Abbr = "HOM", "AWY"

	m := NewDefault()
	awayTired, err := m.Predict(predict.Input{Home: home, Away: away, Date: gameDay,
		PreGame: &nba.PreGame{HomeRestDays: 3, AwayRestDays: 1, AwayB2B: true}})
	require.NoError(t, err)
	assert.Greater(t, awayTired.Components[Schedule], 0.5)

	homeTired, err := m.Predict(predict.Input{Home: home, Away: away, Date: gameDay,
		PreGame: &nba.PreGame{HomeRestDays: 1, AwayRestDays: 3, HomeB2B: true}})
	require.NoError(t, err)
	assert.Less(t, homeTired.Components[Schedule], 0.5)
	assert.Less(t, homeTired.HomeWinProb, awayTired.HomeWinProb)
	assert.Less(t, homeTired.Total(), 240)
}

func TestOutputsStayInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := NewDefault()
	randTeam := func(abbr string) nba.Team {
		w := rng.Intn(60)
		return nba.Team{
			Abbr: abbr, Wins: w, Losses: rng.Intn(60),
			Elo:       1100 + rng.Float64()*900,
			OffRating: 90 + rng.Float64()*45,
			DefRating: 90 + rng.Float64()*45,
			Pace:      90 + rng.Float64()*20,
			SOS:       rng.Float64(),
			Streak:    rng.Intn(31) - 15,
			PointsTrend:  rng.Float64()*30 - 15,
			DefenseTrend: rng.Float64()*30 - 15,
		}
	}
	for i := 0; i < 2000; i++ {
		pg := &nba.PreGame{
			HomeRestDays: 1 + rng.Intn(7), AwayRestDays: 1 + rng.Intn(7),
			HomeB2B: rng.Intn(2) == 0, AwayB2B: rng.Intn(2) == 0,
			Home3in4: rng.Intn(3) == 0, Away3in4: rng.Intn(3) == 0,
			HomeH2HWins: rng.Intn(4), AwayH2HWins: rng.Intn(4),
			HomeStreak: rng.Intn(21) - 10, AwayStreak: rng.Intn(21) - 10,
		}
		if i%2 == 0 {
			pg = nil
		}
		p, err := m.Predict(predict.Input{Home: randTeam("HOM"), Away: randTeam("AWY"), Date: gameDay, PreGame: pg})
		require.NoError(t, err)

		assert.GreaterOrEqual(t, p.HomeWinProb, 0.15)
		assert.LessOrEqual(t, p.HomeWinProb, 0.85)
		assert.GreaterOrEqual(t, p.Confidence, 40.0)
		assert.LessOrEqual(t, p.Confidence, 92.0)
		assert.GreaterOrEqual(t, p.Spread, -16.0)
		assert.LessOrEqual(t, p.Spread, 16.0)
		assert.Equal(t, float64(p.HomeScore-p.AwayScore), p.Spread)
		assert.GreaterOrEqual(t, p.AwayScore, 95)
		assert.LessOrEqual(t, p.HomeScore, 130)
	}
}

func TestHeadToHeadTrustGrowsWithMeetings(t *testing.T) {
	in := func(h, a int) predict.Input {
		return predict.Input{PreGame: &nba.PreGame{HomeH2HWins: h, AwayH2HWins: a}}
	}
	assert.Equal(t, 0.5, h2hProb(in(0, 0)))
	assert.InDelta(t, 0.625, h2hProb(in(1, 0)), 1e-12)
	assert.InDelta(t, 1.0, h2hProb(in(4, 0)), 1e-12)
	assert.Greater(t, h2hProb(in(2, 0)), h2hProb(in(1, 0)))
}

func TestThinHistoryLowersConfidence(t *testing.T) {
	seasoned := nba.Team{Abbr: "HOM", Wins: 30, Losses: 10, Elo: 1650, OffRating: 118, DefRating: 110}
	rookie := seasoned
	rookie.Wins, rookie.Losses = 3, 1
	opp := nba.Team{Abbr: "AWY", Wins: 15, Losses: 25, Elo: 1450, OffRating: 110, DefRating: 116}

	m := NewDefault()
	a, err := m.Predict(predict.Input{Home: seasoned, Away: opp, Date: gameDay})
	require.NoError(t, err)
	b, err := m.Predict(predict.Input{Home: rookie, Away: opp, Date: gameDay})
	require.NoError(t, err)
	assert.Greater(t, a.Confidence, b.Confidence)
}

func TestPredictRejectsEmptyTeam(t *testing.T) {
	_, err := NewDefault().Predict(predict.Input{Home: nba.Team{Abbr: "HOM"}})
	assert.ErrorIs(t, err, predict.ErrInvalidInput)
}

func TestSpreadCreditsHalfTheNetRatingGap(t *testing.T) {
	m := NewDefault()
	in := predict.Input{
		Home: nba.Team{Abbr: "HOM", OffRating: 116, DefRating: 108},
		Away: nba.Team{Abbr: "AWY"},
		Date: gameDay,
	}
	assert.InDelta(t, 8.0/2+3.5, m.spread(in, 0), 1e-9)

	// A 40-point gap would be a 43.5-point line unhalved; halved it still clamps.
	in.Home.OffRating, in.Home.DefRating = 130, 90
	assert.InDelta(t, 16.0, m.spread(in, 0), 1e-9)
}
