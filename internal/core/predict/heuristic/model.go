// Package heuristic is the always-available matchup model: nine independent
// win-probability signals blended by fixed weights.
package heuristic

import (
	"math"

	"github.com/charleschow/courtvision/internal/core/elo"
	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/core/predict"
)

const (
	minProb       = 0.15
	maxProb       = 0.85
	minConfidence = 40.0
	maxConfidence = 92.0
	maxSpread     = 16.0

	minTotal = 215.0
	maxTotal = 240.0
	minScore = 95
	maxScore = 130

	b2bPoints      = 1.5
	threeIn4Points = 1.0
	restPointsPer  = 0.35
	maxRestPoints  = 2.0

	fullHistoryGames = 20
)

type Model struct {
	w Weights
}

func New(w Weights) *Model { return &Model{w: w} }

// NewDefault uses the embedded weights.
func NewDefault() *Model { return New(DefaultWeights()) }

func (m *Model) Name() string { return string(nba.SourceHeuristic) }

func (m *Model) Predict(in predict.Input) (nba.Prediction, error) {
	if err := in.Validate(); err != nil {
		return nba.Prediction{}, err
	}

	sched := m.schedulePoints(in)
	comps := map[string]float64{
		FourFactors:        fourFactorsProb(in.Home, in.Away),
		Elo:                eloProb(in),
		NetRating:          m.netRatingProb(in.Home, in.Away),
		HomeCourt:          m.w.HomeCourtProb,
		Schedule:           predict.Clamp(0.5+sched*0.03, 0.3, 0.7),
		Streak:             streakProb(in),
		HeadToHead:         h2hProb(in),
		Momentum:           momentumProb(in.Home, in.Away),
		StrengthOfSchedule: sosProb(in.Home, in.Away),
	}

	prob := 0.0
	for _, name := range Components {
		prob += m.w.Components[name] * comps[name]
	}
	prob = predict.Clamp(prob, minProb, maxProb)

	spread := m.spread(in, sched)
	total := m.total(in)
	home, away, reported := predict.Scores(total, spread, minScore, maxScore)

	return nba.Prediction{
		HomeWinProb: prob,
		Confidence:  confidence(prob, comps, in),
		Spread:      reported,
		HomeScore:   home,
		AwayScore:   away,
		Source:      nba.SourceHeuristic,
		Components:  comps,
	}, nil
}

// fourFactorsProb compares each offense's factor score plus what the other
// defense allows.
func fourFactorsProb(home, away nba.Team) float64 {
	hOff, hDef := home.Factors()
	aOff, aDef := away.Factors()
	edge := (hOff.Score() + aDef.Score()) - (aOff.Score() + hDef.Score())
	return predict.Logistic(60 * edge)
}

func eloProb(in predict.Input) float64 {
	return elo.HomeWinProb(ratings(in))
}

// ratings prefers the frozen pre-game Elo over the live team record.
func ratings(in predict.Input) (h, a float64) {
	h, a = in.Home.Elo, in.Away.Elo
	if in.PreGame != nil && in.PreGame.HomeElo > 0 {
		h, a = in.PreGame.HomeElo, in.PreGame.AwayElo
	}
	if h <= 0 {
		h = nba.InitialElo
	}
	if a <= 0 {
		a = nba.InitialElo
	}
	return h, a
}

func (m *Model) netRatingProb(home, away nba.Team) float64 {
	return predict.Logistic((home.NetRating() - away.NetRating() + m.w.HomeCourtPoints) * 0.08)
}

// schedulePoints is the home side's rest edge in points.
func (m *Model) schedulePoints(in predict.Input) float64 {
	hr, ar, hb, ab, h34, a34 := in.Schedule()
	pts := predict.Clamp(float64(hr-ar)*restPointsPer, -maxRestPoints, maxRestPoints)
	if hb {
		pts -= b2bPoints
	}
	if ab {
		pts += b2bPoints
	}
	if h34 {
		pts -= threeIn4Points
	}
	if a34 {
		pts += threeIn4Points
	}
	return pts
}

func streakDiff(in predict.Input) float64 {
	h, a := in.Streaks()
	return float64(h - a)
}

func streakProb(in predict.Input) float64 {
	return 0.5 + 0.1*math.Tanh(streakDiff(in)/5)
}

func h2hProb(in predict.Input) float64 {
	hw, aw := in.H2H()
	n := hw + aw
	if n == 0 {
		return 0.5
	}
	frac := float64(hw) / float64(n)
	return 0.5 + (frac-0.5)*math.Min(float64(n)/4, 1)
}

func momentumProb(home, away nba.Team) float64 {
	h := home.PointsTrend - home.DefenseTrend
	a := away.PointsTrend - away.DefenseTrend
	return predict.Logistic(0.1 * (h - a))
}

func sosProb(home, away nba.Team) float64 {
	return predict.Clamp(0.5+(sos(home)-sos(away))*0.5, 0.4, 0.6)
}

func sos(t nba.Team) float64 {
	if t.SOS <= 0 {
		return 0.5
	}
	return t.SOS
}

func (m *Model) spread(in predict.Input, schedPts float64) float64 {
	_, _, hPace := in.Home.Ratings()
	_, _, aPace := in.Away.Ratings()
	pace := (hPace + aPace) / 2

	s := (in.Home.NetRating()-in.Away.NetRating())/2*(pace/nba.LeaguePace) +
		m.w.HomeCourtPoints + schedPts + 0.15*predict.Clamp(streakDiff(in), -5, 5)
	return predict.Clamp(s, -maxSpread, maxSpread)
}

func (m *Model) total(in predict.Input) float64 {
	hOff, hDef, hPace := in.Home.Ratings()
	aOff, aDef, aPace := in.Away.Ratings()
	pace := (hPace + aPace) / 2
	eff := (hOff + aDef + aOff + hDef) / (4 * nba.LeagueRating)

	t := predict.Clamp(m.w.BaselineTotal*(pace/nba.LeaguePace)*eff, minTotal, maxTotal)
	_, _, hb, ab, h34, a34 := in.Schedule()
	for _, tired := range []bool{hb, ab} {
		if tired {
			t -= b2bPoints
		}
	}
	for _, tired := range []bool{h34, a34} {
		if tired {
			t -= threeIn4Points
		}
	}
	return t
}

// confidence rewards distance from a coin flip, agreement among the
// components and a wide Elo gap, then discounts thin histories.
func confidence(prob float64, comps map[string]float64, in predict.Input) float64 {
	mean := 0.0
	for _, v := range comps {
		mean += v
	}
	mean /= float64(len(comps))
	variance := 0.0
	for _, v := range comps {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(comps))

	c := 50 + math.Abs(prob-0.5)*2*40
	c += math.Max(0, 10-variance*100)
	h, a := ratings(in)
	c += math.Min(15, math.Abs(h-a)/50)

	games := min(in.Home.GamesPlayed(), in.Away.GamesPlayed())
	if games < fullHistoryGames {
		c *= 0.7 + 0.3*float64(games)/fullHistoryGames
	}
	return predict.Clamp(c, minConfidence, maxConfidence)
}
