package elo

import (
	"math"

	"github.com/charleschow/courtvision/internal/core/nba"
)

const (
	K = 20.0

	minMultiplier = 1.0
	maxMultiplier = 2.5
)

// Rated is anything carrying a mutable Elo rating.
type Rated interface {
	Rating() float64
	AdjustRating(delta float64)
}

// Expected is the probability that a side rated ra beats one rated rb.
func Expected(ra, rb float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (rb-ra)/400.0))
}

// HomeWinProb applies home-court Elo before the expectation.
func HomeWinProb(homeElo, awayElo float64) float64 {
	return Expected(homeElo+nba.HomeEloAdvantage, awayElo)
}

// MOVMultiplier scales K by ln(margin+1), damped by the winner's pre-game
// rating edge so blowouts of weak opponents earn less.
func MOVMultiplier(margin int, winnerEdge float64) float64 {
	if margin < 0 {
		margin = -margin
	}
	m := math.Log(float64(margin)+1) * 2.2 / (winnerEdge*0.001 + 2.2)
	return clamp(m, minMultiplier, maxMultiplier)
}

// Update moves both ratings after a completed game and returns the delta
// credited to the winner. The loser receives exactly -delta.
func Update(winner, loser Rated, winnerIsHome bool, margin int) float64 {
	w, l := winner.Rating(), loser.Rating()
	if winnerIsHome {
		w += nba.HomeEloAdvantage
	} else {
		l += nba.HomeEloAdvantage
	}

	delta := K * MOVMultiplier(margin, w-l) * (1 - Expected(w, l))
	winner.AdjustRating(delta)
	loser.AdjustRating(-delta)
	return delta
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
