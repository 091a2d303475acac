package nba

import "time"

const (
	InitialElo       = 1500.0
	HomeEloAdvantage = 100.0
	HomeCourtPoints  = 3.5

	// League-average anchors used whenever a team has no history.
	LeagueRating = 114.0
	LeaguePace   = 100.0
	LeaguePoints = 114.0
)

// Team is the denormalized season-to-date view of a franchise.
type Team struct {
	Abbr   string
	Name   string
	Season int

	Wins       int
	Losses     int
	HomeWins   int
	HomeLosses int
	AwayWins   int
	AwayLosses int

	Elo       float64
	OffRating float64
	DefRating float64
	Pace      float64

	Offense FourFactors // own
	Defense FourFactors // allowed to opponents

	Streak     int
	HomeStreak int
	AwayStreak int

	Last10Wins   int
	Last10Losses int

	SOS       float64
	AvgOppElo float64

	PointsTrend  float64
	DefenseTrend float64

	LastGameDate time.Time

	VsAboveWins   int
	VsAboveLosses int
	VsBelowWins   int
	VsBelowLosses int

	PPG     float64
	PAPG    float64
	PPGL10  float64
	PAPGL10 float64
}

func (t Team) GamesPlayed() int { return t.Wins + t.Losses }

func (t Team) WinPct() float64 { return pct(t.Wins, t.Losses) }

func (t Team) HomeWinPct() float64 { return pct(t.HomeWins, t.HomeLosses) }

func (t Team) AwayWinPct() float64 { return pct(t.AwayWins, t.AwayLosses) }

// Ratings returns offensive rating, defensive rating and pace with league
// averages substituted for unset values.
func (t Team) Ratings() (off, def, pace float64) {
	off, def, pace = t.OffRating, t.DefRating, t.Pace
	if off <= 0 {
		off = LeagueRating
	}
	if def <= 0 {
		def = LeagueRating
	}
	if pace <= 0 {
		pace = LeaguePace
	}
	return off, def, pace
}

func (t Team) NetRating() float64 {
	off, def, _ := t.Ratings()
	return off - def
}

// Factors returns the team's offensive and allowed Four Factors, estimated
// from its ratings when they were never supplied.
func (t Team) Factors() (off, def FourFactors) {
	ortg, drtg, _ := t.Ratings()
	off, def = t.Offense, t.Defense
	if off.IsZero() {
		off = EstimateFourFactors(ortg)
	}
	if def.IsZero() {
		def = EstimateFourFactors(drtg)
	}
	return off, def
}

func pct(w, l int) float64 {
	if w+l == 0 {
		return 0.5
	}
	return float64(w) / float64(w+l)
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
