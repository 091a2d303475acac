package team

import (
	"time"

	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/core/ring"
)

const (
	formWindow     = 10
	scheduleWindow = 7
	minTrendGames  = 5

	defaultRestDays = 3
	maxRestDays     = 7

	// Share of the gap to InitialElo closed at a season boundary.
	seasonReversion = 0.25
)

// Result is one completed game from a single team's point of view.
type Result struct {
	OpponentWinPct float64
	OpponentElo    float64
	PointsFor      int
	PointsAgainst  int
	IsHome         bool
	Won            bool
	Date           time.Time
}

// State is the running season-to-date picture of one team. It is mutated
// only through RecordResult, AdjustRating and BeginSeason.
type State struct {
	Abbr   string
	Season int

	Wins, Losses         int
	HomeWins, HomeLosses int
	AwayWins, AwayLosses int

	Streak     int
	HomeStreak int
	AwayStreak int

	Elo float64

	VsAboveWins, VsAboveLosses int
	VsBelowWins, VsBelowLosses int

	results  *ring.Ring[bool]
	dates    *ring.Ring[time.Time]
	scored   *ring.Ring[int]
	allowed  *ring.Ring[int]
	lastGame time.Time

	oppWinPcts []float64
	oppElos    []float64

	pointsFor     int
	pointsAgainst int
}

func New(abbr string) *State {
	return &State{
		Abbr:    abbr,
		Elo:     nba.InitialElo,
		results: ring.New[bool](formWindow),
		dates:   ring.New[time.Time](scheduleWindow),
		scored:  ring.New[int](formWindow),
		allowed: ring.New[int](formWindow),
	}
}

// RecordResult folds one completed game into the state. Callers must
// deliver results in non-decreasing date order.
func (s *State) RecordResult(r Result) {
	day := nba.Day(r.Date)

	if r.Won {
		s.Wins++
	} else {
		s.Losses++
	}
	s.Streak = extend(s.Streak, r.Won)
	if r.IsHome {
		if r.Won {
			s.HomeWins++
		} else {
			s.HomeLosses++
		}
		s.HomeStreak = extend(s.HomeStreak, r.Won)
	} else {
		if r.Won {
			s.AwayWins++
		} else {
			s.AwayLosses++
		}
		s.AwayStreak = extend(s.AwayStreak, r.Won)
	}

	if r.OpponentWinPct >= 0.5 {
		if r.Won {
			s.VsAboveWins++
		} else {
			s.VsAboveLosses++
		}
	} else {
		if r.Won {
			s.VsBelowWins++
		} else {
			s.VsBelowLosses++
		}
	}

	s.results.Push(r.Won)
	s.dates.Push(day)
	s.scored.Push(r.PointsFor)
	s.allowed.Push(r.PointsAgainst)
	s.lastGame = day

	s.oppWinPcts = append(s.oppWinPcts, r.OpponentWinPct)
	s.oppElos = append(s.oppElos, r.OpponentElo)
	s.pointsFor += r.PointsFor
	s.pointsAgainst += r.PointsAgainst
}

func extend(streak int, won bool) int {
	switch {
	case won && streak >= 0:
		return streak + 1
	case won:
		return 1
	case streak <= 0:
		return streak - 1
	default:
		return -1
	}
}

// Rating and AdjustRating let the Elo updater work on any rated side.
func (s *State) Rating() float64 { return s.Elo }
func (s *State) AdjustRating(delta float64) { s.Elo += delta }

// BeginSeason clears everything except Elo, which regresses a quarter of
// the way back toward the initial rating.
func (s *State) BeginSeason(season int) {
	elo := s.Elo + (nba.InitialElo-s.Elo)*seasonReversion
	if s.Season == 0 {
		elo = s.Elo
	}
	fresh := New(s.Abbr)
	*s = *fresh
	s.Elo = elo
	s.Season = season
}

func (s *State) GamesPlayed() int { return s.Wins + s.Losses }

func (s *State) WinPct() float64 { return pct(s.Wins, s.Losses) }

func (s *State) HomeWinPct() float64 { return pct(s.HomeWins, s.HomeLosses) }

func (s *State) AwayWinPct() float64 { return pct(s.AwayWins, s.AwayLosses) }

func (s *State) LastGame() time.Time { return s.lastGame }

// RestDays is the number of calendar days since the previous game, floored
// at 1 and capped at 7. A team without a prior game is treated as rested.
func (s *State) RestDays(date time.Time) int {
	if s.lastGame.IsZero() {
		return defaultRestDays
	}
	return RestDaysBetween(s.lastGame, date)
}

// RestDaysBetween applies the rest-day floor and cap to two dates.
func RestDaysBetween(last, date time.Time) int {
	d := nba.DaysBetween(last, date)
	if d < 1 {
		return 1
	}
	if d > maxRestDays {
		return maxRestDays
	}
	return d
}

func (s *State) IsBackToBack(date time.Time) bool {
	return !s.lastGame.IsZero() && nba.DaysBetween(s.lastGame, date) == 1
}

// IsThreeInFour is true when two games already fall in the three days
// before date, making this the third game in four nights.
func (s *State) IsThreeInFour(date time.Time) bool {
	day := nba.Day(date)
	from := day.AddDate(0, 0, -3)
	n := 0
	for _, d := range s.dates.Items() {
		if !d.Before(from) && d.Before(day) {
			n++
		}
	}
	return n >= 2
}

func (s *State) StrengthOfSchedule() float64 { return meanOr(s.oppWinPcts, 0.5) }

func (s *State) AvgOpponentElo() float64 { return meanOr(s.oppElos, nba.InitialElo) }

// PointsTrend is the second-half minus first-half mean of recent scoring.
// Positive means the offense is improving.
func (s *State) PointsTrend() float64 { return trend(s.scored.Items()) }

// DefenseTrend is the same over points allowed. Negative means the defense
// is improving.
func (s *State) DefenseTrend() float64 { return trend(s.allowed.Items()) }

// Last10 returns wins and losses over the form window.
func (s *State) Last10() (w, l int) {
	for _, won := range s.results.Items() {
		if won {
			w++
		} else {
			l++
		}
	}
	return w, l
}

func (s *State) PPG() float64 {
	if s.GamesPlayed() == 0 {
		return nba.LeaguePoints
	}
	return float64(s.pointsFor) / float64(s.GamesPlayed())
}

func (s *State) PAPG() float64 {
	if s.GamesPlayed() == 0 {
		return nba.LeaguePoints
	}
	return float64(s.pointsAgainst) / float64(s.GamesPlayed())
}

// PPGL10 and PAPGL10 fall back to the season averages without recent games.
func (s *State) PPGL10() float64 { return meanIntsOr(s.scored.Items(), s.PPG()) }

func (s *State) PAPGL10() float64 { return meanIntsOr(s.allowed.Items(), s.PAPG()) }

// Summary renders the state as a denormalized team record. Ratings are
// season points per game at league pace and Four Factors are estimated.
func (s *State) Summary() nba.Team {
	l10w, l10l := s.Last10()
	t := nba.Team{
		Abbr:          s.Abbr,
		Season:        s.Season,
		Wins:          s.Wins,
		Losses:        s.Losses,
		HomeWins:      s.HomeWins,
		HomeLosses:    s.HomeLosses,
		AwayWins:      s.AwayWins,
		AwayLosses:    s.AwayLosses,
		Elo:           s.Elo,
		OffRating:     s.PPG(),
		DefRating:     s.PAPG(),
		Pace:          nba.LeaguePace,
		Streak:        s.Streak,
		HomeStreak:    s.HomeStreak,
		AwayStreak:    s.AwayStreak,
		Last10Wins:    l10w,
		Last10Losses:  l10l,
		SOS:           s.StrengthOfSchedule(),
		AvgOppElo:     s.AvgOpponentElo(),
		PointsTrend:   s.PointsTrend(),
		DefenseTrend:  s.DefenseTrend(),
		LastGameDate:  s.lastGame,
		VsAboveWins:   s.VsAboveWins,
		VsAboveLosses: s.VsAboveLosses,
		VsBelowWins:   s.VsBelowWins,
		VsBelowLosses: s.VsBelowLosses,
		PPG:           s.PPG(),
		PAPG:          s.PAPG(),
		PPGL10:        s.PPGL10(),
		PAPGL10:       s.PAPGL10(),
	}
	t.Offense = nba.EstimateFourFactors(t.OffRating)
	t.Defense = nba.EstimateFourFactors(t.DefRating)
	return t
}

func trend(xs []int) float64 {
	if len(xs) < minTrendGames {
		return 0
	}
	half := len(xs) / 2
	return meanIntsOr(xs[half:], 0) - meanIntsOr(xs[:half], 0)
}

func pct(w, l int) float64 {
	if w+l == 0 {
		return 0.5
	}
	return float64(w) / float64(w+l)
}

func meanOr(xs []float64, def float64) float64 {
	if len(xs) == 0 {
		return def
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func meanIntsOr(xs []int, def float64) float64 {
	if len(xs) == 0 {
		return def
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

