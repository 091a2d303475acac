package predict

import (
	"errors"
	"fmt"
	"time"

	"github.com/charleschow/courtvision/internal/core/nba"
)

// ErrModelUnavailable is returned by predictors that depend on a trained
// artifact which is missing or unusable. Fallback treats it as a routing
// signal rather than a failure.
var ErrModelUnavailable = errors.New("model unavailable")

var ErrInvalidInput = errors.New("invalid prediction input")

// Input is everything a predictor may look at for one matchup. Home and Away
// are the teams' season-to-date records as of the game; PreGame is the
// frozen snapshot when the game has been through the feature builder.
type Input struct {
	Home    nba.Team
	Away    nba.Team
	Date    time.Time
	PreGame *nba.PreGame
}

func (in Input) Validate() error {
	if in.Home.Abbr == "" || in.Away.Abbr == "" {
		return fmt.Errorf("%w: empty team", ErrInvalidInput)
	}
	if in.Home.Abbr == in.Away.Abbr {
		return fmt.Errorf("%w: %s plays itself", ErrInvalidInput, in.Home.Abbr)
	}
	return nil
}

// Schedule returns the rest and fatigue context, from the snapshot when
// present and otherwise from each team's last game date.
func (in Input) Schedule() (homeRest, awayRest int, homeB2B, awayB2B, home3in4, away3in4 bool) {
	if pg := in.PreGame; pg != nil {
		return pg.HomeRestDays, pg.AwayRestDays, pg.HomeB2B, pg.AwayB2B, pg.Home3in4, pg.Away3in4
	}
	homeRest, homeB2B = restFrom(in.Home.LastGameDate, in.Date)
	awayRest, awayB2B = restFrom(in.Away.LastGameDate, in.Date)
	return homeRest, awayRest, homeB2B, awayB2B, false, false
}

func restFrom(last, date time.Time) (int, bool) {
	if last.IsZero() || date.IsZero() {
		return 3, false
	}
	d := nba.DaysBetween(last, date)
	return int(Clamp(float64(d), 1, 7)), d == 1
}

// Streaks prefers the snapshot's frozen streaks.
func (in Input) Streaks() (home, away int) {
	if in.PreGame != nil {
		return in.PreGame.HomeStreak, in.PreGame.AwayStreak
	}
	return in.Home.Streak, in.Away.Streak
}

func (in Input) H2H() (homeWins, awayWins int) {
	if in.PreGame != nil {
		return in.PreGame.HomeH2HWins, in.PreGame.AwayH2HWins
	}
	return 0, 0
}

type Predictor interface {
	Name() string
	Predict(in Input) (nba.Prediction, error)
}
