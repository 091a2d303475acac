// Package features replays game results in date order, freezing each game's
// pre-game context before the result is folded into league state.
package features

import (
	"sort"
	"time"

	"github.com/charleschow/courtvision/internal/core/elo"
	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/core/predict"
	"github.com/charleschow/courtvision/internal/core/state/league"
	"github.com/charleschow/courtvision/internal/core/state/team"
	"github.com/charleschow/courtvision/internal/telemetry"
)

type SkipReason string

const (
	SkipEmptyTeam    SkipReason = "empty_team"
	SkipUnknownTeam  SkipReason = "unknown_team"
	SkipBadDate      SkipReason = "bad_date"
	SkipSelfMatchup  SkipReason = "self_matchup"
	SkipMissingScore SkipReason = "missing_score"
	SkipTiedScore    SkipReason = "tied_score"
)

type Skip struct {
	GameID string
	Key    string
	Reason SkipReason
}

// TrainingRow is one completed game's pre-game vector with its outcomes.
type TrainingRow struct {
	GameID   string
	Season   int
	Date     time.Time
	Features []float64
	Spread   float64
	Total    float64
}

type Result struct {
	Games     []nba.Game // processed games in replay order
	Skipped   []Skip
	Rows      []TrainingRow
	Teams     []nba.Team
	Completed int
	Predicted int
	Failed    int // predictions the predictor refused
}

func (r Result) SkipCounts() map[SkipReason]int {
	out := make(map[SkipReason]int)
	for _, s := range r.Skipped {
		out[s.Reason]++
	}
	return out
}

type Builder struct {
	known     map[string]bool
	predictor predict.Predictor
	backtest  bool
}

type Option func(*Builder)

// WithKnownTeams restricts the replay to the given abbreviations. Without
// it any non-empty abbreviation is accepted.
func WithKnownTeams(abbrs []string) Option {
	return func(b *Builder) {
		b.known = make(map[string]bool, len(abbrs))
		for _, a := range abbrs {
			b.known[a] = true
		}
	}
}

// WithPredictor sets the model used for games without a result.
func WithPredictor(p predict.Predictor) Option {
	return func(b *Builder) { b.predictor = p }
}

// WithBacktest also predicts completed games from their pre-game state, so
// historical predictions can be scored against results.
func WithBacktest() Option {
	return func(b *Builder) { b.backtest = true }
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Run replays games from scratch. State lives only for the call, so a
// Builder may be reused. The input slice is not modified.
func (b *Builder) Run(games []nba.Game) Result {
	defer telemetry.Metrics.ReplayLatency.Since(time.Now())

	ordered := make([]nba.Game, len(games))
	copy(ordered, games)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	p := &pass{
		Builder: b,
		teams:   league.NewStore(),
		h2h:     league.NewHeadToHead(),
	}
	for _, g := range ordered {
		p.step(g)
	}

	for _, st := range p.teams.All() {
		p.res.Teams = append(p.res.Teams, st.Summary())
	}
	return p.res
}

type pass struct {
	*Builder
	teams *league.Store
	h2h   *league.HeadToHead
	res   Result
}

func (p *pass) skip(g nba.Game, reason SkipReason) {
	telemetry.L().Warn("skipping game", "id", g.ID, "game", g.Key(), "reason", string(reason))
	telemetry.Metrics.GamesSkipped.Inc()
	p.res.Skipped = append(p.res.Skipped, Skip{GameID: g.ID, Key: g.Key(), Reason: reason})
}

func (p *pass) validate(g nba.Game) (SkipReason, bool) {
	switch {
	case g.Home == "" || g.Away == "":
		return SkipEmptyTeam, false
	case p.known != nil && (!p.known[g.Home] || !p.known[g.Away]):
		return SkipUnknownTeam, false
	case g.Date.IsZero():
		return SkipBadDate, false
	case g.Home == g.Away:
		return SkipSelfMatchup, false
	case g.Completed() && !g.HasScore():
		return SkipMissingScore, false
	case g.Completed() && g.HomeScore == g.AwayScore:
		return SkipTiedScore, false
	}
	return "", true
}

func (p *pass) step(g nba.Game) {
	if reason, ok := p.validate(g); !ok {
		p.skip(g, reason)
		return
	}
	// validate has ruled out empty abbreviations.
	hs, _ := p.teams.ForSeason(g.Home, g.Season)
	as, _ := p.teams.ForSeason(g.Away, g.Season)

	pg := snapshot(hs, as, p.h2h, g)
	homeView, awayView := hs.Summary(), as.Summary()
	pg.Features = Vector(homeView, awayView, *pg)
	g.PreGame = pg

	if !g.Completed() || p.backtest {
		p.predict(&g, homeView, awayView)
	}
	if g.Completed() {
		if hs.GamesPlayed() > 0 && as.GamesPlayed() > 0 {
			p.res.Rows = append(p.res.Rows, TrainingRow{
				GameID:   g.ID,
				Season:   g.Season,
				Date:     g.Date,
				Features: pg.Features,
				Spread:   float64(g.Margin()),
				Total:    float64(g.Total()),
			})
			telemetry.Metrics.TrainingRows.Inc()
		}
		p.record(hs, as, g)
		p.res.Completed++
		telemetry.Metrics.GamesProcessed.Inc()
	}
	p.res.Games = append(p.res.Games, g)
}

// snapshot reads both teams and the matchup book without touching them.
func snapshot(hs, as *team.State, h2h *league.HeadToHead, g nba.Game) *nba.PreGame {
	hw, aw := h2h.Wins(g.Season, g.Home, g.Away)
	return &nba.PreGame{
		HomeRestDays: hs.RestDays(g.Date),
		AwayRestDays: as.RestDays(g.Date),
		HomeB2B:      hs.IsBackToBack(g.Date),
		AwayB2B:      as.IsBackToBack(g.Date),
		Home3in4:     hs.IsThreeInFour(g.Date),
		Away3in4:     as.IsThreeInFour(g.Date),
		HomeElo:      hs.Elo,
		AwayElo:      as.Elo,
		HomeStreak:   hs.Streak,
		AwayStreak:   as.Streak,
		HomeH2HWins:  hw,
		AwayH2HWins:  aw,
	}
}

func (p *pass) predict(g *nba.Game, home, away nba.Team) {
	if p.predictor == nil {
		return
	}
	pred, err := p.predictor.Predict(predict.Input{Home: home, Away: away, Date: g.Date, PreGame: g.PreGame})
	if err != nil {
		telemetry.Warnf("features: no prediction for %s: %v", g.Key(), err)
		p.res.Failed++
		return
	}
	g.Prediction = &pred
	p.res.Predicted++
}

// record applies the result: Elo first, then both teams' running state with
// each side seeing the other's pre-game record, then the matchup book.
func (p *pass) record(hs, as *team.State, g nba.Game) {
	homeWinPct, homeElo := hs.WinPct(), hs.Elo
	awayWinPct, awayElo := as.WinPct(), as.Elo

	homeWon := g.HomeWon()
	winner, loser := hs, as
	if !homeWon {
		winner, loser = as, hs
	}
	margin := g.Margin()
	if margin < 0 {
		margin = -margin
	}
	elo.Update(winner, loser, homeWon, margin)

	hs.RecordResult(team.Result{
		OpponentWinPct: awayWinPct,
		OpponentElo:    awayElo,
		PointsFor:      g.HomeScore,
		PointsAgainst:  g.AwayScore,
		IsHome:         true,
		Won:            homeWon,
		Date:           g.Date,
	})
	as.RecordResult(team.Result{
		OpponentWinPct: homeWinPct,
		OpponentElo:    homeElo,
		PointsFor:      g.AwayScore,
		PointsAgainst:  g.HomeScore,
		IsHome:         false,
		Won:            !homeWon,
		Date:           g.Date,
	})
	p.h2h.Record(g.Season, winner.Abbr, loser.Abbr)
}
