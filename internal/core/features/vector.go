package features

import "github.com/charleschow/courtvision/internal/core/nba"

// Names is the learned model's input ordering. Artifacts record it and are
// rejected when it drifts.
var Names = []string{
	"home_win_pct", "away_win_pct", "win_pct_diff",
	"home_ppg_l10", "away_ppg_l10", "ppg_diff",
	"home_papg_l10", "away_papg_l10",
	"home_net_rating", "away_net_rating",
	"home_streak", "away_streak", "streak_diff",
	"home_rest_days", "away_rest_days", "rest_diff",
	"home_home_win_pct", "away_away_win_pct",
	"h2h_home_win_pct",
	"avg_total_ppg", "avg_total_papg",
}

var Dim = len(Names)

// Vector builds the learned model's input from season-to-date team records
// and the game's pre-game snapshot. Trailing-10 scoring falls back to
// season averages, then to the league average.
func Vector(home, away nba.Team, pg nba.PreGame) []float64 {
	hp, hpa := scoring(home)
	ap, apa := scoring(away)

	return []float64{
		home.WinPct(), away.WinPct(), home.WinPct() - away.WinPct(),
		hp, ap, hp - ap,
		hpa, apa,
		hp - hpa, ap - apa,
		float64(pg.HomeStreak), float64(pg.AwayStreak), float64(pg.HomeStreak - pg.AwayStreak),
		float64(pg.HomeRestDays), float64(pg.AwayRestDays), float64(pg.HomeRestDays - pg.AwayRestDays),
		home.HomeWinPct(), away.AwayWinPct(),
		pg.H2HHomeFraction(),
		(hp + ap) / 2, (hpa + apa) / 2,
	}
}

func scoring(t nba.Team) (ppg, papg float64) {
	ppg, papg = t.PPGL10, t.PAPGL10
	if ppg <= 0 {
		ppg = t.PPG
	}
	if papg <= 0 {
		papg = t.PAPG
	}
	if ppg <= 0 {
		ppg = nba.LeaguePoints
	}
	if papg <= 0 {
		papg = nba.LeaguePoints
	}
	return ppg, papg
}
