package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/courtvision/internal/core/features"
	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/process"
	"github.com/charleschow/courtvision/internal/telemetry"
)

func main() {
	minSeason := flag.Int("min-season", 0, "first season to replay (default MIN_SEASON)")
	independent := flag.Bool("independent-seasons", false, "replay each season separately and concurrently")
	top := flag.Int("top", 10, "teams to show in the Elo table")
	dry := flag.Bool("dry-run", false, "do not write results back")
	flag.Parse()

	cfg, st := process.Boot("replay")
	defer st.Close()
	if *minSeason == 0 {
		*minSeason = cfg.MinSeason
	}

	ctx, cancel := process.SignalContext()
	defer cancel()

	pred, err := process.NewPredictor(cfg)
	if err != nil {
		telemetry.Errorf("replay: %v", err)
		os.Exit(1)
	}

	start := time.Now()
	res, err := process.Replay(ctx, st, process.ReplayOptions{
		MinSeason:   *minSeason,
		Predictor:   pred,
		Independent: *independent,
		Persist:     !*dry,
	})
	if err != nil {
		telemetry.Errorf("replay: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Replayed %s games in %s  completed=%s  predicted=%d  rows=%s\n",
		humanize.Comma(int64(len(res.Games))), time.Since(start).Round(time.Millisecond),
		humanize.Comma(int64(res.Completed)), res.Predicted, humanize.Comma(int64(len(res.Rows))))

	printSkips(res)
	printElo(latest(res.Teams), *top)
	printUpcoming(res.Games)

	m := telemetry.Metrics
	fmt.Printf("\npredictions=%d  fallbacks=%d  predict p50=%s p99=%s\n",
		m.Predictions.Value(), m.FallbackPredictions.Value(), m.PredictLatency.P50(), m.PredictLatency.P99())
}

func printSkips(res features.Result) {
	counts := res.SkipCounts()
	if len(counts) == 0 {
		return
	}
	reasons := make([]string, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	fmt.Println("\nSkipped:")
	for _, r := range reasons {
		fmt.Printf("  %-15s %d\n", r, counts[features.SkipReason(r)])
	}
}

// latest keeps each franchise's most recent season summary.
func latest(all []nba.Team) []nba.Team {
	byAbbr := make(map[string]nba.Team)
	for _, t := range all {
		if cur, ok := byAbbr[t.Abbr]; !ok || t.Season >= cur.Season {
			byAbbr[t.Abbr] = t
		}
	}
	out := make([]nba.Team, 0, len(byAbbr))
	for _, t := range byAbbr {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Elo > out[j].Elo })
	return out
}

func printElo(teams []nba.Team, n int) {
	if len(teams) == 0 {
		return
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tteam\tseason\telo\trecord\tnet\tstreak\tl10\tsos")
	for i, t := range teams[:min(n, len(teams))] {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.0f\t%d-%d\t%+.1f\t%+d\t%d-%d\t%.3f\n",
			i+1, t.Abbr, t.Season, t.Elo, t.Wins, t.Losses, t.NetRating(), t.Streak,
			t.Last10Wins, t.Last10Losses, t.SOS)
	}
	w.Flush()
}

func printUpcoming(games []nba.Game) {
	var up []nba.Game
	for _, g := range games {
		if !g.Completed() && g.Prediction != nil {
			up = append(up, g)
		}
	}
	if len(up) == 0 {
		return
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "date\tmatchup\thome%\tconf\tspread\tscore\tsource\tmarket")
	for _, g := range up {
		p := g.Prediction
		market := "-"
		if g.Market != nil {
			market = fmt.Sprintf("%+.1f / %.1f", g.Market.Spread, g.Market.Total)
		}
		fmt.Fprintf(w, "%s\t%s @ %s\t%.1f\t%.0f\t%+.1f\t%d-%d\t%s\t%s\n",
			g.Date.Format("2006-01-02"), g.Away, g.Home, p.HomeWinPct(), p.Confidence, p.Spread,
			p.HomeScore, p.AwayScore, p.Source, market)
	}
	w.Flush()
}
