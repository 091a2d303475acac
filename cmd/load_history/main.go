package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/courtvision/internal/adapters/inbound/nbacsv"
	"github.com/charleschow/courtvision/internal/process"
	"github.com/charleschow/courtvision/internal/telemetry"
)

func main() {
	file := flag.String("file", "data/nba_games_2010_2024.csv", "team-game box score CSV")
	minSeason := flag.Int("min-season", 0, "first season to load (default MIN_SEASON)")
	noReplay := flag.Bool("no-replay", false, "skip the snapshot replay after loading")
	flag.Parse()

	cfg, st := process.Boot("load_history")
	defer st.Close()
	if *minSeason == 0 {
		*minSeason = cfg.MinSeason
	}

	f, err := os.Open(*file)
	if err != nil {
		telemetry.Errorf("load_history: %v", err)
		os.Exit(1)
	}
	defer f.Close()

	telemetry.Infof("Loading %s (seasons >= %d)", *file, *minSeason)
	res, err := nbacsv.Parse(f, *minSeason)
	if err != nil {
		telemetry.Errorf("load_history: parse: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	n, err := st.UpsertGames(ctx, res.Games)
	if err != nil {
		telemetry.Errorf("load_history: store: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Rows read:        %s\n", humanize.Comma(int64(res.Rows)))
	fmt.Printf("Before season:    %s\n", humanize.Comma(int64(res.Filtered)))
	fmt.Printf("Bad rows:         %s\n", humanize.Comma(int64(res.BadRows)))
	fmt.Printf("Incomplete games: %s\n", humanize.Comma(int64(res.Incomplete)))
	fmt.Printf("Games stored:     %s\n", humanize.Comma(int64(n)))

	if *noReplay {
		return
	}

	pred, err := process.NewPredictor(cfg)
	if err != nil {
		telemetry.Errorf("load_history: %v", err)
		os.Exit(1)
	}
	start := time.Now()
	rr, err := process.Replay(ctx, st, process.ReplayOptions{MinSeason: *minSeason, Predictor: pred, Persist: true})
	if err != nil {
		telemetry.Errorf("load_history: replay: %v", err)
		os.Exit(1)
	}
	fmt.Printf("Snapshots:        %s games, %d skipped (%s)\n",
		humanize.Comma(int64(len(rr.Games))), len(rr.Skipped), time.Since(start).Round(time.Millisecond))

	c, err := st.Counts(ctx)
	if err == nil {
		fmt.Printf("Total in store:   %s games (%s final)\n", humanize.Comma(int64(c.Games)), humanize.Comma(int64(c.Final)))
	}
}
