package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/courtvision/internal/core/features"
	"github.com/charleschow/courtvision/internal/core/learn"
	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/core/predict"
	"github.com/charleschow/courtvision/internal/process"
	"github.com/charleschow/courtvision/internal/telemetry"
)

func main() {
	kindFlag := flag.String("model", "ridge", "regressor: ridge or gbr")
	minSeason := flag.Int("min-season", 0, "first season to train on (default MIN_SEASON)")
	out := flag.String("out", "", "artifact path (default MODEL_PATH)")
	independent := flag.Bool("independent-seasons", false, "build rows per season without Elo carry-over")
	flag.Parse()

	cfg, st := process.Boot("train")
	defer st.Close()
	if *minSeason == 0 {
		*minSeason = cfg.MinSeason
	}
	if *out == "" {
		*out = cfg.ModelPath
	}

	kind, err := learn.ParseKind(*kindFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := process.SignalContext()
	defer cancel()

	res, err := process.Replay(ctx, st, process.ReplayOptions{MinSeason: *minSeason, Independent: *independent})
	if err != nil {
		telemetry.Errorf("train: %v", err)
		os.Exit(1)
	}
	telemetry.Infof("train: %s rows from %s completed games",
		humanize.Comma(int64(len(res.Rows))), humanize.Comma(int64(res.Completed)))

	X, spread, total := learn.Dataset(res.Rows)
	art, err := learn.Train(X, spread, total, learn.DefaultConfig(kind))
	if errors.Is(err, learn.ErrTooFewRows) {
		telemetry.Errorf("train: %v; load more history first", err)
		os.Exit(1)
	}
	if err != nil {
		telemetry.Errorf("train: %v", err)
		os.Exit(1)
	}

	if err := learn.Save(*out, art); err != nil {
		telemetry.Errorf("train: %v", err)
		os.Exit(1)
	}

	size := "?"
	if fi, err := os.Stat(*out); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}

	r := art.Report
	fmt.Printf("Model %s (%s)  saved to %s [%s]\n", art.Version, art.Kind, *out, size)
	fmt.Printf("Rows: %s train / %s test\n\n", humanize.Comma(int64(r.TrainRows)), humanize.Comma(int64(r.TestRows)))

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "target\tMAE\tRMSE\tR2\tCV MAE (+/- 2sd)")
	fmt.Fprintf(w, "spread\t%.2f\t%.2f\t%.3f\t%.2f (+/- %.2f)\n",
		r.Spread.MAE, r.Spread.RMSE, r.Spread.R2, r.SpreadCV.MeanAE, 2*r.SpreadCV.StdAE)
	fmt.Fprintf(w, "total\t%.2f\t%.2f\t%.3f\t%.2f (+/- %.2f)\n",
		r.Total.MAE, r.Total.RMSE, r.Total.R2, r.TotalCV.MeanAE, 2*r.TotalCV.StdAE)
	w.Flush()

	if b := art.Spread.Boosted; b != nil {
		printImportances(b.Importances)
	}
	checkPrediction(art)
}

// checkPrediction runs the fresh artifact on two identical league-average
// sides, so the line shows the model's home-court edge.
func checkPrediction(art *learn.Artifact) {
	even := func(abbr string) nba.Team {
		return nba.Team{Abbr: abbr, Wins: 41, Losses: 41, HomeWins: 24, HomeLosses: 17, AwayWins: 17, AwayLosses: 24,
			PPG: nba.LeaguePoints, PAPG: nba.LeaguePoints}
	}
	p, err := learn.NewPredictor(learn.Preloaded(art)).Predict(predict.Input{
		Home: even("HOM"), Away: even("AWY"), Date: time.Now(),
		PreGame: &nba.PreGame{HomeRestDays: 2, AwayRestDays: 2},
	})
	if err != nil {
		telemetry.Warnf("train: check prediction failed: %v", err)
		return
	}
	fmt.Printf("\nEven matchup: home %d-%d away, spread %+.0f, home win %.0f%%\n",
		p.HomeScore, p.AwayScore, p.Spread, p.HomeWinProb*100)
}

func printImportances(imp []float64) {
	idx := make([]int, len(imp))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return imp[idx[a]] > imp[idx[b]] })

	fmt.Println("\nSpread feature importances:")
	for _, i := range idx[:min(10, len(idx))] {
		fmt.Printf("  %-22s %.3f\n", features.Names[i], imp[i])
	}
}
