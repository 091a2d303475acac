package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/process"
	"github.com/charleschow/courtvision/internal/telemetry"
)

// Scores historical pre-game predictions against results. Every completed
// game is predicted from the state the builder held before tip-off.

type calibrationResult struct {
	games   int
	correct int
	brier   float64

	spreadMAE float64
	totalMAE  float64

	marketGames     int
	marketSpreadMAE float64 // market spread vs actual margin
	modelVsMarket   float64 // same games, model spread vs actual margin

	bySource map[nba.Source]int
	buckets  []calBucket
}

type calBucket struct {
	label      string
	count      int
	meanPred   float64
	actualFreq float64
}

type bucketAccum struct {
	sumPred float64
	count   int
	wins    int
}

func main() {
	minSeason := flag.Int("min-season", 0, "first season to score (default MIN_SEASON)")
	fromSeason := flag.Int("from-season", 0, "only score games from this season on; earlier seasons still warm up state")
	flag.Parse()

	cfg, st := process.Boot("calibrate")
	defer st.Close()
	if *minSeason == 0 {
		*minSeason = cfg.MinSeason
	}

	ctx, cancel := process.SignalContext()
	defer cancel()

	pred, err := process.NewPredictor(cfg)
	if err != nil {
		telemetry.Errorf("calibrate: %v", err)
		os.Exit(1)
	}
	res, err := process.Replay(ctx, st, process.ReplayOptions{MinSeason: *minSeason, Predictor: pred, Backtest: true})
	if err != nil {
		telemetry.Errorf("calibrate: %v", err)
		os.Exit(1)
	}

	var scored []nba.Game
	for _, g := range res.Games {
		if g.Season >= *fromSeason {
			scored = append(scored, g)
		}
	}

	r := calibrate(scored)
	if r.games == 0 {
		fmt.Println("(no completed games with predictions)")
		return
	}
	printResult(r)
}

func calibrate(games []nba.Game) calibrationResult {
	r := calibrationResult{bySource: make(map[nba.Source]int)}
	buckets := make([]bucketAccum, 10)

	var brierSum, spreadErr, totalErr, mktErr, modelMktErr float64
	for _, g := range games {
		p := g.Prediction
		if p == nil || !g.Completed() {
			continue
		}
		r.games++
		r.bySource[p.Source]++

		actual := 0.0
		if g.HomeWon() {
			actual = 1
		}
		if (p.HomeWinProb >= 0.5) == g.HomeWon() {
			r.correct++
		}
		brierSum += (p.HomeWinProb - actual) * (p.HomeWinProb - actual)
		addToBucket(buckets, p.HomeWinProb, actual)

		margin := float64(g.Margin())
		spreadErr += math.Abs(p.Spread - margin)
		totalErr += math.Abs(float64(p.Total() - g.Total()))

		if m := g.Market; m != nil && m.Spread != 0 {
			r.marketGames++
			mktErr += math.Abs(m.Spread - margin)
			modelMktErr += math.Abs(p.Spread - margin)
		}
	}
	if r.games == 0 {
		return r
	}

	n := float64(r.games)
	r.brier = brierSum / n
	r.spreadMAE = spreadErr / n
	r.totalMAE = totalErr / n
	if r.marketGames > 0 {
		r.marketSpreadMAE = mktErr / float64(r.marketGames)
		r.modelVsMarket = modelMktErr / float64(r.marketGames)
	}

	for i, b := range buckets {
		if b.count == 0 {
			continue
		}
		r.buckets = append(r.buckets, calBucket{
			label:      fmt.Sprintf("%d-%d%%", i*10, (i+1)*10),
			count:      b.count,
			meanPred:   b.sumPred / float64(b.count),
			actualFreq: float64(b.wins) / float64(b.count),
		})
	}
	return r
}

func addToBucket(buckets []bucketAccum, pred, actual float64) {
	idx := int(pred * 10)
	if idx >= 10 {
		idx = 9
	}
	if idx < 0 {
		idx = 0
	}
	buckets[idx].sumPred += pred
	buckets[idx].count++
	if actual > 0.5 {
		buckets[idx].wins++
	}
}

func printResult(r calibrationResult) {
	fmt.Printf("── %d completed games ──\n", r.games)
	sources := make([]string, 0, len(r.bySource))
	for s, c := range r.bySource {
		sources = append(sources, fmt.Sprintf("%s=%d", s, c))
	}
	sort.Strings(sources)
	fmt.Printf("  Sources:            %v\n", sources)
	fmt.Printf("  Straight-up:        %.1f%%\n", float64(r.correct)/float64(r.games)*100)
	fmt.Printf("  Brier score:        %.4f  (coin flip 0.2500)\n", r.brier)
	fmt.Printf("  Spread MAE:         %.2f pts\n", r.spreadMAE)
	fmt.Printf("  Total MAE:          %.2f pts\n", r.totalMAE)
	if r.marketGames > 0 {
		fmt.Printf("  Market spread MAE:  %.2f pts  (model %.2f on the same %d games)\n",
			r.marketSpreadMAE, r.modelVsMarket, r.marketGames)
	}
	fmt.Println()

	fmt.Println("  Calibration buckets (home win probability):")
	fmt.Printf("  %-10s %6s %8s %8s %8s\n", "Bucket", "Count", "MeanPred", "ActFreq", "Error")
	for _, b := range r.buckets {
		fmt.Printf("  %-10s %6d %8.3f %8.3f %+8.3f\n",
			b.label, b.count, b.meanPred, b.actualFreq, b.meanPred-b.actualFreq)
	}
	fmt.Println()

	if math.Abs(r.meanError()) > 0.02 {
		fmt.Println("  WARNING: mean home-probability bias exceeds 2%. Check the home-court weight.")
	}
}

// meanError is the count-weighted gap between predicted and observed home
// win rates.
func (r calibrationResult) meanError() float64 {
	var sum float64
	var n int
	for _, b := range r.buckets {
		sum += (b.meanPred - b.actualFreq) * float64(b.count)
		n += b.count
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
