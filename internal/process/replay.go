// Package process wires the store, the feature builder and the predictors
// into the replay cycle shared by the command-line tools.
package process

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/charleschow/courtvision/internal/config"
	"github.com/charleschow/courtvision/internal/core/features"
	"github.com/charleschow/courtvision/internal/core/learn"
	"github.com/charleschow/courtvision/internal/core/predict"
	"github.com/charleschow/courtvision/internal/core/predict/heuristic"
	"github.com/charleschow/courtvision/internal/core/teams"
	"github.com/charleschow/courtvision/internal/events"
	"github.com/charleschow/courtvision/internal/store"
	"github.com/charleschow/courtvision/internal/telemetry"
)

// Boot loads configuration, configures logging and opens the history
// store. Failures are fatal: every tool needs all three.
func Boot(name string) (*config.Config, *store.Store) {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Debugf("%s: db=%s model=%s", name, cfg.DBPath, cfg.ModelPath)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		telemetry.Errorf("%s: open store: %v", name, err)
		os.Exit(1)
	}
	return cfg, st
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// NewPredictor builds the learned model with heuristic fallback. A missing
// artifact is not an error here; the first prediction discovers it.
func NewPredictor(cfg *config.Config) (predict.Predictor, error) {
	w, err := config.LoadWeights(cfg.WeightsPath)
	if err != nil {
		return nil, fmt.Errorf("heuristic weights: %w", err)
	}
	heur := heuristic.New(w)
	if cfg.ModelPath == "" {
		return predict.NewFallback(nil, heur), nil
	}
	return predict.NewFallback(learn.NewPredictor(learn.NewHandle(cfg.ModelPath)), heur), nil
}

type ReplayOptions struct {
	MinSeason   int
	Predictor   predict.Predictor
	Independent bool // replay seasons concurrently, without Elo carry-over
	Backtest    bool // also predict completed games
	Persist     bool // write snapshots, predictions and team summaries back
}

// Replay loads stored games and folds them chronologically.
func Replay(ctx context.Context, st *store.Store, opts ReplayOptions) (features.Result, error) {
	games, err := st.LoadGames(ctx, opts.MinSeason)
	if err != nil {
		return features.Result{}, err
	}

	bopts := []features.Option{features.WithKnownTeams(teams.Abbrs())}
	if opts.Predictor != nil {
		bopts = append(bopts, features.WithPredictor(opts.Predictor))
	}
	if opts.Backtest {
		bopts = append(bopts, features.WithBacktest())
	}
	b := features.NewBuilder(bopts...)

	var res features.Result
	if opts.Independent {
		seasons, parts := features.PartitionBySeason(games)
		telemetry.Infof("replay: %d games across %d seasons (independent)", len(games), len(seasons))
		results, err := features.ReplayIndependent(ctx, b, parts)
		if err != nil {
			return features.Result{}, err
		}
		res = features.Merge(results)
	} else {
		telemetry.Infof("replay: %d games", len(games))
		res = b.Run(games)
	}

	if opts.Persist {
		n, err := st.SaveReplay(ctx, res.Games)
		if err != nil {
			return res, fmt.Errorf("save replay: %w", err)
		}
		if err := st.SaveTeams(ctx, res.Teams); err != nil {
			return res, fmt.Errorf("save teams: %w", err)
		}
		telemetry.Debugf("replay: persisted %d games, %d team summaries", n, len(res.Teams))
	}
	return res, nil
}

// Publish emits one prediction event per upcoming game, then a summary.
func Publish(bus *events.Bus, res features.Result, elapsed time.Duration) int {
	now := time.Now()
	n, failed := 0, 0
	for _, g := range res.Games {
		p := g.Prediction
		if p == nil || g.Completed() {
			continue
		}
		pe := events.PredictionEvent{
			GameID:       g.ID,
			Date:         g.Date,
			Home:         g.Home,
			Away:         g.Away,
			HomeWinProb:  p.HomeWinProb,
			Confidence:   p.Confidence,
			Spread:       p.Spread,
			HomeScore:    p.HomeScore,
			AwayScore:    p.AwayScore,
			Source:       string(p.Source),
			ModelVersion: p.ModelVersion,
		}
		if m := g.Market; m != nil {
			pe.MarketSpread, pe.MarketTotal = m.Spread, m.Total
		}
		failed += bus.Publish(events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventPrediction,
			GameID:    g.Key(),
			Teams:     []string{g.Home, g.Away},
			Timestamp: now,
			Payload:   pe,
		})
		n++
	}

	skipped := make(map[string]int)
	for reason, c := range res.SkipCounts() {
		skipped[string(reason)] = c
	}
	failed += bus.Publish(events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventReplay,
		Timestamp: now,
		Payload: events.ReplaySummary{
			Completed: res.Completed,
			Predicted: res.Predicted,
			Skipped:   skipped,
			Rows:      len(res.Rows),
			Elapsed:   elapsed,
		},
	})
	if failed > 0 {
		telemetry.Warnf("process: %d event deliveries failed", failed)
	}
	return n
}
