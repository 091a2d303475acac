package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charleschow/courtvision/internal/config"
	"github.com/charleschow/courtvision/internal/core/teams"
	"github.com/charleschow/courtvision/internal/events"
	"github.com/charleschow/courtvision/internal/fanout"
	"github.com/charleschow/courtvision/internal/process"
	"github.com/charleschow/courtvision/internal/telemetry"
)

func main() {
	tail := flag.String("tail", "", "subscribe to a running feed at host:port and print events")
	team := flag.String("team", "", "with -tail: only this team's games (abbreviation or name)")
	refresh := flag.Duration("refresh", 0, "replay interval (default FEED_REFRESH_SEC)")
	flag.Parse()

	ctx, cancel := process.SignalContext()
	defer cancel()

	if *tail != "" {
		cfg := config.Load()
		telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
		runTail(ctx, *tail, *team)
		return
	}

	cfg, st := process.Boot("feed")
	defer st.Close()
	if *refresh <= 0 {
		*refresh = cfg.FeedRefresh
	}

	pred, err := process.NewPredictor(cfg)
	if err != nil {
		telemetry.Errorf("feed: %v", err)
		os.Exit(1)
	}

	bus := events.NewBus()
	srv := fanout.NewServer(bus)
	go func() {
		if err := srv.ListenAndServe(ctx, cfg.FeedHost, cfg.FeedPort); err != nil {
			telemetry.Errorf("feed: %v", err)
			cancel()
		}
	}()

	cycle := func() {
		start := time.Now()
		res, err := process.Replay(ctx, st, process.ReplayOptions{MinSeason: cfg.MinSeason, Predictor: pred, Persist: true})
		if err != nil {
			telemetry.Warnf("feed: replay failed: %v", err)
			return
		}
		n := process.Publish(bus, res, time.Since(start))
		telemetry.Infof("feed: published %d predictions to %d subscribers (%s)",
			n, srv.Subscribers(), time.Since(start).Round(time.Millisecond))
	}

	cycle()
	ticker := time.NewTicker(*refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			telemetry.Infof("feed: shutdown  predictions=%d  fallbacks=%d",
				telemetry.Metrics.Predictions.Value(), telemetry.Metrics.FallbackPredictions.Value())
			return
		case <-ticker.C:
			cycle()
		}
	}
}

func runTail(ctx context.Context, addr, team string) {
	if team != "" {
		abbr, ok := teams.Resolve(team)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown team %q\n", team)
			os.Exit(1)
		}
		team = abbr
	}

	bus := events.NewBus()
	bus.SubscribeTeam(events.EventPrediction, team, func(e events.Event) error {
		p, ok := e.Payload.(events.PredictionEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", e.Payload)
		}
		market := ""
		if p.MarketSpread != 0 {
			market = fmt.Sprintf("  mkt %+.1f", p.MarketSpread)
		}
		fmt.Printf("%s  %s @ %s  home %.1f%%  conf %.0f  spread %+.1f  %d-%d  [%s]%s\n",
			p.Date.Format("2006-01-02"), p.Away, p.Home, p.HomeWinProb*100, p.Confidence,
			p.Spread, p.HomeScore, p.AwayScore, p.Source, market)
		return nil
	})
	bus.Subscribe(events.EventReplay, func(e events.Event) error {
		s, ok := e.Payload.(events.ReplaySummary)
		if !ok {
			return fmt.Errorf("unexpected payload %T", e.Payload)
		}
		fmt.Printf("── replay: completed=%d predicted=%d rows=%d skipped=%v (%s)\n",
			s.Completed, s.Predicted, s.Rows, s.Skipped, s.Elapsed.Round(time.Millisecond))
		return nil
	})

	fanout.NewClient(addr, team, bus).ConnectWithRetry(ctx)
}

