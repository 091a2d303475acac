package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/courtvision/internal/adapters/outbound/balldontlie"
	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/process"
	"github.com/charleschow/courtvision/internal/telemetry"
)

func main() {
	seasons := flag.String("seasons", "", "comma-separated starting years, e.g. 2023,2024")
	daysBack := flag.Int("days-back", 3, "with no -seasons: days of results to refresh")
	daysAhead := flag.Int("days-ahead", 7, "with no -seasons: days of schedule to fetch")
	flag.Parse()

	cfg, st := process.Boot("fetch_games")
	defer st.Close()

	ctx, cancel := process.SignalContext()
	defer cancel()

	var q balldontlie.Query
	if *seasons != "" {
		for _, s := range strings.Split(*seasons, ",") {
			y, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				fmt.Fprintf(os.Stderr, "bad season %q\n", s)
				os.Exit(1)
			}
			q.Seasons = append(q.Seasons, y)
		}
	} else {
		today := nba.Day(time.Now())
		q.StartDate = today.AddDate(0, 0, -*daysBack)
		q.EndDate = today.AddDate(0, 0, *daysAhead)
	}

	client := balldontlie.NewClient(cfg.BallDontLieBaseURL, cfg.BallDontLieAPIKey)
	games, err := client.FetchGames(ctx, q)
	if err != nil {
		// Keep whatever pages arrived before the failure.
		telemetry.Warnf("fetch_games: %v", err)
	}
	if len(games) == 0 {
		os.Exit(1)
	}

	n, err := st.UpsertGames(context.Background(), games)
	if err != nil {
		telemetry.Errorf("fetch_games: store: %v", err)
		os.Exit(1)
	}

	byStatus := make(map[nba.Status]int)
	for _, g := range games {
		byStatus[g.Status]++
	}
	fmt.Printf("Stored %s games  final=%d  in_progress=%d  scheduled=%d\n",
		humanize.Comma(int64(n)), byStatus[nba.StatusFinal], byStatus[nba.StatusInProgress], byStatus[nba.StatusScheduled])
}
