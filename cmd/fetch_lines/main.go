package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charleschow/courtvision/internal/adapters/outbound/oddsapi"
	"github.com/charleschow/courtvision/internal/core/odds"
	"github.com/charleschow/courtvision/internal/process"
	"github.com/charleschow/courtvision/internal/telemetry"
)

func main() {
	bookmaker := flag.String("bookmaker", "", "bookmaker key (default ODDS_BOOKMAKER)")
	dry := flag.Bool("dry-run", false, "print lines without storing them")
	flag.Parse()

	cfg, st := process.Boot("fetch_lines")
	defer st.Close()
	if *bookmaker == "" {
		*bookmaker = cfg.OddsBookmaker
	}
	if cfg.OddsAPIKey == "" {
		telemetry.Errorf("fetch_lines: ODDS_API_KEY is not set")
		os.Exit(1)
	}

	ctx, cancel := process.SignalContext()
	defer cancel()

	client := oddsapi.NewClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, *bookmaker)
	lines, err := client.FetchLines(ctx)
	if err != nil {
		telemetry.Errorf("fetch_lines: %v", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "date\tmatchup\tspread\ttotal\thome_ml\taway_ml\tfair_home\tvig\tstored")
	matched := 0
	for _, l := range lines {
		stored := "-"
		if !*dry {
			ok, err := st.UpdateMarketLine(context.Background(), l.Date, l.Home, l.Away, l.Market)
			if err != nil {
				telemetry.Warnf("fetch_lines: %s@%s: %v", l.Away, l.Home, err)
			}
			if ok {
				stored = "yes"
				matched++
			} else {
				stored = "no game"
			}
		}
		fair, vig := "-", "-"
		if h, _, ok := odds.FairMoneyline(l.Market.HomeML, l.Market.AwayML); ok {
			fair = fmt.Sprintf("%.1f%%", h*100)
			vig = fmt.Sprintf("%.1f%%", odds.Overround(l.Market.HomeML, l.Market.AwayML)*100)
		}
		fmt.Fprintf(w, "%s\t%s @ %s\t%+.1f\t%.1f\t%+d\t%+d\t%s\t%s\t%s\n",
			l.Date.Format("2006-01-02"), l.Away, l.Home, l.Market.Spread, l.Market.Total,
			l.Market.HomeML, l.Market.AwayML, fair, vig, stored)
	}
	w.Flush()

	if !*dry {
		fmt.Printf("\n%d of %d lines matched stored games\n", matched, len(lines))
	}
}
