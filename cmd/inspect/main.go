package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	_ "modernc.org/sqlite"

	"github.com/charleschow/courtvision/internal/config"
	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/store"
	"github.com/charleschow/courtvision/internal/telemetry"
)

func main() {
	n := flag.Int("n", 15, "number of recent games to display")
	showTeams := flag.Bool("teams", false, "show stored team summaries instead of games")
	verbose := flag.Bool("v", false, "show raw rows with the full schema")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	if *verbose {
		printRaw(cfg.DBPath, *n)
		return
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Printf("  (cannot open %s: %v)\n", cfg.DBPath, err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	c, err := st.Counts(ctx)
	if err != nil {
		fmt.Printf("  (cannot count rows: %v)\n", err)
		return
	}
	fmt.Printf("=== %s ===\n", cfg.DBPath)
	fmt.Printf("Games: %s (%s final)  |  Teams: %d\n\n",
		humanize.Comma(int64(c.Games)), humanize.Comma(int64(c.Final)), c.Teams)

	if *showTeams {
		printTeams(ctx, st)
		return
	}
	printGames(ctx, st, *n)
}

func printGames(ctx context.Context, st *store.Store, n int) {
	games, err := st.RecentGames(ctx, n)
	if err != nil {
		fmt.Printf("  (query error: %v)\n", err)
		return
	}
	if len(games) == 0 {
		fmt.Println("(no data)")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "date\tseason\tmatchup\tstatus\tscore\telo_h\telo_a\trest\tpred%\tspread\tsrc\tmkt")
	// Oldest of the window first, like a log.
	for i := len(games) - 1; i >= 0; i-- {
		g := games[i]
		score := "-"
		if g.Status != nba.StatusScheduled {
			score = fmt.Sprintf("%d-%d", g.HomeScore, g.AwayScore)
		}
		eloH, eloA, rest := "-", "-", "-"
		if pg := g.PreGame; pg != nil {
			eloH, eloA = fmt.Sprintf("%.0f", pg.HomeElo), fmt.Sprintf("%.0f", pg.AwayElo)
			rest = fmt.Sprintf("%d/%d", pg.HomeRestDays, pg.AwayRestDays)
		}
		pct, spread, src := "-", "-", "-"
		if p := g.Prediction; p != nil {
			pct, spread, src = fmt.Sprintf("%.1f", p.HomeWinPct()), fmt.Sprintf("%+.1f", p.Spread), string(p.Source)
		}
		mkt := "-"
		if m := g.Market; m != nil {
			mkt = fmt.Sprintf("%+.1f", m.Spread)
		}
		fmt.Fprintf(w, "%s\t%d\t%s @ %s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			g.Date.Format("2006-01-02"), g.Season, g.Away, g.Home, g.Status, score,
			eloH, eloA, rest, pct, spread, src, mkt)
	}
	w.Flush()
}

func printTeams(ctx context.Context, st *store.Store) {
	teams, err := st.LoadTeams(ctx)
	if err != nil {
		fmt.Printf("  (query error: %v)\n", err)
		return
	}
	if len(teams) == 0 {
		fmt.Println("(no data)")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "team\tseason\telo\trecord\thome\taway\tppg\tpapg\tstreak\tlast")
	for _, t := range teams {
		last := "-"
		if !t.LastGameDate.IsZero() {
			last = t.LastGameDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%d\t%.0f\t%d-%d\t%d-%d\t%d-%d\t%.1f\t%.1f\t%+d\t%s\n",
			t.Abbr, t.Season, t.Elo, t.Wins, t.Losses, t.HomeWins, t.HomeLosses,
			t.AwayWins, t.AwayLosses, t.PPG, t.PAPG, t.Streak, last)
	}
	w.Flush()
}

func printRaw(dbPath string, n int) {
	fmt.Printf("=== %s (verbose) ===\n", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		fmt.Printf("  (cannot open %s: %v)\n", dbPath, err)
		return
	}
	defer db.Close()

	cols, err := schemaColumns(db, "games")
	if err != nil {
		fmt.Printf("  (cannot read schema: %v)\n", err)
		return
	}
	fmt.Printf("Schema: %s\n\n", strings.Join(cols, ", "))

	rows, err := db.Query(`SELECT * FROM games ORDER BY date DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		fmt.Printf("  (query error: %v)\n", err)
		return
	}
	defer rows.Close()

	colNames, _ := rows.Columns()
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(colNames, "\t"))

	vals := make([]any, len(colNames))
	ptrs := make([]any, len(colNames))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			fmt.Fprintf(os.Stderr, "  scan error: %v\n", err)
			continue
		}
		cells := make([]string, len(colNames))
		for i, v := range vals {
			cells[i] = fmtCell(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}

func schemaColumns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid, notnull, pk int
			name, ctype      string
			dflt             any
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name+" "+ctype)
	}
	return cols, rows.Err()
}

func fmtCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%.3f", x)
	case []byte:
		s := string(x)
		if len(s) > 40 {
			s = s[:37] + "..."
		}
		return s
	case string:
		if len(x) > 40 {
			return x[:37] + "..."
		}
		return x
	default:
		return fmt.Sprintf("%v", v)
	}
}
