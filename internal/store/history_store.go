// Package store persists games, pre-game snapshots, predictions and team
// summaries in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/telemetry"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS games (
			id                 TEXT,
			season             INTEGER NOT NULL,
			date               TEXT    NOT NULL,
			home               TEXT    NOT NULL,
			away               TEXT    NOT NULL,
			home_score         INTEGER DEFAULT 0,
			away_score         INTEGER DEFAULT 0,
			status             TEXT    NOT NULL,

			pregame            TEXT,

			pred_home_win_pct  REAL,
			pred_confidence    REAL,
			pred_spread        REAL,
			pred_home_score    INTEGER,
			pred_away_score    INTEGER,
			pred_source        TEXT,

			market_bookmaker   TEXT,
			market_spread      REAL,
			market_total       REAL,
			market_home_ml     INTEGER,
			market_away_ml     INTEGER,

			updated_at         TEXT,
			UNIQUE(date, home, away)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_season ON games(season)`,
		`CREATE TABLE IF NOT EXISTS teams (
			abbr        TEXT PRIMARY KEY,
			season      INTEGER,
			wins        INTEGER,
			losses      INTEGER,
			elo         REAL,
			streak      INTEGER,
			sos         REAL,
			summary     TEXT NOT NULL,
			updated_at  TEXT
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	// Migrations: add columns if missing (errors ignored for existing columns).
	db.Exec(`ALTER TABLE games ADD COLUMN pred_model_version TEXT`)

	s := &Store{db: db}
	c, err := s.Counts(context.Background())
	if err != nil {
		db.Close()
		return nil, err
	}
	telemetry.Debugf("history store: opened %s  games=%d  final=%d  teams=%d", path, c.Games, c.Final, c.Teams)
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// UpsertGames inserts new games and refreshes identity, score and status on
// existing ones. Snapshots, predictions and market lines are left alone.
func (s *Store) UpsertGames(ctx context.Context, games []nba.Game) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (id, season, date, home, away, home_score, away_score, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, home, away) DO UPDATE SET
			id = excluded.id,
			season = excluded.season,
			home_score = excluded.home_score,
			away_score = excluded.away_score,
			status = excluded.status,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	n := 0
	for _, g := range games {
		if _, err := stmt.ExecContext(ctx, g.ID, g.Season, g.Date.Format(dateLayout), g.Home, g.Away,
			g.HomeScore, g.AwayScore, string(g.Status), now); err != nil {
			return n, fmt.Errorf("upsert %s: %w", g.Key(), err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

const gameColumns = `id, season, date, home, away, home_score, away_score, status, pregame,
	pred_home_win_pct, pred_confidence, pred_spread, pred_home_score, pred_away_score, pred_source, pred_model_version,
	market_bookmaker, market_spread, market_total, market_home_ml, market_away_ml`

// LoadGames returns every game from minSeason on, oldest first.
func (s *Store) LoadGames(ctx context.Context, minSeason int) ([]nba.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE season >= ? ORDER BY date, rowid`, minSeason)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

// RecentGames returns up to limit games, newest first.
func (s *Store) RecentGames(ctx context.Context, limit int) ([]nba.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games ORDER BY date DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent games: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

func scanGames(rows *sql.Rows) ([]nba.Game, error) {
	var out []nba.Game
	for rows.Next() {
		var (
			g                        nba.Game
			id, pregame, source, ver sql.NullString
			date, status             string
			prob, conf, spread       sql.NullFloat64
			predHome, predAway       sql.NullInt64
			book                     sql.NullString
			mSpread, mTotal          sql.NullFloat64
			mHome, mAway             sql.NullInt64
		)
		if err := rows.Scan(&id, &g.Season, &date, &g.Home, &g.Away, &g.HomeScore, &g.AwayScore, &status, &pregame,
			&prob, &conf, &spread, &predHome, &predAway, &source, &ver,
			&book, &mSpread, &mTotal, &mHome, &mAway); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.ID = id.String
		g.Status = nba.Status(status)
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			telemetry.Warnf("store: bad date %q for %s@%s: %v", date, g.Away, g.Home, err)
		}
		g.Date = d

		if pregame.Valid && pregame.String != "" {
			var pg nba.PreGame
			if err := json.Unmarshal([]byte(pregame.String), &pg); err != nil {
				telemetry.Warnf("store: dropping unreadable pregame for %s: %v", g.Key(), err)
			} else {
				g.PreGame = &pg
			}
		}
		if source.Valid {
			g.Prediction = &nba.Prediction{
				HomeWinProb:  prob.Float64 / 100,
				Confidence:   conf.Float64,
				Spread:       spread.Float64,
				HomeScore:    int(predHome.Int64),
				AwayScore:    int(predAway.Int64),
				Source:       nba.Source(source.String),
				ModelVersion: ver.String,
			}
		}
		if book.Valid {
			g.Market = &nba.MarketLine{
				Bookmaker: book.String,
				Spread:    mSpread.Float64,
				Total:     mTotal.Float64,
				HomeML:    int(mHome.Int64),
				AwayML:    int(mAway.Int64),
			}
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SaveReplay writes each game's pre-game snapshot and prediction back onto
// its stored row. Games without a stored row are ignored.
func (s *Store) SaveReplay(ctx context.Context, games []nba.Game) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE games SET
			pregame = ?,
			pred_home_win_pct = ?, pred_confidence = ?, pred_spread = ?,
			pred_home_score = ?, pred_away_score = ?, pred_source = ?, pred_model_version = ?,
			updated_at = ?
		WHERE date = ? AND home = ? AND away = ?`)
	if err != nil {
		return 0, fmt.Errorf("prepare replay update: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	n := 0
	for _, g := range games {
		var pregame any
		if g.PreGame != nil {
			b, err := json.Marshal(g.PreGame)
			if err != nil {
				return n, fmt.Errorf("encode pregame for %s: %w", g.Key(), err)
			}
			pregame = string(b)
		}
		var prob, conf, spread, home, away, source, ver any
		if p := g.Prediction; p != nil {
			prob, conf, spread = p.HomeWinPct(), p.Confidence, p.Spread
			home, away, source, ver = p.HomeScore, p.AwayScore, string(p.Source), p.ModelVersion
		}
		res, err := stmt.ExecContext(ctx, pregame, prob, conf, spread, home, away, source, ver, now,
			g.Date.Format(dateLayout), g.Home, g.Away)
		if err != nil {
			return n, fmt.Errorf("update %s: %w", g.Key(), err)
		}
		if affected, _ := res.RowsAffected(); affected > 0 {
			n++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// UpdateMarketLine attaches a bookmaker line to a stored game. It reports
// false when no such game exists.
func (s *Store) UpdateMarketLine(ctx context.Context, date time.Time, home, away string, m nba.MarketLine) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE games SET market_bookmaker = ?, market_spread = ?, market_total = ?,
			market_home_ml = ?, market_away_ml = ?, updated_at = ?
		WHERE date = ? AND home = ? AND away = ?`,
		m.Bookmaker, m.Spread, m.Total, m.HomeML, m.AwayML, time.Now().UTC().Format(time.RFC3339),
		date.Format(dateLayout), home, away)
	if err != nil {
		return false, fmt.Errorf("update market line: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SaveTeams replaces the stored team summaries.
func (s *Store) SaveTeams(ctx context.Context, teams []nba.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, t := range teams {
		summary, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode team %s: %w", t.Abbr, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO teams (abbr, season, wins, losses, elo, streak, sos, summary, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(abbr) DO UPDATE SET
				season = excluded.season, wins = excluded.wins, losses = excluded.losses,
				elo = excluded.elo, streak = excluded.streak, sos = excluded.sos,
				summary = excluded.summary, updated_at = excluded.updated_at`,
			t.Abbr, t.Season, t.Wins, t.Losses, t.Elo, t.Streak, t.SOS, string(summary), now); err != nil {
			return fmt.Errorf("upsert team %s: %w", t.Abbr, err)
		}
	}
	return tx.Commit()
}

// LoadTeams returns stored summaries, highest Elo first.
func (s *Store) LoadTeams(ctx context.Context) ([]nba.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT summary FROM teams ORDER BY elo DESC`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var out []nba.Team
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		var t nba.Team
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("decode team: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type Counts struct {
	Games int
	Final int
	Teams int
}

func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM games),
			(SELECT COUNT(*) FROM games WHERE status = 'final'),
			(SELECT COUNT(*) FROM teams)`)
	if err := row.Scan(&c.Games, &c.Final, &c.Teams); err != nil {
		return Counts{}, fmt.Errorf("read counts: %w", err)
	}
	return c, nil
}
