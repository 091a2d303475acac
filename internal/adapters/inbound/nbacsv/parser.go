// Package nbacsv reads team-game box score exports (one row per team per
// game, NBA stats layout) and pairs them into games.
package nbacsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/core/teams"
)

var required = []string{"SEASON_YEAR", "GAME_ID", "GAME_DATE", "MATCHUP", "TEAM_ABBREVIATION", "PTS"}

// Result carries the paired games plus bookkeeping for the loader's summary.
type Result struct {
	Games      []nba.Game
	Rows       int
	Incomplete int // games missing one side
	BadRows    int
	Filtered   int // rows below the season floor
}

type half struct {
	team   string
	points int
	set    bool
}

type pending struct {
	season int
	date   time.Time
	home   half
	away   half
}

// Parse reads the export. Rows from seasons before minSeason are ignored;
// rows with unparseable fields or unknown teams are counted and skipped.
func Parse(r io.Reader, minSeason int) (*Result, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range required {
		if _, ok := colIdx[c]; !ok {
			return nil, fmt.Errorf("missing column: %s", c)
		}
	}

	res := &Result{}
	byID := make(map[string]*pending)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.BadRows++
			continue
		}
		res.Rows++

		season, ok := parseSeason(getCol(row, colIdx, "SEASON_YEAR"))
		if !ok {
			res.BadRows++
			continue
		}
		if season < minSeason {
			res.Filtered++
			continue
		}
		date, err := time.Parse("2006-01-02", first10(getCol(row, colIdx, "GAME_DATE")))
		if err != nil {
			res.BadRows++
			continue
		}
		team, ok := teams.Resolve(getCol(row, colIdx, "TEAM_ABBREVIATION"))
		if !ok {
			res.BadRows++
			continue
		}
		pts, err := strconv.Atoi(getCol(row, colIdx, "PTS"))
		if err != nil {
			res.BadRows++
			continue
		}

		id := getCol(row, colIdx, "GAME_ID")
		p, ok := byID[id]
		if !ok {
			p = &pending{season: season, date: date}
			byID[id] = p
		}
		side := half{team: team, points: pts, set: true}
		if strings.Contains(getCol(row, colIdx, "MATCHUP"), " vs. ") {
			p.home = side
		} else {
			p.away = side
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := byID[id]
		if !p.home.set || !p.away.set {
			res.Incomplete++
			continue
		}
		res.Games = append(res.Games, nba.Game{
			ID:        id,
			Season:    p.season,
			Date:      p.date,
			Home:      p.home.team,
			Away:      p.away.team,
			HomeScore: p.home.points,
			AwayScore: p.away.points,
			Status:    nba.StatusFinal,
		})
	}
	return res, nil
}

// parseSeason turns "2022-23" (or a bare "2022") into the starting year.
func parseSeason(s string) (int, bool) {
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

func first10(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func getCol(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
