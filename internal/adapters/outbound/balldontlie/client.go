package balldontlie

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/core/teams"
	"github.com/charleschow/courtvision/internal/telemetry"
)

const perPage = 100

// Client pages through the balldontlie games endpoint. The free tier allows
// a handful of requests per minute, so every call waits on the limiter.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// WithLimiter swaps the request limiter.
func (c *Client) WithLimiter(l *rate.Limiter) *Client {
	c.limiter = l
	return c
}

type apiTeam struct {
	Abbreviation string `json:"abbreviation"`
	FullName     string `json:"full_name"`
}

type apiGame struct {
	ID               int64   `json:"id"`
	Date             string  `json:"date"`
	Season           int     `json:"season"`
	Status           string  `json:"status"`
	Period           int     `json:"period"`
	HomeTeam         apiTeam `json:"home_team"`
	VisitorTeam      apiTeam `json:"visitor_team"`
	HomeTeamScore    int     `json:"home_team_score"`
	VisitorTeamScore int     `json:"visitor_team_score"`
}

type gamesPage struct {
	Data []apiGame `json:"data"`
	Meta struct {
		NextCursor *int64 `json:"next_cursor"`
	} `json:"meta"`
}

// Query narrows a fetch. Zero values are omitted.
type Query struct {
	Seasons   []int
	StartDate time.Time
	EndDate   time.Time
}

func (q Query) values() url.Values {
	v := url.Values{}
	for _, s := range q.Seasons {
		v.Add("seasons[]", strconv.Itoa(s))
	}
	if !q.StartDate.IsZero() {
		v.Set("start_date", q.StartDate.Format("2006-01-02"))
	}
	if !q.EndDate.IsZero() {
		v.Set("end_date", q.EndDate.Format("2006-01-02"))
	}
	v.Set("per_page", strconv.Itoa(perPage))
	return v
}

// FetchGames follows cursors until the feed is exhausted. Games whose teams
// cannot be resolved are dropped with a warning.
func (c *Client) FetchGames(ctx context.Context, q Query) ([]nba.Game, error) {
	var out []nba.Game
	params := q.values()
	for page := 1; ; page++ {
		var resp gamesPage
		if err := c.get(ctx, "/v1/games", params, &resp); err != nil {
			return out, fmt.Errorf("page %d: %w", page, err)
		}
		for _, ag := range resp.Data {
			g, ok := convert(ag)
			if !ok {
				telemetry.Warnf("balldontlie: unresolved teams in game %d (%s vs %s)",
					ag.ID, ag.HomeTeam.Abbreviation, ag.VisitorTeam.Abbreviation)
				continue
			}
			out = append(out, g)
		}
		if resp.Meta.NextCursor == nil || len(resp.Data) == 0 {
			break
		}
		params.Set("cursor", strconv.FormatInt(*resp.Meta.NextCursor, 10))
	}
	telemetry.Infof("balldontlie: fetched %d games", len(out))
	return out, nil
}

func convert(ag apiGame) (nba.Game, bool) {
	home, ok := resolve(ag.HomeTeam)
	if !ok {
		return nba.Game{}, false
	}
	away, ok := resolve(ag.VisitorTeam)
	if !ok {
		return nba.Game{}, false
	}
	date := ag.Date
	if len(date) > 10 {
		date = date[:10]
	}
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nba.Game{}, false
	}

	status := nba.StatusScheduled
	switch {
	case ag.Status == "Final":
		status = nba.StatusFinal
	case ag.Period > 0:
		status = nba.StatusInProgress
	}
	g := nba.Game{
		ID:     strconv.FormatInt(ag.ID, 10),
		Season: ag.Season,
		Date:   d,
		Home:   home,
		Away:   away,
		Status: status,
	}
	if status != nba.StatusScheduled {
		g.HomeScore, g.AwayScore = ag.HomeTeamScore, ag.VisitorTeamScore
	}
	return g, true
}

func resolve(t apiTeam) (string, bool) {
	if abbr, ok := teams.Resolve(t.Abbreviation); ok {
		return abbr, true
	}
	return teams.Resolve(t.FullName)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	telemetry.Debugf("balldontlie: GET %s -> %d (%s)", path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %.200s", path, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
