package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/core/teams"
	"github.com/charleschow/courtvision/internal/telemetry"
)

const sportPath = "/v4/sports/basketball_nba/odds"

var eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}

// Line is one bookmaker's closing numbers for a matchup, keyed the way the
// history store keys games.
type Line struct {
	Date   time.Time
	Home   string
	Away   string
	Market nba.MarketLine
}

type Client struct {
	baseURL    string
	apiKey     string
	bookmaker  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL, apiKey, bookmaker string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		bookmaker:  bookmaker,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
}

func (c *Client) WithLimiter(l *rate.Limiter) *Client {
	c.limiter = l
	return c
}

type outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point"`
}

type market struct {
	Key      string    `json:"key"`
	Outcomes []outcome `json:"outcomes"`
}

type bookmaker struct {
	Key     string   `json:"key"`
	Markets []market `json:"markets"`
}

type event struct {
	ID           string      `json:"id"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

// FetchLines pulls the current board for the configured bookmaker.
func (c *Client) FetchLines(ctx context.Context) ([]Line, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", "us")
	params.Set("markets", "h2h,spreads,totals")
	params.Set("oddsFormat", "american")
	if c.bookmaker != "" {
		params.Set("bookmakers", c.bookmaker)
	}

	var events []event
	if err := c.get(ctx, sportPath, params, &events); err != nil {
		return nil, err
	}

	var out []Line
	for _, ev := range events {
		line, ok := c.convert(ev)
		if !ok {
			continue
		}
		out = append(out, line)
	}
	telemetry.Infof("oddsapi: %d events, %d usable lines", len(events), len(out))
	return out, nil
}

func (c *Client) convert(ev event) (Line, bool) {
	home, ok := teams.Resolve(ev.HomeTeam)
	if !ok {
		telemetry.Warnf("oddsapi: unknown home team %q", ev.HomeTeam)
		return Line{}, false
	}
	away, ok := teams.Resolve(ev.AwayTeam)
	if !ok {
		telemetry.Warnf("oddsapi: unknown away team %q", ev.AwayTeam)
		return Line{}, false
	}

	var bk *bookmaker
	for i := range ev.Bookmakers {
		if c.bookmaker == "" || ev.Bookmakers[i].Key == c.bookmaker {
			bk = &ev.Bookmakers[i]
			break
		}
	}
	if bk == nil {
		return Line{}, false
	}

	m := nba.MarketLine{Bookmaker: bk.Key}
	for _, mk := range bk.Markets {
		for _, o := range mk.Outcomes {
			switch mk.Key {
			case "h2h":
				if o.Name == ev.HomeTeam {
					m.HomeML = int(math.Round(o.Price))
				} else if o.Name == ev.AwayTeam {
					m.AwayML = int(math.Round(o.Price))
				}
			case "spreads":
				// Book quotes the home handicap; stored spreads are home-positive.
				if o.Name == ev.HomeTeam && o.Point != nil {
					m.Spread = -*o.Point
				}
			case "totals":
				if o.Name == "Over" && o.Point != nil {
					m.Total = *o.Point
				}
			}
		}
	}

	local := ev.CommenceTime.In(eastern)
	return Line{
		Date:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
		Home:   home,
		Away:   away,
		Market: m,
	}, true
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

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
	telemetry.Debugf("oddsapi: GET %s -> %d (%s) remaining=%s",
		path, resp.StatusCode, time.Since(start), resp.Header.Get("X-Requests-Remaining"))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %.200s", path, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
