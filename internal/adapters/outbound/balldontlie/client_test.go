package balldontlie

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/charleschow/courtvision/internal/core/nba"
)

func TestFetchGamesFollowsCursor(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.Equal(t, []string{"2023"}, r.URL.Query()["seasons[]"])
		switch r.URL.Query().Get("cursor") {
		case "":
			fmt.Fprint(w, `{"data":[
				{"id":1,"date":"2023-10-24","season":2023,"status":"Final","period":4,
				 "home_team":{"abbreviation":"DEN"},"visitor_team":{"abbreviation":"LAL"},
				 "home_team_score":119,"visitor_team_score":107},
				{"id":2,"date":"2023-10-25T00:00:00.000Z","season":2023,"status":"7:30 pm ET","period":0,
				 "home_team":{"abbreviation":"BKN","full_name":"Brooklyn Nets"},"visitor_team":{"abbreviation":"CLE"},
				 "home_team_score":0,"visitor_team_score":0}
			],"meta":{"next_cursor":2}}`)
		case "2":
			fmt.Fprint(w, `{"data":[
				{"id":3,"date":"2023-10-26","season":2023,"status":"2nd Qtr","period":2,
				 "home_team":{"abbreviation":"ZZZ","full_name":"Nowhere"},"visitor_team":{"abbreviation":"BOS"}}
			],"meta":{}}`)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret").WithLimiter(rate.NewLimiter(rate.Inf, 1))
	games, err := c.FetchGames(context.Background(), Query{Seasons: []int{2023}})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, games, 2)

	assert.Equal(t, nba.Game{
		ID: "1", Season: 2023, Date: time.Date(2023, 10, 24, 0, 0, 0, 0, time.UTC),
		Home: "DEN", Away: "LAL", HomeScore: 119, AwayScore: 107, Status: nba.StatusFinal,
	}, games[0])
	assert.Equal(t, nba.StatusScheduled, games[1].Status)
	assert.Equal(t, "BKN", games[1].Home)
	assert.Equal(t, 25, games[1].Date.Day())
}

func TestFetchGamesSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "").WithLimiter(rate.NewLimiter(rate.Inf, 1))
	_, err := c.FetchGames(context.Background(), Query{StartDate: time.Now()})
	assert.ErrorContains(t, err, "status 429")
}
