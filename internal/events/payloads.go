package events

import "time"

// PredictionEvent is published for every upcoming game after a replay.
type PredictionEvent struct {
	GameID       string    `json:"game_id"`
	Date         time.Time `json:"date"`
	Home         string    `json:"home"`
	Away         string    `json:"away"`
	HomeWinProb  float64   `json:"home_win_prob"`
	Confidence   float64   `json:"confidence"`
	Spread       float64   `json:"spread"`
	HomeScore    int       `json:"home_score"`
	AwayScore    int       `json:"away_score"`
	Source       string    `json:"source"`
	ModelVersion string    `json:"model_version,omitempty"`

	// Market reference, zero when no line was fetched.
	MarketSpread float64 `json:"market_spread,omitempty"`
	MarketTotal  float64 `json:"market_total,omitempty"`
}

// ReplaySummary closes out one replay cycle.
type ReplaySummary struct {
	Completed int            `json:"completed"`
	Predicted int            `json:"predicted"`
	Skipped   map[string]int `json:"skipped,omitempty"`
	Rows      int            `json:"rows"`
	Elapsed   time.Duration  `json:"elapsed_ns"`
}
