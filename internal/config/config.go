package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Storage
	DBPath    string
	ModelPath string

	// Heuristic model weights override; empty means the embedded defaults.
	WeightsPath string

	// balldontlie games feed
	BallDontLieBaseURL string
	BallDontLieAPIKey  string

	// The Odds API
	OddsAPIBaseURL string
	OddsAPIKey     string
	OddsBookmaker  string

	// Replay
	MinSeason int

	// Prediction feed
	FeedHost    string
	FeedPort    int
	FeedRefresh time.Duration

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBPath:    envStr("NBA_DB_PATH", "data/courtvision.db"),
		ModelPath: envStr("MODEL_PATH", "data/models/model.json"),

		WeightsPath: envStr("MODEL_WEIGHTS_PATH", ""),

		BallDontLieBaseURL: envStr("BALLDONTLIE_BASE_URL", "https://api.balldontlie.io"),
		BallDontLieAPIKey:  envStr("BALLDONTLIE_API_KEY", ""),

		OddsAPIBaseURL: envStr("ODDS_API_BASE_URL", "https://api.the-odds-api.com"),
		OddsAPIKey:     envStr("ODDS_API_KEY", ""),
		OddsBookmaker:  envStr("ODDS_BOOKMAKER", "fanduel"),

		MinSeason: envInt("MIN_SEASON", 2018),

		FeedHost:    envStr("FEED_HOST", "0.0.0.0"),
		FeedPort:    envInt("FEED_PORT", 8766),
		FeedRefresh: time.Duration(envInt("FEED_REFRESH_SEC", 300)) * time.Second,

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
