package nba

import "time"

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusFinal      Status = "final"
)

// ParseStatus maps feed status strings onto Status. Anything unrecognised
// is treated as scheduled.
func ParseStatus(s string) Status {
	switch s {
	case "final", "Final", "FINAL", "STATUS_FINAL":
		return StatusFinal
	case "in_progress", "live", "In Progress", "STATUS_IN_PROGRESS":
		return StatusInProgress
	default:
		return StatusScheduled
	}
}

// Game is one matchup record. Identity is (Date, Home, Away); ID is the
// upstream identifier and may be empty for hand-built games.
type Game struct {
	ID     string
	Season int
	Date   time.Time
	Home   string
	Away   string

	// Zero means unknown. No NBA side finishes a game on zero points.
	HomeScore int
	AwayScore int
	Status    Status

	PreGame    *PreGame
	Prediction *Prediction
	Market     *MarketLine
}

func (g Game) Completed() bool { return g.Status == StatusFinal }

// HasScore reports whether both final scores are present.
func (g Game) HasScore() bool { return g.HomeScore > 0 && g.AwayScore > 0 }

// Margin is the observed home-minus-away spread.
func (g Game) Margin() int { return g.HomeScore - g.AwayScore }

func (g Game) Total() int { return g.HomeScore + g.AwayScore }

func (g Game) HomeWon() bool { return g.HomeScore > g.AwayScore }

// Key is the natural identity used for dedup in stores and adapters.
func (g Game) Key() string {
	return g.Date.Format("2006-01-02") + ":" + g.Home + "@" + g.Away
}

// PreGame is frozen from league state strictly before the game is played.
type PreGame struct {
	HomeRestDays int  `json:"home_rest_days"`
	AwayRestDays int  `json:"away_rest_days"`
	HomeB2B      bool `json:"home_b2b"`
	AwayB2B      bool `json:"away_b2b"`
	Home3in4     bool `json:"home_3in4"`
	Away3in4     bool `json:"away_3in4"`

	HomeElo float64 `json:"home_elo"`
	AwayElo float64 `json:"away_elo"`

	HomeStreak int `json:"home_streak"`
	AwayStreak int `json:"away_streak"`

	HomeH2HWins int `json:"home_h2h_wins"`
	AwayH2HWins int `json:"away_h2h_wins"`

	Features []float64 `json:"features,omitempty"`
}

// H2HHomeFraction is the home side's share of this season's meetings, 0.5
// before the teams have met.
func (p PreGame) H2HHomeFraction() float64 {
	n := p.HomeH2HWins + p.AwayH2HWins
	if n == 0 {
		return 0.5
	}
	return float64(p.HomeH2HWins) / float64(n)
}

type Source string

const (
	SourceHeuristic Source = "heuristic"
	SourceLearned   Source = "learned"
)

type Prediction struct {
	HomeWinProb float64 `json:"home_win_prob"`
	Confidence  float64 `json:"confidence"`
	Spread      float64 `json:"spread"`
	HomeScore   int     `json:"home_score"`
	AwayScore   int     `json:"away_score"`
	Source      Source  `json:"source"`

	ModelVersion string             `json:"model_version,omitempty"`
	Components   map[string]float64 `json:"components,omitempty"`
}

// HomeWinPct is HomeWinProb on the 0..100 scale used by stored records.
func (p Prediction) HomeWinPct() float64 { return p.HomeWinProb * 100 }

func (p Prediction) Total() int { return p.HomeScore + p.AwayScore }

// MarketLine is a bookmaker reference kept for evaluation only.
type MarketLine struct {
	Bookmaker string  `json:"bookmaker"`
	Spread    float64 `json:"spread"` // home-positive, i.e. -(home handicap)
	Total     float64 `json:"total"`
	HomeML    int     `json:"home_ml"`
	AwayML    int     `json:"away_ml"`
}
