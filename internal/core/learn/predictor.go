package learn

import (
	"fmt"
	"math"
	"sync"

	"github.com/charleschow/courtvision/internal/core/features"
	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/core/predict"
	"github.com/charleschow/courtvision/internal/telemetry"
)

const (
	maxSpread = 16.0
	minScore  = 95
	maxScore  = 135

	// A 4.5-point favourite wins about 73% of the time.
	spreadScale = 4.5

	// Combined games played by both sides before confidence is unscaled.
	fullHistoryGames = 40
)

// Handle loads an artifact at most once, on first use. A failed load is
// remembered; restart the process after training a new model.
type Handle struct {
	path string
	once sync.Once
	art  *Artifact
	err  error
}

func NewHandle(path string) *Handle { return &Handle{path: path} }

// Preloaded wraps an artifact that is already in memory.
func Preloaded(a *Artifact) *Handle {
	h := &Handle{art: a}
	h.once.Do(func() {})
	return h
}

func (h *Handle) Artifact() (*Artifact, error) {
	h.once.Do(func() {
		if h.path == "" {
			h.err = fmt.Errorf("no model path configured")
			return
		}
		h.art, h.err = Load(h.path)
		if h.err == nil {
			telemetry.Infof("learn: loaded %s model %s (%d training rows)", h.art.Kind, h.art.Version, h.art.Report.Rows)
		}
	})
	return h.art, h.err
}

// Predictor serves spread and total regressions. Every failure to obtain a
// usable artifact is reported as predict.ErrModelUnavailable.
type Predictor struct {
	h *Handle
}

func NewPredictor(h *Handle) *Predictor { return &Predictor{h: h} }

func (p *Predictor) Name() string { return string(nba.SourceLearned) }

func (p *Predictor) Predict(in predict.Input) (out nba.Prediction, err error) {
	if err := in.Validate(); err != nil {
		return nba.Prediction{}, err
	}
	art, err := p.h.Artifact()
	if err != nil {
		return nba.Prediction{}, fmt.Errorf("%w: %v", predict.ErrModelUnavailable, err)
	}

	// A damaged artifact that slipped past Validate must still route to the
	// fallback.
	defer func() {
		if r := recover(); r != nil {
			out, err = nba.Prediction{}, fmt.Errorf("%w: model %s panicked: %v", predict.ErrModelUnavailable, art.Version, r)
		}
	}()

	x := vectorFor(in)
	spread, total, err := art.Predict(x)
	if err != nil {
		return nba.Prediction{}, err
	}

	spread = predict.Clamp(spread, -maxSpread, maxSpread)
	home, away, reported := predict.Scores(total, spread, minScore, maxScore)

	games := in.Home.GamesPlayed() + in.Away.GamesPlayed()
	conf := math.Min(math.Abs(reported)*2+40, 85) * math.Min(float64(games)/fullHistoryGames, 1)

	return nba.Prediction{
		HomeWinProb:  predict.Clamp(predict.Logistic(reported/spreadScale), 0.15, 0.85),
		Confidence:   predict.Clamp(conf, 40, 90),
		Spread:       reported,
		HomeScore:    home,
		AwayScore:    away,
		Source:       nba.SourceLearned,
		ModelVersion: art.Version,
	}, nil
}

func vectorFor(in predict.Input) []float64 {
	if in.PreGame != nil && len(in.PreGame.Features) == features.Dim {
		return in.PreGame.Features
	}
	hr, ar, hb, ab, h34, a34 := in.Schedule()
	hs, as := in.Streaks()
	hw, aw := in.H2H()
	return features.Vector(in.Home, in.Away, nba.PreGame{
		HomeRestDays: hr, AwayRestDays: ar,
		HomeB2B: hb, AwayB2B: ab,
		Home3in4: h34, Away3in4: a34,
		HomeStreak: hs, AwayStreak: as,
		HomeH2HWins: hw, AwayH2HWins: aw,
	})
}
