package heuristic

import (
	_ "embed"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

//go:embed weights.yaml
var defaultWeightsData []byte

const (
	FourFactors        = "four_factors"
	Elo                = "elo"
	NetRating          = "net_rating"
	HomeCourt          = "home_court"
	Schedule           = "schedule"
	Streak             = "streak"
	HeadToHead         = "head_to_head"
	Momentum           = "momentum"
	StrengthOfSchedule = "strength_of_schedule"
)

// Components lists the model's inputs in evaluation order.
var Components = []string{
	FourFactors, Elo, NetRating, HomeCourt, Schedule,
	Streak, HeadToHead, Momentum, StrengthOfSchedule,
}

type Weights struct {
	Components      map[string]float64 `yaml:"components"`
	HomeCourtProb   float64            `yaml:"home_court_prob"`
	HomeCourtPoints float64            `yaml:"home_court_points"`
	BaselineTotal   float64            `yaml:"baseline_total"`
}

var defaultWeights Weights

func init() {
	w, err := ParseWeights(defaultWeightsData)
	if err != nil {
		panic(fmt.Sprintf("heuristic: embedded weights: %v", err))
	}
	defaultWeights = w
}

// DefaultWeights returns a copy of the embedded weights.
func DefaultWeights() Weights {
	w := defaultWeights
	w.Components = make(map[string]float64, len(defaultWeights.Components))
	for k, v := range defaultWeights.Components {
		w.Components[k] = v
	}
	return w
}

// ParseWeights overlays YAML onto the defaults' scalar settings and
// validates the result. Component weights must be given in full.
func ParseWeights(data []byte) (Weights, error) {
	var w Weights
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("parse weights: %w", err)
	}
	if w.HomeCourtProb == 0 {
		w.HomeCourtProb = 0.54
	}
	if w.HomeCourtPoints == 0 {
		w.HomeCourtPoints = 3.5
	}
	if w.BaselineTotal == 0 {
		w.BaselineTotal = 227
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

func (w Weights) Validate() error {
	sum := 0.0
	for _, name := range Components {
		v, ok := w.Components[name]
		if !ok {
			return fmt.Errorf("weights: missing component %q", name)
		}
		if v < 0 {
			return fmt.Errorf("weights: negative weight for %q", name)
		}
		sum += v
	}
	if len(w.Components) != len(Components) {
		return fmt.Errorf("weights: %d components, want %d", len(w.Components), len(Components))
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("weights: components sum to %.4f, want 1", sum)
	}
	return nil
}
