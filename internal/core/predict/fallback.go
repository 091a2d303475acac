package predict

import (
	"errors"
	"time"

	"github.com/charleschow/courtvision/internal/core/nba"
	"github.com/charleschow/courtvision/internal/telemetry"
)

// Fallback is the single composition point between a primary predictor and
// the always-available secondary. Any primary failure routes to the
// secondary; only invalid input is reported to the caller.
type Fallback struct {
	primary   Predictor
	secondary Predictor
}

func NewFallback(primary, secondary Predictor) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) Name() string {
	if f.primary == nil {
		return f.secondary.Name()
	}
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *Fallback) Predict(in Input) (nba.Prediction, error) {
	defer telemetry.Metrics.PredictLatency.Since(time.Now())
	if err := in.Validate(); err != nil {
		return nba.Prediction{}, err
	}

	if f.primary != nil {
		p, err := f.primary.Predict(in)
		if err == nil {
			telemetry.Metrics.Predictions.Inc()
			return p, nil
		}
		if errors.Is(err, ErrModelUnavailable) {
			telemetry.Debugf("predict: %s unavailable for %s@%s, using %s: %v",
				f.primary.Name(), in.Away.Abbr, in.Home.Abbr, f.secondary.Name(), err)
		} else {
			telemetry.Warnf("predict: %s failed for %s@%s, using %s: %v",
				f.primary.Name(), in.Away.Abbr, in.Home.Abbr, f.secondary.Name(), err)
		}
		telemetry.Metrics.FallbackPredictions.Inc()
	}

	p, err := f.secondary.Predict(in)
	if err != nil {
		return nba.Prediction{}, err
	}
	telemetry.Metrics.Predictions.Inc()
	return p, nil
}
