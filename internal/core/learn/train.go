// Package learn fits and serves regression models for spread and total over
// the pre-game feature vector.
package learn

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/charleschow/courtvision/internal/core/features"
)

type Kind string

const (
	KindRidge   Kind = "ridge"
	KindBoosted Kind = "gbr"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRidge, KindBoosted:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown model kind %q (want ridge or gbr)", s)
}

var ErrTooFewRows = errors.New("too few training rows")

type Config struct {
	Kind     Kind
	Alpha    float64
	Boost    BoostConfig
	TestFrac float64
	Seed     int64
	Folds    int
}

func DefaultConfig(kind Kind) Config {
	return Config{
		Kind:     kind,
		Alpha:    1.0,
		Boost:    DefaultBoostConfig(),
		TestFrac: 0.2,
		Seed:     42,
		Folds:    5,
	}
}

// Regressor holds exactly one fitted model.
type Regressor struct {
	Ridge   *Ridge   `json:"ridge,omitempty"`
	Boosted *Boosted `json:"gbr,omitempty"`
}

func (r Regressor) Predict(x []float64) (float64, error) {
	switch {
	case r.Ridge != nil:
		return r.Ridge.Predict(x), nil
	case r.Boosted != nil:
		return r.Boosted.Predict(x), nil
	}
	return 0, errors.New("empty regressor")
}

func fit(cfg Config, X [][]float64, y []float64) (Regressor, error) {
	switch cfg.Kind {
	case KindRidge:
		m, err := FitRidge(X, y, cfg.Alpha)
		return Regressor{Ridge: m}, err
	case KindBoosted:
		m, err := FitBoosted(X, y, cfg.Boost)
		return Regressor{Boosted: m}, err
	}
	return Regressor{}, fmt.Errorf("unknown model kind %q", cfg.Kind)
}

type Report struct {
	Rows      int     `json:"rows"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
	Spread    Metrics `json:"spread"`
	Total     Metrics `json:"total"`
	SpreadCV  CVScore `json:"spread_cv"`
	TotalCV   CVScore `json:"total_cv"`
}

// Dataset splits builder rows into the matrix and both target columns.
func Dataset(rows []features.TrainingRow) (X [][]float64, spread, total []float64) {
	for _, r := range rows {
		X = append(X, r.Features)
		spread = append(spread, r.Spread)
		total = append(total, r.Total)
	}
	return X, spread, total
}

// Train fits the scaler on the training split only, then one regressor per
// target, and evaluates both on the held-out split and by k-fold CV.
func Train(X [][]float64, spread, total []float64, cfg Config) (*Artifact, error) {
	n := len(X)
	if n != len(spread) || n != len(total) {
		return nil, fmt.Errorf("train: %d rows, %d spreads, %d totals", n, len(spread), len(total))
	}
	if n < 2*cfg.Folds || n < 10 {
		return nil, fmt.Errorf("%w: %d", ErrTooFewRows, n)
	}
	for i, row := range X {
		if len(row) != features.Dim {
			return nil, fmt.Errorf("train: row %d has %d features, want %d", i, len(row), features.Dim)
		}
	}

	trainIdx, testIdx := TrainTestSplit(n, cfg.TestFrac, cfg.Seed)
	scaler, err := FitScaler(pick(X, trainIdx))
	if err != nil {
		return nil, err
	}
	xTrain := scaler.TransformAll(pick(X, trainIdx))
	xTest := scaler.TransformAll(pick(X, testIdx))

	art := &Artifact{
		Format:       FormatVersion,
		Version:      uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Kind:         cfg.Kind,
		FeatureNames: append([]string(nil), features.Names...),
		Scaler:       scaler,
		Report:       Report{Rows: n, TrainRows: len(trainIdx), TestRows: len(testIdx)},
	}

	type target struct {
		y       []float64
		model   *Regressor
		metrics *Metrics
		cv      *CVScore
	}
	for _, tg := range []target{
		{spread, &art.Spread, &art.Report.Spread, &art.Report.SpreadCV},
		{total, &art.Total, &art.Report.Total, &art.Report.TotalCV},
	} {
		yTrain := pick(tg.y, trainIdx)
		m, err := fit(cfg, xTrain, yTrain)
		if err != nil {
			return nil, err
		}
		*tg.model = m
		*tg.metrics = Evaluate(predictAll(m, xTest), pick(tg.y, testIdx))

		cv, err := crossValidate(cfg, xTrain, yTrain)
		if err != nil {
			return nil, err
		}
		*tg.cv = cv
	}
	return art, nil
}

func crossValidate(cfg Config, X [][]float64, y []float64) (CVScore, error) {
	folds := KFold(len(X), cfg.Folds)
	maes := make([]float64, 0, len(folds))
	for _, held := range folds {
		heldSet := make(map[int]bool, len(held))
		for _, i := range held {
			heldSet[i] = true
		}
		var keep []int
		for i := range X {
			if !heldSet[i] {
				keep = append(keep, i)
			}
		}
		m, err := fit(cfg, pick(X, keep), pick(y, keep))
		if err != nil {
			return CVScore{}, fmt.Errorf("cross-validate: %w", err)
		}
		maes = append(maes, Evaluate(predictAll(m, pick(X, held)), pick(y, held)).MAE)
	}
	k := float64(len(maes))
	mean := stat.Mean(maes, nil)
	std := 0.0
	if len(maes) > 1 {
		std = math.Sqrt(stat.Variance(maes, nil) * (k - 1) / k)
	}
	return CVScore{Folds: len(maes), MeanAE: mean, StdAE: std}, nil
}

func predictAll(m Regressor, X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i], _ = m.Predict(row)
	}
	return out
}
