package learn

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charleschow/courtvision/internal/core/features"
)

const FormatVersion = 1

var ErrArtifactMismatch = errors.New("model artifact does not match feature set")

// Artifact bundles both regressors with the scaler and feature ordering
// they were fitted against. The three parts are only valid together.
type Artifact struct {
	Format       int       `json:"format"`
	Version      string    `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	Kind         Kind      `json:"kind"`
	FeatureNames []string  `json:"feature_names"`
	Scaler       Scaler    `json:"scaler"`
	Spread       Regressor `json:"spread"`
	Total        Regressor `json:"total"`
	Report       Report    `json:"report"`
}

func (a *Artifact) Validate() error {
	if a.Format != FormatVersion {
		return fmt.Errorf("%w: format %d, want %d", ErrArtifactMismatch, a.Format, FormatVersion)
	}
	if !slices.Equal(a.FeatureNames, features.Names) {
		return fmt.Errorf("%w: feature names differ", ErrArtifactMismatch)
	}
	if a.Scaler.Dim() != features.Dim || len(a.Scaler.Scale) != features.Dim {
		return fmt.Errorf("%w: scaler has %d columns", ErrArtifactMismatch, a.Scaler.Dim())
	}
	for name, r := range map[string]Regressor{"spread": a.Spread, "total": a.Total} {
		switch {
		case r.Ridge != nil && len(r.Ridge.Coef) != features.Dim:
			return fmt.Errorf("%w: %s ridge has %d coefficients", ErrArtifactMismatch, name, len(r.Ridge.Coef))
		case r.Ridge == nil && r.Boosted == nil:
			return fmt.Errorf("%w: %s regressor missing", ErrArtifactMismatch, name)
		}
		if r.Boosted == nil {
			continue
		}
		for i := range r.Boosted.Trees {
			if err := r.Boosted.Trees[i].check(features.Dim); err != nil {
				return fmt.Errorf("%w: %s tree %d: %v", ErrArtifactMismatch, name, i, err)
			}
		}
	}
	return nil
}

// Predict scales a raw feature vector and returns (spread, total).
func (a *Artifact) Predict(x []float64) (spread, total float64, err error) {
	if len(x) != features.Dim {
		return 0, 0, fmt.Errorf("predict: %d features, want %d", len(x), features.Dim)
	}
	z := a.Scaler.Transform(x)
	if spread, err = a.Spread.Predict(z); err != nil {
		return 0, 0, err
	}
	if total, err = a.Total.Predict(z); err != nil {
		return 0, 0, err
	}
	if math.IsNaN(spread) || math.IsNaN(total) || math.IsInf(spread, 0) || math.IsInf(total, 0) {
		return 0, 0, errors.New("predict: non-finite output")
	}
	return spread, total, nil
}

// Save writes the artifact next to path and renames it into place, so
// readers never observe a partial file.
func Save(path string, a *Artifact) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(a); err != nil {
		tmp.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	return nil
}

func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}
