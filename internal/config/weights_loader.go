package config

import (
	"fmt"
	"os"

	"github.com/charleschow/courtvision/internal/core/predict/heuristic"
)

// LoadWeights reads a heuristic weights override. An empty path yields the
// embedded defaults.
func LoadWeights(path string) (heuristic.Weights, error) {
	if path == "" {
		return heuristic.DefaultWeights(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return heuristic.Weights{}, fmt.Errorf("read weights: %w", err)
	}
	w, err := heuristic.ParseWeights(data)
	if err != nil {
		return heuristic.Weights{}, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}
