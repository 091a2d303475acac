package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	require.NoError(t, w.Validate())
	assert.Equal(t, 0.30, w.Components[FourFactors])
	assert.Equal(t, 0.08, w.Components[HomeCourt])
	assert.Equal(t, 0.54, w.HomeCourtProb)
	assert.Equal(t, 227.0, w.BaselineTotal)

	w.Components[Elo] = 0.9
	assert.Equal(t, 0.20, DefaultWeights().Components[Elo])
}

func TestParseWeightsRejectsBadSums(t *testing.T) {
	_, err := ParseWeights([]byte(`
components:
  four_factors: 0.5
  elo: 0.5
  net_rating: 0.15
  home_court: 0.08
  schedule: 0.07
  streak: 0.05
  head_to_head: 0.05
  momentum: 0.05
  strength_of_schedule: 0.05
`))
	assert.ErrorContains(t, err, "sum")

	_, err = ParseWeights([]byte("components:\n  elo: 1.0\n"))
	assert.ErrorContains(t, err, "missing component")

	_, err = ParseWeights([]byte("components: [oops"))
	assert.ErrorContains(t, err, "parse weights")
}

func TestParseWeightsFillsScalars(t *testing.T) {
	w, err := ParseWeights([]byte(`
components:
  four_factors: 0.2
  elo: 0.3
  net_rating: 0.15
  home_court: 0.08
  schedule: 0.07
  streak: 0.05
  head_to_head: 0.05
  momentum: 0.05
  strength_of_schedule: 0.05
baseline_total: 224
`))
	require.NoError(t, err)
	assert.Equal(t, 224.0, w.BaselineTotal)
	assert.Equal(t, 3.5, w.HomeCourtPoints)
}
