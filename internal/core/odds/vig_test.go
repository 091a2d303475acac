package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmericanToDecimal(t *testing.T) {
	assert.InDelta(t, 2.30, AmericanToDecimal(130), 1e-12)
	assert.InDelta(t, 1.6667, AmericanToDecimal(-150), 1e-4)
	assert.Zero(t, AmericanToDecimal(0))
}

func TestFairMoneyline(t *testing.T) {
	h, a, ok := FairMoneyline(-110, -110)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, h, 1e-12)
	assert.InDelta(t, 1.0, h+a, 1e-12)

	h, a, ok = FairMoneyline(-200, 170)
	assert.True(t, ok)
	assert.Greater(t, h, a)
	assert.InDelta(t, 1.0, h+a, 1e-12)

	_, _, ok = FairMoneyline(0, 120)
	assert.False(t, ok)
	assert.InDelta(t, 0.0476, Overround(-110, -110), 1e-4)
}
