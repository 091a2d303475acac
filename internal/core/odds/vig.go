package odds

import "math"

// AmericanToDecimal converts a moneyline (-150, +130) to decimal odds.
func AmericanToDecimal(ml int) float64 {
	switch {
	case ml > 0:
		return 1 + float64(ml)/100
	case ml < 0:
		return 1 + 100/math.Abs(float64(ml))
	default:
		return 0
	}
}

// ImpliedProb is the raw, vig-inclusive probability of a moneyline.
func ImpliedProb(ml int) float64 {
	d := AmericanToDecimal(ml)
	if d <= 0 {
		return 0
	}
	return 1 / d
}

// RemoveVig2 converts two-way decimal odds to fair probabilities
// by stripping the bookmaker's overround.
func RemoveVig2(a, b float64) (float64, float64) {
	rawA := 1.0 / a
	rawB := 1.0 / b
	total := rawA + rawB
	return rawA / total, rawB / total
}

// FairMoneyline returns the vig-free home and away win probabilities for a
// pair of moneylines. ok is false if either line is missing.
func FairMoneyline(homeML, awayML int) (home, away float64, ok bool) {
	if homeML == 0 || awayML == 0 {
		return 0, 0, false
	}
	home, away = RemoveVig2(AmericanToDecimal(homeML), AmericanToDecimal(awayML))
	return home, away, true
}

// Overround is the bookmaker margin implied by a two-way market.
func Overround(homeML, awayML int) float64 {
	return ImpliedProb(homeML) + ImpliedProb(awayML) - 1
}
