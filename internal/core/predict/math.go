package predict

import "math"

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Logistic(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

// Scores splits total around spread, rounds, clamps each side to [lo, hi]
// and returns the spread implied by the rounded pair. Callers must report
// that spread so scores and spread always agree.
func Scores(total, spread float64, lo, hi int) (home, away int, reported float64) {
	home = int(math.Round(total/2 + spread/2))
	away = int(math.Round(total/2 - spread/2))
	home = clampInt(home, lo, hi)
	away = clampInt(away, lo, hi)
	return home, away, float64(home - away)
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
