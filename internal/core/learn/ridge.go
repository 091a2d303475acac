package learn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Ridge is L2-regularized least squares with an unpenalized intercept.
type Ridge struct {
	Alpha     float64   `json:"alpha"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// FitRidge solves (XcᵀXc + αI)w = Xcᵀyc on centered data.
func FitRidge(X [][]float64, y []float64, alpha float64) (*Ridge, error) {
	n := len(X)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("fit ridge: %d rows, %d targets", n, len(y))
	}
	d := len(X[0])

	xMean := make([]float64, d)
	yMean := 0.0
	for i, row := range X {
		for j, v := range row {
			xMean[j] += v
		}
		yMean += y[i]
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean /= float64(n)

	xc := mat.NewDense(n, d, nil)
	yc := mat.NewVecDense(n, nil)
	for i, row := range X {
		for j, v := range row {
			xc.Set(i, j, v-xMean[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	var gram mat.Dense
	gram.Mul(xc.T(), xc)
	for j := 0; j < d; j++ {
		gram.Set(j, j, gram.At(j, j)+alpha)
	}
	var rhs mat.VecDense
	rhs.MulVec(xc.T(), yc)

	var w mat.VecDense
	if err := w.SolveVec(&gram, &rhs); err != nil {
		return nil, fmt.Errorf("fit ridge: solve: %w", err)
	}

	r := &Ridge{Alpha: alpha, Coef: make([]float64, d)}
	r.Intercept = yMean
	for j := 0; j < d; j++ {
		r.Coef[j] = w.AtVec(j)
		r.Intercept -= r.Coef[j] * xMean[j]
	}
	return r, nil
}

func (r *Ridge) Predict(x []float64) float64 {
	out := r.Intercept
	for j, c := range r.Coef {
		out += c * x[j]
	}
	return out
}
