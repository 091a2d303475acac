package learn

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

type Metrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

func Evaluate(pred, actual []float64) Metrics {
	if len(pred) == 0 {
		return Metrics{}
	}
	abs, sq := 0.0, 0.0
	for i := range pred {
		e := pred[i] - actual[i]
		abs += math.Abs(e)
		sq += e * e
	}
	n := float64(len(pred))
	return Metrics{
		MAE:  abs / n,
		RMSE: math.Sqrt(sq / n),
		R2:   stat.RSquaredFrom(pred, actual, nil),
	}
}

// CVScore is a k-fold mean absolute error with its spread.
type CVScore struct {
	Folds  int     `json:"folds"`
	MeanAE float64 `json:"mean_mae"`
	StdAE  float64 `json:"std_mae"`
}
