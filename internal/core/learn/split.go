package learn

import "math/rand"

// TrainTestSplit shuffles row indices with a fixed seed and holds out
// testFrac of them.
func TrainTestSplit(n int, testFrac float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n)*testFrac + 0.999999)
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	return perm[nTest:], perm[:nTest]
}

// KFold assigns consecutive rows to k folds of near-equal size and returns
// each fold's held-out indices.
func KFold(n, k int) [][]int {
	folds := make([][]int, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		for i := start; i < start+size; i++ {
			folds[f] = append(folds[f], i)
		}
		start += size
	}
	return folds
}

func pick[T any](xs []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}
