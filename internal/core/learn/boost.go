package learn

import (
	"fmt"
	"sort"
)

// BoostConfig mirrors the usual squared-loss gradient boosting knobs.
type BoostConfig struct {
	Trees        int
	MaxDepth     int
	LearningRate float64
	MinLeaf      int
}

func DefaultBoostConfig() BoostConfig {
	return BoostConfig{Trees: 100, MaxDepth: 4, LearningRate: 0.1, MinLeaf: 1}
}

// Node is a flattened regression-tree node. Leaves have Feature -1.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v,omitempty"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// check reports structural damage that would make Predict panic or never
// reach a leaf. Children always sit after their parent, which rules out
// cycles.
func (t *Tree) check(dim int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Feature < 0 {
			if n.Feature != -1 {
				return fmt.Errorf("node %d: feature %d", i, n.Feature)
			}
			continue
		}
		if n.Feature >= dim {
			return fmt.Errorf("node %d: feature %d out of %d", i, n.Feature, dim)
		}
		for _, c := range []int{n.Left, n.Right} {
			if c <= i || c >= len(t.Nodes) {
				return fmt.Errorf("node %d: child %d out of range", i, c)
			}
		}
	}
	return nil
}

// Boosted is an additive ensemble of shallow trees over a constant base.
type Boosted struct {
	Base         float64   `json:"base"`
	LearningRate float64   `json:"learning_rate"`
	Trees        []Tree    `json:"trees"`
	Importances  []float64 `json:"importances"`
}

func (b *Boosted) Predict(x []float64) float64 {
	out := b.Base
	for i := range b.Trees {
		out += b.LearningRate * b.Trees[i].Predict(x)
	}
	return out
}

func FitBoosted(X [][]float64, y []float64, cfg BoostConfig) (*Boosted, error) {
	n := len(X)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("fit boosted: %d rows, %d targets", n, len(y))
	}
	if cfg.MinLeaf < 1 {
		cfg.MinLeaf = 1
	}
	d := len(X[0])

	base := 0.0
	for _, v := range y {
		base += v
	}
	base /= float64(n)

	b := &Boosted{Base: base, LearningRate: cfg.LearningRate, Importances: make([]float64, d)}
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = base
	}
	resid := make([]float64, n)
	idx := make([]int, n)

	for t := 0; t < cfg.Trees; t++ {
		for i := range resid {
			resid[i] = y[i] - pred[i]
			idx[i] = i
		}
		g := &grower{X: X, y: resid, cfg: cfg, imp: b.Importances}
		g.grow(idx, 0)
		tree := Tree{Nodes: g.nodes}
		for i, row := range X {
			pred[i] += cfg.LearningRate * tree.Predict(row)
		}
		b.Trees = append(b.Trees, tree)
	}

	total := 0.0
	for _, v := range b.Importances {
		total += v
	}
	if total > 0 {
		for j := range b.Importances {
			b.Importances[j] /= total
		}
	}
	return b, nil
}

type grower struct {
	X     [][]float64
	y     []float64
	cfg   BoostConfig
	nodes []Node
	imp   []float64
}

// grow appends the subtree for rows idx and returns its node index.
func (g *grower) grow(idx []int, depth int) int {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += g.y[i]
		sumSq += g.y[i] * g.y[i]
	}
	n := float64(len(idx))
	self := len(g.nodes)
	g.nodes = append(g.nodes, Node{Feature: -1, Value: sum / n})

	if depth >= g.cfg.MaxDepth || len(idx) < 2*g.cfg.MinLeaf {
		return self
	}

	parentSSE := sumSq - sum*sum/n
	feature, threshold, gain := g.bestSplit(idx, sum)
	if feature < 0 || gain <= 1e-12*max(parentSSE, 1) {
		return self
	}
	g.imp[feature] += gain

	var left, right []int
	for _, i := range idx {
		if g.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)
	g.nodes[self] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return self
}

// bestSplit scans every feature's sorted values for the split with the
// largest squared-error reduction.
func (g *grower) bestSplit(idx []int, sum float64) (feature int, threshold, gain float64) {
	feature = -1
	n := len(idx)
	order := make([]int, n)
	for f := range g.X[idx[0]] {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return g.X[order[a]][f] < g.X[order[b]][f] })

		leftSum := 0.0
		for k := 0; k < n-1; k++ {
			leftSum += g.y[order[k]]
			nl := k + 1
			nr := n - nl
			if nl < g.cfg.MinLeaf || nr < g.cfg.MinLeaf {
				continue
			}
			lo, hi := g.X[order[k]][f], g.X[order[k+1]][f]
			if lo == hi {
				continue
			}
			rightSum := sum - leftSum
			// SSE reduction = Σl²/nl + Σr²/nr − Σ²/n
			gn := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr) - sum*sum/float64(n)
			if gn > gain {
				feature, threshold, gain = f, (lo+hi)/2, gn
			}
		}
	}
	return feature, threshold, gain
}
