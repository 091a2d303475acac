package features

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/charleschow/courtvision/internal/core/nba"
)

// PartitionBySeason groups games by season, oldest first. Replaying the
// groups independently drops Elo carry-over between seasons.
func PartitionBySeason(games []nba.Game) ([]int, [][]nba.Game) {
	bySeason := make(map[int][]nba.Game)
	for _, g := range games {
		bySeason[g.Season] = append(bySeason[g.Season], g)
	}
	seasons := make([]int, 0, len(bySeason))
	for s := range bySeason {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)

	parts := make([][]nba.Game, len(seasons))
	for i, s := range seasons {
		parts[i] = bySeason[s]
	}
	return seasons, parts
}

// ReplayIndependent runs one sequential pass per partition concurrently.
// Partitions must not share teams' state; each pass gets a fresh store.
// Results come back in partition order.
func ReplayIndependent(ctx context.Context, b *Builder, parts [][]nba.Game) ([]Result, error) {
	results := make([]Result, len(parts))
	g, ctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = b.Run(part)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Merge concatenates partition results in order.
func Merge(results []Result) Result {
	var out Result
	for _, r := range results {
		out.Games = append(out.Games, r.Games...)
		out.Skipped = append(out.Skipped, r.Skipped...)
		out.Rows = append(out.Rows, r.Rows...)
		out.Teams = append(out.Teams, r.Teams...)
		out.Completed += r.Completed
		out.Predicted += r.Predicted
		out.Failed += r.Failed
	}
	return out
}
