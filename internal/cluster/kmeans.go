// Package cluster runs k-means over sparse vectors.
//
// Centers are recomputed with vector.Centroid, or vector.CentroidWithPruning
// when a minimum coordinate ratio is configured, and vectors are assigned to
// centers with one of the vector package selectors.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"sparsevec/internal/vector"
)

// ErrInvalidK is returned when K is not in [1, len(vectors)].
var ErrInvalidK = fmt.Errorf("%w: k out of range", vector.ErrInvalidArgument)

// Config controls a k-means run.
type Config struct {
	K             int
	MaxIterations int
	// MinRatio prunes center coordinates whose share of the center's sum is
	// below it. Zero disables pruning.
	MinRatio float32
	Rule     Rule
	// Workers bounds assignment parallelism. Zero uses GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// Result is the outcome of a k-means run.
type Result struct {
	Centers []*vector.SparseVector
	// Assignments[i] is the center index of input vector i.
	Assignments []int
	// Groups[k] lists the input positions assigned to center k.
	Groups     [][]int
	Iterations int
	Converged  bool
}

// KMeans clusters vectors into cfg.K groups. Seeding is deterministic
// farthest-first traversal starting from vectors[0].
//
// The input vectors are not modified apart from their caches, which are
// filled before the parallel assignment phase. vectors must not contain the
// same pointer twice.
func KMeans(ctx context.Context, vectors []*vector.SparseVector, cfg Config) (*Result, error) {
	if cfg.K <= 0 || cfg.K > len(vectors) {
		return nil, fmt.Errorf("%w: k=%d with %d vectors", ErrInvalidK, cfg.K, len(vectors))
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("%w: vector %d is nil", vector.ErrInvalidArgument, i)
		}
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 20
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	rule := cfg.Rule.AssignFunc()

	for _, v := range vectors {
		v.WarmCaches()
	}
	centers := seedCenters(vectors, cfg.K)

	assignments := make([]int, len(vectors))
	for i := range assignments {
		assignments[i] = -1
	}
	next := make([]int, len(vectors))

	res := &Result{}
	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := assignAll(ctx, vectors, centers, rule, cfg.Workers, next); err != nil {
			return nil, err
		}
		changed := 0
		for i := range next {
			if next[i] != assignments[i] {
				changed++
			}
		}
		copy(assignments, next)
		res.Iterations = iter
		cfg.Logger.DebugContext(ctx, "kmeans iteration", "iteration", iter, "changed", changed)
		if changed == 0 {
			res.Converged = true
			break
		}

		groups := groupIndexes(assignments, cfg.K)
		for k, members := range groups {
			if len(members) == 0 {
				continue
			}
			centers[k] = centerOf(vectors, members, cfg.MinRatio)
		}
	}

	res.Centers = centers
	res.Assignments = assignments
	res.Groups = groupIndexes(assignments, cfg.K)
	cfg.Logger.InfoContext(ctx, "kmeans finished",
		"k", cfg.K,
		"vectors", len(vectors),
		"iterations", res.Iterations,
		"converged", res.Converged,
	)
	return res, nil
}

// seedCenters picks vectors[0] and then, repeatedly, the vector farthest
// from every center chosen so far. Ties go to the lowest index.
func seedCenters(vectors []*vector.SparseVector, k int) []*vector.SparseVector {
	centers := make([]*vector.SparseVector, 0, k)
	used := make([]bool, len(vectors))
	nearest := make([]float32, len(vectors))

	centers = append(centers, vectors[0].Clone())
	used[0] = true
	for i, v := range vectors {
		nearest[i] = v.SquaredDistance(centers[0])
	}
	for len(centers) < k {
		best := -1
		for i := range vectors {
			if used[i] {
				continue
			}
			if best < 0 || nearest[i] > nearest[best] {
				best = i
			}
		}
		used[best] = true
		c := vectors[best].Clone()
		centers = append(centers, c)
		for i, v := range vectors {
			if d := v.SquaredDistance(c); d < nearest[i] {
				nearest[i] = d
			}
		}
	}
	return centers
}

// assignAll writes the center index of every vector into out. Vectors are
// split into contiguous ranges, one goroutine per range; centers are only
// read, so their caches are filled first.
func assignAll(ctx context.Context, vectors, centers []*vector.SparseVector, rule vector.AssignFunc, workers int, out []int) error {
	for _, c := range centers {
		c.WarmCaches()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	step := (len(vectors) + workers - 1) / workers
	for start := 0; start < len(vectors); start += step {
		end := min(start+step, len(vectors))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				idx, err := rule(vectors[i], centers)
				if err != nil {
					return fmt.Errorf("assign vector %d: %w", i, err)
				}
				out[i] = idx
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("assignment: %w", err)
	}
	return nil
}

func groupIndexes(assignments []int, k int) [][]int {
	positions := make([]int, len(assignments))
	for i := range positions {
		positions[i] = i
	}
	// Assignments always come from a selector over k centers, so Partition
	// cannot fail here.
	groups, _ := vector.Partition(positions, k, func(i int) (int, error) { return assignments[i], nil })
	return groups
}

func centerOf(vectors []*vector.SparseVector, members []int, minRatio float32) *vector.SparseVector {
	group := make([]*vector.SparseVector, len(members))
	for i, m := range members {
		group[i] = vectors[m]
	}
	if minRatio > 0 {
		return vector.CentroidWithPruning(group, minRatio)
	}
	return vector.Centroid(group)
}
