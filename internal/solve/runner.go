package solve

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mothorchids/ScaffoQA/internal/assembly"
	"github.com/mothorchids/ScaffoQA/internal/decompose"
	"github.com/mothorchids/ScaffoQA/internal/qubo"
)

// ClusterResult is the outcome of encoding, solving, and decoding one
// cluster of a partition. A failed cluster carries its error and a nil
// path; it never aborts the other clusters
type ClusterResult struct {
	// Cluster is the index into the partition's cluster list
	Cluster int

	// Path is the decoded candidate path, nil on failure
	Path *qubo.CandidatePath

	// Variables is the encoded problem size, 0 if encoding failed
	Variables int

	// Err is the failure, if any: encoding overflow, solver timeout or
	// error, or an unrepairable decode
	Err error
}

// Runner drives the per-cluster pipeline stage concurrently. Clusters
// are independent, so encoding and solving run in parallel over the
// shared read-only graph, bounded by Workers
type Runner struct {
	// Solver executes each cluster's QUBO
	Solver Solver

	// Workers bounds concurrent clusters; <1 means one
	Workers int

	// Weights configures each cluster's encoding
	Weights qubo.Weights

	// MaxVariables is the encoder's per-cluster variable ceiling
	MaxVariables int

	// Timeout bounds each solver call; zero means no limit
	Timeout time.Duration
}

// Run encodes, solves, and decodes every cluster of the partition.
// Results arrive indexed by cluster; a per-cluster failure is recorded
// in its result and the remaining clusters proceed
func (r *Runner) Run(ctx context.Context, g *assembly.Graph, part *decompose.Partition, cfg Config) []ClusterResult {
	results := make([]ClusterResult, len(part.Clusters))

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for ci := range part.Clusters {
		ci := ci
		eg.Go(func() error {
			results[ci] = r.runCluster(ctx, g, part.Clusters[ci], ci, cfg)
			return nil
		})
	}
	// workers never return errors; failures live in their results
	_ = eg.Wait()
	return results
}

func (r *Runner) runCluster(ctx context.Context, g *assembly.Graph, cluster []string, ci int, cfg Config) ClusterResult {
	res := ClusterResult{Cluster: ci}

	sub, err := g.Subgraph(cluster)
	if err != nil {
		res.Err = fmt.Errorf("cluster %d: %w", ci, err)
		return res
	}

	prob, err := qubo.Encode(sub, r.Weights, r.MaxVariables)
	if err != nil {
		res.Err = fmt.Errorf("cluster %d: %w", ci, err)
		return res
	}
	res.Variables = prob.NumVars()

	solveCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	asgs, err := r.Solver.Solve(solveCtx, prob, cfg)
	if err != nil {
		res.Err = fmt.Errorf("cluster %d: solver: %w", ci, err)
		return res
	}

	bits := make([][]uint8, len(asgs))
	for i, a := range asgs {
		bits[i] = a.Bits
	}
	path, _, err := qubo.DecodeBest(sub, prob, bits)
	if err != nil {
		res.Err = fmt.Errorf("cluster %d: %w", ci, err)
		return res
	}
	res.Path = path
	return res
}
