package solve

import (
	"context"
	"math"
	"math/rand"

	"github.com/mothorchids/ScaffoQA/internal/qubo"
)

// Annealer is a simulated-annealing backend: single-bit-flip Metropolis
// search under a geometric cooling schedule. Shots independent restarts
// are run, each from its own seeded generator, so results are
// reproducible for a fixed Config.Seed
type Annealer struct{}

// Solve draws cfg.Shots annealed samples of the problem. Depth scales
// the sweep budget per restart
func (s *Annealer) Solve(ctx context.Context, p *qubo.Problem, cfg Config) ([]Assignment, error) {
	n := p.NumVars()
	shots := cfg.Shots
	if shots < 1 {
		shots = 1
	}
	depth := cfg.Depth
	if depth < 1 {
		depth = 1
	}
	sweeps := 100 * depth

	// initial temperature tracks the largest coefficient magnitude so
	// early sweeps accept almost any move
	tStart := 1.0
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if c := math.Abs(p.Q.At(i, j)); c > tStart {
				tStart = c
			}
		}
	}
	const tEnd = 1e-3
	cool := math.Pow(tEnd/tStart, 1/float64(maxInt(1, sweeps-1)))

	var asgs []Assignment
	for shot := 0; shot < shots; shot++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rng := rand.New(rand.NewSource(cfg.Seed + int64(shot)))
		bits := make([]uint8, n)
		for i := range bits {
			bits[i] = uint8(rng.Intn(2))
		}
		energy, err := p.Energy(bits)
		if err != nil {
			return nil, err
		}

		temp := tStart
		for sweep := 0; sweep < sweeps; sweep++ {
			for step := 0; step < n; step++ {
				i := rng.Intn(n)
				delta := flipDelta(p, bits, i)
				if delta < 0 || rng.Float64() < math.Exp(-delta/temp) {
					bits[i] ^= 1
					energy += delta
				}
			}
			temp *= cool
		}

		asgs = append(asgs, Assignment{Bits: append([]uint8(nil), bits...), Energy: energy})
	}
	return rank(asgs, 0), nil
}

// flipDelta is the energy change from flipping bit i:
// (1-2x_i) * (Q_ii + 2 * sum_j!=i Q_ij x_j)
func flipDelta(p *qubo.Problem, bits []uint8, i int) float64 {
	sum := p.Q.At(i, i)
	for j := 0; j < len(bits); j++ {
		if j != i && bits[j] != 0 {
			sum += 2 * p.Q.At(i, j)
		}
	}
	if bits[i] != 0 {
		return -sum
	}
	return sum
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
