package solve

import (
	"context"
	"fmt"

	"github.com/mothorchids/ScaffoQA/internal/qubo"
)

// maxExhaustiveVars bounds full enumeration to 2^24 assignments
const maxExhaustiveVars = 24

// Exhaustive enumerates every binary assignment. Exact and
// deterministic, usable only for small clusters
type Exhaustive struct{}

// Solve enumerates all 2^n assignments and returns the Shots best
func (s *Exhaustive) Solve(ctx context.Context, p *qubo.Problem, cfg Config) ([]Assignment, error) {
	n := p.NumVars()
	if n > maxExhaustiveVars {
		return nil, fmt.Errorf("%w: %d variables, exhaustive limit is %d", ErrTooLarge, n, maxExhaustiveVars)
	}

	shots := cfg.Shots
	if shots < 1 {
		shots = 1
	}

	var asgs []Assignment
	bits := make([]uint8, n)
	for x := uint64(0); x < 1<<uint(n); x++ {
		if x%4096 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		for i := 0; i < n; i++ {
			bits[i] = uint8(x >> uint(i) & 1)
		}
		e, err := p.Energy(bits)
		if err != nil {
			return nil, err
		}

		asgs = append(asgs, Assignment{Bits: append([]uint8(nil), bits...), Energy: e})
		// keep the candidate pool bounded while enumerating
		if len(asgs) > 4*shots {
			asgs = rank(asgs, 2*shots)
		}
	}
	return rank(asgs, shots), nil
}
