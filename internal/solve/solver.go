// Package solve runs QUBO problems through pluggable solver backends.
//
// Backends implement a single capability: take a QUBO matrix and a
// configuration, return ranked binary assignments. The quantum and
// classical paths of the pipeline differ only in which backend is
// plugged in, so the encoder and decoder stay backend-agnostic
package solve

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mothorchids/ScaffoQA/internal/qubo"
)

// Sentinel errors for solver backends.
var (
	// ErrUnknownBackend indicates an unrecognized backend name
	ErrUnknownBackend = errors.New("solve: unknown backend")

	// ErrTooLarge indicates a problem beyond a backend's variable limit
	ErrTooLarge = errors.New("solve: problem too large for backend")
)

// Config carries the solver parameters shared by all backends. Depth and
// Shots mirror the ansatz-layer and sampling-repetition knobs of the
// quantum path; the annealer maps them onto sweep count and restarts
type Config struct {
	// Depth scales how long each search runs (quantum: ansatz layers p)
	Depth int

	// Shots is the number of samples to draw (quantum: repetitions s)
	Shots int

	// Seed makes stochastic backends reproducible
	Seed int64
}

// Assignment is one sampled solution with its energy
type Assignment struct {
	Bits   []uint8
	Energy float64
}

// Solver is the capability interface every backend satisfies: solve a
// QUBO, return assignments ranked by ascending energy. Implementations
// must honor ctx cancellation
type Solver interface {
	Solve(ctx context.Context, p *qubo.Problem, cfg Config) ([]Assignment, error)
}

// Backend names accepted by New.
const (
	BackendExhaustive = "exhaustive"
	BackendAnneal     = "anneal"
)

// New returns the named solver backend
func New(backend string) (Solver, error) {
	switch backend {
	case BackendExhaustive:
		return &Exhaustive{}, nil
	case BackendAnneal:
		return &Annealer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// rank sorts assignments ascending by energy, dropping duplicates, and
// truncates to the shot budget
func rank(asgs []Assignment, shots int) []Assignment {
	sort.SliceStable(asgs, func(i, j int) bool { return asgs[i].Energy < asgs[j].Energy })

	seen := make(map[string]bool, len(asgs))
	out := asgs[:0]
	for _, a := range asgs {
		key := string(a.Bits)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	if shots > 0 && len(out) > shots {
		out = out[:shots]
	}
	return out
}
