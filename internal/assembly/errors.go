package assembly

import "errors"

// Sentinel errors for graph construction and sequence parsing.
var (
	// ErrInvalidK indicates a k-mer size outside [1, shortest unitig length]
	ErrInvalidK = errors.New("assembly: invalid k-mer size")

	// ErrInvalidSequence indicates a sequence with characters outside ACGT
	ErrInvalidSequence = errors.New("assembly: invalid sequence")

	// ErrInvalidLink indicates a malformed L:<sign>:<target>:<sign> link tag
	ErrInvalidLink = errors.New("assembly: invalid link tag")

	// ErrNodeNotFound indicates an operation referenced an unknown node
	ErrNodeNotFound = errors.New("assembly: node not found")

	// ErrBrokenPath indicates a path whose consecutive sequences do not
	// overlap by k-1 bases
	ErrBrokenPath = errors.New("assembly: path sequences do not overlap")
)
