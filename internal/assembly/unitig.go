package assembly

import (
	"fmt"
)

// Unitig is a maximal non-branching sequence fragment parsed from the
// input unitig file. Unitigs are immutable once parsed
type Unitig struct {
	// ID is the unitig's identifier from the FASTA header
	ID string

	// Seq is the nucleotide sequence, uppercase ACGT
	Seq string
}

// Len is the number of bases in the unitig's sequence
func (u Unitig) Len() int {
	return len(u.Seq)
}

// complement maps each nucleotide to its Watson-Crick partner
var complement = map[byte]byte{
	'A': 'T',
	'T': 'A',
	'C': 'G',
	'G': 'C',
}

// ReverseComplement returns the reverse complement of a DNA sequence.
// The sequence must contain only ACGT (uppercase)
func ReverseComplement(seq string) (string, error) {
	rc := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		c, ok := complement[seq[len(seq)-1-i]]
		if !ok {
			return "", fmt.Errorf("%w: invalid nucleotide %q in sequence", ErrInvalidSequence, seq[len(seq)-1-i])
		}
		rc[i] = c
	}
	return string(rc), nil
}

// validateSeq checks that a sequence is non-empty and contains only ACGT
func validateSeq(seq string) error {
	if seq == "" {
		return fmt.Errorf("%w: empty sequence", ErrInvalidSequence)
	}
	for i := 0; i < len(seq); i++ {
		if _, ok := complement[seq[i]]; !ok {
			return fmt.Errorf("%w: invalid nucleotide %q at index %d", ErrInvalidSequence, seq[i], i)
		}
	}
	return nil
}
