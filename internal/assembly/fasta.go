package assembly

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Link is a signed adjacency tag from a unitig header: "L:<sign>:<target>:<sign>".
// A '+' sign refers to the unitig as written, '-' to its reverse complement
type Link struct {
	// SignBegin is the orientation of the source unitig: '+' or '-'
	SignBegin byte

	// Target is the ID of the linked unitig
	Target string

	// SignEnd is the orientation of the target unitig: '+' or '-'
	SignEnd byte
}

// Record is one parsed unitig entry: the unitig itself plus the
// optional metadata carried on its FASTA header line
type Record struct {
	Unitig

	// Length is the declared LN:i: length from the header, or -1 if absent
	Length int

	// Links are the L: adjacency tags from the header, in header order
	Links []Link
}

// ReadUnitigFile opens and parses a unitig FASTA file
func ReadUnitigFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open unitig file: %w", err)
	}
	defer f.Close()

	recs, err := ReadUnitigs(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return recs, nil
}

// ReadUnitigs parses unitig records from FASTA formatted input. Headers
// may carry GFA-style LN:i:<length> and L:<sign>:<target>:<sign> tags
// in their description, eg ">12 LN:i:240 L:+:13:- L:-:7:+"
func ReadUnitigs(r io.Reader) ([]Record, error) {
	fr := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA))

	var recs []Record
	seen := make(map[string]bool)
	for {
		s, err := fr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		l := s.(*linear.Seq)
		seq := strings.ToUpper(l.Seq.String())
		if err := validateSeq(seq); err != nil {
			return nil, fmt.Errorf("unitig %s: %w", l.ID, err)
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("%w: duplicate unitig ID %s", ErrInvalidSequence, l.ID)
		}
		seen[l.ID] = true

		rec := Record{
			Unitig: Unitig{ID: l.ID, Seq: seq},
			Length: -1,
		}
		for _, field := range strings.Fields(l.Desc) {
			switch {
			case strings.HasPrefix(field, "LN:"):
				n, err := parseLength(field)
				if err != nil {
					return nil, fmt.Errorf("unitig %s: %w", l.ID, err)
				}
				rec.Length = n
			case strings.HasPrefix(field, "L:"):
				link, err := parseLink(field)
				if err != nil {
					return nil, fmt.Errorf("unitig %s: %w", l.ID, err)
				}
				rec.Links = append(rec.Links, link)
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// parseLength parses an LN:i:<n> header tag
func parseLength(field string) (int, error) {
	parts := strings.Split(field, ":")
	if len(parts) != 3 || parts[0] != "LN" {
		return 0, fmt.Errorf("%w: bad length tag %q", ErrInvalidLink, field)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad length tag %q", ErrInvalidLink, field)
	}
	return n, nil
}

// parseLink parses an L:<sign>:<target>:<sign> header tag
func parseLink(field string) (Link, error) {
	parts := strings.Split(field, ":")
	if len(parts) != 4 || parts[0] != "L" {
		return Link{}, fmt.Errorf("%w: %q", ErrInvalidLink, field)
	}
	if !validSign(parts[1]) || !validSign(parts[3]) {
		return Link{}, fmt.Errorf("%w: bad sign in %q", ErrInvalidLink, field)
	}
	if parts[2] == "" {
		return Link{}, fmt.Errorf("%w: empty target in %q", ErrInvalidLink, field)
	}
	return Link{
		SignBegin: parts[1][0],
		Target:    parts[2],
		SignEnd:   parts[3][0],
	}, nil
}

func validSign(s string) bool {
	return s == "+" || s == "-"
}
