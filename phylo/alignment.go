package phylo

import (
	"sort"
	"strings"
)

// MissingBase marks a cell with no informative call; it is excluded
// from distance computation.
const MissingBase byte = 'N'

/*
	An Alignment is the cohort-wide SNP matrix: one row of allele
	calls per sample over the sorted union of every variant position
	seen in the cohort. Rows all share the same width, len(Positions).
*/
type Alignment struct {
	Positions []int    `json:"positions"`
	Labels    []string `json:"labels"`
	Rows      []string `json:"rows"`
}

func (a *Alignment) Width() int {
	return len(a.Positions)
}

// BuildAlignment merges all samples' variant maps into the aligned
// SNP matrix. A cell holds the sample's called base when present,
// the reference base when the position lies within the reference,
// and MissingBase otherwise. Zero samples or zero variant positions
// yield a zero-sized (but well-formed) alignment.
func BuildAlignment(reference string, samples []Sample) *Alignment {
	positionSet := map[int]bool{}
	for _, s := range samples {
		for p, allele := range s.Variants {
			// an empty allele string means "no variant found" upstream
			if len(allele) == 0 {
				continue
			}
			positionSet[p] = true
		}
	}

	positions := make([]int, 0, len(positionSet))
	for p := range positionSet {
		positions = append(positions, p)
	}
	sort.Ints(positions)

	aln := &Alignment{
		Positions: positions,
		Labels:    make([]string, 0, len(samples)),
		Rows:      make([]string, 0, len(samples)),
	}

	for _, s := range samples {
		var row strings.Builder
		row.Grow(len(positions))

		for _, p := range positions {
			if allele, called := s.Variants[p]; called && len(allele) > 0 {
				row.WriteByte(allele[0])
			} else if p >= 1 && p <= len(reference) {
				row.WriteByte(reference[p-1])
			} else {
				row.WriteByte(MissingBase)
			}
		}

		aln.Labels = append(aln.Labels, s.Id)
		aln.Rows = append(aln.Rows, row.String())
	}

	return aln
}
