package phylo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDistancesIdenticalCalls(t *testing.T) {
	samples := []Sample{
		{Id: "X", Variants: map[int]string{1: "C"}},
		{Id: "Y", Variants: map[int]string{1: "C"}},
	}
	aln := BuildAlignment("AAAA", samples)

	dm := ComputeDistances(aln)

	assert.Equal(t, 0, dm.Values[0][1])
}

func TestComputeDistancesReferenceFallbackMismatch(t *testing.T) {
	samples := []Sample{
		{Id: "X", Variants: map[int]string{1: "C"}},
		{Id: "Y", Variants: map[int]string{}},
	}
	aln := BuildAlignment("AAAA", samples)

	dm := ComputeDistances(aln)

	assert.Equal(t, 1, dm.Values[0][1])
	assert.Equal(t, 1, dm.Values[1][0])
}

func TestComputeDistancesSymmetryAndZeroDiagonal(t *testing.T) {
	samples := []Sample{
		{Id: "A", Variants: map[int]string{1: "C", 3: "G"}},
		{Id: "B", Variants: map[int]string{1: "T"}},
		{Id: "C", Variants: map[int]string{2: "G", 3: "G"}},
	}
	aln := BuildAlignment("AAAA", samples)

	dm := ComputeDistances(aln)

	for i := 0; i < dm.Size(); i++ {
		assert.Equal(t, 0, dm.Values[i][i])
		for j := 0; j < dm.Size(); j++ {
			assert.Equal(t, dm.Values[i][j], dm.Values[j][i])
		}
	}
	// rows are "CAG" and "TAA": mismatches at positions 1 and 3
	assert.Equal(t, 2, dm.Values[0][1])
}

func TestComputeDistancesExactCounts(t *testing.T) {
	aln := &Alignment{
		Positions: []int{1, 2, 3},
		Labels:    []string{"A", "B"},
		Rows:      []string{"CAG", "TAA"},
	}

	dm := ComputeDistances(aln)

	assert.Equal(t, 2, dm.Values[0][1])
}

func TestComputeDistancesMissingDataExcluded(t *testing.T) {
	aln := &Alignment{
		Positions: []int{1, 2, 3},
		Labels:    []string{"A", "B"},
		Rows:      []string{"CNG", "TAN"},
	}

	dm := ComputeDistances(aln)

	// only column 1 has two informative, differing bases
	assert.Equal(t, 1, dm.Values[0][1])
}

func TestComputeDistancesNoSharedInformativeColumns(t *testing.T) {
	aln := &Alignment{
		Positions: []int{1, 2},
		Labels:    []string{"A", "B"},
		Rows:      []string{"NC", "TN"},
	}

	dm := ComputeDistances(aln)

	assert.Equal(t, 0, dm.Values[0][1], "no shared informative column yields 0, not an error")
}

func TestComputeDistancesZeroWidthAlignment(t *testing.T) {
	aln := &Alignment{
		Positions: []int{},
		Labels:    []string{"A", "B", "C"},
		Rows:      []string{"", "", ""},
	}

	dm := ComputeDistances(aln)

	assert.Equal(t, 3, dm.Size())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, 0, dm.Values[i][j])
		}
	}
}
