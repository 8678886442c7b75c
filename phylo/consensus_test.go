package phylo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsensusSubstitutesCalledBases(t *testing.T) {
	s := Sample{Id: "S1", Variants: map[int]string{2: "T"}}

	assert.Equal(t, "ATGT", Consensus("ACGT", s))
}

func TestConsensusEmptyVariantMapEqualsReference(t *testing.T) {
	s := Sample{Id: "S1", Variants: map[int]string{}}

	assert.Equal(t, "ACGT", Consensus("ACGT", s))
}

func TestConsensusMultiCharacterAlleleUsesFirstBase(t *testing.T) {
	s := Sample{Id: "S1", Variants: map[int]string{1: "GTT"}}

	assert.Equal(t, "GCGT", Consensus("ACGT", s))
}

func TestConsensusSkipsPositionsOutsideReference(t *testing.T) {
	s := Sample{Id: "S1", Variants: map[int]string{0: "G", 5: "G", 99: "T"}}

	assert.Equal(t, "ACGT", Consensus("ACGT", s))
}

func TestConsensusSkipsEmptyAlleles(t *testing.T) {
	s := Sample{Id: "S1", Variants: map[int]string{2: ""}}

	assert.Equal(t, "ACGT", Consensus("ACGT", s))
}

func TestConsensusLengthAlwaysMatchesReference(t *testing.T) {
	reference := "ACGTACGTAC"
	s := Sample{Id: "S1", Variants: map[int]string{1: "T", 10: "G", 11: "C"}}

	consensus := Consensus(reference, s)

	assert.Len(t, consensus, len(reference))
	assert.Equal(t, "TCGTACGTAG", consensus)
}
