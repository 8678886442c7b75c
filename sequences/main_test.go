package sequences

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTempFasta(t *testing.T, content string) string {
	t.Helper()
	p := path.Join(t.TempDir(), "ref.fasta")
	assert.Nil(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadReference(t *testing.T) {
	p := writeTempFasta(t, ">NC_000962.3 Mycobacterium tuberculosis H37Rv\nacgt\nACGT\n")

	seq, id, err := LoadReference(p)

	assert.Nil(t, err)
	assert.Equal(t, "NC_000962.3", id)
	assert.Equal(t, "ACGTACGT", seq, "sequence lines are concatenated and uppercased")
}

func TestLoadReferenceOnlyFirstRecord(t *testing.T) {
	p := writeTempFasta(t, ">ref\nACGT\n>other\nTTTT\n")

	seq, id, err := LoadReference(p)

	assert.Nil(t, err)
	assert.Equal(t, "ref", id)
	assert.Equal(t, "ACGT", seq)
}

func TestLoadReferenceEmptyFile(t *testing.T) {
	p := writeTempFasta(t, "")

	_, _, err := LoadReference(p)

	assert.ErrorContains(t, err, "no FASTA record")
}

func TestLoadReferenceSequenceBeforeHeader(t *testing.T) {
	p := writeTempFasta(t, "ACGT\n>ref\nACGT\n")

	_, _, err := LoadReference(p)

	assert.ErrorContains(t, err, "malformed FASTA")
}

func TestLoadReferenceMissingFile(t *testing.T) {
	_, _, err := LoadReference(path.Join(t.TempDir(), "nope.fasta"))

	assert.NotNil(t, err)
}
