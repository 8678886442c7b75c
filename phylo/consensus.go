package phylo

// Consensus projects a sample's variant calls onto the reference,
// returning the sample's full-length reconstructed sequence. Variant
// positions outside [1, len(reference)] are skipped, not errors.
func Consensus(reference string, s Sample) string {
	seq := []byte(reference)

	for pos, allele := range s.Variants {
		if len(allele) == 0 {
			continue
		}
		if pos >= 1 && pos <= len(seq) {
			seq[pos-1] = allele[0]
		}
	}

	return string(seq)
}
