package utils

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"strainmap/api/phylo"
)

/*
	Writers for the pipeline's tabular and sequence outputs. These
	are plain serialization; all the interesting decisions are made
	upstream of them.
*/

const fastaLineWidth = 60

// distance matrix rows are tagged the way snp-dists emits them so
// downstream tooling accepts the file unchanged
const distanceMatrixTag = "snp-dists"

func WriteMetadataTsv(path string, metadata []phylo.Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "sample_id\tpatient_id\tlatitude\tlongitude\tconclusion")
	for _, m := range metadata {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.SampleId, m.PatientId, m.Latitude, m.Longitude, m.Conclusion)
	}
	return w.Flush()
}

func WriteDistanceMatrixTsv(path string, dm *phylo.DistanceMatrix) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%s\t%s\n", distanceMatrixTag, strings.Join(dm.Labels, "\t"))
	for i, label := range dm.Labels {
		cells := make([]string, len(dm.Values[i]))
		for j, d := range dm.Values[i] {
			cells[j] = strconv.Itoa(d)
		}
		fmt.Fprintf(w, "%s\t%s\n", label, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func WriteNewickFile(path string, tree *phylo.Node) error {
	return os.WriteFile(path, []byte(phylo.Newick(tree)+"\n"), 0644)
}

func WriteFasta(path string, names []string, sequences []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, name := range names {
		fmt.Fprintf(w, ">%s\n", name)
		seq := sequences[i]
		for start := 0; start < len(seq); start += fastaLineWidth {
			end := start + fastaLineWidth
			if end > len(seq) {
				end = len(seq)
			}
			fmt.Fprintln(w, seq[start:end])
		}
	}
	return w.Flush()
}
