package phylo

import (
	"runtime"
	"sync"
)

/*
	A DistanceMatrix is the square, symmetric, zero-diagonal matrix
	of pairwise SNP distances between cohort samples, indexed in the
	same order as the alignment rows it was computed from.
*/
type DistanceMatrix struct {
	Labels []string `json:"labels"`
	Values [][]int  `json:"values"`
}

func (dm *DistanceMatrix) Size() int {
	return len(dm.Labels)
}

// ComputeDistances counts, for every unordered pair of samples, the
// columns where both rows carry a non-missing base and the bases
// differ. Missing cells drop out of the comparison entirely, so a
// pair with no shared informative column ends up at distance 0.
// Rows are processed concurrently; every goroutine writes a disjoint
// set of cells.
func ComputeDistances(aln *Alignment) *DistanceMatrix {
	n := len(aln.Rows)

	dm := &DistanceMatrix{
		Labels: aln.Labels,
		Values: make([][]int, n),
	}
	for i := 0; i < n; i++ {
		dm.Values[i] = make([]int, n)
	}

	// "row processing queue"
	// - manage # of rows being concurrently compared at any given time
	rowProcessingQueue := make(chan bool, runtime.NumCPU())

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		// take a spot in the queue
		rowProcessingQueue <- true
		wg.Add(1)

		go func(i int) {
			// free up a spot in the queue
			defer func() { <-rowProcessingQueue }()
			defer wg.Done()

			for j := i + 1; j < n; j++ {
				dist := pairwiseDistance(aln.Rows[i], aln.Rows[j])
				dm.Values[i][j] = dist
				dm.Values[j][i] = dist
			}
		}(i)
	}
	wg.Wait()

	return dm
}

func pairwiseDistance(rowA string, rowB string) int {
	dist := 0
	for k := 0; k < len(rowA) && k < len(rowB); k++ {
		if rowA[k] != MissingBase && rowB[k] != MissingBase && rowA[k] != rowB[k] {
			dist++
		}
	}
	return dist
}
