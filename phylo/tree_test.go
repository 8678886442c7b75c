package phylo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildNJTreeEmptyMatrix(t *testing.T) {
	tree, err := BuildNJTree(&DistanceMatrix{Labels: []string{}, Values: [][]int{}})

	assert.Nil(t, err)
	assert.Nil(t, tree)
	assert.Equal(t, "();", Newick(tree))
}

func TestBuildNJTreeSingleLeaf(t *testing.T) {
	tree, err := BuildNJTree(&DistanceMatrix{
		Labels: []string{"A"},
		Values: [][]int{{0}},
	})

	assert.Nil(t, err)
	assert.True(t, tree.IsLeaf())
	assert.Equal(t, "A;", Newick(tree))
}

func TestBuildNJTreeTwoLeaves(t *testing.T) {
	tree, err := BuildNJTree(&DistanceMatrix{
		Labels: []string{"A", "B"},
		Values: [][]int{
			{0, 3},
			{3, 0},
		},
	})

	assert.Nil(t, err)
	assert.Equal(t, 1, tree.CountInternal())
	assert.Equal(t, 2, tree.CountLeaves())
	assert.Equal(t, "(A:0.00000,B:3.00000)Inner1:0.00000;", Newick(tree))
}

func TestBuildNJTreeTrifurcation(t *testing.T) {
	// d(A,B)=2, d(A,C)=4, d(B,C)=4: the single join must place
	// A and B at 1 and C at 3, satisfying additivity exactly
	tree, err := BuildNJTree(&DistanceMatrix{
		Labels: []string{"A", "B", "C"},
		Values: [][]int{
			{0, 2, 4},
			{2, 0, 4},
			{4, 4, 0},
		},
	})

	assert.Nil(t, err)
	assert.Equal(t, 1, tree.CountInternal())
	assert.Len(t, tree.Children, 3)
	assert.Equal(t, "(A:1.00000,B:1.00000,C:3.00000)Inner1:0.00000;", Newick(tree))
}

func TestBuildNJTreeRecoversAdditiveTree(t *testing.T) {
	// distances generated from ((A:2,B:3):1,C:4,D:5)
	tree, err := BuildNJTree(&DistanceMatrix{
		Labels: []string{"A", "B", "C", "D"},
		Values: [][]int{
			{0, 5, 7, 8},
			{5, 0, 8, 9},
			{7, 8, 0, 9},
			{8, 9, 9, 0},
		},
	})

	assert.Nil(t, err)
	assert.Equal(t, 2, tree.CountInternal())
	assert.Equal(t, 4, tree.CountLeaves())
	assert.Equal(t,
		"((A:2.00000,B:3.00000)Inner1:1.00000,C:4.00000,D:5.00000)Inner2:0.00000;",
		Newick(tree))
}

func TestBuildNJTreeJoinCount(t *testing.T) {
	for _, n := range []int{3, 4, 5, 8, 13} {
		labels := make([]string, n)
		values := make([][]int, n)
		for i := 0; i < n; i++ {
			labels[i] = string(rune('A' + i))
			values[i] = make([]int, n)
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				values[i][j] = i + j
				values[j][i] = i + j
			}
		}

		tree, err := BuildNJTree(&DistanceMatrix{Labels: labels, Values: values})

		assert.Nil(t, err)
		assert.Equal(t, n-2, tree.CountInternal(), "n=%d", n)
		assert.Equal(t, n, tree.CountLeaves(), "n=%d", n)
	}
}

func TestBuildNJTreeTieBreakDeterminism(t *testing.T) {
	// all-equal distances: every pair ties on Q, so the tree is
	// fully determined by the fixed ascending-pair iteration order
	dm := &DistanceMatrix{
		Labels: []string{"A", "B", "C", "D"},
		Values: [][]int{
			{0, 2, 2, 2},
			{2, 0, 2, 2},
			{2, 2, 0, 2},
			{2, 2, 2, 0},
		},
	}

	first, err := BuildNJTree(dm)
	assert.Nil(t, err)

	for run := 0; run < 25; run++ {
		next, nextErr := BuildNJTree(dm)
		assert.Nil(t, nextErr)
		assert.Equal(t, Newick(first), Newick(next))
	}
}

func TestBuildNJTreeNegativeBranchLengthsClamped(t *testing.T) {
	tree, err := BuildNJTree(&DistanceMatrix{
		Labels: []string{"A", "B", "C"},
		Values: [][]int{
			{0, 0, 4},
			{0, 0, 0},
			{4, 0, 0},
		},
	})

	assert.Nil(t, err)

	var walk func(n *Node)
	walk = func(n *Node) {
		assert.GreaterOrEqual(t, n.Length, 0.0)
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(tree)
}

func TestBuildNJTreeInputMatrixNotMutated(t *testing.T) {
	dm := &DistanceMatrix{
		Labels: []string{"A", "B", "C"},
		Values: [][]int{
			{0, 2, 4},
			{2, 0, 4},
			{4, 4, 0},
		},
	}

	_, err := BuildNJTree(dm)

	assert.Nil(t, err)
	assert.Equal(t, [][]int{{0, 2, 4}, {2, 0, 4}, {4, 4, 0}}, dm.Values)
}

func TestBuildNJTreeMalformedMatrices(t *testing.T) {
	asymmetric := &DistanceMatrix{
		Labels: []string{"A", "B", "C"},
		Values: [][]int{
			{0, 2, 4},
			{3, 0, 4},
			{4, 4, 0},
		},
	}
	_, err := BuildNJTree(asymmetric)
	assert.ErrorContains(t, err, "asymmetric")

	nonZeroDiagonal := &DistanceMatrix{
		Labels: []string{"A", "B"},
		Values: [][]int{
			{1, 2},
			{2, 0},
		},
	}
	_, err = BuildNJTree(nonZeroDiagonal)
	assert.ErrorContains(t, err, "diagonal")

	mismatchedDimensions := &DistanceMatrix{
		Labels: []string{"A", "B", "C"},
		Values: [][]int{
			{0, 2},
			{2, 0},
		},
	}
	_, err = BuildNJTree(mismatchedDimensions)
	assert.ErrorContains(t, err, "rows")

	raggedRow := &DistanceMatrix{
		Labels: []string{"A", "B"},
		Values: [][]int{
			{0, 2},
			{2},
		},
	}
	_, err = BuildNJTree(raggedRow)
	assert.ErrorContains(t, err, "width")
}
