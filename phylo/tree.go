package phylo

import (
	"fmt"
)

/*
	Neighbor-joining (Saitou-Nei) tree construction over a SNP
	distance matrix.

	The produced tree is unrooted: its "root" node is the final
	unresolved trifurcation left over once no further pair can be
	resolved. Leaves carry sample labels; internal nodes are named
	Inner1, Inner2, ... in join order so that two runs over the same
	matrix emit bit-identical Newick strings.
*/

type Node struct {
	Name     string  `json:"name"`
	Length   float64 `json:"length"`
	Children []*Node `json:"children,omitempty"`
}

func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// CountInternal returns the number of internal (non-leaf) nodes.
func (n *Node) CountInternal() int {
	if n == nil || n.IsLeaf() {
		return 0
	}
	count := 1
	for _, child := range n.Children {
		count += child.CountInternal()
	}
	return count
}

// CountLeaves returns the number of leaf nodes.
func (n *Node) CountLeaves() int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	count := 0
	for _, child := range n.Children {
		count += child.CountLeaves()
	}
	return count
}

// BuildNJTree runs neighbor joining over dm and returns the tree's
// terminal trifurcation (nil for an empty matrix). The input matrix
// is copied, never mutated. A malformed matrix (non-square rows,
// asymmetry, nonzero diagonal) is a precondition violation and
// returns an error rather than a silently wrong tree.
func BuildNJTree(dm *DistanceMatrix) (*Node, error) {
	if err := validateMatrix(dm); err != nil {
		return nil, err
	}

	n := len(dm.Labels)
	switch n {
	case 0:
		return nil, nil
	case 1:
		return &Node{Name: dm.Labels[0]}, nil
	case 2:
		// a single edge; keep both leaves as children so the pair
		// serializes the same way as any other cherry
		return &Node{
			Name: "Inner1",
			Children: []*Node{
				{Name: dm.Labels[0], Length: 0},
				{Name: dm.Labels[1], Length: float64(dm.Values[0][1])},
			},
		}, nil
	}

	// active cluster set, with a working copy of the distance matrix
	active := make([]*Node, n)
	for i, label := range dm.Labels {
		active[i] = &Node{Name: label}
	}
	dist := make([][]float64, n)
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			dist[i][j] = float64(dm.Values[i][j])
		}
	}

	joins := 0
	var inner *Node

	for len(active) > 2 {
		r := len(active)

		// divergence of each active cluster
		div := make([]float64, r)
		for i := 0; i < r; i++ {
			total := 0.0
			for k := 0; k < r; k++ {
				total += dist[i][k]
			}
			div[i] = total
		}

		// pick the pair minimizing the NJ criterion; strict less-than
		// keeps the first-encountered pair on ties, making the result
		// reproducible
		minI, minJ := 0, 1
		minQ := 0.0
		first := true
		for i := 0; i < r; i++ {
			for j := i + 1; j < r; j++ {
				q := float64(r-2)*dist[i][j] - div[i] - div[j]
				if first || q < minQ {
					minQ = q
					minI, minJ = i, j
					first = false
				}
			}
		}

		// branch lengths from the joined pair to the new node
		lengthI := dist[minI][minJ]/2 + (div[minI]-div[minJ])/(2*float64(r-2))
		lengthJ := dist[minI][minJ] - lengthI
		if lengthI < 0 {
			lengthI = 0
		}
		if lengthJ < 0 {
			lengthJ = 0
		}

		joins++
		childI, childJ := active[minI], active[minJ]
		childI.Length = lengthI
		childJ.Length = lengthJ
		inner = &Node{
			Name:     fmt.Sprintf("Inner%d", joins),
			Children: []*Node{childI, childJ},
		}

		// distances from the new cluster to every remaining cluster
		newRow := make([]float64, r)
		for k := 0; k < r; k++ {
			if k == minI || k == minJ {
				continue
			}
			newRow[k] = (dist[minI][k] + dist[minJ][k] - dist[minI][minJ]) / 2
		}

		// the new cluster takes the lower index; the higher one is removed
		active[minI] = inner
		for k := 0; k < r; k++ {
			dist[minI][k] = newRow[k]
			dist[k][minI] = newRow[k]
		}
		dist[minI][minI] = 0

		active = append(active[:minJ], active[minJ+1:]...)
		for k := 0; k < r; k++ {
			dist[k] = append(dist[k][:minJ], dist[k][minJ+1:]...)
		}
		dist = append(dist[:minJ], dist[minJ+1:]...)
	}

	// attach the remaining cluster to the last internal node,
	// completing the terminal trifurcation
	root, other := active[0], active[1]
	if root != inner {
		root, other = other, root
	}
	other.Length = dist[0][1]
	root.Length = 0
	root.Children = append(root.Children, other)

	return root, nil
}

func validateMatrix(dm *DistanceMatrix) error {
	n := len(dm.Labels)
	if len(dm.Values) != n {
		return fmt.Errorf("distance matrix has %d rows for %d labels", len(dm.Values), n)
	}
	for i, row := range dm.Values {
		if len(row) != n {
			return fmt.Errorf("distance matrix row %d has width %d, expected %d", i, len(row), n)
		}
		if row[i] != 0 {
			return fmt.Errorf("distance matrix diagonal entry (%d,%d) is %d, expected 0", i, i, row[i])
		}
		for j := i + 1; j < n; j++ {
			if row[j] != dm.Values[j][i] {
				return fmt.Errorf("distance matrix is asymmetric at (%d,%d): %d != %d", i, j, row[j], dm.Values[j][i])
			}
		}
	}
	return nil
}
