package phylo

import (
	"fmt"
	"strings"
)

// EmptyTree is the placeholder token emitted when there is nothing
// to build a tree from (no samples, or no variant columns).
const EmptyTree = "();"

// Newick serializes a tree in Newick notation, branch lengths
// formatted to five decimal places, terminated by a semicolon.
func Newick(root *Node) string {
	if root == nil {
		return EmptyTree
	}

	var sb strings.Builder
	writeNewick(&sb, root, true)
	sb.WriteByte(';')
	return sb.String()
}

func writeNewick(sb *strings.Builder, node *Node, isRoot bool) {
	if !node.IsLeaf() {
		sb.WriteByte('(')
		for i, child := range node.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeNewick(sb, child, false)
		}
		sb.WriteByte(')')
	}

	sb.WriteString(node.Name)
	if !isRoot || !node.IsLeaf() {
		fmt.Fprintf(sb, ":%1.5f", node.Length)
	}
}
