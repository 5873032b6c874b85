package marketplace

// CategoryNode is one node of the marketplace category tree. Only leaf
// categories accept product submissions.
type CategoryNode struct {
	ID       int
	Name     string
	ParentID *int
	Children []CategoryNode
}

// IsLeaf reports whether the node has no children.
func (n CategoryNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Leaves returns every leaf category under the given roots in pre-order.
// Pre-order keeps the result deterministic for a given tree, which the
// resolver relies on for tie-breaking.
func Leaves(roots []CategoryNode) []CategoryNode {
	var out []CategoryNode
	var walk func(nodes []CategoryNode)
	walk = func(nodes []CategoryNode) {
		for _, n := range nodes {
			if n.IsLeaf() {
				out = append(out, n)
				continue
			}
			walk(n.Children)
		}
	}
	walk(roots)
	return out
}

// FindCategory locates a category by id anywhere in the tree.
func FindCategory(roots []CategoryNode, id int) (CategoryNode, bool) {
	for _, n := range roots {
		if n.ID == id {
			return n, true
		}
		if found, ok := FindCategory(n.Children, id); ok {
			return found, true
		}
	}
	return CategoryNode{}, false
}
