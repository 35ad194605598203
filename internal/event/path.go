package event

// Root returns the topmost ancestor of n, or n itself.
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Path returns the child indices leading from the root to n.
// The root's path is empty.
func (n *Node) Path() []int {
	depth := 0
	for cur := n; cur.parent != nil; cur = cur.parent {
		depth++
	}
	path := make([]int, depth)
	for cur := n; cur.parent != nil; cur = cur.parent {
		depth--
		path[depth] = cur.Index()
	}
	return path
}

// NodeAt resolves a path of child indices relative to n.
func (n *Node) NodeAt(path []int) (*Node, error) {
	cur := n
	for depth, idx := range path {
		if idx < 0 || idx >= len(cur.children) {
			return nil, &PathError{Path: path, Depth: depth, Children: len(cur.children)}
		}
		cur = cur.children[idx]
	}
	return cur, nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{n, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.depth) {
			continue
		}
		for i := len(f.node.children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.children[i], f.depth + 1})
		}
	}
}
