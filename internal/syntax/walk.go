package syntax

// WalkFunc is called for every node in document pre-order. ancestors is the
// path from the root down to the node's parent, so ancestors[len-1] is the
// parent. The slice is reused between calls and must not be retained.
// Returning false stops the walk.
type WalkFunc func(n *Node, ancestors []*Node) bool

// Walk visits root and all of its descendants in pre-order, maintaining an
// explicit ancestor stack. It reports whether the walk ran to completion.
func Walk(root *Node, fn WalkFunc) bool {
	if root == nil {
		return true
	}
	stack := make([]*Node, 0, 32)
	return walk(root, &stack, fn)
}

func walk(n *Node, stack *[]*Node, fn WalkFunc) bool {
	if !fn(n, *stack) {
		return false
	}
	*stack = append(*stack, n)
	for _, c := range n.Children {
		if !walk(c, stack, fn) {
			*stack = (*stack)[:len(*stack)-1]
			return false
		}
	}
	*stack = (*stack)[:len(*stack)-1]
	return true
}

// Ancestor returns the ancestor `up` levels above the current node: 1 is
// the parent, 2 the grandparent. It returns nil past the root.
func Ancestor(ancestors []*Node, up int) *Node {
	if up < 1 || up > len(ancestors) {
		return nil
	}
	return ancestors[len(ancestors)-up]
}
