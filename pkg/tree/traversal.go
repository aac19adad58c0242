package tree

// Postorder returns every node with children before their parent, children
// visited left to right. The walk is iterative, so deep trees are safe.
func (t *Tree) Postorder() []*Node {
	if t == nil || t.Root == nil {
		return nil
	}
	return Postorder(t.Root)
}

// Preorder returns every node with parents before their children, children
// visited left to right.
func (t *Tree) Preorder() []*Node {
	if t == nil || t.Root == nil {
		return nil
	}
	return Preorder(t.Root)
}

// Leaves returns the tips in left-to-right order.
func (t *Tree) Leaves() []*Node {
	if t == nil || t.Root == nil {
		return nil
	}
	return Leaves(t.Root)
}

// Postorder returns the subtree rooted at n in postorder.
func Postorder(n *Node) []*Node {
	type frame struct {
		node *Node
		next int
	}
	var out []*Node
	stack := []frame{{node: n}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.node.Children) {
			c := top.node.Children[top.next]
			top.next++
			stack = append(stack, frame{node: c})
			continue
		}
		out = append(out, top.node)
		stack = stack[:len(stack)-1]
	}
	return out
}

// Preorder returns the subtree rooted at n in preorder.
func Preorder(n *Node) []*Node {
	var out []*Node
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return out
}

// Leaves returns the tips of the subtree rooted at n, left to right.
func Leaves(n *Node) []*Node {
	var out []*Node
	for _, c := range Preorder(n) {
		if c.IsTip() {
			out = append(out, c)
		}
	}
	return out
}

// Ancestors returns the chain of parents from n up to the root, nearest first.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for p := n.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	return out
}
