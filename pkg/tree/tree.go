package tree

// DefaultLength is the branch length assumed for nodes that have none.
const DefaultLength = 1.0

// Node is a single vertex of a tree.
type Node struct {
	// Name identifies the node. Empty means unlabeled.
	Name string
	// Length is the branch length to the parent. Nil means unknown.
	Length *float64
	// Children are owned by the node, in drawing order.
	Children []*Node

	parent *Node

	// Layout output.
	X, Y      float64
	Angle     float64
	Radius    float64
	LeafCount int
}

// NewNode returns an unattached node. A negative length means "no length".
func NewNode(name string, length float64) *Node {
	n := &Node{Name: name}
	if length >= 0 {
		n.SetLength(length)
	}
	return n
}

// AddChild appends c to n's children, links c back to n, and returns c.
func (n *Node) AddChild(c *Node) *Node {
	c.parent = n
	n.Children = append(n.Children, c)
	return c
}

// Parent returns the node's parent, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// IsTip reports whether n has no children.
func (n *Node) IsTip() bool { return len(n.Children) == 0 }

// SetLength sets the branch length.
func (n *Node) SetLength(v float64) { n.Length = &v }

// BranchLength returns the branch length, or DefaultLength when unset.
func (n *Node) BranchLength() float64 {
	if n.Length == nil {
		return DefaultLength
	}
	return *n.Length
}

// Tree is the set of nodes reachable from Root.
type Tree struct {
	Root *Node
}

// New wraps root in a Tree and repairs every parent back-link below it,
// so trees built from struct literals behave like ones built with AddChild.
func New(root *Node) *Tree {
	t := &Tree{Root: root}
	if root == nil {
		return t
	}
	root.parent = nil
	for _, n := range t.Preorder() {
		for _, c := range n.Children {
			c.parent = n
		}
	}
	return t
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	if t == nil || t.Root == nil {
		return 0
	}
	return len(t.Preorder())
}

// Find returns the first node in preorder named name, or nil.
func (t *Tree) Find(name string) *Node {
	for _, n := range t.Preorder() {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Index maps every node name to its node. Later duplicates are ignored.
func (t *Tree) Index() map[string]*Node {
	nodes := t.Preorder()
	idx := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		if _, ok := idx[n.Name]; !ok {
			idx[n.Name] = n
		}
	}
	return idx
}
