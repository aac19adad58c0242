package layout

import (
	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/tree"
)

// Point is a position in layout coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodePosition is the layout of a single node.
type NodePosition struct {
	Name   string  `json:"name"`
	Parent string  `json:"parent,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Angle  float64 `json:"angle"`
	Radius float64 `json:"radius"`
	IsTip  bool    `json:"is_tip"`
}

// Result is a serializable snapshot of a laid out tree.
type Result struct {
	Scale     float64          `json:"scale"`
	Positions map[string]Point `json:"positions"`
	Nodes     []NodePosition   `json:"nodes"`
}

// Edge is a parent to child segment.
type Edge struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
}

// Export snapshots the current node positions of t. Nodes are listed in
// postorder, matching the order renderers consume.
func Export(t *tree.Tree, scale float64) Result {
	post := t.Postorder()
	r := Result{
		Scale:     scale,
		Positions: make(map[string]Point, len(post)),
		Nodes:     make([]NodePosition, len(post)),
	}
	for i, n := range post {
		np := NodePosition{
			Name:   n.Name,
			X:      n.X,
			Y:      n.Y,
			Angle:  n.Angle,
			Radius: n.Radius,
			IsTip:  n.IsTip(),
		}
		if p := n.Parent(); p != nil {
			np.Parent = p.Name
		}
		r.Nodes[i] = np
		r.Positions[n.Name] = Point{X: n.X, Y: n.Y}
	}
	return r
}

// Apply writes the positions in r back onto the nodes of t. When r was
// exported from a tree with the same postorder names, nodes are matched by
// position, which keeps duplicate labels apart; otherwise they are matched
// by name. It fails if t has a node r does not know about.
func (r Result) Apply(t *tree.Tree) error {
	post := t.Postorder()
	lookup := r.byPosition(post)
	if lookup == nil {
		byName := make(map[string]NodePosition, len(r.Nodes))
		for _, np := range r.Nodes {
			byName[np.Name] = np
		}
		lookup = func(i int, n *tree.Node) (NodePosition, bool) {
			np, ok := byName[n.Name]
			return np, ok
		}
	}
	for i, n := range post {
		np, ok := lookup(i, n)
		if !ok {
			return cverrors.New(cverrors.ErrCodeNotFound, "layout has no node %q", n.Name)
		}
		n.X, n.Y, n.Angle, n.Radius = np.X, np.Y, np.Angle, np.Radius
		if n.IsTip() {
			n.LeafCount = 1
			continue
		}
		n.LeafCount = 0
		for _, c := range n.Children {
			n.LeafCount += c.LeafCount
		}
	}
	return nil
}

func (r Result) byPosition(post []*tree.Node) func(int, *tree.Node) (NodePosition, bool) {
	if len(post) != len(r.Nodes) {
		return nil
	}
	for i, n := range post {
		if r.Nodes[i].Name != n.Name {
			return nil
		}
	}
	return func(i int, _ *tree.Node) (NodePosition, bool) { return r.Nodes[i], true }
}

// Edges returns one segment per parent to child link, in preorder.
func Edges(t *tree.Tree) []Edge {
	var out []Edge
	for _, n := range t.Preorder() {
		for _, c := range n.Children {
			out = append(out, Edge{From: n.Name, To: c.Name, X1: n.X, Y1: n.Y, X2: c.X, Y2: c.Y})
		}
	}
	return out
}
