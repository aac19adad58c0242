package topology

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/tree"
)

// Mode selects which edges a neighbor query follows.
type Mode int

const (
	// ModeOut follows edges away from the node (parent to children).
	ModeOut Mode = iota
	// ModeIn follows edges into the node (child to parent).
	ModeIn
	// ModeAll follows edges in both directions.
	ModeAll
)

func (m Mode) String() string {
	switch m {
	case ModeOut:
		return "out"
	case ModeIn:
		return "in"
	default:
		return "all"
	}
}

// Edge is a directed edge between two node ids.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Graph is a directed graph over the ids 0..Len()-1.
type Graph struct {
	names []string
	edges []Edge
	g     *simple.DirectedGraph
}

// ToIndexedGraph numbers the nodes of t in preorder and returns the graph
// together with the node to id mapping. An empty tree yields an empty graph.
func ToIndexedGraph(t *tree.Tree) (*Graph, map[*tree.Node]int) {
	nodes := t.Preorder()
	g := newGraph(make([]string, len(nodes)))
	ids := make(map[*tree.Node]int, len(nodes))
	for i, n := range nodes {
		ids[n] = i
		g.names[i] = n.Name
	}
	for _, n := range nodes {
		for _, c := range n.Children {
			g.addEdge(ids[n], ids[c])
		}
	}
	return g, ids
}

func newGraph(names []string) *Graph {
	g := &Graph{names: names, g: simple.NewDirectedGraph()}
	for id := range names {
		g.g.AddNode(simple.Node(id))
	}
	return g
}

func (g *Graph) addEdge(from, to int) {
	g.edges = append(g.edges, Edge{From: from, To: to})
	g.g.SetEdge(g.g.NewEdge(simple.Node(from), simple.Node(to)))
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.names) }

// Edges returns the edges in preorder of their source.
func (g *Graph) Edges() []Edge { return g.edges }

// Name returns the tree name of id.
func (g *Graph) Name(id int) string { return g.names[id] }

// Names returns the tree names indexed by id.
func (g *Graph) Names() []string { return g.names }

// Directed returns the underlying gonum graph, with node ids equal to the
// topology ids.
func (g *Graph) Directed() graph.Directed { return g.g }

func (g *Graph) check(id int) error {
	if id < 0 || id >= len(g.names) {
		return cverrors.New(cverrors.ErrCodeNotFound, "node id %d out of range [0, %d)", id, len(g.names))
	}
	return nil
}

// Neighbors returns the ids adjacent to id along edges selected by mode, in
// ascending order. Preorder numbering makes that the parent first and then
// the children left to right.
func (g *Graph) Neighbors(id int, mode Mode) ([]int, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	var nodes graph.Nodes
	switch mode {
	case ModeOut:
		nodes = g.g.From(int64(id))
	case ModeIn:
		nodes = g.g.To(int64(id))
	default:
		nodes = graph.Undirect{G: g.g}.From(int64(id))
	}
	return sortedIDs(graph.NodesOf(nodes)), nil
}

// ShortestPath returns the ids on the shortest path from one node to
// another, ignoring edge direction. Both ends are included. It returns nil
// when no path exists.
func (g *Graph) ShortestPath(from, to int) ([]int, error) {
	if err := g.check(from); err != nil {
		return nil, err
	}
	if err := g.check(to); err != nil {
		return nil, err
	}

	sp := path.DijkstraFrom(simple.Node(from), graph.Undirect{G: g.g})
	nodes, _ := sp.To(int64(to))
	if len(nodes) == 0 {
		return nil, nil
	}
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	return ids, nil
}

// Components returns the weakly connected components. Each lists its ids in
// ascending order and components are ordered by their smallest id, so the
// one holding the root comes first.
func (g *Graph) Components() [][]int {
	var comps [][]int
	for _, c := range topo.ConnectedComponents(graph.Undirect{G: g.g}) {
		comps = append(comps, sortedIDs(c))
	}
	slices.SortFunc(comps, func(a, b []int) int { return a[0] - b[0] })
	return comps
}

func sortedIDs(nodes []graph.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	slices.Sort(ids)
	return ids
}

// Subgraph returns the graph induced by removing the given edges. It is used
// to split a tree into clades; ids and names are unchanged.
func (g *Graph) Subgraph(drop []Edge) *Graph {
	skip := make(map[Edge]bool, len(drop))
	for _, e := range drop {
		skip[e] = true
	}
	sub := newGraph(g.names)
	for _, e := range g.edges {
		if !skip[e] {
			sub.addEdge(e.From, e.To)
		}
	}
	return sub
}
