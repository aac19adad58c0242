package tree

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document is the JSON form of a laid out tree.
type Document struct {
	Nodes []NodeRecord `json:"nodes"`
}

// NodeRecord is one node of a [Document], in preorder.
type NodeRecord struct {
	Name      string  `json:"name"`
	Parent    string  `json:"parent,omitempty"`
	Length    float64 `json:"length"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Angle     float64 `json:"angle"`
	Radius    float64 `json:"radius"`
	LeafCount int     `json:"leaf_count"`
	IsTip     bool    `json:"is_tip"`
}

// Export snapshots the tree, including layout fields, in preorder.
func (t *Tree) Export() Document {
	nodes := t.Preorder()
	doc := Document{Nodes: make([]NodeRecord, len(nodes))}
	for i, n := range nodes {
		rec := NodeRecord{
			Name:      n.Name,
			Length:    n.BranchLength(),
			X:         n.X,
			Y:         n.Y,
			Angle:     n.Angle,
			Radius:    n.Radius,
			LeafCount: n.LeafCount,
			IsTip:     n.IsTip(),
		}
		if p := n.Parent(); p != nil {
			rec.Parent = p.Name
		}
		doc.Nodes[i] = rec
	}
	return doc
}

// WriteJSON encodes t's [Document] as indented JSON.
func WriteJSON(t *Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.Export()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
