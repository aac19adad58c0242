package pipeline

import (
	"fmt"
	"slices"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/geom"
	"github.com/matzehuels/cladeview/pkg/metadata"
	"github.com/matzehuels/cladeview/pkg/sector"
)

// Selection is the result of collapsing every clade whose metadata matches
// an attribute value.
type Selection struct {
	// Clades are the collapsed node names, in table order.
	Clades []string
	// Buffers holds one sector buffer per clade.
	Buffers []sector.Buffer
	// Missing lists matching ids that name no node in the tree.
	Missing []string
	// Tips lists matching ids that name tips, which have no wedge.
	Tips []string
}

// Buffer returns all sectors of s as one buffer.
func (s *Selection) Buffer() sector.Buffer {
	return sector.Concat(s.Buffers...)
}

// SelectClades collapses the internal nodes whose column equals value in
// table, coloring them hex.
func SelectClades(res *Result, table *metadata.Table, column, value, hex string) (*Selection, error) {
	if _, err := geom.DecodeColor(hex); err != nil {
		return nil, err
	}
	if !slices.Contains(table.Columns, column) {
		return nil, cverrors.New(cverrors.ErrCodeNotFound, "metadata has no column %q", column)
	}

	sel := &Selection{}
	for _, id := range table.Select(column, value) {
		n := res.Tree.Find(id)
		switch {
		case n == nil:
			sel.Missing = append(sel.Missing, id)
			continue
		case n.IsTip():
			sel.Tips = append(sel.Tips, id)
			continue
		}
		buf, err := Collapse(res, id, hex)
		if err != nil {
			return nil, fmt.Errorf("collapse %s: %w", id, err)
		}
		sel.Clades = append(sel.Clades, id)
		sel.Buffers = append(sel.Buffers, buf)
	}
	return sel, nil
}

// Headers splits the metadata columns by the kind of node they describe. A
// column is a leaf header when some tip has a non-empty value in it and an
// internal header when some internal node does; it can be both. Rows for
// ids outside the tree are ignored.
func Headers(res *Result, table *metadata.Table) (leaf, internal []string) {
	index := res.Tree.Index()
	for _, col := range table.Columns {
		if col == metadata.IDColumn {
			continue
		}
		var onTip, onInternal bool
		for _, id := range table.IDs() {
			n, ok := index[id]
			if !ok || table.Rows[id][col] == "" {
				continue
			}
			if n.IsTip() {
				onTip = true
			} else {
				onInternal = true
			}
		}
		if onTip {
			leaf = append(leaf, col)
		}
		if onInternal {
			internal = append(internal, col)
		}
	}
	return leaf, internal
}
