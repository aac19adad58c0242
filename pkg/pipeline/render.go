package pipeline

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/matzehuels/cladeview/pkg/cache"
	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/preview"
	"github.com/matzehuels/cladeview/pkg/sector"
	"github.com/matzehuels/cladeview/pkg/topology"
	"github.com/matzehuels/cladeview/pkg/tree"
)

// RenderOptions configures artifact rendering.
type RenderOptions struct {
	// ShowIDs labels topology nodes with their integer ids.
	ShowIDs bool
	// Highlight names nodes to fill in the topology drawing.
	Highlight []string
	// Sectors are drawn under the tree in PNG previews.
	Sectors []sector.Buffer
	// Preview sizes and colors PNG previews. Zero means preview defaults.
	Preview preview.Options
}

// cacheable reports whether the output depends only on the tree, the
// layout and the artifact key options.
func (o RenderOptions) cacheable() bool {
	return len(o.Highlight) == 0 && len(o.Sectors) == 0
}

func (o RenderOptions) previewOptions() preview.Options {
	if o.Preview.Width == 0 && o.Preview.Height == 0 {
		return preview.DefaultOptions()
	}
	return o.Preview
}

// artifactKeyOpts returns cache key options for one artifact.
func (o RenderOptions) artifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, ShowIDs: o.ShowIDs}
	if format == FormatPNG {
		p := o.previewOptions()
		k.Width, k.Height = p.Width, p.Height
	}
	return k
}

// Render produces one artifact of a laid out tree.
func Render(ctx context.Context, res *Result, format string, opts RenderOptions) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	t := res.Tree
	switch format {
	case FormatJSON:
		return json.MarshalIndent(res.Layout, "", "  ")
	case FormatDOT, FormatSVG:
		dot, err := topologyDOT(t, opts)
		if err != nil {
			return nil, err
		}
		if format == FormatDOT {
			return []byte(dot), nil
		}
		return topology.RenderSVG(ctx, dot)
	default:
		var buf bytes.Buffer
		if err := preview.Render(&buf, t, opts.Sectors, opts.previewOptions()); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// topologyDOT builds the DOT text of t, resolving highlighted names to ids.
func topologyDOT(t *tree.Tree, opts RenderOptions) (string, error) {
	g, ids := topology.ToIndexedGraph(t)
	dotOpts := topology.DOTOptions{ShowIDs: opts.ShowIDs}
	if len(opts.Highlight) > 0 {
		index := t.Index()
		for _, name := range opts.Highlight {
			n, ok := index[name]
			if !ok {
				return "", cverrors.New(cverrors.ErrCodeNotFound, "highlight: no node %q", name)
			}
			dotOpts.Highlight = append(dotOpts.Highlight, ids[n])
		}
	}
	return topology.ToDOT(g, dotOpts), nil
}
