// Package pipeline provides the parse → layout → render pipeline for cladeview.
//
// This package implements the pipeline shared by the CLI and the HTTP
// server. By centralizing it, both entry points cache, name and lay out
// trees the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read a Newick string and name unlabeled nodes
//  2. Layout: Compute the equal-angle layout and fit it to the viewport
//  3. Render: Produce artifacts (node JSON, topology SVG/DOT, PNG preview)
//
// Layouts and artifacts are cached under keys derived from the Newick text
// and the options that change the output.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Layout(ctx, "((a:1,b:2)c:1,d:3)r;", pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg, _, err := runner.Render(ctx, res, pipeline.FormatSVG, pipeline.RenderOptions{})
package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cladeview/pkg/cache"
	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/layout"
	"github.com/matzehuels/cladeview/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width.
	DefaultWidth = 500.0

	// DefaultHeight is the default viewport height.
	DefaultHeight = 500.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatDOT:  true,
	FormatPNG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the layout configuration. It supports JSON for API
// requests.
type Options struct {
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Rotations int     `json:"rotations,omitempty"`
	Margin    float64 `json:"margin,omitempty"`

	// RootOrigin translates the fitted layout so the root sits at (0, 0)
	// instead of centering it in the viewport.
	RootOrigin bool `json:"root_origin,omitempty"`

	// Refresh skips the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Rotations == 0 {
		o.Rotations = layout.DefaultRotations
	}
	if o.Margin == 0 {
		o.Margin = layout.DefaultMargin
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate sets defaults and checks ranges.
func (o *Options) Validate() error {
	o.SetDefaults()
	for _, v := range []float64{o.Width, o.Height} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return cverrors.New(cverrors.ErrCodeInvalidInput,
				"viewport %vx%v must be positive and finite", o.Width, o.Height)
		}
	}
	if o.Rotations < 0 {
		return cverrors.New(cverrors.ErrCodeInvalidInput, "rotations %d is negative", o.Rotations)
	}
	if o.Margin < 0 || o.Margin > 1 {
		return cverrors.New(cverrors.ErrCodeInvalidInput, "margin %v must be in (0, 1]", o.Margin)
	}
	return nil
}

// LayoutOptions converts o to layout options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{Rotations: o.Rotations, Margin: o.Margin}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:     o.Width,
		Height:    o.Height,
		Rotations: o.Rotations,
		Margin:    o.Margin,
		RootFrame: o.RootOrigin,
	}
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return cverrors.New(cverrors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: json, svg, dot, png)", format)
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a layout run.
type Result struct {
	// Tree is the parsed tree with layout fields filled in.
	Tree *tree.Tree

	// TreeHash is the content hash of the Newick input.
	TreeHash string

	// Layout is the serializable layout snapshot.
	Layout layout.Result

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	TipCount   int
	ParseTime  time.Duration
	LayoutTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
}

// =============================================================================
// Stages
// =============================================================================

// Parse reads a Newick string and names every unlabeled node.
func Parse(newick string) (*tree.Tree, error) {
	t, err := tree.ParseNewick(newick)
	if err != nil {
		return nil, err
	}
	tree.NameUnlabeled(t)
	return t, nil
}

// GenerateLayout lays t out and fits it to the viewport in opts.
func GenerateLayout(t *tree.Tree, opts Options) (layout.Result, error) {
	if err := opts.Validate(); err != nil {
		return layout.Result{}, err
	}
	fitFn := layout.RescaleToFit
	if opts.RootOrigin {
		fitFn = layout.Coords
	}
	scale, err := fitFn(t, opts.Width, opts.Height, opts.LayoutOptions())
	if err != nil {
		return layout.Result{}, fmt.Errorf("layout: %w", err)
	}
	return layout.Export(t, scale), nil
}
