package sector

import (
	"math"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/geom"
)

// Buffer layout constants. A sector buffer is a fan of NumTriangles triangles.
const (
	NumTriangles      = 100
	VertsPerTriangle  = 3
	ElementsPerVertex = 5

	// VertexCount is the number of vertices in one sector.
	VertexCount = NumTriangles * VertsPerTriangle
	// BufferLen is the number of float64 values in one sector.
	BufferLen = VertexCount * ElementsPerVertex
)

// Offsets of the fields inside a vertex record.
const (
	OffsetX = iota
	OffsetY
	OffsetR
	OffsetG
	OffsetB
)

var (
	// ErrMalformedBuffer is returned by [Recolor] when the buffer length is
	// not a positive multiple of [BufferLen].
	ErrMalformedBuffer = cverrors.New(cverrors.ErrCodeMalformedBuffer, "malformed sector buffer")

	// ErrSpanTooWide is returned when a wedge given by two unordered angles
	// would span π or more.
	ErrSpanTooWide = cverrors.New(cverrors.ErrCodeSectorTooWide, "sector spans π or more")
)

// Descriptor describes a wedge by its center, radius, two unordered boundary
// angles and a hex color. The JSON names follow the ones used by the viewer.
type Descriptor struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Radius  float64 `json:"arc_length"`
	AngleA  float64 `json:"angle_a"`
	AngleB  float64 `json:"angle_b"`
	Color   string  `json:"color"`
}

// Center returns the wedge apex as a vector.
func (d Descriptor) Center() geom.Vec { return geom.Vec{X: d.CenterX, Y: d.CenterY} }

// Span resolves the descriptor's boundary angles with [ResolveSpan].
func (d Descriptor) Span() (start, sweep float64) {
	return ResolveSpan(d.AngleA, d.AngleB)
}

// Validate checks the numeric fields of d. It does not decode the color.
func (d Descriptor) Validate() error {
	for _, v := range []float64{d.CenterX, d.CenterY, d.Radius, d.AngleA, d.AngleB} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return cverrors.New(cverrors.ErrCodeInvalidInput, "sector values must be finite")
		}
	}
	if d.Radius < 0 {
		return cverrors.New(cverrors.ErrCodeInvalidInput, "sector radius %v is negative", d.Radius)
	}
	if _, sweep := d.Span(); sweep >= math.Pi {
		return cverrors.New(cverrors.ErrCodeSectorTooWide,
			"angles %v and %v do not determine a wedge narrower than π", d.AngleA, d.AngleB)
	}
	return nil
}

// ResolveSpan returns the start angle and the non-negative sweep of the
// wedge bounded by a and b. Both angles are expected in [0, 2π) and the wedge
// is assumed narrower than π; see the package documentation for the rules.
func ResolveSpan(a, b float64) (start, sweep float64) {
	straddles := (geom.InQuad1(a) && geom.InQuad4(b)) || (geom.InQuad4(a) && geom.InQuad1(b))
	if straddles {
		start = math.Max(a, b)
		end := math.Min(a, b)
		return start, end + math.Abs(start-geom.TwoPi)
	}

	lo, hi := math.Min(a, b), math.Max(a, b)
	if hi-lo > math.Pi {
		return hi, lo + geom.TwoPi - hi
	}
	return lo, hi - lo
}

// Build validates d, decodes its color and returns the sector's vertex buffer.
func Build(d Descriptor) (Buffer, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	c, err := geom.DecodeColor(d.Color)
	if err != nil {
		return nil, err
	}
	start, sweep := d.Span()
	return fan(d.Center(), d.Radius, start, sweep, c), nil
}

// BuildSpan builds a sector from an explicit start angle and sweep. Unlike
// [Build] it accepts any sweep in [0, 2π], so it can draw wedges of π or more.
func BuildSpan(center geom.Vec, radius, start, sweep float64, c geom.Color) (Buffer, error) {
	if sweep < 0 || math.IsNaN(sweep) {
		return nil, cverrors.New(cverrors.ErrCodeInvalidInput, "sweep %v is negative", sweep)
	}
	if sweep > geom.TwoPi {
		return nil, cverrors.New(cverrors.ErrCodeSectorTooWide, "sweep %v exceeds a full turn", sweep)
	}
	if radius < 0 {
		return nil, cverrors.New(cverrors.ErrCodeInvalidInput, "sector radius %v is negative", radius)
	}
	return fan(center, radius, start, sweep, c), nil
}

// fan emits NumTriangles triangles sharing center as their first vertex.
func fan(center geom.Vec, radius, start, sweep float64, c geom.Color) Buffer {
	buf := make(Buffer, 0, BufferLen)
	step := sweep / NumTriangles
	rad := start

	for i := 0; i < NumTriangles; i++ {
		buf = append(buf, center.X, center.Y, c.R, c.G, c.B)
		buf = append(buf,
			math.Cos(rad)*radius+center.X, math.Sin(rad)*radius+center.Y, c.R, c.G, c.B)
		rad += step
		buf = append(buf,
			math.Cos(rad)*radius+center.X, math.Sin(rad)*radius+center.Y, c.R, c.G, c.B)
	}
	return buf
}

// Recolor decodes hex and overwrites the color channels of every vertex in
// buf in place. Positions are left untouched. buf must hold one or more whole
// sectors.
func Recolor(buf Buffer, hex string) (Buffer, error) {
	c, err := geom.DecodeColor(hex)
	if err != nil {
		return nil, err
	}
	return RecolorWith(buf, c)
}

// RecolorWith is [Recolor] for an already decoded color.
func RecolorWith(buf Buffer, c geom.Color) (Buffer, error) {
	if err := buf.Check(); err != nil {
		return nil, err
	}
	for i := 0; i < len(buf); i += ElementsPerVertex {
		buf[i+OffsetR] = c.R
		buf[i+OffsetG] = c.G
		buf[i+OffsetB] = c.B
	}
	return buf, nil
}
