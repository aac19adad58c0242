package sector

import (
	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/geom"
)

// Buffer is a flat vertex buffer of one or more sectors.
type Buffer []float64

// Vertex is one decoded vertex record.
type Vertex struct {
	Pos   geom.Vec
	Color geom.Color
}

// Check reports ErrMalformedBuffer unless b holds a whole number of sectors.
func (b Buffer) Check() error {
	if len(b) == 0 || len(b)%BufferLen != 0 {
		return cverrors.New(cverrors.ErrCodeMalformedBuffer,
			"buffer has %d values, want a positive multiple of %d", len(b), BufferLen)
	}
	return nil
}

// Sectors returns the number of whole sectors in b.
func (b Buffer) Sectors() int { return len(b) / BufferLen }

// Vertices returns the number of whole vertex records in b.
func (b Buffer) Vertices() int { return len(b) / ElementsPerVertex }

// Vertex decodes the i-th vertex record.
func (b Buffer) Vertex(i int) Vertex {
	o := i * ElementsPerVertex
	return Vertex{
		Pos:   geom.Vec{X: b[o+OffsetX], Y: b[o+OffsetY]},
		Color: geom.Color{R: b[o+OffsetR], G: b[o+OffsetG], B: b[o+OffsetB]},
	}
}

// Triangle returns the three vertices of the i-th triangle.
func (b Buffer) Triangle(i int) [VertsPerTriangle]Vertex {
	base := i * VertsPerTriangle
	return [VertsPerTriangle]Vertex{b.Vertex(base), b.Vertex(base + 1), b.Vertex(base + 2)}
}

// Float32 converts b to single precision, the format GPU vertex buffers use.
func (b Buffer) Float32() []float32 {
	out := make([]float32, len(b))
	for i, v := range b {
		out[i] = float32(v)
	}
	return out
}

// Concat joins several sector buffers into one draw call's worth of data.
func Concat(bufs ...Buffer) Buffer {
	n := 0
	for _, b := range bufs {
		n += len(b)
	}
	out := make(Buffer, 0, n)
	for _, b := range bufs {
		out = append(out, b...)
	}
	return out
}
