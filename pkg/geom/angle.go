package geom

import "math"

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// Quadrant classifies an angle for wedge wraparound decisions.
type Quadrant int

const (
	// QuadrantOther covers every angle outside the open first and fourth
	// quadrants, including the boundary angles.
	QuadrantOther Quadrant = iota
	// Q1 is the open interval (0, π/2).
	Q1
	// Q4 is the open interval (3π/2, 2π).
	Q4
)

func (q Quadrant) String() string {
	switch q {
	case Q1:
		return "Q1"
	case Q4:
		return "Q4"
	default:
		return "other"
	}
}

// InQuad1 reports whether angle lies strictly inside (0, π/2).
func InQuad1(angle float64) bool {
	return angle > 0 && angle < math.Pi/2
}

// InQuad4 reports whether angle lies strictly inside (3π/2, 2π).
func InQuad4(angle float64) bool {
	return angle > 3*math.Pi/2 && angle < TwoPi
}

// ClassifyQuadrant returns Q1, Q4 or QuadrantOther for angle.
func ClassifyQuadrant(angle float64) Quadrant {
	switch {
	case InQuad1(angle):
		return Q1
	case InQuad4(angle):
		return Q4
	default:
		return QuadrantOther
	}
}

// Vec is a 2-D vector or point.
type Vec struct {
	X, Y float64
}

// Add returns v + w.
func (v Vec) Add(w Vec) Vec { return Vec{v.X + w.X, v.Y + w.Y} }

// Sub returns v - w.
func (v Vec) Sub(w Vec) Vec { return Vec{v.X - w.X, v.Y - w.Y} }

// Scale returns v multiplied by s.
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// VectorAngle returns the direction of v in [0, 2π).
//
// A vertical vector (X == 0) maps to π/2 when Y > 0 and to 3π/2 otherwise.
// The zero vector therefore yields 3π/2. That is a convention, not a
// meaningful direction: callers that need a real direction must not pass it.
func VectorAngle(v Vec) float64 {
	if v.X == 0 {
		if v.Y > 0 {
			return math.Pi / 2
		}
		return 3 * math.Pi / 2
	}

	angle := math.Atan(v.Y / v.X)
	if v.X > 0 {
		if angle >= 0 {
			return angle
		}
		if a := TwoPi + angle; a < TwoPi {
			return a
		}
		// -angle was below the float spacing at 2π.
		return 0
	}
	// Left half-plane: atan folded the direction into (-π/2, π/2).
	return angle + math.Pi
}

// NormalizeAngle maps any finite angle into [0, 2π).
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	if a >= TwoPi {
		a = 0
	}
	return a
}
