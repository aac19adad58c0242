package geom

import (
	"fmt"
	"math"
	"strconv"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
)

// ErrInvalidColor is returned by [DecodeColor] for anything that is not
// exactly six hexadecimal digits.
var ErrInvalidColor = cverrors.New(cverrors.ErrCodeInvalidColor, "invalid color")

const (
	hexDigits  = 6
	channelMax = 255
)

// Color holds normalized red, green and blue channels in [0, 1].
type Color struct {
	R, G, B float64
}

// DecodeColor parses a 6-digit hex string such as "ff8800" into a Color.
// Upper and lower case digits are accepted; a leading '#' is not.
func DecodeColor(hex string) (Color, error) {
	if len(hex) != hexDigits {
		return Color{}, cverrors.New(cverrors.ErrCodeInvalidColor,
			"color %q must have exactly %d hex digits", hex, hexDigits)
	}

	var ch [3]float64
	for i := range ch {
		part := hex[2*i : 2*i+2]
		v, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return Color{}, cverrors.Wrap(cverrors.ErrCodeInvalidColor, err,
				"color %q has non-hex digits %q", hex, part)
		}
		ch[i] = float64(v) / channelMax
	}
	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// MustDecodeColor is like DecodeColor but panics on error.
// It is meant for package-level defaults and tests.
func MustDecodeColor(hex string) Color {
	c, err := DecodeColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex re-encodes c as a lowercase 6-digit hex string.
// Channels are clamped to [0, 1] and rounded to the nearest byte.
func (c Color) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", toByte(c.R), toByte(c.G), toByte(c.B))
}

func toByte(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * channelMax))
}
