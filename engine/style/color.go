package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Color is an RGBA colour with components in [0, 1]. In style sheets it is
// written as "#rrggbb" or "#rrggbbaa".
type Color mgl64.Vec4

var White = Color{1, 1, 1, 1}

func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return White, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return White, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{
		float64((v>>24)&0xff) / 255.0,
		float64((v>>16)&0xff) / 255.0,
		float64((v>>8)&0xff) / 255.0,
		float64(v&0xff) / 255.0,
	}, nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalText() ([]byte, error) {
	b := func(f float64) uint8 { return uint8(f*255.0 + 0.5) }
	return []byte(fmt.Sprintf("#%02x%02x%02x%02x", b(c[0]), b(c[1]), b(c[2]), b(c[3]))), nil
}

func (c Color) Vec4() mgl64.Vec4 {
	return mgl64.Vec4(c)
}
