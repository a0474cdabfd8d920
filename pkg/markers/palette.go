package markers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/railyard/pkg/kernel"
)

// Palette maps an effective indicator name ("unconnected", "connected",
// "hovering", "snapping") to a marker colour.
type Palette map[string]kernel.Color

// DefaultPalette returns the stock colours: red for open ends, green for
// joined ones, amber while hovering and blue for snap candidates.
func DefaultPalette() Palette {
	return Palette{
		"unconnected": {0.85, 0.20, 0.20, 1},
		"connected":   {0.20, 0.75, 0.30, 1},
		"hovering":    {0.95, 0.70, 0.10, 1},
		"snapping":    {0.20, 0.45, 0.95, 1},
	}
}

// Color returns the colour for name, falling back to the default palette
// and finally to opaque grey.
func (p Palette) Color(name string) kernel.Color {
	if c, ok := p[name]; ok {
		return c
	}
	if c, ok := DefaultPalette()[name]; ok {
		return c
	}
	return kernel.Color{0.5, 0.5, 0.5, 1}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (kernel.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return kernel.Color{}, fmt.Errorf("markers: colour %q: want #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return kernel.Color{}, fmt.Errorf("markers: colour %q: %w", s, err)
	}
	return kernel.Color{
		float32(v>>24&0xff) / 255,
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}

// ParsePalette converts a name to hex colour map into a Palette.
func ParsePalette(in map[string]string) (Palette, error) {
	out := make(Palette, len(in))
	for name, hex := range in {
		c, err := ParseColor(hex)
		if err != nil {
			return nil, fmt.Errorf("palette entry %q: %w", name, err)
		}
		out[name] = c
	}
	return out, nil
}
