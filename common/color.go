package common

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHexColor converts a CSS style hex colour ("#rrggbb", "#rgb" or "0xrrggbb") into linear
// 0..1 RGB components.
//
// Parameters:
//   - s: the colour string
//
// Returns:
//   - [3]float32: the red, green and blue components
//   - error: an error if the string is not a recognised hex colour
func ParseHexColor(s string) ([3]float32, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "#"), "0x")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return [3]float32{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [3]float32{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return [3]float32{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}
