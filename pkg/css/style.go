package css

import (
	"strconv"
	"strings"
)

// DefaultFontSize is the pixel size used at the root and whenever a
// font-size value cannot be read.
const DefaultFontSize = 16.0

// inheritedProperties are copied from parent to child before any rule
// applies. The values are the defaults for the root.
var inheritedProperties = map[string]string{
	"font-size":   "16px",
	"font-style":  "normal",
	"font-weight": "normal",
	"color":       "black",
}

// ParseLength parses a length value (e.g., "100px" or "100")
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// ParsePercentage parses a value such as "90%" into 0.9.
func ParsePercentage(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	if !strings.HasSuffix(val, "%") {
		return 0, false
	}
	num, err := strconv.ParseFloat(strings.TrimSuffix(val, "%"), 64)
	if err != nil {
		return 0, false
	}
	return num / 100, true
}

// FontSize returns the computed font-size of a style map in pixels.
func FontSize(style map[string]string) float64 {
	if size, ok := ParseLength(style["font-size"]); ok {
		return size
	}
	return DefaultFontSize
}

func formatPx(px float64) string {
	return strconv.FormatFloat(px, 'f', -1, 64) + "px"
}
