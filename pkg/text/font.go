package text

import (
	"fmt"
	"strconv"
)

// Font identifies a face by point size, weight and slant. It is comparable
// and used as a cache key.
type Font struct {
	Size   int    `json:"size"`   // points
	Weight string `json:"weight"` // "normal" or "bold"
	Slant  string `json:"slant"`  // "roman" or "italic"
}

func (f Font) String() string {
	return fmt.Sprintf("%dpt %s %s", f.Size, f.Weight, f.Slant)
}

// Bold reports whether the weight selects a bold face.
func (f Font) Bold() bool {
	switch f.Weight {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(f.Weight)
	return err == nil && n >= 600
}

// Italic reports whether the slant selects an italic face.
func (f Font) Italic() bool {
	return f.Slant == "italic" || f.Slant == "oblique"
}

// Metrics are the vertical measurements of a font in pixels.
type Metrics struct {
	Ascent    float64
	Descent   float64
	Linespace float64
}

// Measurer supplies the text measurements line breaking needs.
type Measurer interface {
	Measure(font Font, s string) float64
	Metrics(font Font) Metrics
}
