package visualtest

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

var ErrSizeMismatch = errors.New("image sizes differ")

// Result summarizes a pixel-by-pixel comparison.
type Result struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // largest channel difference seen, 0-255

	// Diff shows matching pixels in gray and mismatches in red. It is only
	// built when Options.Diff is set.
	Diff *image.RGBA
}

// Options configure a comparison.
type Options struct {
	// Tolerance is the largest per-channel difference (0-255) that still
	// counts as equal.
	Tolerance int

	// FuzzyRadius lets a pixel match any expected pixel within this many
	// pixels, absorbing one or two pixel shifts of glyphs.
	FuzzyRadius int

	// MaxDifferentPercent accepts the images when at most this share of
	// pixels differ.
	MaxDifferentPercent float64

	Diff bool
}

func DefaultOptions() Options {
	return Options{Tolerance: 2}
}

// Compare checks actual against expected. The images must have the same
// size but may have different origins, so sub-images can be compared
// directly.
func Compare(actual, expected image.Image, opts Options) (*Result, error) {
	ab, eb := actual.Bounds(), expected.Bounds()
	if ab.Size() != eb.Size() {
		return &Result{}, fmt.Errorf("%w: actual=%v, expected=%v", ErrSizeMismatch, ab.Size(), eb.Size())
	}
	offset := eb.Min.Sub(ab.Min)

	result := &Result{
		Match:       true,
		TotalPixels: ab.Dx() * ab.Dy(),
	}
	if opts.Diff {
		result.Diff = image.NewRGBA(image.Rect(0, 0, ab.Dx(), ab.Dy()))
	}

	for y := ab.Min.Y; y < ab.Max.Y; y++ {
		for x := ab.Min.X; x < ab.Max.X; x++ {
			a := actual.At(x, y)
			diff := channelDiff(a, expected.At(x+offset.X, y+offset.Y))
			result.MaxDifference = max(result.MaxDifference, diff)

			matched := diff <= opts.Tolerance
			if !matched && opts.FuzzyRadius > 0 {
				matched = fuzzyMatch(a, expected, image.Pt(x, y).Add(offset), opts)
			}
			if !matched {
				result.Match = false
				result.DifferentPixels++
			}
			if result.Diff != nil {
				result.Diff.Set(x-ab.Min.X, y-ab.Min.Y, diffColor(a, matched))
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		result.Match = pct <= opts.MaxDifferentPercent
	}
	return result, nil
}

// CompareFiles decodes two PNG files and compares them.
func CompareFiles(actualPath, expectedPath string, opts Options) (*Result, error) {
	actual, err := LoadPNG(actualPath)
	if err != nil {
		return nil, err
	}
	expected, err := LoadPNG(expectedPath)
	if err != nil {
		return nil, err
	}
	return Compare(actual, expected, opts)
}

// fuzzyMatch reports whether a matches any expected pixel within the radius
// around p.
func fuzzyMatch(a color.Color, expected image.Image, p image.Point, opts Options) bool {
	bounds := expected.Bounds()
	for dy := -opts.FuzzyRadius; dy <= opts.FuzzyRadius; dy++ {
		for dx := -opts.FuzzyRadius; dx <= opts.FuzzyRadius; dx++ {
			q := p.Add(image.Pt(dx, dy))
			if !q.In(bounds) {
				continue
			}
			if channelDiff(a, expected.At(q.X, q.Y)) <= opts.Tolerance {
				return true
			}
		}
	}
	return false
}

// channelDiff is the largest difference between any two 8-bit channels.
func channelDiff(a, b color.Color) int {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return max(
		absDiff(ar, br),
		absDiff(ag, bg),
		absDiff(ab, bb),
		absDiff(aa, ba),
	)
}

func absDiff(a, b uint32) int {
	d := int(a>>8) - int(b>>8)
	if d < 0 {
		return -d
	}
	return d
}

func diffColor(c color.Color, matched bool) color.Color {
	if !matched {
		return color.RGBA{255, 0, 0, 255}
	}
	gray := color.GrayModel.Convert(c).(color.Gray)
	return color.RGBA{gray.Y, gray.Y, gray.Y, 255}
}

func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
