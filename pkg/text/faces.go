package text

import (
	"fmt"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DPI converts point sizes to pixels: 12pt renders 16px high.
const DPI = 96

// FontConfig holds optional paths to font files. Empty entries fall back to
// the bundled Go fonts.
type FontConfig struct {
	Regular    string `mapstructure:"regular" yaml:"regular"`
	Bold       string `mapstructure:"bold" yaml:"bold"`
	Italic     string `mapstructure:"italic" yaml:"italic"`
	BoldItalic string `mapstructure:"bold_italic" yaml:"bold_italic"`
}

type variant int

const (
	regular variant = iota
	bold
	italic
	boldItalic
)

func variantOf(f Font) variant {
	switch {
	case f.Bold() && f.Italic():
		return boldItalic
	case f.Bold():
		return bold
	case f.Italic():
		return italic
	}
	return regular
}

// Faces is a Measurer backed by real font files. Faces are created on first
// use and cached by Font; all methods are safe for concurrent use.
type Faces struct {
	mu    sync.Mutex
	fonts [4]*opentype.Font
	faces map[Font]font.Face
	dc    *gg.Context
	log   *zap.Logger
}

// NewFaces loads the four font variants named by cfg.
func NewFaces(cfg FontConfig, log *zap.Logger) (*Faces, error) {
	if log == nil {
		log = zap.NewNop()
	}
	sources := [4]struct {
		path     string
		fallback []byte
	}{
		regular:    {cfg.Regular, goregular.TTF},
		bold:       {cfg.Bold, gobold.TTF},
		italic:     {cfg.Italic, goitalic.TTF},
		boldItalic: {cfg.BoldItalic, gobolditalic.TTF},
	}

	f := &Faces{
		faces: make(map[Font]font.Face),
		dc:    gg.NewContext(1, 1),
		log:   log.Named("fonts"),
	}
	for i, src := range sources {
		data := src.fallback
		if src.path != "" {
			b, err := os.ReadFile(src.path)
			if err != nil {
				return nil, fmt.Errorf("failed to read font: %w", err)
			}
			data = b
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %q: %w", src.path, err)
		}
		f.fonts[i] = parsed
	}
	return f, nil
}

// Face returns the cached face for key. Faces are not safe for concurrent
// use, so callers drawing with the result must not share it across
// goroutines.
func (f *Faces) Face(key Font) font.Face {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.face(key)
}

func (f *Faces) face(key Font) font.Face {
	if face, ok := f.faces[key]; ok {
		return face
	}
	face, err := opentype.NewFace(f.fonts[variantOf(key)], &opentype.FaceOptions{
		Size:    float64(max(key.Size, 1)),
		DPI:     DPI,
		Hinting: font.HintingNone,
	})
	if err != nil {
		f.log.Warn("Falling back to fixed face", zap.Stringer("font", key), zap.Error(err))
		face = basicfont.Face7x13
	}
	f.faces[key] = face
	return face
}

func (f *Faces) Measure(key Font, s string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dc.SetFontFace(f.face(key))
	w, _ := f.dc.MeasureString(s)
	return w
}

func (f *Faces) Metrics(key Font) Metrics {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.face(key).Metrics()
	ascent, descent := toFloat(m.Ascent), toFloat(m.Descent)
	return Metrics{
		Ascent:    ascent,
		Descent:   descent,
		Linespace: ascent + descent,
	}
}

func toFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64
}
