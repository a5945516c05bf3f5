package render

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"chromatic/pkg/text"
)

// Canvas is a Surface that rasterizes into an in-memory image.
type Canvas struct {
	context *gg.Context
	faces   *text.Faces
	log     *zap.Logger
}

func NewCanvas(width, height int, faces *text.Faces, log *zap.Logger) *Canvas {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Canvas{
		context: gg.NewContext(width, height),
		faces:   faces,
		log:     log.Named("canvas"),
	}
	c.Clear()
	return c
}

// Clear fills the canvas with white.
func (c *Canvas) Clear() {
	c.context.SetRGB(1, 1, 1)
	c.context.Clear()
}

// DrawText draws s with its top-left corner at (x, y).
func (c *Canvas) DrawText(x, y float64, s string, font text.Font, col string) {
	c.context.SetFontFace(c.faces.Face(font))
	c.context.SetColor(c.color(col))
	ascent := c.faces.Metrics(font).Ascent
	c.context.DrawString(s, x, y+ascent)
}

func (c *Canvas) DrawRect(left, top, right, bottom float64, col string) {
	c.context.SetColor(c.color(col))
	c.context.DrawRectangle(left, top, right-left, bottom-top)
	c.context.Fill()
}

func (c *Canvas) color(s string) color.Color {
	rgba, ok := ParseColor(s)
	if !ok {
		c.log.Debug("Unknown color, using black", zap.String("color", s))
		return color.Black
	}
	return rgba
}

func (c *Canvas) Image() image.Image {
	return c.context.Image()
}

func (c *Canvas) SavePNG(filename string) error {
	return c.context.SavePNG(filename)
}

func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.context.EncodePNG(w)
}
