package visualtest

import (
	"context"
	"image"
	"net/url"

	"chromatic/pkg/browser"
	"chromatic/pkg/render"
	"chromatic/pkg/resource"
	"chromatic/pkg/text"
)

// Render runs markup through the whole pipeline and rasterizes the viewport
// at the given scroll offset.
func Render(ctx context.Context, markup string, width, height int, scroll float64, faces *text.Faces) (image.Image, error) {
	b := browser.New(resource.NewClient(resource.Options{}, nil), faces, browser.Options{
		Width:  float64(width),
		Height: float64(height),
	}, nil)
	if err := b.Load(ctx, "data:text/html,"+url.PathEscape(markup)); err != nil {
		return nil, err
	}
	b.ScrollBy(scroll)

	c := render.NewCanvas(width, height, faces, nil)
	b.Draw(c)
	return c.Image(), nil
}
