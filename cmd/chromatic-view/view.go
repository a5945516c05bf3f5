package main

import (
	"image"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"chromatic/pkg/browser"
	"chromatic/pkg/layout"
	"chromatic/pkg/render"
	"chromatic/pkg/text"
)

const (
	scrollbarWidth = 8
	scrollbarColor = "blue"
)

// pageView shows the visible part of the current page and turns keyboard,
// wheel and scrollbar input into scrolling. Redraws requested within one
// throttle window are coalesced into a single refresh.
type pageView struct {
	widget.BaseWidget

	browser  *browser.Browser
	faces    *text.Faces
	log      *zap.Logger
	raster   *canvas.Raster
	throttle time.Duration

	mu      sync.Mutex
	pending *time.Timer
	refresh func()

	// focus is called on taps so the view starts receiving keys.
	focus func()
}

var (
	_ fyne.Focusable  = (*pageView)(nil)
	_ fyne.Scrollable = (*pageView)(nil)
	_ fyne.Tappable   = (*pageView)(nil)
	_ fyne.Draggable  = (*pageView)(nil)
)

func newPageView(b *browser.Browser, faces *text.Faces, throttle time.Duration, log *zap.Logger) *pageView {
	v := &pageView{
		browser:  b,
		faces:    faces,
		log:      log.Named("view"),
		throttle: throttle,
	}
	v.raster = canvas.NewRaster(v.draw)
	v.refresh = func() { fyne.Do(v.raster.Refresh) }
	v.ExtendBaseWidget(v)
	return v
}

func (v *pageView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// draw renders the page at the raster's pixel size. A change of width
// relayouts the page.
func (v *pageView) draw(w, h int) image.Image {
	if w <= 2*layout.HStep || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	}
	v.browser.Resize(float64(w), float64(h))
	c := render.NewCanvas(w, h, v.faces, v.log)
	v.browser.Draw(c)

	start, end := v.browser.Scrollbar()
	if end-start < 1 {
		c.DrawRect(float64(w-scrollbarWidth), start*float64(h), float64(w), end*float64(h), scrollbarColor)
	}
	return c.Image()
}

// scheduleRefresh asks for a redraw at most once per throttle window.
func (v *pageView) scheduleRefresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending != nil {
		return
	}
	v.pending = time.AfterFunc(v.throttle, func() {
		v.mu.Lock()
		v.pending = nil
		v.mu.Unlock()
		v.refresh()
	})
}

func (v *pageView) scrolled(changed bool) {
	if changed {
		v.scheduleRefresh()
	}
}

func (v *pageView) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyDown:
		v.scrolled(v.browser.ScrollDown())
	case fyne.KeyUp:
		v.scrolled(v.browser.ScrollUp())
	case fyne.KeyPageDown:
		v.scrolled(v.browser.ScrollUnits(pageUnits))
	case fyne.KeyPageUp:
		v.scrolled(v.browser.ScrollUnits(-pageUnits))
	case fyne.KeyHome:
		v.scrolled(v.browser.MoveTo(0))
	case fyne.KeyEnd:
		v.scrolled(v.browser.MoveTo(1))
	}
}

// pageUnits is how many scrollbar units the page keys move.
const pageUnits = 10

func (v *pageView) TypedRune(rune) {}
func (v *pageView) FocusGained()   {}
func (v *pageView) FocusLost()     {}

// Scrolled handles the mouse wheel. Fyne reports upward rotation as a
// positive DY.
func (v *pageView) Scrolled(ev *fyne.ScrollEvent) {
	v.scrolled(v.browser.Wheel(float64(ev.Scrolled.DY)))
}

// Tapped focuses the view so it receives keys. A tap on the scrollbar
// track jumps there.
func (v *pageView) Tapped(ev *fyne.PointEvent) {
	if v.focus != nil {
		v.focus()
	}
	if v.onScrollbar(ev.Position) {
		v.scrolled(v.browser.MoveTo(v.fraction(ev.Position)))
	}
}

func (v *pageView) Dragged(ev *fyne.DragEvent) {
	if v.onScrollbar(ev.Position) {
		v.scrolled(v.browser.MoveTo(v.fraction(ev.Position)))
	}
}

func (v *pageView) DragEnd() {}

func (v *pageView) onScrollbar(pos fyne.Position) bool {
	return pos.X >= v.Size().Width-scrollbarWidth
}

// fraction maps a point on the track to a position in the page.
func (v *pageView) fraction(pos fyne.Position) float64 {
	height := v.Size().Height
	if height <= 0 {
		return 0
	}
	return float64(pos.Y / height)
}
