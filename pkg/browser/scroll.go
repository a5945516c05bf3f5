package browser

import "chromatic/pkg/layout"

// maxScroll is how far the page can scroll: the document plus its vertical
// margins, less one viewport. Callers hold b.mu.
func (b *Browser) maxScroll() float64 {
	if b.document == nil {
		return 0
	}
	return max(b.document.Height+2*layout.VStep-b.opts.Height, 0)
}

func (b *Browser) clamp(scroll float64) float64 {
	return min(max(scroll, 0), b.maxScroll())
}

// Scroll returns the current scroll offset in pixels.
func (b *Browser) Scroll() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scroll
}

// MaxScroll returns the largest valid scroll offset.
func (b *Browser) MaxScroll() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxScroll()
}

// update moves the scroll offset to next(current, max), clamped, and
// reports whether it changed.
func (b *Browser) update(next func(scroll, maxScroll float64) float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	scroll := b.clamp(next(b.scroll, b.maxScroll()))
	if scroll == b.scroll {
		return false
	}
	b.scroll = scroll
	return true
}

// ScrollDown moves one step towards the end of the page.
func (b *Browser) ScrollDown() bool {
	return b.ScrollBy(b.opts.ScrollStep)
}

// ScrollUp moves one step towards the top of the page.
func (b *Browser) ScrollUp() bool {
	return b.ScrollBy(-b.opts.ScrollStep)
}

// Wheel scrolls by a wheel rotation in notches; positive deltas move up.
func (b *Browser) Wheel(delta float64) bool {
	return b.ScrollBy(-delta * b.opts.WheelFactor)
}

// ScrollUnits scrolls by whole scrollbar units; negative values move up.
func (b *Browser) ScrollUnits(units int) bool {
	return b.ScrollBy(float64(units) * b.opts.ScrollbarUnit)
}

// ScrollBy scrolls by dy pixels.
func (b *Browser) ScrollBy(dy float64) bool {
	return b.update(func(scroll, _ float64) float64 { return scroll + dy })
}

// MoveTo jumps to a fraction of the scrollable range.
func (b *Browser) MoveTo(fraction float64) bool {
	return b.update(func(_, maxScroll float64) float64 { return fraction * maxScroll })
}

// Scrollbar returns the start and end of the scrollbar thumb as fractions of
// the track.
func (b *Browser) Scrollbar() (start, end float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := b.maxScroll() + b.opts.Height
	if b.maxScroll() == 0 || total <= 0 {
		return 0, 1
	}
	return b.scroll / total, (b.scroll + b.opts.Height) / total
}
