package main

import (
	"context"
	"image/color"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chromatic/pkg/browser"
	"chromatic/pkg/resource"
	"chromatic/pkg/text"
)

func newTestView(t *testing.T, paragraphs int) *pageView {
	t.Helper()
	test.NewTempApp(t)

	faces, err := text.NewFaces(text.FontConfig{}, nil)
	require.NoError(t, err)
	b := browser.New(resource.NewClient(resource.Options{}, nil), faces, browser.Options{}, nil)
	page := "data:text/html," + strings.Repeat("<p>line</p>", paragraphs)
	require.NoError(t, b.Load(context.Background(), page))

	v := newPageView(b, faces, 10*time.Millisecond, zap.NewNop())
	v.refresh = func() {}
	v.Resize(fyne.NewSize(800, 600))
	return v
}

func TestPageView_Keys(t *testing.T) {
	v := newTestView(t, 100)
	b := v.browser

	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDown})
	assert.Equal(t, 100.0, b.Scroll())
	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyUp})
	assert.Equal(t, 0.0, b.Scroll())

	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyEnd})
	assert.Equal(t, b.MaxScroll(), b.Scroll())
	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyHome})
	assert.Equal(t, 0.0, b.Scroll())

	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyPageDown})
	assert.Equal(t, 400.0, b.Scroll())
}

func TestPageView_Wheel(t *testing.T) {
	v := newTestView(t, 100)
	v.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: -2}})
	assert.Equal(t, 10.0, v.browser.Scroll())
	v.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 4}})
	assert.Equal(t, 0.0, v.browser.Scroll())
}

func TestPageView_ScrollbarTap(t *testing.T) {
	v := newTestView(t, 100)

	v.Tapped(&fyne.PointEvent{Position: fyne.NewPos(100, 300)})
	assert.Equal(t, 0.0, v.browser.Scroll(), "taps on the page do not scroll")

	v.Tapped(&fyne.PointEvent{Position: fyne.NewPos(796, 300)})
	assert.InDelta(t, v.browser.MaxScroll()/2, v.browser.Scroll(), 1e-6)
}

func TestPageView_CoalescesRefreshes(t *testing.T) {
	v := newTestView(t, 100)
	var refreshes atomic.Int32
	v.refresh = func() { refreshes.Add(1) }

	for range 5 {
		v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDown})
	}
	assert.Eventually(t, func() bool { return refreshes.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), refreshes.Load())

	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyHome})
	assert.Eventually(t, func() bool { return refreshes.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestPageView_NoRefreshWithoutScroll(t *testing.T) {
	v := newTestView(t, 1)
	var refreshes atomic.Int32
	v.refresh = func() { refreshes.Add(1) }

	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDown})
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, refreshes.Load())
}

func TestPageView_DrawsScrollbar(t *testing.T) {
	v := newTestView(t, 100)
	img := v.draw(800, 600)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())

	r, g, b, _ := img.At(796, 10).RGBA()
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255})

	short := newTestView(t, 1)
	img = short.draw(800, 600)
	r, g, b, _ = img.At(796, 10).RGBA()
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255})
}

func TestPageView_TinyRaster(t *testing.T) {
	v := newTestView(t, 1)
	img := v.draw(0, 0)
	assert.Equal(t, 1, img.Bounds().Dx())
}
