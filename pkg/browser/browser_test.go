package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"chromatic/pkg/layout"
	"chromatic/pkg/render"
	"chromatic/pkg/resource"
	"chromatic/pkg/text"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeMeasurer struct{}

func (fakeMeasurer) Measure(font text.Font, s string) float64 {
	return float64(utf8.RuneCountInString(s) * font.Size)
}

func (fakeMeasurer) Metrics(font text.Font) text.Metrics {
	size := float64(font.Size)
	return text.Metrics{Ascent: size, Descent: size / 4, Linespace: size * 1.25}
}

// fakeFetcher serves canned bodies by URL. Delays let tests reorder
// completion of concurrent fetches.
type fakeFetcher struct {
	pages  map[string]string
	delays map[string]time.Duration

	// started, when set, receives each URL as its fetch begins.
	started chan string
}

var errNotFound = errors.New("not found")

func (f *fakeFetcher) Fetch(ctx context.Context, u *resource.URL) (string, error) {
	if f.started != nil {
		f.started <- u.String()
	}
	if d, ok := f.delays[u.String()]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	body, ok := f.pages[u.String()]
	if !ok {
		return "", fmt.Errorf("%s: %w", u, errNotFound)
	}
	return body, nil
}

const base = "http://example.org/dir/index.html"

func newBrowser(pages map[string]string, log *zap.Logger) *Browser {
	return New(&fakeFetcher{pages: pages}, fakeMeasurer{}, Options{}, log)
}

func texts(cmds []render.Command) []*render.DrawText {
	var out []*render.DrawText
	for _, cmd := range cmds {
		if t, ok := cmd.(*render.DrawText); ok {
			out = append(out, t)
		}
	}
	return out
}

func TestBrowser_BoldWordSharesBaseline(t *testing.T) {
	b := newBrowser(map[string]string{base: "<p>Hello <b>world</b></p>"}, nil)
	require.NoError(t, b.Load(context.Background(), base))

	words := texts(b.DisplayList())
	require.Len(t, words, 2)
	hello, world := words[0], words[1]
	assert.Equal(t, "Hello", hello.Text)
	assert.Equal(t, "world", world.Text)

	assert.Equal(t, text.Font{Size: 12, Weight: "normal", Slant: "roman"}, hello.Font)
	assert.Equal(t, text.Font{Size: 12, Weight: "bold", Slant: "roman"}, world.Font)
	assert.Equal(t, "black", hello.Color)

	m := fakeMeasurer{}
	assert.Equal(t, hello.Y+m.Metrics(hello.Font).Ascent, world.Y+m.Metrics(world.Font).Ascent)
	assert.Greater(t, world.X, hello.X)
}

func TestBrowser_LinkedAndInlineStylesheets(t *testing.T) {
	pages := map[string]string{
		base: `<link rel="stylesheet" href="style.css"><style>i { color: green; }</style><p>a <i>b</i></p>`,
		"http://example.org/dir/style.css": "p { color: red; }",
	}
	b := newBrowser(pages, nil)
	require.NoError(t, b.Load(context.Background(), base))

	words := texts(b.DisplayList())
	require.Len(t, words, 2)
	assert.Equal(t, "red", words[0].Color)
	assert.Equal(t, "green", words[1].Color)
}

func TestBrowser_StylesheetsApplyInDocumentOrder(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			base:                           `<link rel=stylesheet href=/first.css><link rel=stylesheet href=/second.css><p>x</p>`,
			"http://example.org/first.css":  "p { color: red; }",
			"http://example.org/second.css": "p { color: blue; }",
		},
		delays: map[string]time.Duration{"http://example.org/first.css": 20 * time.Millisecond},
	}
	b := New(fetcher, fakeMeasurer{}, Options{}, nil)
	require.NoError(t, b.Load(context.Background(), base))

	words := texts(b.DisplayList())
	require.Len(t, words, 1)
	assert.Equal(t, "blue", words[0].Color, "the later sheet wins even when it arrives first")
}

func TestBrowser_FailedStylesheetIsSkipped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	pages := map[string]string{
		base: `<link rel=stylesheet href=missing.css><link rel=stylesheet href=gone.css><link rel=stylesheet href=ok.css><p>x</p>`,
		"http://example.org/dir/ok.css": "p { color: purple; }",
	}
	b := newBrowser(pages, zap.New(core))
	require.NoError(t, b.Load(context.Background(), base))

	words := texts(b.DisplayList())
	require.Len(t, words, 1)
	assert.Equal(t, "purple", words[0].Color)

	warnings := logs.FilterMessage("Skipped stylesheets").All()
	require.Len(t, warnings, 1, "failures are reported once")
	errText := fmt.Sprint(warnings[0].ContextMap()["error"])
	assert.Contains(t, errText, "missing.css")
	assert.Contains(t, errText, "gone.css")
}

func TestBrowser_IgnoresOtherLinks(t *testing.T) {
	pages := map[string]string{
		base: `<link rel=icon href=favicon.css><link rel=stylesheet><p>x</p>`,
	}
	b := newBrowser(pages, nil)
	require.NoError(t, b.Load(context.Background(), base))
	assert.Len(t, texts(b.DisplayList()), 1)
}

func TestBrowser_PrimaryFailureKeepsPreviousPage(t *testing.T) {
	b := newBrowser(map[string]string{base: "<p>first</p>"}, nil)
	require.NoError(t, b.Load(context.Background(), base))
	before := b.DisplayList()

	err := b.Load(context.Background(), "http://example.org/missing.html")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigation)
	assert.ErrorIs(t, err, errNotFound)

	assert.Equal(t, base, b.URL().String())
	assert.Equal(t, before, b.DisplayList())
}

func TestBrowser_MalformedURL(t *testing.T) {
	b := newBrowser(nil, nil)
	err := b.Load(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrNavigation)
	assert.ErrorIs(t, err, resource.ErrMalformedURL)
	assert.Nil(t, b.Document())
}

func TestBrowser_Title(t *testing.T) {
	b := newBrowser(map[string]string{base: "<title>My\n  Page</title><p>x</p>"}, nil)
	require.NoError(t, b.Load(context.Background(), base))
	assert.Equal(t, "My Page", b.Title())
}

func TestBrowser_Idempotent(t *testing.T) {
	page := map[string]string{base: "<h1>Title</h1><p>Hello <b>bold</b> and <i>italic</i></p><pre>code</pre>"}
	first := newBrowser(page, nil)
	second := newBrowser(page, nil)
	require.NoError(t, first.Load(context.Background(), base))
	require.NoError(t, second.Load(context.Background(), base))

	if diff := cmp.Diff(first.DisplayList(), second.DisplayList()); diff != "" {
		t.Errorf("display lists differ (-first +second):\n%s", diff)
	}

	again := first.DisplayList()
	first.Resize(800, 600)
	assert.Empty(t, cmp.Diff(again, first.DisplayList()))
}

func tallPage(paragraphs int) string {
	var sb strings.Builder
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&sb, "<p>line%d</p>", i)
	}
	return sb.String()
}

func TestBrowser_Scrolling(t *testing.T) {
	b := newBrowser(map[string]string{base: tallPage(50)}, nil)
	require.NoError(t, b.Load(context.Background(), base))

	// 50 lines of 18.75px plus margins, less one 600px viewport.
	require.Equal(t, 373.5, b.MaxScroll())

	assert.False(t, b.ScrollUp(), "already at the top")
	for _, want := range []float64{100, 200, 300, 373.5} {
		assert.True(t, b.ScrollDown())
		assert.Equal(t, want, b.Scroll())
	}
	assert.False(t, b.ScrollDown(), "clamped at the bottom")

	assert.True(t, b.ScrollUp())
	assert.Equal(t, 273.5, b.Scroll())

	b.MoveTo(0)
	assert.True(t, b.Wheel(-1))
	assert.Equal(t, 5.0, b.Scroll())
	assert.True(t, b.Wheel(2))
	assert.Equal(t, 0.0, b.Scroll())

	assert.True(t, b.ScrollUnits(2))
	assert.Equal(t, 80.0, b.Scroll())

	assert.True(t, b.MoveTo(1))
	assert.Equal(t, 373.5, b.Scroll())
	assert.True(t, b.MoveTo(0.5))
	assert.Equal(t, 186.75, b.Scroll())
	assert.True(t, b.MoveTo(-3))
	assert.Equal(t, 0.0, b.Scroll())
}

func TestBrowser_ShortPageDoesNotScroll(t *testing.T) {
	b := newBrowser(map[string]string{base: "<p>short</p>"}, nil)
	require.NoError(t, b.Load(context.Background(), base))

	assert.Zero(t, b.MaxScroll())
	assert.False(t, b.ScrollDown())
	start, end := b.Scrollbar()
	assert.Equal(t, 0.0, start)
	assert.Equal(t, 1.0, end)
}

func TestBrowser_Scrollbar(t *testing.T) {
	b := newBrowser(map[string]string{base: tallPage(50)}, nil)
	require.NoError(t, b.Load(context.Background(), base))

	start, end := b.Scrollbar()
	assert.Equal(t, 0.0, start)
	assert.InDelta(t, 600/973.5, end, 1e-9)

	b.MoveTo(1)
	start, end = b.Scrollbar()
	assert.InDelta(t, 373.5/973.5, start, 1e-9)
	assert.InDelta(t, 1.0, end, 1e-9)
}

func TestBrowser_VisibleAndDraw(t *testing.T) {
	b := newBrowser(map[string]string{base: tallPage(50)}, nil)
	require.NoError(t, b.Load(context.Background(), base))

	all := b.DisplayList()
	visible := b.Visible()
	assert.Less(t, len(visible), len(all))
	for _, cmd := range visible {
		top, bottom := cmd.Bounds()
		assert.LessOrEqual(t, top, 600.0)
		assert.GreaterOrEqual(t, bottom, 0.0)
	}

	b.ScrollBy(200)
	var r recorder
	b.Draw(&r)
	require.NotEmpty(t, r.ys)
	for _, y := range r.ys {
		assert.GreaterOrEqual(t, y, -20.0, "drawn coordinates are relative to the viewport")
		assert.LessOrEqual(t, y, 600.0)
	}
}

type recorder struct {
	ys []float64
}

func (r *recorder) DrawText(x, y float64, s string, font text.Font, color string) {
	r.ys = append(r.ys, y)
}

func (r *recorder) DrawRect(left, top, right, bottom float64, color string) {
	r.ys = append(r.ys, top)
}

func TestBrowser_Resize(t *testing.T) {
	b := newBrowser(map[string]string{base: "<p>" + strings.Repeat("word ", 200) + "</p>"}, nil)
	require.NoError(t, b.Load(context.Background(), base))
	doc := b.Document()

	b.Resize(800, 300)
	assert.Same(t, doc, b.Document(), "height-only resize keeps the layout")

	b.Resize(400, 300)
	narrow := b.Document()
	assert.NotSame(t, doc, narrow)
	assert.Equal(t, float64(400-2*layout.HStep), narrow.Width)
	assert.Greater(t, narrow.Height, doc.Height, "narrower pages wrap onto more lines")
}

func TestBrowser_ResizeClampsScroll(t *testing.T) {
	b := newBrowser(map[string]string{base: tallPage(50)}, nil)
	require.NoError(t, b.Load(context.Background(), base))
	b.MoveTo(1)

	b.Resize(800, 900)
	assert.Equal(t, b.MaxScroll(), b.Scroll())
	assert.Equal(t, 73.5, b.Scroll())
}

func TestBrowser_LatestNavigationWins(t *testing.T) {
	const slow, fast = "http://example.org/slow.html", "http://example.org/fast.html"
	fetcher := &fakeFetcher{
		pages: map[string]string{
			slow: "<p>slow</p>",
			fast: "<p>fast</p>",
		},
		delays:  map[string]time.Duration{slow: 50 * time.Millisecond},
		started: make(chan string, 2),
	}
	b := New(fetcher, fakeMeasurer{}, Options{}, nil)

	slowErr := make(chan error, 1)
	go func() { slowErr <- b.Load(context.Background(), slow) }()
	require.Equal(t, slow, <-fetcher.started)

	require.NoError(t, b.Load(context.Background(), fast))
	err := <-slowErr
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.NotErrorIs(t, err, ErrNavigation)

	assert.Equal(t, fast, b.URL().String())
	words := texts(b.DisplayList())
	require.Len(t, words, 1)
	assert.Equal(t, "fast", words[0].Text)
}
