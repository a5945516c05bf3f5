package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chromatic/pkg/css"
	"chromatic/pkg/html"
	"chromatic/pkg/layout"
	"chromatic/pkg/render"
	"chromatic/pkg/resource"
	"chromatic/pkg/text"
)

var (
	// ErrNavigation wraps every error that aborts a page load.
	ErrNavigation = errors.New("navigation failed")
	// ErrSuperseded is returned by a load that finished after a newer
	// navigation started. Its result is discarded.
	ErrSuperseded = errors.New("navigation superseded")
)

// Options configure a Browser. Zero values select the defaults.
type Options struct {
	Width                 float64
	Height                float64
	ScrollStep            float64
	WheelFactor           float64
	ScrollbarUnit         float64
	StylesheetConcurrency int
}

func (o *Options) setDefaults() {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.ScrollStep <= 0 {
		o.ScrollStep = 100
	}
	if o.WheelFactor <= 0 {
		o.WheelFactor = 5
	}
	if o.ScrollbarUnit <= 0 {
		o.ScrollbarUnit = 40
	}
	if o.StylesheetConcurrency <= 0 {
		o.StylesheetConcurrency = 4
	}
}

// Browser drives the pipeline for one tab: it loads a page, keeps the styled
// tree, and rebuilds layout and display list when the viewport changes. All
// methods are safe for concurrent use.
type Browser struct {
	fetcher  resource.Fetcher
	measurer text.Measurer
	log      *zap.Logger

	mu          sync.Mutex
	navigation  uint64 // sequence number of the latest Navigate call
	opts        Options
	url         *resource.URL
	nodes       *html.Element
	document    *layout.DocumentBox
	displayList []render.Command
	scroll      float64
}

func New(fetcher resource.Fetcher, measurer text.Measurer, opts Options, log *zap.Logger) *Browser {
	if log == nil {
		log = zap.NewNop()
	}
	opts.setDefaults()
	return &Browser{
		fetcher:  fetcher,
		measurer: measurer,
		log:      log.Named("browser"),
		opts:     opts,
	}
}

// Load parses rawURL and navigates to it.
func (b *Browser) Load(ctx context.Context, rawURL string) error {
	u, err := resource.ParseURL(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	return b.Navigate(ctx, u)
}

// Navigate fetches u, applies its stylesheets and lays it out. If the page
// itself cannot be fetched the error wraps ErrNavigation and the previously
// loaded page stays in place. Stylesheets that fail to load are skipped.
// When several loads overlap only the most recently started one is shown;
// the others return ErrSuperseded.
func (b *Browser) Navigate(ctx context.Context, u *resource.URL) error {
	b.mu.Lock()
	b.navigation++
	seq := b.navigation
	b.mu.Unlock()

	log := b.log.With(zap.String("navigation", uuid.NewString()), zap.Stringer("url", u))
	log.Info("Loading page")

	body, err := b.fetcher.Fetch(ctx, u)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigation, u, err)
	}

	nodes := html.NewParser(body, log).Parse()
	rules := css.DefaultRules()
	sheets, err := b.fetchStylesheets(ctx, u, collectStylesheets(nodes))
	if err != nil {
		log.Warn("Skipped stylesheets", zap.Error(err))
	}
	for _, sheet := range sheets {
		rules = append(rules, css.NewParser(sheet, log).Parse()...)
	}
	css.SortRules(rules)
	css.Resolve(nodes, rules)

	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.navigation {
		log.Info("Discarding superseded page")
		return fmt.Errorf("%s: %w", u, ErrSuperseded)
	}
	b.url = u
	b.nodes = nodes
	b.scroll = 0
	b.relayout()
	log.Info("Page loaded",
		zap.Int("rules", len(rules)),
		zap.Int("commands", len(b.displayList)),
		zap.Float64("height", b.document.Height),
	)
	return nil
}

// stylesheet is either a linked sheet to fetch or the text of a <style>
// element.
type stylesheet struct {
	href   string
	inline string
	linked bool
}

// collectStylesheets lists the page's stylesheets in document order.
func collectStylesheets(root *html.Element) []stylesheet {
	var sheets []stylesheet
	html.Walk(root, func(n html.Node) {
		el, ok := n.(*html.Element)
		if !ok {
			return
		}
		switch el.Tag {
		case "link":
			rel, _ := el.Attr("rel")
			href, ok := el.Attr("href")
			if ok && strings.EqualFold(rel, "stylesheet") {
				sheets = append(sheets, stylesheet{href: href, linked: true})
			}
		case "style":
			var sb strings.Builder
			for _, child := range el.Children {
				if t, ok := child.(*html.Text); ok {
					sb.WriteString(t.Content)
				}
			}
			sheets = append(sheets, stylesheet{inline: sb.String()})
		}
	})
	return sheets
}

// fetchStylesheets returns the text of every sheet that could be loaded, in
// document order. Linked sheets are fetched concurrently; their failures are
// combined into the returned error.
func (b *Browser) fetchStylesheets(ctx context.Context, base *resource.URL, sheets []stylesheet) ([]string, error) {
	texts := make([]string, len(sheets))
	errs := make([]error, len(sheets))

	var g errgroup.Group
	g.SetLimit(b.opts.StylesheetConcurrency)
	for i, sheet := range sheets {
		if !sheet.linked {
			texts[i] = sheet.inline
			continue
		}
		g.Go(func() error {
			u, err := base.Resolve(sheet.href)
			if err != nil {
				errs[i] = fmt.Errorf("resolving %q: %w", sheet.href, err)
				return nil
			}
			body, err := b.fetcher.Fetch(ctx, u)
			if err != nil {
				errs[i] = fmt.Errorf("fetching %s: %w", u, err)
				return nil
			}
			texts[i] = body
			return nil
		})
	}
	_ = g.Wait()

	loaded := make([]string, 0, len(sheets))
	for i := range sheets {
		if errs[i] == nil {
			loaded = append(loaded, texts[i])
		}
	}
	return loaded, multierr.Combine(errs...)
}

// relayout rebuilds the layout tree and display list. Callers hold b.mu.
func (b *Browser) relayout() {
	if b.nodes == nil {
		return
	}
	b.document = layout.Layout(b.nodes, b.opts.Width, b.measurer)
	b.displayList = render.Paint(b.document)
	b.scroll = b.clamp(b.scroll)
}

// Resize updates the viewport. Layout only depends on the width, so a
// height-only change just re-clamps the scroll offset.
func (b *Browser) Resize(width, height float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	widthChanged := width != b.opts.Width
	b.opts.Width, b.opts.Height = width, height
	if widthChanged {
		b.log.Debug("Relayout after resize", zap.Float64("width", width))
		b.relayout()
		return
	}
	b.scroll = b.clamp(b.scroll)
}

// Visible returns the display list entries inside the viewport.
func (b *Browser) Visible() []render.Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	return render.Visible(b.displayList, b.scroll, b.opts.Height)
}

// Draw paints the visible part of the page on s.
func (b *Browser) Draw(s render.Surface) {
	b.mu.Lock()
	defer b.mu.Unlock()
	render.Execute(render.Visible(b.displayList, b.scroll, b.opts.Height), b.scroll, s)
}

func (b *Browser) URL() *resource.URL {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url
}

// Document returns the current layout tree, or nil before the first load.
func (b *Browser) Document() *layout.DocumentBox {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.document
}

func (b *Browser) DisplayList() []render.Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.displayList
}

func (b *Browser) Nodes() *html.Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nodes
}

// Title returns the text of the page's <title>, if any.
func (b *Browser) Title() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nodes == nil {
		return ""
	}
	head := b.nodes.ChildElement("head")
	if head == nil {
		return ""
	}
	title := head.ChildElement("title")
	if title == nil {
		return ""
	}
	var parts []string
	for _, child := range title.Children {
		if t, ok := child.(*html.Text); ok {
			parts = append(parts, strings.Fields(t.Content)...)
		}
	}
	return strings.Join(parts, " ")
}
