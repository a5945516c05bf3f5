package layout

import (
	"strings"

	"chromatic/pkg/css"
	"chromatic/pkg/html"
	"chromatic/pkg/text"
)

// lineBuilder flows words left to right and breaks lines when the next word
// would overrun the available width.
type lineBuilder struct {
	m       text.Measurer
	width   float64
	cursorX float64
	cursorY float64
	line    []Word
	words   []Word
}

func newLineBuilder(width float64, m text.Measurer) *lineBuilder {
	return &lineBuilder{m: m, width: width}
}

func (l *lineBuilder) recurse(node html.Node) {
	switch n := node.(type) {
	case *html.Text:
		for _, word := range strings.Fields(n.Content) {
			l.word(n, word)
		}
	case *html.Element:
		if n.Tag == "br" {
			l.flush()
		}
		for _, child := range n.Children {
			l.recurse(child)
		}
	}
}

// FontFor derives the font of text with the given computed style.
func FontFor(style map[string]string) text.Font {
	slant := style["font-style"]
	if slant == "normal" || slant == "" {
		slant = "roman"
	}
	weight := style["font-weight"]
	if weight == "" {
		weight = "normal"
	}
	return text.Font{
		Size:   int(css.FontSize(style) * 0.75),
		Weight: weight,
		Slant:  slant,
	}
}

func (l *lineBuilder) word(node *html.Text, word string) {
	style := node.Style()
	font := FontFor(style)
	w := l.m.Measure(font, word)
	if l.cursorX+w > l.width {
		l.flush()
	}
	l.line = append(l.line, Word{
		X:     l.cursorX,
		Text:  word,
		Font:  font,
		Color: style["color"],
	})
	l.cursorX += w + l.m.Measure(font, " ")
}

// flush places the buffered line so every word shares one baseline, with
// 25% leading above the tallest ascent and below the deepest descent.
func (l *lineBuilder) flush() {
	if len(l.line) == 0 {
		return
	}
	metrics := make([]text.Metrics, len(l.line))
	var maxAscent, maxDescent float64
	for i, w := range l.line {
		metrics[i] = l.m.Metrics(w.Font)
		maxAscent = max(maxAscent, metrics[i].Ascent)
		maxDescent = max(maxDescent, metrics[i].Descent)
	}

	baseline := l.cursorY + 1.25*maxAscent
	for i, w := range l.line {
		w.Y = baseline - metrics[i].Ascent
		w.Linespace = metrics[i].Linespace
		l.words = append(l.words, w)
	}

	l.cursorY = baseline + 1.25*maxDescent
	l.cursorX = 0
	l.line = l.line[:0]
}
