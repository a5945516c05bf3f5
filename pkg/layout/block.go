package layout

import (
	"chromatic/pkg/html"
	"chromatic/pkg/text"
)

// Layout builds a fresh layout tree for root at the given viewport width.
// The styled tree is only read, so repeated calls give identical results.
func Layout(root html.Node, viewportWidth float64, m text.Measurer) *DocumentBox {
	doc := &DocumentBox{
		Node:  root,
		X:     HStep,
		Y:     VStep,
		Width: viewportWidth - 2*HStep,
	}
	doc.Child = &BlockBox{
		Node:  root,
		X:     doc.X,
		Y:     doc.Y,
		Width: doc.Width,
	}
	doc.Child.layout(m)
	doc.Height = doc.Child.Height
	return doc
}

func (b *BlockBox) layout(m text.Measurer) {
	b.Mode = Mode(b.Node)
	if b.Mode == Inline {
		lines := newLineBuilder(b.Width, m)
		lines.recurse(b.Node)
		lines.flush()
		b.Words = lines.words
		b.Height = lines.cursorY
		return
	}

	el, ok := b.Node.(*html.Element)
	if !ok {
		return
	}
	y := b.Y
	for _, child := range el.Children {
		next := &BlockBox{
			Node:  child,
			X:     b.X,
			Y:     y,
			Width: b.Width,
		}
		next.layout(m)
		b.Children = append(b.Children, next)
		y += next.Height
		b.Height += next.Height
	}
}
