package render

import (
	"chromatic/pkg/layout"
)

// Paint flattens a layout tree into a display list. Boxes are visited in
// pre-order so a background always precedes the text drawn over it.
func Paint(doc *layout.DocumentBox) []Command {
	cmds := make([]Command, 0)
	if doc == nil || doc.Child == nil {
		return cmds
	}
	doc.Child.Walk(func(b *layout.BlockBox) {
		cmds = paintBlock(b, cmds)
	})
	return cmds
}

func paintBlock(b *layout.BlockBox, cmds []Command) []Command {
	if bg, ok := b.Node.Style()["background-color"]; ok && bg != "transparent" {
		cmds = append(cmds, &DrawRect{
			Left:   b.X,
			Top:    b.Y,
			Right:  b.X + b.Width,
			Bottom: b.Y + b.Height,
			Color:  bg,
		})
	}
	if b.Mode != layout.Inline {
		return cmds
	}
	for _, w := range b.Words {
		x, y := b.X+w.X, b.Y+w.Y
		cmds = append(cmds, &DrawText{
			X:      x,
			Y:      y,
			Text:   w.Text,
			Font:   w.Font,
			Color:  w.Color,
			Top:    y,
			Bottom: y + w.Linespace,
		})
	}
	return cmds
}
