package layout

import (
	"fmt"

	"github.com/xlab/treeprint"

	"chromatic/pkg/html"
	"chromatic/pkg/text"
)

// Page margins in pixels.
const (
	HStep = 13
	VStep = 18
)

// Box is a node of the layout tree: either a *DocumentBox or a *BlockBox.
type Box interface {
	Bounds() (x, y, width, height float64)

	box()
}

// DocumentBox is the root of the layout tree. It wraps the html element in a
// single BlockBox inset by the page margins.
type DocumentBox struct {
	Node                html.Node
	X, Y, Width, Height float64
	Child               *BlockBox
}

// BlockBox lays out one document node, either by stacking a child box per
// child node or by breaking the node's text into lines of words.
type BlockBox struct {
	Node                html.Node
	Mode                LayoutMode
	X, Y, Width, Height float64
	Children            []*BlockBox
	Words               []Word // inline mode only
}

// Word is a positioned run of text. X and Y are relative to the owning box
// and give the top-left corner of the word.
type Word struct {
	X, Y      float64
	Text      string
	Font      text.Font
	Color     string
	Linespace float64
}

func (d *DocumentBox) Bounds() (x, y, width, height float64) {
	return d.X, d.Y, d.Width, d.Height
}

func (b *BlockBox) Bounds() (x, y, width, height float64) {
	return b.X, b.Y, b.Width, b.Height
}

func (d *DocumentBox) box() {}
func (b *BlockBox) box()    {}

// Walk visits b and its descendant boxes in pre-order.
func (b *BlockBox) Walk(fn func(*BlockBox)) {
	fn(b)
	for _, child := range b.Children {
		child.Walk(fn)
	}
}

// Dump renders the layout tree as an indented outline.
func Dump(doc *DocumentBox) string {
	tree := treeprint.NewWithRoot(fmt.Sprintf("document %s", geometry(doc)))
	if doc.Child != nil {
		dumpBlock(tree, doc.Child)
	}
	return tree.String()
}

func dumpBlock(tree treeprint.Tree, b *BlockBox) {
	branch := tree.AddBranch(fmt.Sprintf("%s %s %s", b.Mode, b.Node, geometry(b)))
	for _, w := range b.Words {
		branch.AddNode(fmt.Sprintf("%q (%g,%g) %s", w.Text, w.X, w.Y, w.Font))
	}
	for _, child := range b.Children {
		dumpBlock(branch, child)
	}
}

func geometry(b Box) string {
	x, y, w, h := b.Bounds()
	return fmt.Sprintf("x=%g y=%g w=%g h=%g", x, y, w, h)
}
