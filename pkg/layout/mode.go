package layout

import "chromatic/pkg/html"

type LayoutMode int

const (
	Block LayoutMode = iota
	Inline
)

func (m LayoutMode) String() string {
	if m == Inline {
		return "inline"
	}
	return "block"
}

var blockElements = map[string]bool{
	"html": true, "body": true, "article": true, "section": true, "nav": true,
	"aside": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "hgroup": true, "header": true, "footer": true, "address": true,
	"p": true, "hr": true, "pre": true, "blockquote": true, "ol": true,
	"ul": true, "menu": true, "li": true, "dl": true, "dt": true, "dd": true,
	"figure": true, "figcaption": true, "main": true, "div": true, "table": true,
	"form": true, "fieldset": true, "legend": true, "details": true, "summary": true,
}

// Mode decides how a node's content is laid out. Text is always inline. An
// element is inline when it has children and none of them is a block-level
// element; childless elements are blocks.
func Mode(node html.Node) LayoutMode {
	el, ok := node.(*html.Element)
	if !ok {
		return Inline
	}
	for _, child := range el.Children {
		if c, ok := child.(*html.Element); ok && blockElements[c.Tag] {
			return Block
		}
	}
	if len(el.Children) > 0 {
		return Inline
	}
	return Block
}
