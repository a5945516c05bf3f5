package html

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Node is a document tree node: either a *Text or an *Element.
type Node interface {
	// Parent returns the enclosing element, or nil for the root.
	Parent() *Element
	// Style returns the computed property map set by the style resolver.
	Style() map[string]string
	// SetStyle replaces the computed property map.
	SetStyle(style map[string]string)
	String() string

	node()
}

type Text struct {
	Content string

	style  map[string]string
	parent *Element // not owning
}

type Element struct {
	Tag        string
	Attributes map[string]string
	Children   []Node

	style  map[string]string
	parent *Element // not owning
}

// NewElement creates a detached element. A nil attribute map is replaced by
// an empty one.
func NewElement(tag string, attributes map[string]string) *Element {
	if attributes == nil {
		attributes = make(map[string]string)
	}
	return &Element{
		Tag:        tag,
		Attributes: attributes,
		Children:   make([]Node, 0),
	}
}

// NewText creates a detached text node.
func NewText(content string) *Text {
	return &Text{Content: content}
}

func (t *Text) Parent() *Element             { return t.parent }
func (t *Text) Style() map[string]string     { return t.style }
func (t *Text) SetStyle(s map[string]string) { t.style = s }
func (t *Text) String() string               { return fmt.Sprintf("%q", t.Content) }
func (t *Text) node()                        {}

func (e *Element) Parent() *Element             { return e.parent }
func (e *Element) Style() map[string]string     { return e.style }
func (e *Element) SetStyle(s map[string]string) { e.style = s }
func (e *Element) String() string               { return "<" + e.Tag + ">" }
func (e *Element) node()                        {}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	if e.Attributes == nil {
		return "", false
	}
	val, ok := e.Attributes[name]
	return val, ok
}

// AppendChild adds a child node and sets up the parent relationship
func (e *Element) AppendChild(child Node) {
	switch c := child.(type) {
	case *Text:
		c.parent = e
	case *Element:
		c.parent = e
	}
	e.Children = append(e.Children, child)
}

// AppendText creates a text node and adds it as a child
func (e *Element) AppendText(content string) *Text {
	t := NewText(content)
	e.AppendChild(t)
	return t
}

// ChildElement returns the first direct child element with the given tag.
func (e *Element) ChildElement(tag string) *Element {
	for _, child := range e.Children {
		if el, ok := child.(*Element); ok && el.Tag == tag {
			return el
		}
	}
	return nil
}

// Walk visits n and its descendants in pre-order.
func Walk(n Node, fn func(Node)) {
	fn(n)
	if el, ok := n.(*Element); ok {
		for _, child := range el.Children {
			Walk(child, fn)
		}
	}
}

// TreeToList flattens the tree rooted at n in pre-order.
func TreeToList(n Node) []Node {
	list := make([]Node, 0)
	Walk(n, func(node Node) {
		list = append(list, node)
	})
	return list
}

// PrintTree renders the tree rooted at n as an indented outline.
func PrintTree(n Node) string {
	tree := treeprint.NewWithRoot(n.String())
	if el, ok := n.(*Element); ok {
		addBranches(tree, el)
	}
	return tree.String()
}

func addBranches(tree treeprint.Tree, el *Element) {
	for _, child := range el.Children {
		switch c := child.(type) {
		case *Element:
			if len(c.Children) == 0 {
				tree.AddNode(c.String())
				continue
			}
			addBranches(tree.AddBranch(c.String()), c)
		case *Text:
			tree.AddNode(c.String())
		}
	}
}
