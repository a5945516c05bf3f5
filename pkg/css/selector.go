package css

import "chromatic/pkg/html"

// Selector decides which nodes a rule applies to. Rules with a higher
// Priority are applied later and so win the cascade.
type Selector interface {
	Priority() int
	Matches(node html.Node) bool
	String() string

	selector()
}

// TagSelector matches elements by tag name.
type TagSelector struct {
	Tag string
}

func (s *TagSelector) Priority() int  { return 1 }
func (s *TagSelector) String() string { return s.Tag }
func (s *TagSelector) selector()      {}

func (s *TagSelector) Matches(node html.Node) bool {
	el, ok := node.(*html.Element)
	return ok && el.Tag == s.Tag
}

// DescendantSelector matches a node matching Descendant that has some strict
// ancestor matching Ancestor.
type DescendantSelector struct {
	Ancestor   Selector
	Descendant Selector
}

func (s *DescendantSelector) Priority() int {
	return s.Ancestor.Priority() + s.Descendant.Priority()
}

func (s *DescendantSelector) String() string {
	return s.Ancestor.String() + " " + s.Descendant.String()
}

func (s *DescendantSelector) selector() {}

func (s *DescendantSelector) Matches(node html.Node) bool {
	if !s.Descendant.Matches(node) {
		return false
	}
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		if s.Ancestor.Matches(parent) {
			return true
		}
	}
	return false
}
