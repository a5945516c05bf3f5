package css

import (
	"sort"

	"chromatic/pkg/html"
)

// SortRules orders rules by ascending selector priority. The sort is stable,
// so rules of equal priority keep their source order and the later one wins.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Selector.Priority() < rules[j].Selector.Priority()
	})
}

// Resolve computes the style of every node under root in place. Rules are
// applied in slice order, so callers sort them first.
func Resolve(root html.Node, rules []Rule) {
	resolveNode(root, rules)
}

func resolveNode(node html.Node, rules []Rule) {
	parent := node.Parent()
	style := make(map[string]string)
	for property, value := range inheritedProperties {
		if parent != nil {
			if inherited, ok := parent.Style()[property]; ok {
				value = inherited
			}
		}
		style[property] = value
	}

	for _, rule := range rules {
		if !rule.Selector.Matches(node) {
			continue
		}
		for property, value := range rule.Declarations {
			style[property] = value
		}
	}

	el, isElement := node.(*html.Element)
	if isElement {
		if inline, ok := el.Attr("style"); ok {
			for property, value := range NewParser(inline, nil).Body() {
				style[property] = value
			}
		}
	}

	if pct, ok := ParsePercentage(style["font-size"]); ok {
		parentPx := DefaultFontSize
		if parent != nil {
			parentPx = FontSize(parent.Style())
		}
		style["font-size"] = formatPx(pct * parentPx)
	}

	node.SetStyle(style)

	if isElement {
		for _, child := range el.Children {
			resolveNode(child, rules)
		}
	}
}
