package css

import (
	_ "embed"
	"slices"
	"sync"
)

//go:embed browser.css
var browserCSS string

var defaultRules = sync.OnceValue(func() []Rule {
	return ParseStylesheet(browserCSS)
})

// DefaultRules returns the built-in browser stylesheet. The slice is a copy
// and may be appended to.
func DefaultRules() []Rule {
	return slices.Clone(defaultRules())
}
