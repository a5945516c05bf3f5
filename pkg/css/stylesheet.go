package css

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Rule pairs a selector with the declarations it applies.
type Rule struct {
	Selector     Selector
	Declarations map[string]string
}

// ParseError reports where the parser gave up and what it was looking for.
type ParseError struct {
	Pos      int
	Expected string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("css: expected %s at offset %d", e.Expected, e.Pos)
}

// Parser is a recursive-descent stylesheet parser. It recovers from syntax
// errors by skipping to the end of the broken declaration or rule, so Parse
// and Body always return whatever could be salvaged.
type Parser struct {
	s    string
	i    int
	fold cases.Caser
	log  *zap.Logger
}

func NewParser(s string, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{
		s:    s,
		fold: cases.Fold(),
		log:  log.Named("css-parser"),
	}
}

// Parse reads a whole stylesheet.
func (p *Parser) Parse() []Rule {
	rules := make([]Rule, 0)
	for p.i < len(p.s) {
		rule, err := p.rule()
		if err == nil {
			rules = append(rules, rule)
			continue
		}
		p.log.Debug("Skipping malformed rule", zap.Error(err))
		if p.ignoreUntil("}") != '}' {
			break
		}
		p.i++
		p.whitespace()
	}
	return rules
}

func (p *Parser) rule() (Rule, error) {
	p.whitespace()
	selector, err := p.selector()
	if err != nil {
		return Rule{}, err
	}
	if err := p.literal('{'); err != nil {
		return Rule{}, err
	}
	p.whitespace()
	body := p.Body()
	if err := p.literal('}'); err != nil {
		return Rule{}, err
	}
	return Rule{Selector: selector, Declarations: body}, nil
}

// Body reads declarations up to a closing brace or the end of input. It is
// also used on its own for inline style attributes.
func (p *Parser) Body() map[string]string {
	pairs := make(map[string]string)
	p.whitespace()
	for p.i < len(p.s) && p.s[p.i] != '}' {
		if err := p.declaration(pairs); err != nil {
			p.log.Debug("Skipping malformed declaration", zap.Error(err))
			if p.ignoreUntil(";}") != ';' {
				break
			}
			p.i++
			p.whitespace()
		}
	}
	return pairs
}

// declaration stores the pair as soon as it is read, so a final declaration
// without its semicolon is kept.
func (p *Parser) declaration(pairs map[string]string) error {
	prop, err := p.word()
	if err != nil {
		return err
	}
	p.whitespace()
	if err := p.literal(':'); err != nil {
		return err
	}
	p.whitespace()
	val, err := p.word()
	if err != nil {
		return err
	}
	pairs[p.fold.String(prop)] = val
	p.whitespace()
	if err := p.literal(';'); err != nil {
		return err
	}
	p.whitespace()
	return nil
}

func (p *Parser) selector() (Selector, error) {
	tag, err := p.word()
	if err != nil {
		return nil, err
	}
	var out Selector = &TagSelector{Tag: p.fold.String(tag)}
	p.whitespace()
	for p.i < len(p.s) && p.s[p.i] != '{' {
		tag, err := p.word()
		if err != nil {
			return nil, err
		}
		out = &DescendantSelector{
			Ancestor:   out,
			Descendant: &TagSelector{Tag: p.fold.String(tag)},
		}
		p.whitespace()
	}
	return out, nil
}

// whitespace skips spaces and /* */ comments. An unterminated comment runs
// to the end of input.
func (p *Parser) whitespace() {
	for p.i < len(p.s) {
		if strings.HasPrefix(p.s[p.i:], "/*") {
			end := strings.Index(p.s[p.i+2:], "*/")
			if end < 0 {
				p.i = len(p.s)
				return
			}
			p.i += end + 4
			continue
		}
		r, size := utf8.DecodeRuneInString(p.s[p.i:])
		if !unicode.IsSpace(r) {
			return
		}
		p.i += size
	}
}

// word consumes letters, digits and the characters #-.% and fails on an
// empty match.
func (p *Parser) word() (string, error) {
	start := p.i
	for p.i < len(p.s) {
		r, size := utf8.DecodeRuneInString(p.s[p.i:])
		if !isWordRune(r) {
			break
		}
		p.i += size
	}
	if p.i == start {
		return "", &ParseError{Pos: start, Expected: "word"}
	}
	return p.s[start:p.i], nil
}

func isWordRune(r rune) bool {
	switch r {
	case '#', '-', '.', '%':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *Parser) literal(c byte) error {
	if p.i >= len(p.s) || p.s[p.i] != c {
		return &ParseError{Pos: p.i, Expected: fmt.Sprintf("%q", c)}
	}
	p.i++
	return nil
}

// ignoreUntil advances to the first byte found in chars and returns it
// without consuming it, or returns 0 at end of input.
func (p *Parser) ignoreUntil(chars string) byte {
	for p.i < len(p.s) {
		for j := 0; j < len(chars); j++ {
			if p.s[p.i] == chars[j] {
				return p.s[p.i]
			}
		}
		p.i++
	}
	return 0
}

// ParseStylesheet is shorthand for NewParser(s, nil).Parse().
func ParseStylesheet(s string) []Rule {
	return NewParser(s, nil).Parse()
}
