package html

import (
	gohtml "html"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

var selfClosingTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// headTags may only appear inside <head>; seeing one first opens an implicit head.
var headTags = map[string]bool{
	"base": true, "basefont": true, "bgsound": true, "noscript": true,
	"link": true, "meta": true, "title": true, "style": true, "script": true,
}

// Parser builds a document tree from markup, inserting the html, head and
// body elements a page leaves out. It never fails: malformed input is
// repaired or ignored.
type Parser struct {
	tokenizer  *Tokenizer
	unfinished []*Element // stack of open elements; [0] is always <html>
	fold       cases.Caser
	log        *zap.Logger
}

func NewParser(body string, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{
		tokenizer: NewTokenizer(body),
		fold:      cases.Fold(),
		log:       log.Named("html-parser"),
	}
}

// Parse is shorthand for NewParser(body, nil).Parse().
func Parse(body string) *Element {
	return NewParser(body, nil).Parse()
}

// Parse consumes the whole input and returns the <html> root.
func (p *Parser) Parse() *Element {
	for {
		token := p.tokenizer.NextToken()
		switch token.Type {
		case TokenEOF:
			return p.finish()
		case TokenText:
			p.addText(token.Data)
		case TokenTag:
			p.addTag(token.Data)
		}
	}
}

func (p *Parser) addText(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	p.implicitTags("")
	p.top().AppendText(gohtml.UnescapeString(text))
}

func (p *Parser) addTag(raw string) {
	tag, attributes := splitTag(raw, p.fold)
	if tag == "" {
		p.log.Debug("Dropping empty tag")
		return
	}
	if strings.HasPrefix(tag, "!") {
		return
	}
	p.implicitTags(tag)

	switch {
	case strings.HasPrefix(tag, "/"):
		p.closeTop()
	case selfClosingTags[tag]:
		p.top().AppendChild(NewElement(tag, attributes))
	case tag == "head" && p.seenHead():
		p.log.Debug("Ignoring repeated <head>")
	default:
		p.push(NewElement(tag, attributes))
	}
}

// implicitTags opens or closes the structural elements the upcoming tag
// requires. An empty tag stands for text or end of input.
func (p *Parser) implicitTags(tag string) {
	for {
		switch {
		case len(p.unfinished) == 0 && tag != "html":
			p.push(NewElement("html", nil))
		case len(p.unfinished) == 1 && tag != "head" && tag != "body" && tag != "/html":
			if headTags[tag] && !p.seenHead() {
				p.push(NewElement("head", nil))
			} else {
				p.push(NewElement("body", nil))
			}
		case len(p.unfinished) == 2 && p.unfinished[1].Tag == "head" && tag != "/head" && !headTags[tag]:
			p.closeTop()
		default:
			return
		}
	}
}

// closeTop finishes the innermost open element regardless of which closing
// tag was seen. The root and the top-level body are only closed by finish.
func (p *Parser) closeTop() {
	if len(p.unfinished) == 1 {
		return
	}
	node := p.unfinished[len(p.unfinished)-1]
	if len(p.unfinished) == 2 && node.Tag == "body" {
		return
	}
	p.unfinished = p.unfinished[:len(p.unfinished)-1]
	p.top().AppendChild(node)
}

// finish closes every open element. Input that ends inside the head, for
// example in an unclosed <title>, still gets an empty body.
func (p *Parser) finish() *Element {
	p.implicitTags("")
	for len(p.unfinished) > 1 {
		node := p.unfinished[len(p.unfinished)-1]
		p.unfinished = p.unfinished[:len(p.unfinished)-1]
		p.top().AppendChild(node)
	}
	root := p.unfinished[0]
	p.unfinished = nil
	if root.ChildElement("body") == nil {
		root.AppendChild(NewElement("body", nil))
	}
	return root
}

func (p *Parser) push(node *Element) {
	if len(p.unfinished) > 0 {
		node.parent = p.top()
	}
	p.unfinished = append(p.unfinished, node)
}

func (p *Parser) top() *Element {
	return p.unfinished[len(p.unfinished)-1]
}

func (p *Parser) seenHead() bool {
	if len(p.unfinished) == 0 {
		return false
	}
	if p.unfinished[0].ChildElement("head") != nil {
		return true
	}
	return len(p.unfinished) > 1 && p.unfinished[1].Tag == "head"
}
