package html

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

type TokenType int

const (
	TokenText TokenType = iota
	TokenTag
	TokenEOF
)

// Token is one run of the scan: either text found outside angle brackets or
// the raw contents of a tag (without the brackets).
type Token struct {
	Type TokenType
	Data string
}

// Tokenizer splits markup into text and tag runs. Text accumulated before a
// '<' is flushed as a text token; everything up to the next '>' is a tag.
type Tokenizer struct {
	input string
	pos   int
	inTag bool
}

func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

func (t *Tokenizer) NextToken() Token {
	var buf strings.Builder
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		t.pos++
		switch {
		case c == '<':
			t.inTag = true
			if buf.Len() > 0 {
				return Token{Type: TokenText, Data: buf.String()}
			}
		case c == '>' && t.inTag:
			t.inTag = false
			return Token{Type: TokenTag, Data: buf.String()}
		default:
			buf.WriteByte(c)
		}
	}
	// An unterminated tag at end of input is dropped.
	if !t.inTag && buf.Len() > 0 {
		return Token{Type: TokenText, Data: buf.String()}
	}
	return Token{Type: TokenEOF}
}

// splitTag separates raw tag text into a case-folded tag name and its
// attributes. Whitespace inside quoted values does not split.
func splitTag(raw string, fold cases.Caser) (string, map[string]string) {
	parts := splitFields(raw)
	if len(parts) == 0 {
		return "", nil
	}
	tag := fold.String(parts[0])
	if len(tag) > 1 {
		tag = strings.TrimSuffix(tag, "/")
	}
	attributes := make(map[string]string)
	for _, pair := range parts[1:] {
		if pair == "/" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			attributes[fold.String(pair)] = ""
			continue
		}
		if len(value) > 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		attributes[fold.String(key)] = value
	}
	return tag, attributes
}

func splitFields(s string) []string {
	fields := make([]string, 0)
	var current strings.Builder
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			current.WriteRune(r)
		case unicode.IsSpace(r):
			if current.Len() > 0 {
				fields = append(fields, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		fields = append(fields, current.String())
	}
	return fields
}
