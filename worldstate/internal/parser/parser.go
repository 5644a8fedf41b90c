// Package parser turns the raw markup of the fissure list page and the
// arbitration log page into typed records.
//
// Parsing is best effort: a malformed row or entry is skipped, and an empty
// or partial result is a normal return value. Nothing here returns an error.
package parser

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parser holds the per-deployment knobs. The zero value is not usable; call
// New.
type Parser struct {
	types Translator
}

// Option configures a Parser.
type Option func(*Parser)

// WithLocale picks a built-in mission type table.
func WithLocale(locale string) Option {
	return func(p *Parser) { p.types = TranslatorFor(locale) }
}

// New creates a Parser. The default locale is English.
func New(opts ...Option) *Parser {
	p := &Parser{types: English}
	for _, o := range opts {
		o(p)
	}
	return p
}

var defaultParser = New()

// document parses markup into a goquery document. html.Parse only fails on
// reader errors, which a bytes.Reader never produces; the empty document is
// returned in that case anyway so callers need no error path.
func document(markup []byte) *goquery.Document {
	root, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		root = &html.Node{Type: html.DocumentNode}
	}
	return goquery.NewDocumentFromNode(root)
}

// text returns the trimmed text of a selection with inner whitespace runs
// collapsed.
func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
