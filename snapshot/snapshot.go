// Package snapshot serves a saved HTML page as a read-only browser.Document,
// so profiles can be extracted offline with the same code the live session
// uses.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/founderscope/browser"
)

// ErrReadOnly is returned by every interactive element action.
var ErrReadOnly = errors.New("snapshot: document is read-only")

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: parse: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString is Parse over a string.
func ParseString(html string) (*Document, error) {
	return Parse(strings.NewReader(html))
}

func (d *Document) Elements(_ context.Context, selector string) ([]browser.Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("snapshot: selector %q: %w", selector, err)
	}
	found := d.doc.FindMatcher(sel)
	out := make([]browser.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &node{sel: s})
	})
	return out, nil
}

// WaitElements does not wait: a snapshot never changes.
func (d *Document) WaitElements(ctx context.Context, selector string, _ time.Duration) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	els, err := d.Elements(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	return els, nil
}

// ScrollFraction is a no-op; everything is already loaded.
func (d *Document) ScrollFraction(context.Context, float64) error { return nil }

func (d *Document) HTML(context.Context) (string, error) {
	return goquery.OuterHtml(d.doc.Selection)
}

type node struct {
	sel *goquery.Selection
}

func (n *node) Text(context.Context) (string, error) {
	return InnerText(n.sel), nil
}

func (n *node) Input(context.Context, string) error         { return ErrReadOnly }
func (n *node) Press(context.Context, ...browser.Key) error { return ErrReadOnly }
func (n *node) Click(context.Context) error                 { return ErrReadOnly }
