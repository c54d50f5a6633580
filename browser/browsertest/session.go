// Package browsertest provides a scripted, in-memory browser.Session for
// tests that exercise navigation and extraction without Chrome.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/use-agent/founderscope/browser"
	"github.com/use-agent/founderscope/snapshot"
)

// Page is one URL of the fake site. Elements registered by selector take
// precedence over matches found in HTML.
type Page struct {
	HTML     string
	Elements map[string][]*Element
}

// Element is a scripted node.
type Element struct {
	// Content is what Text returns.
	Content string

	// Value is the current content of a text input. Every Navigate to the
	// element's page resets it to Initial.
	Value   string
	Initial string

	// Href is where a click navigates. Empty means the click does nothing.
	Href string

	// OnSubmit receives Value when Enter is pressed and returns the URL to
	// navigate to, or "" to stay.
	OnSubmit func(query string) string

	// Fail makes every action on the element return this error.
	Fail error

	sess *Session
}

// Session implements browser.Session over a map of pages.
type Session struct {
	Pages map[string]*Page

	// FailNavigate makes Navigate to the listed URLs fail.
	FailNavigate map[string]error

	mu      sync.Mutex
	current string
	visits  []string
	keys    []browser.Key
	inputs  []string
	scrolls []float64
	docs    map[string]*snapshot.Document
}

var _ browser.Session = (*Session)(nil)

// New returns a session positioned on no page.
func New(pages map[string]*Page) *Session {
	return &Session{Pages: pages, FailNavigate: map[string]error{}}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits = append(s.visits, url)
	if err, ok := s.FailNavigate[url]; ok {
		return err
	}
	s.current = url
	if page := s.Pages[url]; page != nil {
		for _, els := range page.Elements {
			for _, el := range els {
				el.Value = el.Initial
			}
		}
	}
	return nil
}

func (s *Session) CurrentURL(context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) Settle(ctx context.Context) error { return ctx.Err() }

func (s *Session) Elements(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	page := s.Pages[s.current]
	url := s.current
	s.mu.Unlock()
	if page == nil {
		return nil, nil
	}

	if scripted, ok := page.Elements[selector]; ok {
		out := make([]browser.Element, len(scripted))
		for i, el := range scripted {
			el.sess = s
			out[i] = el
		}
		return out, nil
	}
	if page.HTML == "" {
		return nil, nil
	}
	doc, err := s.document(url, page)
	if err != nil {
		return nil, err
	}
	return doc.Elements(ctx, selector)
}

// WaitElements returns immediately: a fake page is fully rendered.
func (s *Session) WaitElements(ctx context.Context, selector string, _ time.Duration) ([]browser.Element, error) {
	els, err := s.Elements(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	return els, nil
}

func (s *Session) ScrollFraction(ctx context.Context, fraction float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrolls = append(s.scrolls, fraction)
	return nil
}

func (s *Session) HTML(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page := s.Pages[s.current]; page != nil {
		return page.HTML, nil
	}
	return "", nil
}

// Visits lists every URL passed to Navigate, in order.
func (s *Session) Visits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visits...)
}

// Keys lists every keystroke pressed on any element.
func (s *Session) Keys() []browser.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]browser.Key(nil), s.keys...)
}

// Inputs lists every text typed into any element.
func (s *Session) Inputs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.inputs...)
}

// Scrolls lists every scroll fraction requested.
func (s *Session) Scrolls() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.scrolls...)
}

func (s *Session) document(url string, page *Page) (*snapshot.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[url]; ok {
		return doc, nil
	}
	doc, err := snapshot.ParseString(page.HTML)
	if err != nil {
		return nil, err
	}
	if s.docs == nil {
		s.docs = map[string]*snapshot.Document{}
	}
	s.docs[url] = doc
	return doc, nil
}

func (s *Session) moveTo(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = url
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if e.Fail != nil {
		return "", e.Fail
	}
	return e.Content, ctx.Err()
}

func (e *Element) Input(ctx context.Context, text string) error {
	if e.Fail != nil {
		return e.Fail
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.Value += text
	e.sess.mu.Lock()
	e.sess.inputs = append(e.sess.inputs, text)
	e.sess.mu.Unlock()
	return nil
}

func (e *Element) Press(ctx context.Context, keys ...browser.Key) error {
	if e.Fail != nil {
		return e.Fail
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.sess.mu.Lock()
	e.sess.keys = append(e.sess.keys, keys...)
	e.sess.mu.Unlock()

	for _, k := range keys {
		switch k {
		case browser.KeyBackspace:
			if r := []rune(e.Value); len(r) > 0 {
				e.Value = string(r[:len(r)-1])
			}
		case browser.KeyEnter:
			if e.OnSubmit == nil {
				continue
			}
			if url := e.OnSubmit(e.Value); url != "" {
				e.sess.moveTo(url)
			}
		}
	}
	return nil
}

func (e *Element) Click(ctx context.Context) error {
	if e.Fail != nil {
		return e.Fail
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Href != "" {
		e.sess.moveTo(e.Href)
	}
	return nil
}

// ErrBroken is a convenience failure for scripted elements and navigations.
var ErrBroken = errors.New("browsertest: broken")
