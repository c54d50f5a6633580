// Package browser is the boundary between the scraper and a live,
// already-authenticated browsing session. Everything above it sees only the
// Session, Document and Element interfaces.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrElementNotFound is returned by WaitElements when nothing matches the
// selector before the timeout.
var ErrElementNotFound = errors.New("element not found")

// Key is a non-text keystroke.
type Key int

const (
	KeyEnter Key = iota
	KeyArrowRight
	KeyBackspace
)

func (k Key) String() string {
	switch k {
	case KeyEnter:
		return "Enter"
	case KeyArrowRight:
		return "ArrowRight"
	case KeyBackspace:
		return "Backspace"
	default:
		return "Unknown"
	}
}

// Document is a loaded page that can be queried.
type Document interface {
	// Elements returns the nodes currently matching the CSS selector
	// without waiting. No match is not an error.
	Elements(ctx context.Context, selector string) ([]Element, error)

	// WaitElements polls until at least one node matches or timeout elapses.
	WaitElements(ctx context.Context, selector string, timeout time.Duration) ([]Element, error)

	// ScrollFraction scrolls to fraction * document height.
	ScrollFraction(ctx context.Context, fraction float64) error

	// HTML returns the current serialized DOM.
	HTML(ctx context.Context) (string, error)
}

// Session is the single navigable page shared by every lookup.
type Session interface {
	Document

	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) string

	// Settle waits for the page to finish loading after an action that
	// triggered a transition.
	Settle(ctx context.Context) error
}

// Element is one node of a Document.
type Element interface {
	Text(ctx context.Context) (string, error)
	Input(ctx context.Context, text string) error
	Press(ctx context.Context, keys ...Key) error
	Click(ctx context.Context) error
}

// Repeat returns n copies of k.
func Repeat(k Key, n int) []Key {
	if n <= 0 {
		return nil
	}
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = k
	}
	return keys
}
