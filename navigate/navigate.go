// Package navigate locates a founder's profile page from a company context.
// Two variants share one Strategy: "roster" searches the company's people
// page, "global" drives the site-wide search box. Only the way the session
// reaches the profile differs; extraction is the same afterwards.
package navigate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/founderscope/browser"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/models"
)

// ErrNotFound means the search produced no acceptable result card.
var ErrNotFound = errors.New("founder profile not found")

// Resolver is the interface the pipeline drives.
type Resolver interface {
	// Name returns the variant identifier ("roster" or "global").
	Name() string

	// Prepare puts the session on the company's starting page. A failure
	// means the company itself could not be reached.
	Prepare(ctx context.Context, sess browser.Session, cc CompanyContext) error

	// Resolve leaves the session on the founder's profile page or returns
	// a NAVIGATION_FAILED error after restoring the starting page.
	Resolve(ctx context.Context, sess browser.Session, founder string, cc CompanyContext) error
}

// Variant names a navigation strategy.
type Variant string

const (
	VariantRoster Variant = "roster"
	VariantGlobal Variant = "global"
)

// Strategy implements Resolver for both variants.
type Strategy struct {
	Variant Variant
	Query   QueryFunc
	Pick    Disambiguator

	SearchSelector string
	ResultSelector string

	// ClearRightPresses and ClearBackspaces empty a search box that may
	// still hold a previous query (global variant only).
	ClearRightPresses int
	ClearBackspaces   int

	WaitTimeout time.Duration

	// BaseURL is where the global variant starts when the company page
	// cannot be used. Empty disables the fallback.
	BaseURL string
}

var _ Resolver = (*Strategy)(nil)

// New builds a Strategy from configuration.
func New(cfg config.NavigationConfig) (*Strategy, error) {
	v := Variant(strings.ToLower(cfg.Strategy))
	s := &Strategy{
		Variant:           v,
		ClearRightPresses: cfg.ClearRightPresses,
		ClearBackspaces:   cfg.ClearBackspaces,
		WaitTimeout:       cfg.WaitTimeout,
		BaseURL:           cfg.BaseURL,
	}

	switch v {
	case VariantRoster:
		s.SearchSelector, s.ResultSelector = cfg.RosterSearchSelector, cfg.RosterResultSelector
	case VariantGlobal:
		s.SearchSelector, s.ResultSelector = cfg.GlobalSearchSelector, cfg.GlobalResultSelector
	default:
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown navigation strategy %q", cfg.Strategy), nil)
	}

	q, ok := queryFunc(cfg.Query, v)
	if !ok {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown query mode %q", cfg.Query), nil)
	}
	s.Query = q

	switch cfg.Pick {
	case "", "first":
		s.Pick = First
	case "best":
		s.Pick = BestMatch(cfg.MatchThreshold)
	default:
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown pick mode %q", cfg.Pick), nil)
	}

	if s.SearchSelector == "" || s.ResultSelector == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			"search and result selectors are required", nil)
	}
	return s, nil
}

func (s *Strategy) Name() string { return string(s.Variant) }

// home is the page every lookup starts from and every failure returns to.
func (s *Strategy) home(cc CompanyContext) string {
	if s.Variant == VariantRoster {
		return RosterURL(cc.ProfileURL)
	}
	return NormalizeURL(cc.ProfileURL)
}

// fallback reports whether the site root may stand in for the company page.
func (s *Strategy) fallback() bool {
	return s.Variant == VariantGlobal && s.BaseURL != ""
}

// Prepare opens the starting page. The global search box exists on every
// page, so the global variant falls back to BaseURL when the company page
// is unusable.
func (s *Strategy) Prepare(ctx context.Context, sess browser.Session, cc CompanyContext) error {
	home := s.home(cc)
	err := s.open(ctx, sess, home)
	if err == nil || !s.fallback() || ctx.Err() != nil {
		return err
	}
	slog.Warn("company page unusable, starting from the site root",
		"company", cc.Name,
		"url", home,
		"fallback", s.BaseURL,
		"error", err,
	)
	return s.open(ctx, sess, s.BaseURL)
}

func (s *Strategy) open(ctx context.Context, sess browser.Session, url string) error {
	if url == "" {
		return models.NewScrapeError(models.ErrCodeSession, "company has no profile URL", nil)
	}
	if err := sess.Navigate(ctx, url); err != nil {
		return models.NewScrapeError(models.ErrCodeSession, "company page did not load: "+url, err)
	}
	if _, err := sess.WaitElements(ctx, s.SearchSelector, s.WaitTimeout); err != nil {
		return models.NewScrapeError(models.ErrCodeSession, "company page has no search field: "+url, err)
	}
	return nil
}

func (s *Strategy) Resolve(ctx context.Context, sess browser.Session, founder string, cc CompanyContext) error {
	home := s.home(cc)
	if err := s.resolve(ctx, sess, founder, cc, home); err != nil {
		s.restore(ctx, sess, home)
		return models.NewScrapeError(models.ErrCodeNavigation,
			fmt.Sprintf("could not reach profile of %q via %s search", founder, s.Variant), err)
	}
	return nil
}

func (s *Strategy) resolve(ctx context.Context, sess browser.Session, founder string, cc CompanyContext, home string) error {
	// The roster search box only exists on the people page; a previous
	// lookup leaves the session on a profile.
	if s.Variant == VariantRoster && sess.CurrentURL(ctx) != home {
		if err := sess.Navigate(ctx, home); err != nil {
			return err
		}
	}

	boxes, err := sess.WaitElements(ctx, s.SearchSelector, s.WaitTimeout)
	if err != nil {
		return err
	}
	box := boxes[0]

	if s.Variant == VariantGlobal {
		if err := box.Click(ctx); err != nil {
			return err
		}
		keys := append(browser.Repeat(browser.KeyArrowRight, s.ClearRightPresses),
			browser.Repeat(browser.KeyBackspace, s.ClearBackspaces)...)
		if err := box.Press(ctx, keys...); err != nil {
			return err
		}
	}

	if err := box.Input(ctx, s.Query(founder, cc)); err != nil {
		return err
	}
	if err := box.Press(ctx, browser.KeyEnter); err != nil {
		return err
	}
	if err := sess.Settle(ctx); err != nil {
		return err
	}

	cards, err := sess.WaitElements(ctx, s.ResultSelector, s.WaitTimeout)
	if err != nil {
		if errors.Is(err, browser.ErrElementNotFound) {
			return ErrNotFound
		}
		return err
	}

	texts := make([]string, len(cards))
	for i, c := range cards {
		if texts[i], err = c.Text(ctx); err != nil {
			slog.Debug("result card text unreadable", "founder", founder, "index", i, "error", err)
		}
	}
	idx := s.Pick(founder, texts)
	if idx < 0 || idx >= len(cards) {
		return ErrNotFound
	}

	if err := cards[idx].Click(ctx); err != nil {
		return err
	}
	return sess.Settle(ctx)
}

// restore returns the session to home so the next founder starts from a
// known page. It runs even when ctx has expired.
func (s *Strategy) restore(ctx context.Context, sess browser.Session, home string) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.WaitTimeout)
	defer cancel()
	err := errors.New("no starting page")
	if home != "" {
		err = sess.Navigate(rctx, home)
	}
	if err != nil && s.fallback() {
		home, err = s.BaseURL, sess.Navigate(rctx, s.BaseURL)
	}
	if err != nil {
		slog.Warn("failed to restore session page", "url", home, "error", err)
	}
}
