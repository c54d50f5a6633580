package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/models"
	"github.com/ysmood/gson"
)

// rodSession implements Session on a single rod page.
type rodSession struct {
	page *rod.Page
	cfg  config.BrowserConfig
}

func newRodSession(page *rod.Page, cfg config.BrowserConfig) *rodSession {
	return &rodSession{page: page, cfg: cfg}
}

// Navigate loads url and waits for the load event and a stable DOM.
// The navigation timeout is applied on top of ctx.
func (s *rodSession) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	p := s.page.Context(navCtx)
	if err := p.Navigate(url); err != nil {
		return categorizeError(err, "navigation to "+url+" failed")
	}
	if err := p.WaitLoad(); err != nil {
		return categorizeError(err, "waiting for load of "+url+" failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"url", url,
			"error", err,
		)
	}
	return nil
}

// Settle waits for a click- or keystroke-triggered transition to finish.
func (s *rodSession) Settle(ctx context.Context) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	p := s.page.Context(navCtx)
	if err := p.WaitLoad(); err != nil {
		return categorizeError(err, "waiting for page load failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge after transition", "error", err)
	}
	return nil
}

func (s *rodSession) CurrentURL(ctx context.Context) string {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (s *rodSession) Elements(ctx context.Context, selector string) ([]Element, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, categorizeError(err, "query "+selector+" failed")
	}
	return s.wrap(els), nil
}

// WaitElements polls for the selector instead of sleeping a fixed interval.
func (s *rodSession) WaitElements(ctx context.Context, selector string, timeout time.Duration) ([]Element, error) {
	p := s.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	if err := p.WaitElementsMoreThan(selector, 0); err != nil {
		if ctx.Err() != nil {
			return nil, categorizeError(ctx.Err(), "waiting for "+selector+" canceled")
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrElementNotFound, selector, err)
	}
	els, err := p.Elements(selector)
	if err != nil {
		return nil, categorizeError(err, "query "+selector+" failed")
	}
	return s.wrap(els), nil
}

func (s *rodSession) ScrollFraction(ctx context.Context, fraction float64) error {
	_, err := s.page.Context(ctx).Eval(`(f) => window.scrollTo(0, document.body.scrollHeight * f)`, fraction)
	if err != nil {
		return categorizeError(err, "scroll failed")
	}
	return nil
}

func (s *rodSession) HTML(ctx context.Context) (string, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return "", categorizeError(err, "failed to extract page HTML")
	}
	return html, nil
}

func (s *rodSession) wrap(els rod.Elements) []Element {
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{el: el, timeout: s.cfg.ActionTimeout}
	}
	return out
}

// setExtraHeaders sends headers with every request made by the page.
func setExtraHeaders(page *rod.Page, headers map[string]string) error {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return proto.NetworkSetExtraHTTPHeaders{Headers: m}.Call(page)
}

// categorizeError wraps raw errors into typed ScrapeErrors so callers can
// tell timeouts from navigation failures.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
