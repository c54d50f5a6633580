package browser

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/models"
)

// Controller owns the browser process (or the CDP connection) and the one
// page every lookup runs on.
type Controller struct {
	browser  *rod.Browser
	page     *rod.Page
	router   *rod.HijackRouter
	session  *rodSession
	attached bool
}

// Launch starts (or attaches to) Chrome, installs the session cookie and
// opens the shared page. It never performs a credential login: the cookie
// or the attached browser must already carry a signed-in session.
func Launch(ctx context.Context, browserCfg config.BrowserConfig, sessionCfg config.SessionConfig) (*Controller, error) {
	c := &Controller{}

	controlURL := sessionCfg.CDPURL
	if controlURL != "" {
		c.attached = true
	} else {
		l := launcher.New().
			Context(ctx).
			Headless(browserCfg.Headless).
			NoSandbox(browserCfg.NoSandbox)

		if browserCfg.BrowserBin != "" {
			l = l.Bin(browserCfg.BrowserBin)
		}
		if browserCfg.DefaultProxy != "" {
			l = l.Proxy(browserCfg.DefaultProxy)
		}

		l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
		l.Delete(flags.Flag("enable-automation"))
		l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
		l.Set(flags.Flag("disable-popup-blocking"))
		l.Set(flags.Flag("disable-renderer-backgrounding"))
		l.Set(flags.Flag("disable-background-timer-throttling"))
		l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
		l.Set(flags.Flag("disable-dev-shm-usage"))
		l.Set(flags.Flag("no-first-run"))

		u, err := l.Launch()
		if err != nil {
			return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
		}
		controlURL = u
		slog.Info("browser launched", "controlURL", controlURL)
	}

	c.browser = rod.New().ControlURL(controlURL)
	if err := c.browser.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	if err := installCookie(c.browser, sessionCfg); err != nil {
		c.Close()
		return nil, err
	}

	page, err := c.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		c.Close()
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to create session page", err)
	}
	c.page = page

	if browserCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}
	if browserCfg.AcceptLanguage != "" {
		if hdrErr := setExtraHeaders(page, map[string]string{"Accept-Language": browserCfg.AcceptLanguage}); hdrErr != nil {
			slog.Warn("failed to set extra headers", "error", hdrErr)
		}
	}
	c.router = setupHijack(page, browserCfg.BlockedResourceTypes)

	c.session = newRodSession(page, browserCfg)
	return c, nil
}

// Session returns the shared session.
func (c *Controller) Session() Session {
	return c.session
}

// Close stops request interception and closes the page. A launched browser
// is killed; an attached one is only disconnected.
func (c *Controller) Close() {
	if c.router != nil {
		_ = c.router.Stop()
	}
	if c.page != nil {
		_ = c.page.Close()
	}
	if c.browser == nil {
		return
	}
	if c.attached {
		slog.Info("detached from browser session", "attached", true)
		return
	}
	if err := c.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err, "attached", c.attached)
		return
	}
	slog.Info("browser session closed", "attached", c.attached)
}
