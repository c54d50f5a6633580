package browser

import (
	"errors"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/models"
	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keyring service under which session cookies are
// stored, one entry per account.
const KeyringService = "founderscope"

// SaveCookie stores a session cookie value in the OS keyring.
func SaveCookie(account, value string) error {
	if value == "" {
		return models.NewScrapeError(models.ErrCodeInvalidInput, "cookie value is empty", nil)
	}
	return keyring.Set(KeyringService, account, value)
}

// DeleteCookie removes a stored session cookie. Deleting a missing entry is
// not an error.
func DeleteCookie(account string) error {
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// resolveCookie prefers the configured value over the keyring entry.
func resolveCookie(cfg config.SessionConfig) (string, error) {
	if cfg.Cookie != "" {
		return cfg.Cookie, nil
	}
	v, err := keyring.Get(KeyringService, cfg.KeyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// installCookie puts the session cookie into the browser. With no cookie
// configured, an attached browser is assumed to be signed in already; a
// freshly launched one is not.
func installCookie(b *rod.Browser, cfg config.SessionConfig) error {
	value, err := resolveCookie(cfg)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeSession, "failed to read session cookie from keyring", err)
	}
	if value == "" {
		if cfg.CDPURL != "" {
			slog.Info("no session cookie configured, relying on attached browser session")
			return nil
		}
		return models.NewScrapeError(models.ErrCodeSession,
			"no session cookie: set session.cookie or run `founderscope cookie set`", nil)
	}

	err = b.SetCookies([]*proto.NetworkCookieParam{{
		Name:     cfg.CookieName,
		Value:    value,
		Domain:   cfg.CookieDomain,
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
	}})
	if err != nil {
		return models.NewScrapeError(models.ErrCodeSession, "failed to install session cookie", err)
	}
	return nil
}
