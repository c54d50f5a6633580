package navigate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/founderscope/browser"
	"github.com/use-agent/founderscope/browser/browsertest"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/models"
)

const (
	companyURL = "https://site.example/co/"
	rosterURL  = "https://site.example/co/people/"
	resultsURL = "https://site.example/co/people/?q"
	janeURL    = "https://site.example/in/jane"
)

var acme = CompanyContext{Name: "Acme Robotics", ProfileURL: "https://site.example/co"}

func rosterConfig() config.NavigationConfig {
	cfg := config.Default().Navigation
	cfg.WaitTimeout = time.Second
	return cfg
}

func globalConfig() config.NavigationConfig {
	cfg := rosterConfig()
	cfg.Strategy = "global"
	return cfg
}

func rosterSite(cfg config.NavigationConfig, cards ...*browsertest.Element) *browsertest.Session {
	search := &browsertest.Element{OnSubmit: func(string) string { return resultsURL }}
	results := &browsertest.Page{Elements: map[string][]*browsertest.Element{}}
	if len(cards) > 0 {
		results.Elements[cfg.RosterResultSelector] = cards
	}
	return browsertest.New(map[string]*browsertest.Page{
		rosterURL: {Elements: map[string][]*browsertest.Element{
			cfg.RosterSearchSelector: {search},
		}},
		resultsURL: results,
		janeURL:    {HTML: "<html><body><h1>Jane Doe</h1></body></html>"},
	})
}

func TestNormalizeURL(t *testing.T) {
	cases := map[string]string{
		"https://site.example/co":    "https://site.example/co/",
		"https://site.example/co/":   "https://site.example/co/",
		"  https://site.example/co ": "https://site.example/co/",
		"":                           "",
	}
	for in, want := range cases {
		got := NormalizeURL(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, NormalizeURL(got), "idempotent for %q", in)
	}
	assert.Equal(t, rosterURL, RosterURL("https://site.example/co"))
}

func TestQueries(t *testing.T) {
	assert.Equal(t, "Jane Doe", NameOnly(" Jane Doe ", acme))
	assert.Equal(t, "Jane Doe Acme", NameAndCompanyToken("Jane Doe", acme))
	assert.Equal(t, "Jane Doe", NameAndCompanyToken("Jane Doe", CompanyContext{}))
}

func TestNewRejectsUnknownModes(t *testing.T) {
	cfg := rosterConfig()
	cfg.Strategy = "sideways"
	_, err := New(cfg)
	assert.True(t, models.IsCode(err, models.ErrCodeInvalidInput))

	cfg = rosterConfig()
	cfg.Pick = "random"
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = rosterConfig()
	cfg.Query = "everything"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestRosterResolve(t *testing.T) {
	cfg := rosterConfig()
	sess := rosterSite(cfg, &browsertest.Element{Content: "Jane Doe\nCEO", Href: janeURL})
	s, err := New(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Prepare(ctx, sess, acme))
	require.NoError(t, s.Resolve(ctx, sess, "Jane Doe", acme))

	assert.Equal(t, janeURL, sess.CurrentURL(ctx))
	assert.Equal(t, []string{"Jane Doe"}, sess.Inputs())
	assert.Equal(t, []browser.Key{browser.KeyEnter}, sess.Keys())
	assert.Equal(t, []string{rosterURL}, sess.Visits())
}

func TestRosterResolveReturnsToRosterForNextFounder(t *testing.T) {
	cfg := rosterConfig()
	sess := rosterSite(cfg, &browsertest.Element{Content: "Jane Doe", Href: janeURL})
	s, err := New(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Prepare(ctx, sess, acme))
	require.NoError(t, s.Resolve(ctx, sess, "Jane Doe", acme))
	require.NoError(t, s.Resolve(ctx, sess, "Jane Doe", acme))

	assert.Equal(t, []string{rosterURL, rosterURL}, sess.Visits())
}

func TestRosterNoResultRestoresAndFails(t *testing.T) {
	cfg := rosterConfig()
	sess := rosterSite(cfg)
	s, err := New(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Prepare(ctx, sess, acme))
	err = s.Resolve(ctx, sess, "John Smith", acme)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, models.IsCode(err, models.ErrCodeNavigation))
	assert.Equal(t, rosterURL, sess.CurrentURL(ctx))
}

func TestPrepareFailureIsSessionFailure(t *testing.T) {
	cfg := rosterConfig()
	sess := rosterSite(cfg)
	sess.FailNavigate[rosterURL] = browsertest.ErrBroken
	s, err := New(cfg)
	require.NoError(t, err)

	err = s.Prepare(context.Background(), sess, acme)
	assert.True(t, models.IsCode(err, models.ErrCodeSession))

	err = s.Prepare(context.Background(), sess, CompanyContext{Name: "x"})
	assert.True(t, models.IsCode(err, models.ErrCodeSession))
}

func TestGlobalResolveClearsSearchBox(t *testing.T) {
	cfg := globalConfig()
	var submitted string
	box := &browsertest.Element{
		Initial: "previous query",
		OnSubmit: func(q string) string {
			submitted = q
			return "https://site.example/search"
		},
	}
	boxes := map[string][]*browsertest.Element{cfg.GlobalSearchSelector: {box}}
	sess := browsertest.New(map[string]*browsertest.Page{
		companyURL: {Elements: boxes},
		"https://site.example/search": {Elements: map[string][]*browsertest.Element{
			cfg.GlobalResultSelector: {{Content: "Jane Doe", Href: janeURL}},
		}},
		janeURL: {Elements: boxes},
	})
	s, err := New(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Prepare(ctx, sess, acme))
	require.NoError(t, s.Resolve(ctx, sess, "Jane Doe", acme))

	assert.Equal(t, "Jane Doe Acme", submitted)
	assert.Equal(t, janeURL, sess.CurrentURL(ctx))

	var rights, backspaces int
	for _, k := range sess.Keys() {
		switch k {
		case browser.KeyArrowRight:
			rights++
		case browser.KeyBackspace:
			backspaces++
		}
	}
	assert.Equal(t, 50, rights)
	assert.Equal(t, 80, backspaces)
}

const siteRoot = "https://site.example/"

// globalSite serves a search box on the site root only; the company page
// is broken.
func globalSite(cfg config.NavigationConfig) *browsertest.Session {
	box := &browsertest.Element{OnSubmit: func(string) string { return "https://site.example/search" }}
	boxes := map[string][]*browsertest.Element{cfg.GlobalSearchSelector: {box}}
	sess := browsertest.New(map[string]*browsertest.Page{
		siteRoot: {Elements: boxes},
		"https://site.example/search": {Elements: map[string][]*browsertest.Element{
			cfg.GlobalResultSelector: {{Content: "Jane Doe", Href: janeURL}},
		}},
		janeURL: {Elements: boxes},
	})
	sess.FailNavigate[companyURL] = browsertest.ErrBroken
	return sess
}

func TestGlobalPrepareFallsBackToSiteRoot(t *testing.T) {
	cfg := globalConfig()
	cfg.BaseURL = siteRoot
	sess := globalSite(cfg)
	s, err := New(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Prepare(ctx, sess, acme))
	assert.Equal(t, siteRoot, sess.CurrentURL(ctx))
	assert.Equal(t, []string{companyURL, siteRoot}, sess.Visits())

	require.NoError(t, s.Resolve(ctx, sess, "Jane Doe", acme))
	assert.Equal(t, janeURL, sess.CurrentURL(ctx))
}

func TestGlobalRestoreFallsBackToSiteRoot(t *testing.T) {
	cfg := globalConfig()
	cfg.BaseURL = siteRoot
	sess := globalSite(cfg)
	s, err := New(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Prepare(ctx, sess, acme))
	// The search page never shows a result for this query.
	sess.Pages["https://site.example/search"] = &browsertest.Page{}

	err = s.Resolve(ctx, sess, "John Smith", acme)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, siteRoot, sess.CurrentURL(ctx))
}

func TestGlobalPrepareWithoutFallbackFails(t *testing.T) {
	cfg := globalConfig()
	cfg.BaseURL = ""
	sess := globalSite(cfg)
	s, err := New(cfg)
	require.NoError(t, err)

	err = s.Prepare(context.Background(), sess, acme)
	assert.True(t, models.IsCode(err, models.ErrCodeSession))
	assert.Equal(t, []string{companyURL}, sess.Visits())
}

func TestRosterPrepareNeverFallsBack(t *testing.T) {
	cfg := rosterConfig()
	cfg.BaseURL = siteRoot
	sess := rosterSite(cfg)
	sess.FailNavigate[rosterURL] = browsertest.ErrBroken
	s, err := New(cfg)
	require.NoError(t, err)

	err = s.Prepare(context.Background(), sess, acme)
	assert.True(t, models.IsCode(err, models.ErrCodeSession))
	assert.Equal(t, []string{rosterURL}, sess.Visits())
}

func TestBestMatchRejectsStrangers(t *testing.T) {
	cfg := rosterConfig()
	cfg.Pick = "best"
	sess := rosterSite(cfg,
		&browsertest.Element{Content: "Totally Different\nCTO", Href: "https://site.example/in/other"},
	)
	s, err := New(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Prepare(ctx, sess, acme))
	err = s.Resolve(ctx, sess, "Jane Doe", acme)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBestMatch(t *testing.T) {
	pick := BestMatch(0.85)
	cards := []string{"John Smith\nFounder", "José Álvarez\nCEO at Acme", "Jose Alvares"}
	assert.Equal(t, 1, pick("Jose Alvarez", cards[:2]))
	assert.Equal(t, 0, pick("john  SMITH", cards))
	assert.Equal(t, -1, pick("Zed", cards))
	assert.Equal(t, -1, pick("Jane", nil))
	assert.Equal(t, -1, First("Jane", nil))
	assert.Equal(t, 0, First("Jane", cards))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "jose alvarez", Fold("  José   ÁLVAREZ "))
	assert.True(t, strings.EqualFold(Fold("Zoë"), "zoe"))
}

func TestResolveHonoursCancellation(t *testing.T) {
	cfg := rosterConfig()
	sess := rosterSite(cfg, &browsertest.Element{Content: "Jane Doe", Href: janeURL})
	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Prepare(context.Background(), sess, acme))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Resolve(ctx, sess, "Jane Doe", acme)
	assert.True(t, models.IsCode(err, models.ErrCodeNavigation))
	assert.Equal(t, rosterURL, sess.CurrentURL(context.Background()))
}
