package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/founderscope/browser"
	"github.com/use-agent/founderscope/browser/browsertest"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/drift"
	"github.com/use-agent/founderscope/extract"
	"github.com/use-agent/founderscope/models"
	"github.com/use-agent/founderscope/navigate"
	"github.com/use-agent/founderscope/store"
	"github.com/use-agent/founderscope/webhook"
)

const (
	rosterURL = "https://site.example/co/people/"
	janeURL   = "https://site.example/in/jane-doe"
)

const janeHTML = `<html><body>
<ul class="pv-top-card--list pv-top-card--list-bullet mt1"><li class="inline-block">500+ connections</li></ul>
<ul><li class="t-16 t-black t-normal inline-block">Berlin</li></ul>
<div class="pv-entity__degree-info"><h3>Stanford</h3><div>Degree Name</div><div>MBA</div></div>
<a data-control-name="background_details_company"><div>Company Name</div><div>Acme Corp</div></a>
</body></html>`

var record = models.CompanyRecord{
	OrganizationName: "Acme",
	Description:      "Robots",
	Industries:       "Robotics, AI",
	Website:          "https://acme.example",
	LastFundingType:  "Seed",
	Founders:         "Jane Doe, John Smith",
	LinkedIn:         "https://site.example/co",
}

// fakeSite knows only Jane Doe.
func fakeSite(nav config.NavigationConfig) *browsertest.Session {
	search := &browsertest.Element{OnSubmit: func(q string) string {
		return rosterURL + "?q=" + q
	}}
	box := map[string][]*browsertest.Element{nav.RosterSearchSelector: {search}}
	return browsertest.New(map[string]*browsertest.Page{
		rosterURL: {Elements: box},
		rosterURL + "?q=Jane Doe": {Elements: map[string][]*browsertest.Element{
			nav.RosterResultSelector: {{Content: "Jane Doe\nFounder", Href: janeURL}},
		}},
		rosterURL + "?q=John Smith": {},
		janeURL:                     {HTML: janeHTML},
	})
}

type fixture struct {
	scraper *Scraper
	sess    *browsertest.Session
	store   *store.Store
	metrics *Metrics
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Navigation.WaitTimeout = time.Second
	cfg.Extract.LazyLoadPause = 0

	sess := fakeSite(cfg.Navigation)
	resolver, err := navigate.New(cfg.Navigation)
	require.NoError(t, err)
	ext, err := extract.New(cfg.Extract)
	require.NoError(t, err)

	opts := Options{
		Session:   sess,
		Resolver:  resolver,
		Extractor: ext,
		Store:     store.New(),
		Config:    cfg.Pipeline,
		Drift:     drift.NewDetector(cfg.Extract.DriftThreshold),
		Metrics:   NewMetrics(prometheus.NewRegistry()),
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(opts)
	require.NoError(t, err)
	return &fixture{scraper: s, sess: sess, store: opts.Store, metrics: opts.Metrics}
}

func TestScrapeCompanyScenario(t *testing.T) {
	fx := newFixture(t, nil)

	res := fx.scraper.ScrapeCompany(context.Background(), record)
	c := res.Company

	assert.Equal(t, OutcomeComplete, res.Outcome)
	assert.Equal(t, 1, res.Resolved)
	assert.Equal(t, "https://site.example/co/", c.LinkedIn)
	assert.Equal(t, []string{"Robotics", "AI"}, c.Industries)
	assert.Equal(t, "Seed", c.LastStage)

	require.Len(t, c.Founders, 2)
	jane, john := c.Founders[0], c.Founders[1]

	assert.Equal(t, "Jane Doe", jane.Name)
	require.NotNil(t, jane.Connections)
	assert.Equal(t, "500+ connections", *jane.Connections)
	require.Len(t, jane.Education, 1)
	assert.Equal(t, "Stanford", jane.Education[0].School)
	assert.Equal(t, []models.Experience{{CompanyName: "Acme Corp"}}, jane.Experience)

	assert.Equal(t, "John Smith", john.Name)
	assert.Nil(t, john.Connections)
	assert.Nil(t, john.Location)
	assert.NotNil(t, john.Education)
	assert.Empty(t, john.Education)
	assert.NotNil(t, john.Experience)
	assert.Empty(t, john.Experience)

	stored, ok := fx.store.Get("Acme")
	require.True(t, ok)
	assert.Same(t, c, stored)

	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.Founders.WithLabelValues(OutcomeExtracted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.Founders.WithLabelValues(OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.Companies.WithLabelValues(OutcomeComplete)))
}

func TestScrapeCompanySessionFailureKeepsFounders(t *testing.T) {
	fx := newFixture(t, nil)
	fx.sess.FailNavigate[rosterURL] = browsertest.ErrBroken

	res := fx.scraper.ScrapeCompany(context.Background(), record)

	assert.Equal(t, OutcomeSessionFailed, res.Outcome)
	require.Len(t, res.Company.Founders, 2)
	assert.Equal(t, "Jane Doe", res.Company.Founders[0].Name)
	assert.Equal(t, "John Smith", res.Company.Founders[1].Name)

	_, ok := fx.store.Get("Acme")
	assert.True(t, ok)
}

func TestScrapeCompanyTimeoutKeepsFounders(t *testing.T) {
	fx := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := fx.scraper.ScrapeCompany(ctx, record)

	require.Len(t, res.Company.Founders, 2)
	assert.Equal(t, 0, res.Resolved)
	_, ok := fx.store.Get("Acme")
	assert.True(t, ok)
}

// stallingSession never renders the experience section: its lookup
// blocks until the caller's deadline.
type stallingSession struct {
	*browsertest.Session
	selector string
}

func (s *stallingSession) WaitElements(ctx context.Context, selector string, timeout time.Duration) ([]browser.Element, error) {
	if selector == s.selector {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.Session.WaitElements(ctx, selector, timeout)
}

func TestScrapeFounderTimeoutDuringExtraction(t *testing.T) {
	fx := newFixture(t, func(o *Options) {
		o.Session = &stallingSession{
			Session:  o.Session.(*browsertest.Session),
			selector: config.Default().Extract.ExperienceSelector,
		}
		o.Config.FounderTimeout = 200 * time.Millisecond
	})

	res := fx.scraper.ScrapeCompany(context.Background(), record)

	assert.Equal(t, 0, res.Resolved)
	require.Len(t, res.Company.Founders, 2)
	jane := res.Company.Founders[0]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Nil(t, jane.Connections)
	assert.Nil(t, jane.Location)
	assert.Empty(t, jane.Education)
	assert.Empty(t, jane.Experience)

	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.Founders.WithLabelValues(OutcomeTimedOut)))
	assert.Equal(t, 0.0, testutil.ToFloat64(fx.metrics.Founders.WithLabelValues(OutcomeExtracted)))
	assert.Equal(t, 0.0, testutil.ToFloat64(fx.metrics.StructuralMiss.WithLabelValues("experience")))
}

type panickyResolver struct{ navigate.Resolver }

func (panickyResolver) Resolve(context.Context, browser.Session, string, navigate.CompanyContext) error {
	panic("boom")
}

func TestScrapeFounderPanicYieldsBareFounder(t *testing.T) {
	fx := newFixture(t, func(o *Options) { o.Resolver = panickyResolver{o.Resolver} })

	res := fx.scraper.ScrapeCompany(context.Background(), record)

	assert.Equal(t, OutcomeComplete, res.Outcome)
	assert.Equal(t, 0, res.Resolved)
	require.Len(t, res.Company.Founders, 2)
	assert.Equal(t, []string{"Jane Doe", "John Smith"},
		[]string{res.Company.Founders[0].Name, res.Company.Founders[1].Name})
	assert.Equal(t, 2.0, testutil.ToFloat64(fx.metrics.Founders.WithLabelValues(OutcomeFailed)))
}

func TestScrapeCompanyWithResolverOverride(t *testing.T) {
	fx := newFixture(t, nil)
	cfg := config.Default().Navigation
	cfg.Strategy = "global"
	global, err := navigate.New(cfg)
	require.NoError(t, err)

	// The fake site has no global search box, so the company page is
	// unreachable for this variant.
	res := fx.scraper.ScrapeCompany(context.Background(), record, WithResolver(global))
	assert.Equal(t, OutcomeSessionFailed, res.Outcome)
	assert.Len(t, res.Company.Founders, 2)
}

func TestRunSummaryAndWebhook(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	n := webhook.New(srv.URL, "secret")
	n.Retry = []time.Duration{0}
	fx := newFixture(t, func(o *Options) { o.Notifier = n })

	other := record
	other.OrganizationName = "Globex"
	other.Founders = "John Smith"

	sum := fx.scraper.Run(context.Background(), []models.CompanyRecord{record, other})

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 2, sum.Companies)
	assert.Equal(t, 3, sum.Founders)
	assert.Equal(t, 1, sum.FoundersResolved)
	assert.False(t, sum.Canceled)
	assert.Equal(t, []string{"Acme", "Globex"}, fx.store.Names())
	assert.Equal(t, int32(1), hits.Load())
}

func TestScrapeCompanySendsEvent(t *testing.T) {
	events := make(chan webhook.Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev webhook.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err == nil {
			events <- ev
		}
	}))
	defer srv.Close()

	n := webhook.New(srv.URL, "secret")
	n.Retry = []time.Duration{0}
	fx := newFixture(t, func(o *Options) { o.Notifier = n })

	fx.scraper.ScrapeCompany(context.Background(), record)

	select {
	case ev := <-events:
		assert.Equal(t, webhook.EventCompanyScraped, ev.Type)
		assert.NotEmpty(t, ev.RunID)
		data, ok := ev.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, OutcomeComplete, data["outcome"])
		assert.Equal(t, 1.0, data["resolved"])
	case <-time.After(5 * time.Second):
		t.Fatal("company.scraped not delivered")
	}
}

func TestRunResetsDriftBaseline(t *testing.T) {
	stale := `<html><body><table><tr><td><form><input><select><option>x</option></select></form></td></tr></table></body></html>`
	check := drift.NewDetector(1)
	check.Observe(stale)
	_, drifted := check.Observe(janeHTML)
	require.True(t, drifted)

	d := drift.NewDetector(1)
	d.Observe(stale)
	fx := newFixture(t, func(o *Options) { o.Drift = d })

	fx.scraper.Run(context.Background(), []models.CompanyRecord{record})
	assert.Equal(t, 0.0, testutil.ToFloat64(fx.metrics.LayoutDrift))
}

func TestRunStopsOnCancel(t *testing.T) {
	fx := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum := fx.scraper.Run(ctx, []models.CompanyRecord{record, record})
	assert.True(t, sum.Canceled)
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 0, fx.store.Len())
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
