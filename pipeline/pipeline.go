// Package pipeline drives the scrape: for each company record it reaches
// every listed founder's profile through the shared session, extracts it,
// and stores the assembled Company.
//
// All work on the session is serialized. No failure below the batch level
// is fatal: an unreachable founder becomes a name-only Founder, and an
// unreachable company is still stored with one Founder per listed name.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/founderscope/browser"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/drift"
	"github.com/use-agent/founderscope/extract"
	"github.com/use-agent/founderscope/models"
	"github.com/use-agent/founderscope/navigate"
	"github.com/use-agent/founderscope/store"
	"github.com/use-agent/founderscope/webhook"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("founderscope/pipeline")

// Options wires a Scraper. Session, Resolver, Extractor and Store are
// required.
type Options struct {
	Session   browser.Session
	Resolver  navigate.Resolver
	Extractor *extract.Extractor
	Store     *store.Store
	Config    config.PipelineConfig

	// Pace is waited on before each founder lookup. Nil means unpaced.
	Pace *rate.Limiter

	// Drift compares each profile's structure with the first. Nil disables.
	Drift *drift.Detector

	// Metrics defaults to unregistered counters.
	Metrics *Metrics

	// Notifier receives company.scraped after ScrapeCompany and
	// batch.completed after Run. Nil disables.
	Notifier *webhook.Notifier

	// OnCompany is called after each company of a Run is stored.
	OnCompany func(Result)
}

// Scraper runs company scrapes on one session.
type Scraper struct {
	sess      browser.Session
	resolver  navigate.Resolver
	extractor *extract.Extractor
	store     *store.Store
	cfg       config.PipelineConfig
	pace      *rate.Limiter
	drift     *drift.Detector
	metrics   *Metrics
	notifier  *webhook.Notifier
	onCompany func(Result)

	// mu serializes everything that touches sess.
	mu sync.Mutex
}

// New validates opts and returns a Scraper.
func New(opts Options) (*Scraper, error) {
	switch {
	case opts.Session == nil:
		return nil, errors.New("pipeline: session is required")
	case opts.Resolver == nil:
		return nil, errors.New("pipeline: resolver is required")
	case opts.Extractor == nil:
		return nil, errors.New("pipeline: extractor is required")
	case opts.Store == nil:
		return nil, errors.New("pipeline: store is required")
	}
	m := opts.Metrics
	if m == nil {
		m = NewMetrics(nil)
	}
	return &Scraper{
		sess:      opts.Session,
		resolver:  opts.Resolver,
		extractor: opts.Extractor,
		store:     opts.Store,
		cfg:       opts.Config,
		pace:      opts.Pace,
		drift:     opts.Drift,
		metrics:   m,
		notifier:  opts.Notifier,
		onCompany: opts.OnCompany,
	}, nil
}

// Store returns the store the scraper writes to.
func (s *Scraper) Store() *store.Store { return s.store }

// Result describes one company scrape.
type Result struct {
	Company *models.Company `json:"company"`
	// Resolved counts founders whose profile page was reached.
	Resolved int    `json:"resolved"`
	Outcome  string `json:"outcome"`
}

// CompanyOption adjusts a single ScrapeCompany call.
type CompanyOption func(*companyRun)

type companyRun struct {
	resolver navigate.Resolver
	timeout  time.Duration
}

// WithResolver uses r instead of the configured resolver.
func WithResolver(r navigate.Resolver) CompanyOption {
	return func(c *companyRun) { c.resolver = r }
}

// WithTimeout overrides the company timeout.
func WithTimeout(d time.Duration) CompanyOption {
	return func(c *companyRun) { c.timeout = d }
}

// ScrapeCompany scrapes one record and stores the result. It always
// returns a Company with exactly one Founder per listed founder name, in
// input order. A company.scraped event is sent in the background.
func (s *Scraper) ScrapeCompany(ctx context.Context, rec models.CompanyRecord, opts ...CompanyOption) Result {
	res := s.scrape(ctx, rec, opts...)
	if s.notifier != nil {
		s.notifier.SendAsync(&webhook.Event{
			Type:      webhook.EventCompanyScraped,
			RunID:     uuid.NewString(),
			Timestamp: time.Now().Unix(),
			Data:      res,
		})
	}
	return res
}

func (s *Scraper) scrape(ctx context.Context, rec models.CompanyRecord, opts ...CompanyOption) Result {
	run := companyRun{resolver: s.resolver, timeout: s.cfg.CompanyTimeout}
	for _, o := range opts {
		o(&run)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrapeCompany(ctx, rec, run)
}

func (s *Scraper) scrapeCompany(ctx context.Context, rec models.CompanyRecord, run companyRun) (res Result) {
	ctx, span := tracer.Start(ctx, "ScrapeCompany")
	defer span.End()
	span.SetAttributes(
		attribute.String("company", rec.OrganizationName),
		attribute.String("strategy", run.resolver.Name()),
	)

	if run.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, run.timeout)
		defer cancel()
	}

	profileURL := navigate.NormalizeURL(rec.LinkedIn)
	names := rec.FounderNames()
	c := models.NewCompany(rec, profileURL)
	res = Result{Company: c, Outcome: OutcomeComplete}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("company scrape panicked", "company", c.Name, "panic", r)
			span.SetStatus(codes.Error, fmt.Sprint(r))
			res.Outcome = OutcomeSessionFailed
		}
		for i := len(c.Founders); i < len(names); i++ {
			c.Founders = append(c.Founders, models.NewFounder(names[i]))
		}
		s.store.Put(c.Name, c)
		s.metrics.Companies.WithLabelValues(res.Outcome).Inc()
		slog.Info("company stored",
			"company", c.Name,
			"founders", len(c.Founders),
			"resolved", res.Resolved,
			"outcome", res.Outcome,
		)
	}()

	cc := navigate.CompanyContext{Name: rec.OrganizationName, ProfileURL: profileURL}
	if err := run.resolver.Prepare(ctx, s.sess, cc); err != nil {
		slog.Error("company page unavailable", "company", c.Name, "url", profileURL, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		res.Outcome = OutcomeSessionFailed
		return res
	}

	for _, name := range names {
		if ctx.Err() != nil {
			res.Outcome = OutcomeTimedOut
			break
		}
		f, reached := s.scrapeFounder(ctx, run.resolver, name, cc)
		c.Founders = append(c.Founders, f)
		if reached {
			res.Resolved++
		}
	}
	if res.Outcome == OutcomeComplete && ctx.Err() != nil {
		res.Outcome = OutcomeTimedOut
	}
	return res
}

// scrapeFounder never fails: anything short of reaching the profile yields
// a name-only Founder.
func (s *Scraper) scrapeFounder(ctx context.Context, resolver navigate.Resolver, name string, cc navigate.CompanyContext) (f *models.Founder, reached bool) {
	start := time.Now()
	outcome := OutcomeFailed

	ctx, span := tracer.Start(ctx, "ResolveFounder",
		trace.WithAttributes(attribute.String("founder", name)))
	defer span.End()

	if s.cfg.FounderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FounderTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("founder scrape panicked", "founder", name, "company", cc.Name, "panic", r)
			f, reached, outcome = models.NewFounder(name), false, OutcomeFailed
		}
		s.metrics.Founders.WithLabelValues(outcome).Inc()
		s.metrics.FounderDuration.Observe(time.Since(start).Seconds())
	}()

	if s.pace != nil {
		if err := s.pace.Wait(ctx); err != nil {
			slog.Warn("founder skipped while pacing", "founder", name, "company", cc.Name, "error", err)
			return models.NewFounder(name), false
		}
	}

	if err := resolver.Resolve(ctx, s.sess, name, cc); err != nil {
		switch {
		case ctx.Err() != nil:
			outcome = OutcomeTimedOut
		case errors.Is(err, navigate.ErrNotFound):
			outcome = OutcomeNotFound
		}
		slog.Warn("founder profile not reached",
			"founder", name,
			"company", cc.Name,
			"strategy", resolver.Name(),
			"error", err,
		)
		span.RecordError(err)
		return models.NewFounder(name), false
	}

	s.checkDrift(ctx, name)

	ectx, espan := tracer.Start(ctx, "ExtractProfile")
	f, rep := s.extractor.Profile(ectx, s.sess, name)
	espan.SetAttributes(attribute.Int("misses", len(rep.Misses)))
	espan.End()

	// A profile cut short by the deadline is recorded as not reached.
	if err := ctx.Err(); err != nil {
		outcome = OutcomeTimedOut
		slog.Warn("founder timed out during extraction",
			"founder", name,
			"company", cc.Name,
			"error", err,
		)
		span.RecordError(err)
		return models.NewFounder(name), false
	}

	for _, m := range rep.Misses {
		s.metrics.StructuralMiss.WithLabelValues(string(m.Field)).Inc()
	}
	outcome = OutcomeExtracted
	return f, true
}

func (s *Scraper) checkDrift(ctx context.Context, name string) {
	if s.drift == nil {
		return
	}
	page, err := s.sess.HTML(ctx)
	if err != nil {
		slog.Debug("profile HTML unavailable for drift check", "founder", name, "error", err)
		return
	}
	if distance, drifted := s.drift.Observe(page); drifted {
		s.metrics.LayoutDrift.Inc()
		slog.Warn("profile markup differs from the first profile of the run",
			"founder", name,
			"distance", distance,
		)
	}
}

// Summary reports a Run.
type Summary struct {
	RunID            string    `json:"run_id"`
	Companies        int       `json:"companies"`
	Founders         int       `json:"founders"`
	FoundersResolved int       `json:"founders_resolved"`
	SessionFailures  int       `json:"session_failures"`
	Skipped          int       `json:"skipped"`
	Canceled         bool      `json:"canceled"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// Run scrapes records in order. It stops early only when ctx is done; the
// remaining records are counted as skipped.
func (s *Scraper) Run(ctx context.Context, records []models.CompanyRecord) Summary {
	sum := Summary{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := slog.With("run_id", sum.RunID)
	log.Info("run started", "records", len(records), "strategy", s.resolver.Name())

	// Each run fingerprints its own first profile.
	s.drift.Reset()

	for i, rec := range records {
		if ctx.Err() != nil {
			sum.Canceled = true
			sum.Skipped = len(records) - i
			break
		}
		res := s.scrape(ctx, rec)
		sum.Companies++
		sum.Founders += len(res.Company.Founders)
		sum.FoundersResolved += res.Resolved
		if res.Outcome == OutcomeSessionFailed {
			sum.SessionFailures++
		}
		if s.onCompany != nil {
			s.onCompany(res)
		}
	}
	sum.FinishedAt = time.Now()

	log.Info("run finished",
		"companies", sum.Companies,
		"founders", sum.Founders,
		"resolved", sum.FoundersResolved,
		"skipped", sum.Skipped,
		"duration", sum.FinishedAt.Sub(sum.StartedAt),
	)

	if s.notifier != nil {
		s.notifier.Send(context.WithoutCancel(ctx), &webhook.Event{
			Type:      webhook.EventBatchCompleted,
			RunID:     sum.RunID,
			Timestamp: sum.FinishedAt.Unix(),
			Data:      sum,
		})
	}
	return sum
}
