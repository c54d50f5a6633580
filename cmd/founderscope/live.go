package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/use-agent/founderscope/browser"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/drift"
	"github.com/use-agent/founderscope/extract"
	"github.com/use-agent/founderscope/navigate"
	"github.com/use-agent/founderscope/pipeline"
	"github.com/use-agent/founderscope/store"
	"github.com/use-agent/founderscope/webhook"
)

// liveEnv is a running browser session and the scraper bound to it.
type liveEnv struct {
	ctrl     *browser.Controller
	Scraper  *pipeline.Scraper
	Registry *prometheus.Registry
}

// Close shuts the browser down.
func (e *liveEnv) Close() {
	if e.ctrl != nil {
		e.ctrl.Close()
	}
}

// buildScraper assembles everything but the session. It is split from
// startLive so the wiring can be checked without a browser.
func buildScraper(c *config.Config, sess browser.Session, st *store.Store, onCompany func(pipeline.Result)) (*pipeline.Scraper, *prometheus.Registry, error) {
	resolver, err := navigate.New(c.Navigation)
	if err != nil {
		return nil, nil, eris.Wrap(err, "navigation")
	}
	extractor, err := extract.New(c.Extract)
	if err != nil {
		return nil, nil, eris.Wrap(err, "extract layout")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var pace *rate.Limiter
	if c.Navigation.ActionsPerSecond > 0 {
		pace = rate.NewLimiter(rate.Limit(c.Navigation.ActionsPerSecond), 1)
	}

	sc, err := pipeline.New(pipeline.Options{
		Session:   sess,
		Resolver:  resolver,
		Extractor: extractor,
		Store:     st,
		Config:    c.Pipeline,
		Pace:      pace,
		Drift:     drift.NewDetector(c.Extract.DriftThreshold),
		Metrics:   pipeline.NewMetrics(reg),
		Notifier:  webhook.New(c.Webhook.URL, c.Webhook.Secret),
		OnCompany: onCompany,
	})
	if err != nil {
		return nil, nil, err
	}
	return sc, reg, nil
}

// startLive launches the browser and wires a scraper to its session.
func startLive(ctx context.Context, c *config.Config, st *store.Store, onCompany func(pipeline.Result)) (*liveEnv, error) {
	ctrl, err := browser.Launch(ctx, c.Browser, c.Session)
	if err != nil {
		return nil, err
	}
	sc, reg, err := buildScraper(c, ctrl.Session(), st, onCompany)
	if err != nil {
		ctrl.Close()
		return nil, err
	}
	return &liveEnv{ctrl: ctrl, Scraper: sc, Registry: reg}, nil
}
