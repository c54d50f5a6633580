package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/use-agent/founderscope/api/handler"
	"github.com/use-agent/founderscope/api/middleware"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/pipeline"
	"github.com/use-agent/founderscope/store"
)

// Deps are the services the routes read from.
type Deps struct {
	Store *store.Store

	// Scraper is nil when no browser session is running.
	Scraper *pipeline.Scraper

	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer

	StartTime time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestLog
//	API:     Auth (if enabled) → RateLimit
//
// Health and metrics stay outside auth so probes and scrapers always work.
// ctx bounds the rate limiter's background eviction.
func NewRouter(ctx context.Context, deps Deps, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLog())

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(deps.Store, deps.Scraper, deps.StartTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	protected.GET("/companies", handler.ListCompanies(deps.Store))
	protected.GET("/companies/:name", handler.GetCompany(deps.Store))
	protected.POST("/scrape", handler.Scrape(deps.Scraper, cfg.Navigation))

	return r
}
