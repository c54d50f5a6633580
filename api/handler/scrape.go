package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/models"
	"github.com/use-agent/founderscope/navigate"
	"github.com/use-agent/founderscope/pipeline"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// Flow:
//  1. Parse & validate request, apply defaults.
//  2. Pick the resolver (configured, or the request's strategy override).
//  3. Scraper.ScrapeCompany, which waits for the shared session.
//  4. Respond with the stored record.
//
// sc is nil when the server runs without a browser; the handler then
// answers 503.
func Scrape(sc *pipeline.Scraper, nav config.NavigationConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		if sc == nil {
			respondError(c, models.NewScrapeError(models.ErrCodeUnavailable,
				"no browser session: start the server with --live", nil), start)
			return
		}

		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), err), start)
			return
		}
		req.Defaults()
		if err := validateRecord(req.Record); err != nil {
			respondError(c, err, start)
			return
		}

		opts := []pipeline.CompanyOption{pipeline.WithTimeout(time.Duration(req.Timeout) * time.Second)}
		if req.Strategy != "" && req.Strategy != nav.Strategy {
			override := nav
			override.Strategy = req.Strategy
			r, err := navigate.New(override)
			if err != nil {
				respondError(c, err, start)
				return
			}
			opts = append(opts, pipeline.WithResolver(r))
		}

		res := sc.ScrapeCompany(c.Request.Context(), req.Record, opts...)
		if res.Outcome == pipeline.OutcomeSessionFailed {
			c.JSON(http.StatusBadGateway, models.ScrapeResponse{
				Success: false,
				Company: res.Company,
				Timing:  models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeSession,
					Message: "company page could not be reached; stored with name-only founders",
				},
			})
			return
		}

		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success:  true,
			Company:  res.Company,
			Resolved: res.Resolved,
			Timing:   models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
		})
	}
}

func validateRecord(r models.CompanyRecord) error {
	switch {
	case strings.TrimSpace(r.OrganizationName) == "":
		return models.NewScrapeError(models.ErrCodeInvalidInput, "record.organization_name is empty", nil)
	case len(r.FounderNames()) == 0:
		return models.NewScrapeError(models.ErrCodeInvalidInput, "record.founders lists no names", nil)
	case strings.TrimSpace(r.LinkedIn) == "":
		return models.NewScrapeError(models.ErrCodeInvalidInput, "record.linkedin is empty", nil)
	}
	return nil
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, start time.Time) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ScrapeResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
		Timing:  models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeSession:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeUnavailable:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
