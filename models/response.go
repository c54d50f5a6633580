package models

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	// Success indicates whether the scrape ran. A successful scrape can
	// still carry field-sparse founders.
	Success bool `json:"success"`

	// Company is the stored record.
	Company *Company `json:"company,omitempty"`

	// Resolved is the number of founders whose profile was reached.
	Resolved int `json:"resolved"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo holds duration breakdowns in milliseconds.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`
}

// CompanyResponse is the response for GET /api/v1/companies/:name.
type CompanyResponse struct {
	Success bool         `json:"success"`
	Company *Company     `json:"company,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// CompanyListResponse is the response for GET /api/v1/companies.
type CompanyListResponse struct {
	Success   bool                `json:"success"`
	Total     int                 `json:"total"`
	Names     []string            `json:"names"`
	Companies map[string]*Company `json:"companies,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Companies int    `json:"companies"`
	Session   string `json:"session"` // "live" or "offline"
	Version   string `json:"version"`
}

// ErrorResponse is the body of every failed request that has no richer
// response type.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// NewErrorResponse builds a failed ErrorResponse.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: &ErrorDetail{Code: code, Message: message}}
}
