package models

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// Record is the company row to scrape. OrganizationName, Founders and
	// LinkedIn are required.
	Record CompanyRecord `json:"record" binding:"required"`

	// Timeout is the maximum duration in seconds for the whole company
	// scrape. Default: 300. Max: 1800.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=1800"`

	// Strategy overrides the configured navigation variant for this request.
	// Allowed: "roster", "global".
	Strategy string `json:"strategy,omitempty" binding:"omitempty,oneof=roster global"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 300
	}
}
