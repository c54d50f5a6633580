package models

import "strings"

// Company is the record assembled for one input row. Founders keep the order
// of the input founder list, one entry per listed name.
type Company struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Founders    []*Founder `json:"founders"`
	Industries  []string   `json:"industries"`
	Website     string     `json:"website"`
	LastStage   string     `json:"lastStage"`
	LinkedIn    string     `json:"linkedin"`
	Location    string     `json:"location"`
}

// Founder holds what could be read from one founder's profile. Only Name is
// guaranteed; every other field stays empty when the profile was not found
// or the section was missing.
type Founder struct {
	Name        string       `json:"name"`
	Connections *string      `json:"connections"`
	Location    *string      `json:"location"`
	Education   []Education  `json:"education"`
	Experience  []Experience `json:"experience"`
}

// Education is one school entry. School is always set; Field is only set
// when Degree is.
type Education struct {
	School string  `json:"school"`
	Degree *string `json:"degree"`
	Field  *string `json:"field"`
}

// Experience is one position entry. Dates is the site's free text.
type Experience struct {
	CompanyName string  `json:"companyName"`
	Title       *string `json:"title"`
	Dates       *string `json:"dates"`
}

// NewFounder returns a founder carrying only its name.
func NewFounder(name string) *Founder {
	return &Founder{
		Name:       name,
		Education:  []Education{},
		Experience: []Experience{},
	}
}

// NewCompany copies the tabular fields of rec into a fresh Company with an
// empty founder list. profileURL is the already-normalised profile URL.
func NewCompany(rec CompanyRecord, profileURL string) *Company {
	return &Company{
		Name:        rec.OrganizationName,
		Description: rec.Description,
		Founders:    []*Founder{},
		Industries:  rec.IndustryList(),
		Website:     rec.Website,
		LastStage:   rec.LastFundingType,
		LinkedIn:    profileURL,
		Location:    rec.HeadquartersLocation,
	}
}

// Ref returns a pointer to v.
func Ref[T any](v T) *T {
	return &v
}

// splitList splits a comma-separated cell, trimming entries and dropping
// empty ones.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
