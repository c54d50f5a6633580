package models

// CompanyRecord is one input row as exported from the company database.
// The csv tags are the export's column headers.
type CompanyRecord struct {
	OrganizationName     string `csv:"Organization Name" json:"organization_name" binding:"required"`
	Description          string `csv:"Description" json:"description,omitempty"`
	Industries           string `csv:"Industries" json:"industries,omitempty"`
	Website              string `csv:"Website" json:"website,omitempty"`
	LastFundingType      string `csv:"Last Funding Type" json:"last_funding_type,omitempty"`
	Founders             string `csv:"Founders" json:"founders" binding:"required"`
	LinkedIn             string `csv:"LinkedIn" json:"linkedin" binding:"required"`
	HeadquartersLocation string `csv:"Headquarters Location" json:"headquarters_location,omitempty"`
}

// FounderNames splits the comma-separated Founders cell.
func (r CompanyRecord) FounderNames() []string {
	return splitList(r.Founders)
}

// IndustryList splits the comma-separated Industries cell.
func (r CompanyRecord) IndustryList() []string {
	return splitList(r.Industries)
}
