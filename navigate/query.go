package navigate

import "strings"

// QueryFunc builds the search text for a founder.
type QueryFunc func(founder string, cc CompanyContext) string

// NameOnly searches by the founder's name. Used on the company roster,
// which is already scoped to the company.
func NameOnly(founder string, _ CompanyContext) string {
	return strings.TrimSpace(founder)
}

// NameAndCompanyToken appends the first word of the company name to the
// founder's name, narrowing a site-wide search.
func NameAndCompanyToken(founder string, cc CompanyContext) string {
	founder = strings.TrimSpace(founder)
	fields := strings.Fields(cc.Name)
	if len(fields) == 0 {
		return founder
	}
	return founder + " " + fields[0]
}

func queryFunc(name string, v Variant) (QueryFunc, bool) {
	switch name {
	case "":
		if v == VariantGlobal {
			return NameAndCompanyToken, true
		}
		return NameOnly, true
	case "name":
		return NameOnly, true
	case "name+company":
		return NameAndCompanyToken, true
	default:
		return nil, false
	}
}
