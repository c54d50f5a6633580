package extract

import (
	"strings"

	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/models"
)

// SplitLines splits rendered node text on line breaks. Every line is
// trimmed, but blank lines keep their position so offsets stay stable.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// line returns lines[i] when it exists and is not blank.
func line(lines []string, i int) (string, bool) {
	if i < 0 || i >= len(lines) || lines[i] == "" {
		return "", false
	}
	return lines[i], true
}

// ParseEducation maps one education node's lines to an entry. The school
// line is required; the field of study is only read when a degree was.
func ParseEducation(lines []string, layout config.ExtractConfig) (models.Education, bool) {
	school, ok := line(lines, layout.SchoolLine)
	if !ok {
		return models.Education{}, false
	}
	edu := models.Education{School: school}
	if degree, ok := line(lines, layout.DegreeLine); ok {
		edu.Degree = models.Ref(degree)
		if field, ok := line(lines, layout.FieldLine); ok {
			edu.Field = models.Ref(field)
		}
	}
	return edu, true
}

// ParseExperience maps one experience node's lines to an entry. A node whose
// first line is the grouped-company placeholder is a sub-entry of a grouped
// company block: only its company name is kept. Otherwise the company line
// is required and the title and dates lines are optional.
func ParseExperience(lines []string, layout config.ExtractConfig) (models.Experience, bool) {
	if first, ok := line(lines, 0); ok && layout.GroupedPlaceholder != "" &&
		strings.EqualFold(first, layout.GroupedPlaceholder) {
		company, ok := line(lines, layout.GroupedCompanyLine)
		if !ok {
			return models.Experience{}, false
		}
		return models.Experience{CompanyName: company}, true
	}

	company, ok := line(lines, layout.CompanyLine)
	if !ok {
		return models.Experience{}, false
	}
	exp := models.Experience{CompanyName: company}
	if title, ok := line(lines, layout.TitleLine); ok {
		exp.Title = models.Ref(title)
	}
	if dates, ok := line(lines, layout.DatesLine); ok {
		exp.Dates = models.Ref(dates)
	}
	return exp, true
}
