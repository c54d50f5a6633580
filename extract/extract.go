// Package extract reads a founder's profile page into a models.Founder.
//
// Each field is read by its own step that returns a value or a
// STRUCTURAL_MISS error. Profile composes the steps and never fails: a miss
// leaves the field empty and is recorded in the Report.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/founderscope/browser"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/models"
)

// Field names a profile section.
type Field string

const (
	FieldConnections Field = "connections"
	FieldLocation    Field = "location"
	FieldEducation   Field = "education"
	FieldExperience  Field = "experience"
)

// Miss records why a field was left empty.
type Miss struct {
	Field Field
	Err   error
}

// Report lists the structural misses of one extraction.
type Report struct {
	Misses []Miss
}

// Missed reports whether f was left empty.
func (r Report) Missed(f Field) bool {
	for _, m := range r.Misses {
		if m.Field == f {
			return true
		}
	}
	return false
}

func (r *Report) add(f Field, err error) {
	r.Misses = append(r.Misses, Miss{Field: f, Err: err})
}

// Extractor holds a validated profile layout.
type Extractor struct {
	layout config.ExtractConfig
}

// New validates the layout: every selector must compile, offsets must be
// non-negative and scroll fractions must lie in [0, 1].
func New(layout config.ExtractConfig) (*Extractor, error) {
	for name, sel := range map[string]string{
		"connections_selector": layout.ConnectionsSelector,
		"location_selector":    layout.LocationSelector,
		"education_selector":   layout.EducationSelector,
		"experience_selector":  layout.ExperienceSelector,
	} {
		if _, err := cascadia.Compile(sel); err != nil {
			return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
				fmt.Sprintf("extract.%s %q does not compile", name, sel), err)
		}
	}
	for name, off := range map[string]int{
		"school_line":          layout.SchoolLine,
		"degree_line":          layout.DegreeLine,
		"field_line":           layout.FieldLine,
		"title_line":           layout.TitleLine,
		"company_line":         layout.CompanyLine,
		"dates_line":           layout.DatesLine,
		"grouped_company_line": layout.GroupedCompanyLine,
	} {
		if off < 0 {
			return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
				fmt.Sprintf("extract.%s must not be negative", name), nil)
		}
	}
	for _, f := range []float64{layout.EducationScrollFraction, layout.ExperienceScrollFraction} {
		if f < 0 || f > 1 {
			return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
				"extract scroll fractions must be within [0, 1]", nil)
		}
	}
	return &Extractor{layout: layout}, nil
}

// Profile reads the profile currently loaded in doc. Scrolling and the
// lazy-load waits happen here; the caller only has to be on the page.
func (e *Extractor) Profile(ctx context.Context, doc browser.Document, name string) (*models.Founder, Report) {
	f := models.NewFounder(name)
	var rep Report

	e.scroll(ctx, doc, e.layout.EducationScrollFraction)

	if v, err := e.Connections(ctx, doc); err != nil {
		rep.add(FieldConnections, err)
	} else {
		f.Connections = v
	}
	if v, err := e.Location(ctx, doc); err != nil {
		rep.add(FieldLocation, err)
	} else {
		f.Location = v
	}
	if v, err := e.Education(ctx, doc); err != nil {
		rep.add(FieldEducation, err)
	} else {
		f.Education = v
	}

	e.scroll(ctx, doc, e.layout.ExperienceScrollFraction)

	if v, err := e.Experience(ctx, doc); err != nil {
		rep.add(FieldExperience, err)
	} else {
		f.Experience = v
	}

	for _, m := range rep.Misses {
		slog.Debug("structural miss", "founder", name, "field", m.Field, "error", m.Err)
	}
	return f, rep
}

// Connections reads the first connection-count node.
func (e *Extractor) Connections(ctx context.Context, doc browser.Document) (*string, error) {
	return e.firstText(ctx, doc, FieldConnections, e.layout.ConnectionsSelector)
}

// Location reads the first location node.
func (e *Extractor) Location(ctx context.Context, doc browser.Document) (*string, error) {
	return e.firstText(ctx, doc, FieldLocation, e.layout.LocationSelector)
}

// Education reads every education node. Nodes without a school line are
// skipped; no parsable node at all is a miss.
func (e *Extractor) Education(ctx context.Context, doc browser.Document) ([]models.Education, error) {
	texts, err := e.texts(ctx, doc, FieldEducation, e.layout.EducationSelector, nil)
	if err != nil {
		return nil, err
	}
	out := []models.Education{}
	for _, t := range texts {
		if edu, ok := ParseEducation(SplitLines(t), e.layout); ok {
			out = append(out, edu)
		}
	}
	if len(out) == 0 {
		return nil, miss(FieldEducation, "no education node had a school line")
	}
	return out, nil
}

// Experience waits for the lazily rendered experience nodes and reads them.
func (e *Extractor) Experience(ctx context.Context, doc browser.Document) ([]models.Experience, error) {
	wait := e.layout.LazyLoadTimeout
	texts, err := e.texts(ctx, doc, FieldExperience, e.layout.ExperienceSelector, &wait)
	if err != nil {
		return nil, err
	}
	out := []models.Experience{}
	for _, t := range texts {
		if exp, ok := ParseExperience(SplitLines(t), e.layout); ok {
			out = append(out, exp)
		}
	}
	if len(out) == 0 {
		return nil, miss(FieldExperience, "no experience node had a company line")
	}
	return out, nil
}

func (e *Extractor) firstText(ctx context.Context, doc browser.Document, f Field, selector string) (*string, error) {
	els, err := doc.Elements(ctx, selector)
	if err != nil {
		return nil, wrapMiss(f, err)
	}
	if len(els) == 0 {
		return nil, miss(f, "no node matches "+selector)
	}
	text, err := els[0].Text(ctx)
	if err != nil {
		return nil, wrapMiss(f, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, miss(f, "node is empty")
	}
	return &text, nil
}

// texts returns the rendered text of every node matching selector, polling
// for up to *wait when wait is set. Unreadable nodes are skipped.
func (e *Extractor) texts(ctx context.Context, doc browser.Document, f Field, selector string, wait *time.Duration) ([]string, error) {
	var (
		els []browser.Element
		err error
	)
	if wait != nil {
		els, err = doc.WaitElements(ctx, selector, *wait)
	} else {
		els, err = doc.Elements(ctx, selector)
	}
	if err != nil {
		return nil, wrapMiss(f, err)
	}
	if len(els) == 0 {
		return nil, miss(f, "no node matches "+selector)
	}

	out := make([]string, 0, len(els))
	for i, el := range els {
		t, err := el.Text(ctx)
		if err != nil {
			slog.Debug("node text unreadable", "field", f, "index", i, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// scroll triggers lazy loading and then pauses at least LazyLoadPause.
func (e *Extractor) scroll(ctx context.Context, doc browser.Document, fraction float64) {
	if err := doc.ScrollFraction(ctx, fraction); err != nil {
		slog.Debug("scroll failed", "fraction", fraction, "error", err)
	}
	if e.layout.LazyLoadPause <= 0 {
		return
	}
	t := time.NewTimer(e.layout.LazyLoadPause)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func miss(f Field, msg string) *models.ScrapeError {
	return models.NewScrapeError(models.ErrCodeStructuralMiss, string(f)+": "+msg, nil)
}

func wrapMiss(f Field, err error) *models.ScrapeError {
	return models.NewScrapeError(models.ErrCodeStructuralMiss, string(f)+": lookup failed", err)
}
