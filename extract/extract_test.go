package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/founderscope/browser/browsertest"
	"github.com/use-agent/founderscope/config"
	"github.com/use-agent/founderscope/models"
	"github.com/use-agent/founderscope/snapshot"
)

func testLayout() config.ExtractConfig {
	l := config.Default().Extract
	l.LazyLoadPause = 0
	return l
}

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(testLayout())
	require.NoError(t, err)
	return e
}

func TestParseEducation(t *testing.T) {
	layout := testLayout()
	tests := []struct {
		name   string
		lines  []string
		ok     bool
		school string
		degree *string
		field  *string
	}{
		{"full", []string{"Stanford", "Degree Name", "MBA", "Field Of Study", "Business"}, true, "Stanford", models.Ref("MBA"), models.Ref("Business")},
		{"degree only", []string{"MIT", "Degree Name", "BS"}, true, "MIT", models.Ref("BS"), nil},
		{"school only", []string{"Harvard"}, true, "Harvard", nil, nil},
		{"field without degree", []string{"Yale", "", "", "Field Of Study", "Law"}, true, "Yale", nil, nil},
		{"no school", []string{"", "Degree Name", "BA"}, false, "", nil, nil},
		{"empty", nil, false, "", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edu, ok := ParseEducation(tt.lines, layout)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.school, edu.School)
			assert.Equal(t, tt.degree, edu.Degree)
			assert.Equal(t, tt.field, edu.Field)
		})
	}
}

func TestParseExperience(t *testing.T) {
	layout := testLayout()
	tests := []struct {
		name    string
		lines   []string
		ok      bool
		company string
		title   *string
		dates   *string
	}{
		{"grouped sub-entry", []string{"Company Name", "Acme Corp"}, true, "Acme Corp", nil, nil},
		{"grouped placeholder case-insensitive", []string{"company name", "Acme Corp"}, true, "Acme Corp", nil, nil},
		{"full", []string{"CTO", "Company Name", "Initech", "Dates Employed", "2015 – 2018"}, true, "Initech", models.Ref("CTO"), models.Ref("2015 – 2018")},
		{"no dates", []string{"CTO", "Company Name", "Initech"}, true, "Initech", models.Ref("CTO"), nil},
		{"no company line", []string{"CTO", "Company Name"}, false, "", nil, nil},
		{"grouped without company", []string{"Company Name"}, false, "", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, ok := ParseExperience(tt.lines, layout)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.company, exp.CompanyName)
			assert.Equal(t, tt.title, exp.Title)
			assert.Equal(t, tt.dates, exp.Dates)
		})
	}
}

func TestSplitLinesKeepsPositions(t *testing.T) {
	assert.Equal(t, []string{"a", "", "c"}, SplitLines(" a \r\n\n c"))
}

func TestProfileFromSnapshot(t *testing.T) {
	doc, err := snapshot.ParseString(janeProfile)
	require.NoError(t, err)

	f, rep := newExtractor(t).Profile(context.Background(), doc, "Jane Doe")

	assert.Empty(t, rep.Misses)
	assert.Equal(t, "Jane Doe", f.Name)
	require.NotNil(t, f.Connections)
	assert.Equal(t, "500+ connections", *f.Connections)
	require.NotNil(t, f.Location)
	assert.Equal(t, "San Francisco Bay Area", *f.Location)

	require.Len(t, f.Education, 2)
	assert.Equal(t, models.Education{School: "Stanford University", Degree: models.Ref("MBA"), Field: models.Ref("Business")}, f.Education[0])
	assert.Equal(t, models.Education{School: "MIT", Degree: models.Ref("BS")}, f.Education[1])

	require.Len(t, f.Experience, 2)
	assert.Equal(t, models.Experience{
		CompanyName: "Acme Robotics",
		Title:       models.Ref("Chief Executive Officer"),
		Dates:       models.Ref("Jan 2019 – Present"),
	}, f.Experience[0])
	assert.Equal(t, models.Experience{CompanyName: "Globex"}, f.Experience[1])
}

func TestProfileAllMissing(t *testing.T) {
	doc, err := snapshot.ParseString(emptyProfile)
	require.NoError(t, err)

	f, rep := newExtractor(t).Profile(context.Background(), doc, "Nobody")

	assert.Nil(t, f.Connections)
	assert.Nil(t, f.Location)
	assert.NotNil(t, f.Education)
	assert.Empty(t, f.Education)
	assert.NotNil(t, f.Experience)
	assert.Empty(t, f.Experience)

	for _, field := range []Field{FieldConnections, FieldLocation, FieldEducation, FieldExperience} {
		assert.True(t, rep.Missed(field), field)
	}
	for _, m := range rep.Misses {
		assert.True(t, models.IsCode(m.Err, models.ErrCodeStructuralMiss))
	}
}

func TestProfileScrollsBeforeReading(t *testing.T) {
	sess := browsertest.New(map[string]*browsertest.Page{
		"https://site.example/in/jane": {HTML: janeProfile},
	})
	require.NoError(t, sess.Navigate(context.Background(), "https://site.example/in/jane"))

	layout := testLayout()
	e, err := New(layout)
	require.NoError(t, err)
	f, _ := e.Profile(context.Background(), sess, "Jane Doe")

	assert.Equal(t, []float64{layout.EducationScrollFraction, layout.ExperienceScrollFraction}, sess.Scrolls())
	assert.Len(t, f.Experience, 2)
}

func TestProfileSurvivesUnreadableNodes(t *testing.T) {
	layout := testLayout()
	sess := browsertest.New(map[string]*browsertest.Page{
		"p": {Elements: map[string][]*browsertest.Element{
			layout.ConnectionsSelector: {{Fail: browsertest.ErrBroken}},
			layout.ExperienceSelector: {
				{Fail: browsertest.ErrBroken},
				{Content: "Company Name\nAcme Corp"},
			},
		}},
	})
	require.NoError(t, sess.Navigate(context.Background(), "p"))

	f, rep := newExtractor(t).Profile(context.Background(), sess, "Jane Doe")

	assert.Nil(t, f.Connections)
	assert.True(t, rep.Missed(FieldConnections))
	require.Len(t, f.Experience, 1)
	assert.Equal(t, "Acme Corp", f.Experience[0].CompanyName)
	assert.Nil(t, f.Experience[0].Title)
	assert.Nil(t, f.Experience[0].Dates)
}

func TestNewValidatesLayout(t *testing.T) {
	l := testLayout()
	l.EducationSelector = "div["
	_, err := New(l)
	assert.True(t, models.IsCode(err, models.ErrCodeInvalidInput))

	l = testLayout()
	l.DegreeLine = -1
	_, err = New(l)
	assert.Error(t, err)

	l = testLayout()
	l.ExperienceScrollFraction = 1.5
	_, err = New(l)
	assert.Error(t, err)
}
