package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFounderNames(t *testing.T) {
	r := CompanyRecord{Founders: " Jane Doe, John Smith ,, "}
	assert.Equal(t, []string{"Jane Doe", "John Smith"}, r.FounderNames())

	assert.Empty(t, CompanyRecord{}.FounderNames())
}

func TestNewCompany(t *testing.T) {
	rec := CompanyRecord{
		OrganizationName:     "Acme",
		Description:          "Robots",
		Industries:           "AI, Robotics",
		Website:              "acme.example",
		LastFundingType:      "Seed",
		Founders:             "Jane Doe",
		LinkedIn:             "https://site.example/co",
		HeadquartersLocation: "Berlin",
	}
	c := NewCompany(rec, "https://site.example/co/")

	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, []string{"AI", "Robotics"}, c.Industries)
	assert.Equal(t, "Seed", c.LastStage)
	assert.Equal(t, "https://site.example/co/", c.LinkedIn)
	assert.Equal(t, "Berlin", c.Location)
	require.NotNil(t, c.Founders)
	assert.Empty(t, c.Founders)
}

func TestNewFounderIsBare(t *testing.T) {
	f := NewFounder("Jane Doe")
	assert.Nil(t, f.Connections)
	assert.Nil(t, f.Location)
	assert.NotNil(t, f.Education)
	assert.NotNil(t, f.Experience)
	assert.Empty(t, f.Education)
	assert.Empty(t, f.Experience)
}

func TestCodeOf(t *testing.T) {
	base := NewScrapeError(ErrCodeNavigation, "no result", errors.New("boom"))
	wrapped := fmt.Errorf("resolve: %w", base)

	assert.Equal(t, ErrCodeNavigation, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, ErrCodeNavigation))
	assert.False(t, IsCode(nil, ErrCodeNavigation))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, "NAVIGATION_FAILED: no result: boom", base.Error())
	assert.Equal(t, &ErrorDetail{Code: ErrCodeNavigation, Message: "no result"}, base.ToDetail())
}
