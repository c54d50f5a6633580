package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/founderscope/browser"
)

const profileHTML = `<html><head><title>x</title><script>var a = 1;</script></head><body>
<ul class="top"><li class="item">  500+   connections </li><li class="item">Berlin</li></ul>
<div class="edu">
  <h3>Stanford University</h3>
  <p>Degree Name</p><p>MBA</p>
  <p>Field Of Study<br>Business</p>
</div>
<a class="job" href="/in/x">Engineer<span> at </span><b>Acme</b></a>
</body></html>`

func TestElementsAndText(t *testing.T) {
	doc, err := ParseString(profileHTML)
	require.NoError(t, err)
	ctx := context.Background()

	items, err := doc.Elements(ctx, "ul.top > li.item")
	require.NoError(t, err)
	require.Len(t, items, 2)

	text, err := items[0].Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "500+ connections", text)

	edu, err := doc.Elements(ctx, "div.edu")
	require.NoError(t, err)
	require.Len(t, edu, 1)
	text, err = edu[0].Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Stanford University\nDegree Name\nMBA\nField Of Study\nBusiness", text)

	job, err := doc.Elements(ctx, "a.job")
	require.NoError(t, err)
	text, err = job[0].Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Engineer at Acme", text)
}

func TestWaitElementsNoMatch(t *testing.T) {
	doc, err := ParseString(profileHTML)
	require.NoError(t, err)

	_, err = doc.WaitElements(context.Background(), "div.missing", 0)
	assert.ErrorIs(t, err, browser.ErrElementNotFound)

	els, err := doc.Elements(context.Background(), "div.missing")
	require.NoError(t, err)
	assert.Empty(t, els)
}

func TestInvalidSelector(t *testing.T) {
	doc, err := ParseString(profileHTML)
	require.NoError(t, err)

	_, err = doc.Elements(context.Background(), "div[")
	assert.Error(t, err)
}

func TestReadOnly(t *testing.T) {
	doc, err := ParseString(profileHTML)
	require.NoError(t, err)
	ctx := context.Background()

	els, err := doc.Elements(ctx, "a.job")
	require.NoError(t, err)
	assert.ErrorIs(t, els[0].Click(ctx), ErrReadOnly)
	assert.ErrorIs(t, els[0].Input(ctx, "x"), ErrReadOnly)
	assert.ErrorIs(t, els[0].Press(ctx, browser.KeyEnter), ErrReadOnly)
}

func TestScriptTextIgnored(t *testing.T) {
	doc, err := ParseString(profileHTML)
	require.NoError(t, err)

	body, err := doc.Elements(context.Background(), "html")
	require.NoError(t, err)
	text, err := body[0].Text(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, text, "var a")
}
