package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coverLetterData = map[string]string{
	"Title":       "Backend Engineer",
	"Company":     "Acme GmbH",
	"Location":    "Berlin",
	"Description": "Build APIs in Go.",
	"Background":  "I have built APIs for five years.",
}

func TestLoad(t *testing.T) {
	set, err := Load("cover_letter.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"background", "instruction", "job_description"}, set.Keys())

	again, err := Load("cover_letter.json")
	require.NoError(t, err)
	assert.Same(t, set, again, "second load is served from cache")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("nonexistent.json")
	assert.ErrorContains(t, err, "failed to read prompt file")
}

func TestPlaceholders(t *testing.T) {
	set, err := Load("cover_letter.json")
	require.NoError(t, err)

	names, err := set.Placeholders("job_description")
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Company", "Location", "Description"}, names)

	names, err = set.Placeholders("instruction")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = set.Placeholders("closing")
	assert.ErrorContains(t, err, "not found")
}

func TestRender_MissingValue(t *testing.T) {
	set, err := Load("cover_letter.json")
	require.NoError(t, err)

	_, err = set.Render("job_description", map[string]string{"Title": "Engineer", "Company": "Acme"})
	assert.ErrorContains(t, err, "no value for Location, Description")
}

func TestRender_ValuesAreNotExpanded(t *testing.T) {
	set, err := Load("cover_letter.json")
	require.NoError(t, err)

	out, err := set.Render("background", map[string]string{"Background": "I wrote {{.Title}} by hand."})
	require.NoError(t, err)
	assert.Contains(t, out, "I wrote {{.Title}} by hand.")
}

func TestParts_CoverLetter(t *testing.T) {
	parts, err := Parts("cover_letter.json", []string{"instruction", "job_description", "background"}, coverLetterData)
	require.NoError(t, err)
	require.Len(t, parts, 3)

	assert.Contains(t, parts[0], "Modify the <sample_coverletter> to better fit the <job_description>")
	assert.Contains(t, parts[0], "Do not add fluff")

	assert.Contains(t, parts[1], "Job Description:")
	assert.Contains(t, parts[1], "Backend Engineer")
	assert.Contains(t, parts[1], "Acme GmbH")
	assert.Contains(t, parts[1], "Build APIs in Go.")
	assert.NotContains(t, parts[1], "{{.")

	assert.Contains(t, parts[2], "Sample Coverletter:")
	assert.Contains(t, parts[2], "I have built APIs for five years.")
}

func TestParts_MissingKey(t *testing.T) {
	_, err := Parts("cover_letter.json", []string{"instruction", "closing"}, coverLetterData)
	assert.ErrorContains(t, err, `prompt key "closing" not found`)
}
