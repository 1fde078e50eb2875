package automation

import (
	"strings"
	"testing"

	"go-fbauto-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRefRoundTrip(t *testing.T) {
	ref := JobRef{JobID: "job-123", JobPostID: "post-456"}

	encoded := EncodeJobRef(ref)
	assert.NotContains(t, encoded, "=", "url-safe encoding without padding")
	assert.NotContains(t, encoded, "+")
	assert.NotContains(t, encoded, "/")

	decoded, err := DecodeJobRef(encoded)
	require.NoError(t, err)
	assert.Equal(t, ref, decoded)
}

func TestDecodeJobRefRejectsGarbage(t *testing.T) {
	_, err := DecodeJobRef("not!!valid@@base64")
	assert.Error(t, err)

	_, err = DecodeJobRef("bm90IGpzb24") // "not json"
	assert.Error(t, err)
}

func TestBuildPostMessage(t *testing.T) {
	job := models.Job{
		ID:          "job-1",
		Title:       "Warehouse Associate",
		Company:     "Acme Logistics",
		Location:    "Austin, TX",
		Salary:      "$18/hr",
		Description: "Day shifts, immediate start.",
	}
	post := models.JobPost{ID: "post-1"}

	msg := BuildPostMessage(job, post, "https://m.me/123456")

	assert.Contains(t, msg, "Warehouse Associate")
	assert.Contains(t, msg, "Acme Logistics")
	assert.Contains(t, msg, "Austin, TX")
	assert.Contains(t, msg, "$18/hr")
	assert.Contains(t, msg, "https://m.me/123456?ref=")

	//the embedded ref decodes back to this job/post pair
	refStart := strings.Index(msg, "?ref=") + len("?ref=")
	refEnd := strings.IndexAny(msg[refStart:], "\n ")
	require.Positive(t, refEnd)
	ref, err := DecodeJobRef(msg[refStart : refStart+refEnd])
	require.NoError(t, err)
	assert.Equal(t, "job-1", ref.JobID)
	assert.Equal(t, "post-1", ref.JobPostID)
}

func TestBuildPostMessageOmitsEmptyFields(t *testing.T) {
	msg := BuildPostMessage(models.Job{ID: "j", Title: "Cook"}, models.JobPost{ID: "p"}, "")

	assert.Contains(t, msg, "Cook")
	assert.NotContains(t, msg, "🏢")
	assert.NotContains(t, msg, "💰")
	assert.NotContains(t, msg, "m.me")
}
