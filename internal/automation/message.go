package automation

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"go-fbauto-automation/internal/models"
)

// JobRef is the payload embedded in the messenger deep link under each
// post. Messenger echoes it back in referral webhooks, which is how an
// incoming chat gets tied to the job it came from.
type JobRef struct {
	JobID     string `json:"jobId"`
	JobPostID string `json:"jobPostId"`
}

func EncodeJobRef(ref JobRef) string {
	data, _ := json.Marshal(ref)
	return base64.RawURLEncoding.EncodeToString(data)
}

func DecodeJobRef(encoded string) (JobRef, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return JobRef{}, fmt.Errorf("invalid ref encoding: %w", err)
	}
	var ref JobRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return JobRef{}, fmt.Errorf("invalid ref payload: %w", err)
	}
	return ref, nil
}

// BuildPostMessage renders the group post for one job. Plain text only:
// the group composer mangles anything fancier.
func BuildPostMessage(job models.Job, post models.JobPost, messengerLink string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚀 We're hiring: %s\n\n", job.Title)
	if job.Company != "" {
		fmt.Fprintf(&b, "🏢 %s\n", job.Company)
	}
	if job.Location != "" {
		fmt.Fprintf(&b, "📍 %s\n", job.Location)
	}
	if job.Salary != "" {
		fmt.Fprintf(&b, "💰 %s\n", job.Salary)
	}
	if job.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", job.Description)
	}

	if messengerLink != "" {
		ref := EncodeJobRef(JobRef{JobID: job.ID, JobPostID: post.ID})
		fmt.Fprintf(&b, "\n💬 Interested? Message us: %s?ref=%s\n", messengerLink, ref)
	}
	b.WriteString("\nOr comment \"interested\" below and we'll reach out!")

	return b.String()
}
