package models

import (
	"time"
)

type PostStatus string

const (
	PostStatusPending PostStatus = "PENDING"
	PostStatusSuccess PostStatus = "SUCCESS"
	PostStatusFailed  PostStatus = "FAILED"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Salary      string    `json:"salary"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// JobPost is one attempt to publish a job into one Facebook group.
// Status moves PENDING -> SUCCESS/FAILED; a half-finished pass leaves
// the remaining rows PENDING for the next scheduler tick.
type JobPost struct {
	ID               string     `json:"id"`
	JobID            string     `json:"job_id"`
	FacebookGroupURL string     `json:"facebook_group_url"`
	Status           PostStatus `json:"status"`
	PostURL          *string    `json:"post_url,omitempty"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PendingPost joins a PENDING job post with the job it advertises.
type PendingPost struct {
	Post JobPost
	Job  Job
}

// Candidate is someone who showed interest under a job post, either via a
// comment or a Messenger referral.
type Candidate struct {
	ID          string    `json:"id"`
	JobPostID   *string   `json:"job_post_id,omitempty"`
	SenderID    string    `json:"sender_id"`
	Name        string    `json:"name"`
	CommentText string    `json:"comment_text"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// JobContext links a Messenger sender to the job they came from, so the
// workflow engine can resolve later messages in the same thread.
type JobContext struct {
	SenderID  string    `json:"sender_id"`
	JobID     string    `json:"job_id"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
