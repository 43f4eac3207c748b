package models

import "time"

type Post struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	ArtifactURL string     `db:"artifact_url" json:"artifact_url"`
	Description string     `db:"description" json:"description"`
	Status      string     `db:"status" json:"status"`
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	Targets     []string   `db:"-" json:"targets,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusPending   = "pending"
	PostStatusApproved  = "approved"
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
	PostStatusRejected  = "rejected"
)

// TransitionExtra carries the fields a status transition is allowed to touch
// alongside the status column itself.
type TransitionExtra struct {
	ScheduledAt *time.Time
	Targets     []string
}
