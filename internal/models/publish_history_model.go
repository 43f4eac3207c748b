package models

import "time"

// PublishHistory records one dispatch outcome per publish action, including
// the conflict-after-dispatch case operators need to see.
type PublishHistory struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	PostID       int64     `db:"post_id" json:"post_id"`
	Targets      string    `db:"targets" json:"targets"`
	ExternalRef  string    `db:"external_ref" json:"external_ref"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
