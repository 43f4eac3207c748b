package models

import "time"

// ApiKey authenticates headless clients through the api_key query
// parameter. Keys are stored and listed in the clear; revocation is the
// remedy for a leaked key.
type ApiKey struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Key       string    `db:"api_key" json:"key"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
