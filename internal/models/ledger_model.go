package models

import "time"

type CreditAccount struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LedgerTransaction is an append-only debit record. The unique index on
// (post_id, action_kind, location_id) is what makes every metered action
// at-most-once: a retried commit hits the index and changes nothing.
type LedgerTransaction struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	PostID     int64     `db:"post_id" json:"post_id"`
	ActionKind string    `db:"action_kind" json:"action_kind"`
	LocationID string    `db:"location_id" json:"location_id"`
	Amount     int64     `db:"amount" json:"amount"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

const (
	ActionGenerate        = "generate"
	ActionPublishLocation = "publish_location"
)

// CreditEvent records an applied payment-webhook credit, keyed by the
// external payment id so a redelivered webhook cannot credit twice.
type CreditEvent struct {
	EventID   string    `db:"event_id" json:"event_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Credits   int64     `db:"credits" json:"credits"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
