package models

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientFunds = errors.New("insufficient coin balance")
	ErrInvalidSchedule   = errors.New("scheduled time must be in the future")
	ErrConflict          = errors.New("post status changed, please refresh")
	ErrNotFound          = errors.New("not found")
)

// PublishError is the outcome of a failed dispatch to the listing platform.
// Retryable distinguishes transient failures (network, 5xx, timeout) from
// ones that need user intervention before another attempt.
type PublishError struct {
	Retryable bool
	Detail    string
}

func (e *PublishError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("publish failed (retryable): %s", e.Detail)
	}
	return fmt.Sprintf("publish failed: %s", e.Detail)
}
