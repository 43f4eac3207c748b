package queue

import (
	"github.com/listforge/listforge/internal/service"
)

type Queue struct {
	ledger service.LedgerService
}

func NewQueue(ledger service.LedgerService) *Queue {
	return &Queue{
		ledger: ledger,
	}
}

const TaskTypeApplyCredits = "credits:apply"

// ApplyCreditsPayload carries a verified payment grant. EventID is the
// external payment id, which keys the idempotent credit so a redelivered
// webhook or a retried task cannot credit twice.
type ApplyCreditsPayload struct {
	EventID string `json:"event_id"`
	UserID  int64  `json:"user_id"`
	Credits int64  `json:"credits"`
}
