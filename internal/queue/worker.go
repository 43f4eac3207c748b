package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// HandleApplyCreditsTask applies a payment grant to the coin balance.
// Returning an error lets asynq retry; the event-id key makes every retry
// safe.
func (q *Queue) HandleApplyCreditsTask(ctx context.Context, task *asynq.Task) error {
	var payload ApplyCreditsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	applied, err := q.ledger.ApplyCredit(ctx, payload.EventID, payload.UserID, payload.Credits)
	if err != nil {
		return err
	}
	if !applied {
		slog.Info("payment credit already applied", "event_id", payload.EventID)
	}

	return nil
}
