package queue

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func EnqueueCredits(asynqClient *asynq.Client, payload ApplyCreditsPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeApplyCredits, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.MaxRetry(10))
	if err != nil {
		return err
	}

	log.Printf("Credit task enqueued: %+v", payload)
	return nil
}
