package job

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/repository"
	"github.com/listforge/listforge/internal/service"
)

// PublishDueJob is the time driver for scheduled posts. Every tick it
// re-queries the due set and pushes each post through the same workflow
// entry point interactive publishes use. It keeps no state between ticks,
// so missed ticks and restarts recover on the next scan.
type PublishDueJob struct {
	pr repository.PostRepository
	wf service.WorkflowService
}

func NewPublishDueJob(pr repository.PostRepository, wf service.WorkflowService) *PublishDueJob {
	return &PublishDueJob{
		pr: pr,
		wf: wf,
	}
}

func (j *PublishDueJob) PublishDue() {
	ctx := context.Background()

	posts, err := j.pr.FindDue(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, post := range posts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(post *models.Post) {
			defer wg.Done()
			defer func() { <-semaphore }()

			err := j.wf.PublishBySchedule(ctx, post.ID)
			if err != nil {
				// A conflict means someone else acted on the post first;
				// the next tick's query will not see it again.
				if errors.Is(err, models.ErrConflict) {
					slog.Info("scheduled publish lost a race", "post_id", post.ID)
					return
				}
				slog.Error("scheduled publish failed", "post_id", post.ID, "err", err)
			}
		}(post)
	}

	wg.Wait()
}
