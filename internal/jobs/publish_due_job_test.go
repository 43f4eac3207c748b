package job

import (
	"context"
	"database/sql"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/listforge/listforge/internal/models"
	"github.com/stretchr/testify/assert"
)

type duePostRepo struct {
	due []*models.Post
}

func (r *duePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	return 0, nil
}
func (r *duePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) { return nil, nil }
func (r *duePostRepo) GetByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	return nil, nil
}
func (r *duePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	return false, nil
}
func (r *duePostRepo) CompareAndTransition(ctx context.Context, postID int64, expected, next string, extra models.TransitionExtra) error {
	return nil
}
func (r *duePostRepo) UpdateDescription(ctx context.Context, postID int64, text string) error {
	return nil
}
func (r *duePostRepo) FindDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	return r.due, nil
}
func (r *duePostRepo) GetTargets(ctx context.Context, postID int64) ([]string, error) {
	return nil, nil
}
func (r *duePostRepo) Remove(ctx context.Context, id int64) error { return nil }

type recordingWorkflow struct {
	mu        sync.Mutex
	published []int64
	errs      map[int64]error
}

func (w *recordingWorkflow) PublishBySchedule(ctx context.Context, postID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.published = append(w.published, postID)
	return w.errs[postID]
}

func (w *recordingWorkflow) Generate(ctx context.Context, userID int64, prompt string, logo *multipart.FileHeader) (*models.Post, error) {
	return nil, nil
}
func (w *recordingWorkflow) Approve(ctx context.Context, userID, postID int64) (*models.Post, error) {
	return nil, nil
}
func (w *recordingWorkflow) Reject(ctx context.Context, userID, postID int64) (*models.Post, error) {
	return nil, nil
}
func (w *recordingWorkflow) Schedule(ctx context.Context, userID, postID int64, scheduledAt string, targets []string) (*models.Post, error) {
	return nil, nil
}
func (w *recordingWorkflow) PublishNow(ctx context.Context, userID, postID int64, targets []string) (*models.Post, error) {
	return nil, nil
}
func (w *recordingWorkflow) EditDescription(ctx context.Context, userID, postID int64, text string) (*models.Post, error) {
	return nil, nil
}
func (w *recordingWorkflow) List(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	return nil, nil
}
func (w *recordingWorkflow) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	return nil, nil
}
func (w *recordingWorkflow) Remove(ctx context.Context, userID, postID int64) error { return nil }
func (w *recordingWorkflow) History(ctx context.Context, userID int64) ([]*models.PublishHistory, error) {
	return nil, nil
}

func TestPublishDuePushesEveryDuePost(t *testing.T) {
	repo := &duePostRepo{due: []*models.Post{{ID: 1}, {ID: 2}, {ID: 3}}}
	wf := &recordingWorkflow{errs: map[int64]error{}}

	NewPublishDueJob(repo, wf).PublishDue()

	assert.ElementsMatch(t, []int64{1, 2, 3}, wf.published)
}

func TestPublishDueToleratesConflicts(t *testing.T) {
	repo := &duePostRepo{due: []*models.Post{{ID: 1}, {ID: 2}}}
	wf := &recordingWorkflow{errs: map[int64]error{
		1: models.ErrConflict,
		2: errors.New("dispatch failed"),
	}}

	// Errors are logged per post; the tick itself never fails.
	NewPublishDueJob(repo, wf).PublishDue()

	assert.ElementsMatch(t, []int64{1, 2}, wf.published)
}

func TestPublishDueEmptyTick(t *testing.T) {
	wf := &recordingWorkflow{errs: map[int64]error{}}

	NewPublishDueJob(&duePostRepo{}, wf).PublishDue()

	assert.Empty(t, wf.published)
}
