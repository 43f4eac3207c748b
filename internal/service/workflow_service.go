package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/h2non/filetype"
	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/repository"
	"github.com/listforge/listforge/pkg/utils"
)

const scheduleTimeLayout = "2006-01-02T15:04"

// WorkflowService is the single entry point for every post lifecycle
// action. The scheduler and the interactive API both go through it, so
// there is exactly one code path racing on a post, and the store's
// compare-and-set resolves who wins.
type WorkflowService interface {
	Generate(ctx context.Context, userID int64, prompt string, logo *multipart.FileHeader) (*models.Post, error)
	Approve(ctx context.Context, userID, postID int64) (*models.Post, error)
	Reject(ctx context.Context, userID, postID int64) (*models.Post, error)
	Schedule(ctx context.Context, userID, postID int64, scheduledAt string, targets []string) (*models.Post, error)
	PublishNow(ctx context.Context, userID, postID int64, targets []string) (*models.Post, error)
	PublishBySchedule(ctx context.Context, postID int64) error
	EditDescription(ctx context.Context, userID, postID int64, text string) (*models.Post, error)
	List(ctx context.Context, userID int64, status string) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
	History(ctx context.Context, userID int64) ([]*models.PublishHistory, error)
}

type workflowService struct {
	cfg      config.Config
	pr       repository.PostRepository
	sr       repository.SubscriptionRepository
	cr       repository.ConnectionRepository
	ph       repository.PublishHistoryRepository
	ledger   LedgerService
	dispatch DispatchService
	gen      GenerationService
}

func NewWorkflowService(
	cfg config.Config,
	pr repository.PostRepository,
	sr repository.SubscriptionRepository,
	cr repository.ConnectionRepository,
	ph repository.PublishHistoryRepository,
	ledger LedgerService,
	dispatch DispatchService,
	gen GenerationService) WorkflowService {
	return &workflowService{
		cfg:      cfg,
		pr:       pr,
		sr:       sr,
		cr:       cr,
		ph:       ph,
		ledger:   ledger,
		dispatch: dispatch,
		gen:      gen,
	}
}

func (s *workflowService) Generate(ctx context.Context, userID int64, prompt string, logo *multipart.FileHeader) (*models.Post, error) {
	if userID == 0 {
		return nil, models.ErrNotFound
	}
	if strings.TrimSpace(prompt) == "" {
		err := errors.New("prompt cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}

	var logoBytes []byte
	if logo != nil {
		var err error
		logoBytes, err = readLogo(logo)
		if err != nil {
			return nil, err
		}
	}

	if err := s.ledger.Reserve(ctx, userID, models.GenerationCost); err != nil {
		return nil, err
	}

	result, err := s.gen.Generate(ctx, prompt, logoBytes)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	post := models.Post{
		UserID:      userID,
		ArtifactURL: result.ArtifactURL,
		Description: result.Description,
		Status:      models.PostStatusPending,
	}
	postID, err := s.pr.Create(ctx, nil, &post)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	if err := s.ledger.CommitDebit(ctx, userID, postID, models.ActionGenerate, models.GenerationCost, ""); err != nil {
		return nil, fmt.Errorf("debiting generation cost: %w", err)
	}

	return s.pr.GetByID(ctx, postID)
}

func (s *workflowService) Approve(ctx context.Context, userID, postID int64) (*models.Post, error) {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	err = s.pr.CompareAndTransition(ctx, post.ID, models.PostStatusPending, models.PostStatusApproved, models.TransitionExtra{})
	if err != nil {
		return nil, err
	}

	return s.pr.GetByID(ctx, postID)
}

func (s *workflowService) Reject(ctx context.Context, userID, postID int64) (*models.Post, error) {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	err = s.pr.CompareAndTransition(ctx, post.ID, models.PostStatusPending, models.PostStatusRejected, models.TransitionExtra{})
	if err != nil {
		return nil, err
	}

	return s.pr.GetByID(ctx, postID)
}

// Schedule records when and where a post should go out. No payment happens
// here; coins are charged when the publish actually runs.
func (s *workflowService) Schedule(ctx context.Context, userID, postID int64, scheduledAt string, targets []string) (*models.Post, error) {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	// scheduledAt carries no zone, so it is read as UTC wall-clock time.
	// Clients must send UTC; the past-time check below compares instants.
	when, err := time.Parse(scheduleTimeLayout, scheduledAt)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduled time format: %w", err)
	}
	if when.Before(time.Now()) {
		return nil, models.ErrInvalidSchedule
	}
	if len(targets) == 0 {
		err := errors.New("no publish targets selected")
		slog.Info(err.Error())
		return nil, err
	}

	err = s.pr.CompareAndTransition(ctx, post.ID, models.PostStatusApproved, models.PostStatusScheduled,
		models.TransitionExtra{ScheduledAt: &when, Targets: targets})
	if err != nil {
		return nil, err
	}

	return s.postWithTargets(ctx, postID)
}

func (s *workflowService) PublishNow(ctx context.Context, userID, postID int64, targets []string) (*models.Post, error) {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	switch post.Status {
	case models.PostStatusApproved, models.PostStatusScheduled, models.PostStatusPosted:
	default:
		return nil, models.ErrConflict
	}

	return s.publish(ctx, post, targets)
}

// PublishBySchedule is the scheduler's entry. It re-reads the post so a
// tick that lost a race against reject or publish-now simply finds nothing
// left to do.
func (s *workflowService) PublishBySchedule(ctx context.Context, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.Status != models.PostStatusScheduled {
		return nil
	}

	targets, err := s.pr.GetTargets(ctx, postID)
	if err != nil {
		return err
	}

	_, err = s.publish(ctx, post, targets)
	return err
}

// publish runs the composite, payment-bearing transition:
// reserve -> dispatch -> commit debits -> compare-and-set to posted.
// Failures before dispatch leave everything untouched; a conflict after a
// successful dispatch leaves the debits standing, because the coins were
// genuinely spent publishing.
func (s *workflowService) publish(ctx context.Context, post *models.Post, targets []string) (*models.Post, error) {
	if len(targets) == 0 {
		err := errors.New("no publish targets selected")
		slog.Info(err.Error())
		return nil, err
	}

	perLocation := models.PerLocationCost(s.planTier(ctx, post.UserID))
	total := perLocation * int64(len(targets))

	if err := s.ledger.Reserve(ctx, post.UserID, total); err != nil {
		return nil, err
	}

	accessToken, err := s.connectionToken(ctx, post.UserID)
	if err != nil {
		return nil, err
	}

	result, err := s.dispatch.Dispatch(ctx, post, targets, accessToken)
	if err != nil {
		s.recordHistory(ctx, post, targets, "", err.Error())
		return nil, err
	}

	var commitErr error
	for _, locationID := range targets {
		err := s.ledger.CommitDebit(ctx, post.UserID, post.ID, models.ActionPublishLocation, perLocation, locationID)
		if err != nil && commitErr == nil {
			commitErr = err
		}
	}
	if commitErr != nil {
		// Dispatch already happened; the history row keeps the external
		// ref so the accounting can be reconciled.
		s.recordHistory(ctx, post, targets, result.ExternalRef, "ledger commit failed: "+commitErr.Error())
		return nil, fmt.Errorf("published but debit failed: %w", commitErr)
	}

	err = s.pr.CompareAndTransition(ctx, post.ID, post.Status, models.PostStatusPosted,
		models.TransitionExtra{Targets: targets})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			slog.Warn("post changed state during publish; debits stand",
				"post_id", post.ID, "external_ref", result.ExternalRef)
			s.recordHistory(ctx, post, targets, result.ExternalRef,
				"status conflict after successful dispatch; debits stand")
			return nil, fmt.Errorf("published and charged, but post state changed concurrently: %w", models.ErrConflict)
		}
		return nil, err
	}

	s.recordHistory(ctx, post, targets, result.ExternalRef, "")

	return s.postWithTargets(ctx, post.ID)
}

func (s *workflowService) EditDescription(ctx context.Context, userID, postID int64, text string) (*models.Post, error) {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.pr.UpdateDescription(ctx, post.ID, text); err != nil {
		return nil, err
	}

	return s.pr.GetByID(ctx, postID)
}

func (s *workflowService) List(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("Error listing posts")
	}
	return posts, nil
}

func (s *workflowService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	_, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	return s.postWithTargets(ctx, postID)
}

func (s *workflowService) Remove(ctx context.Context, userID, postID int64) error {
	_, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return err
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("Error removing post")
	}
	return nil
}

func (s *workflowService) History(ctx context.Context, userID int64) ([]*models.PublishHistory, error) {
	return s.ph.GetByUserID(ctx, userID)
}

func (s *workflowService) ownedPost(ctx context.Context, postID, userID int64) (*models.Post, error) {
	if userID == 0 || postID == 0 {
		return nil, models.ErrNotFound
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		return nil, models.ErrNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.ErrNotFound
	}
	return post, nil
}

func (s *workflowService) postWithTargets(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil || post == nil {
		return post, err
	}
	targets, err := s.pr.GetTargets(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Targets = targets
	return post, nil
}

func (s *workflowService) planTier(ctx context.Context, userID int64) string {
	sub, exists, err := s.sr.GetByUserID(ctx, userID)
	if err != nil || !exists {
		return models.PlanFree
	}
	if sub.Status != "active" || sub.SubscriptionEndDate.Before(time.Now()) {
		return models.PlanFree
	}
	return sub.PlanTier
}

func (s *workflowService) connectionToken(ctx context.Context, userID int64) (string, error) {
	conn, err := s.cr.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if conn == nil {
		return "", fmt.Errorf("listing account not connected: %w", models.ErrNotFound)
	}
	return utils.Decrypt(conn.AccessToken, []byte(s.cfg.SecretKey))
}

func (s *workflowService) recordHistory(ctx context.Context, post *models.Post, targets []string, externalRef, errMsg string) {
	_, err := s.ph.Create(ctx, &models.PublishHistory{
		UserID:       post.UserID,
		PostID:       post.ID,
		Targets:      strings.Join(targets, ","),
		ExternalRef:  externalRef,
		ErrorMessage: errMsg,
	})
	if err != nil {
		slog.Error("saving publish history", "post_id", post.ID, "err", err)
	}
}

func readLogo(logo *multipart.FileHeader) ([]byte, error) {
	file, err := logo.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening logo: %w", err)
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("error reading logo: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil {
		return nil, fmt.Errorf("unsupported logo type: %w", err)
	}
	switch fileType.Extension {
	case "png", "jpg", "jpeg":
	default:
		return nil, fmt.Errorf("logo type %s is not allowed", fileType.Extension)
	}

	return fileBytes, nil
}
