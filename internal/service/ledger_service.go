package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/repository"
)

type LedgerService interface {
	Reserve(ctx context.Context, userID, amount int64) error
	CommitDebit(ctx context.Context, userID, postID int64, actionKind string, amount int64, locationID string) error
	ApplyCredit(ctx context.Context, eventID string, userID, credits int64) (bool, error)
	Balance(ctx context.Context, userID int64) (int64, error)
	Transactions(ctx context.Context, userID int64) ([]*models.LedgerTransaction, error)
}

type ledgerService struct {
	lr repository.LedgerRepository
}

func NewLedgerService(lr repository.LedgerRepository) LedgerService {
	return &ledgerService{lr: lr}
}

// Reserve is a precondition check, not a hold: nothing is debited until
// CommitDebit. The orchestrator is the only writer path per action, so the
// short window between check and commit has no competing mutator, and the
// commit itself still refuses to take the balance negative.
func (s *ledgerService) Reserve(ctx context.Context, userID, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("invalid reserve amount %d", amount)
	}

	balance, exists, err := s.lr.GetBalance(ctx, userID)
	if err != nil {
		return fmt.Errorf("checking balance: %w", err)
	}
	if !exists || balance < amount {
		return models.ErrInsufficientFunds
	}
	return nil
}

// CommitDebit applies an at-most-once debit keyed by (postID, actionKind,
// locationID). A repeat of an already-applied key is absorbed here and is
// not an error for the caller.
func (s *ledgerService) CommitDebit(ctx context.Context, userID, postID int64, actionKind string, amount int64, locationID string) error {
	applied, err := s.lr.CommitDebit(ctx, &models.LedgerTransaction{
		UserID:     userID,
		PostID:     postID,
		ActionKind: actionKind,
		LocationID: locationID,
		Amount:     amount,
	})
	if err != nil {
		return err
	}
	if !applied {
		slog.Info("ledger debit already applied",
			"post_id", postID, "action", actionKind, "location", locationID)
	}
	return nil
}

func (s *ledgerService) ApplyCredit(ctx context.Context, eventID string, userID, credits int64) (bool, error) {
	if credits <= 0 {
		return false, fmt.Errorf("invalid credit amount %d", credits)
	}
	return s.lr.ApplyCredit(ctx, &models.CreditEvent{
		EventID: eventID,
		UserID:  userID,
		Credits: credits,
	})
}

func (s *ledgerService) Balance(ctx context.Context, userID int64) (int64, error) {
	balance, _, err := s.lr.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *ledgerService) Transactions(ctx context.Context, userID int64) ([]*models.LedgerTransaction, error) {
	return s.lr.ListTransactions(ctx, userID)
}
