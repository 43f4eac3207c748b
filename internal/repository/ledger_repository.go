package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/listforge/listforge/internal/models"
)

const uniqueViolation = "23505"

type LedgerRepository interface {
	GetBalance(ctx context.Context, userID int64) (int64, bool, error)
	CommitDebit(ctx context.Context, t *models.LedgerTransaction) (bool, error)
	ApplyCredit(ctx context.Context, e *models.CreditEvent) (bool, error)
	ListTransactions(ctx context.Context, userID int64) ([]*models.LedgerTransaction, error)
}

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetBalance(ctx context.Context, userID int64) (int64, bool, error) {
	var balance int64
	query := "SELECT balance FROM credit_accounts WHERE user_id = $1"
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		slog.Info(err.Error())
		return 0, false, err
	}
	return balance, true, nil
}

// CommitDebit inserts the ledger row and debits the balance in one
// transaction. A duplicate key means the debit already happened, so it
// returns (false, nil) and leaves the balance alone. It never lets the
// balance go negative.
func (r *ledgerRepository) CommitDebit(ctx context.Context, t *models.LedgerTransaction) (bool, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO ledger_transactions (user_id, post_id, action_kind, location_id, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, insert, t.UserID, t.PostID, t.ActionKind, t.LocationID, t.Amount).Scan(&t.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	debit := `
		UPDATE credit_accounts
		SET balance = balance - $1,
			updated_at = $2
		WHERE user_id = $3 AND balance >= $1
	`
	res, err := tx.ExecContext(ctx, debit, t.Amount, time.Now(), t.UserID)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, models.ErrInsufficientFunds
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// ApplyCredit adds coins, keyed by the external payment event id. A
// redelivered webhook finds its event row already present and is a no-op.
func (r *ledgerRepository) ApplyCredit(ctx context.Context, e *models.CreditEvent) (bool, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO credit_events (event_id, user_id, credits)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING event_id
	`
	var eventID string
	err = tx.QueryRowContext(ctx, insert, e.EventID, e.UserID, e.Credits).Scan(&eventID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	credit := `
		INSERT INTO credit_accounts (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = credit_accounts.balance + EXCLUDED.balance,
			updated_at = now()
	`
	if _, err := tx.ExecContext(ctx, credit, e.UserID, e.Credits); err != nil {
		slog.Info(err.Error())
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, userID int64) ([]*models.LedgerTransaction, error) {
	query := `
		SELECT id, user_id, post_id, action_kind, location_id, amount, created_at
		FROM ledger_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var txns []*models.LedgerTransaction
	for rows.Next() {
		var t models.LedgerTransaction
		err := rows.Scan(&t.ID, &t.UserID, &t.PostID, &t.ActionKind, &t.LocationID, &t.Amount, &t.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		txns = append(txns, &t)
	}
	return txns, rows.Err()
}
