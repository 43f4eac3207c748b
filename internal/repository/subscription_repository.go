package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/listforge/listforge/internal/models"
)

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error)
	Upsert(ctx context.Context, subscription *models.Subscription) error
}

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	var subscription models.Subscription
	query := "SELECT id, user_id, subscription_id, plan_tier, subscription_end_date, status FROM subscriptions WHERE user_id = $1"
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&subscription.ID, &subscription.UserID,
		&subscription.SubscriptionID, &subscription.PlanTier, &subscription.SubscriptionEndDate, &subscription.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &subscription, true, nil
}

func (r *subscriptionRepository) Upsert(ctx context.Context, subscription *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, subscription_id, plan_tier, subscription_end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET subscription_id = EXCLUDED.subscription_id,
			plan_tier = EXCLUDED.plan_tier,
			subscription_end_date = EXCLUDED.subscription_end_date,
			status = EXCLUDED.status,
			updated_at = $6
	`
	_, err := r.db.ExecContext(ctx, query, subscription.UserID, subscription.SubscriptionID,
		subscription.PlanTier, subscription.SubscriptionEndDate, subscription.Status, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
