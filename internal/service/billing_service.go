package service

import (
	"context"
	"fmt"
	"strings"

	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/repository"
	"github.com/listforge/listforge/internal/transfer"
)

// CreditGrant is what a verified payment event is worth; the caller hands
// it to the queue, and the worker applies it idempotently by event id.
type CreditGrant struct {
	EventID string `json:"event_id"`
	UserID  int64  `json:"user_id"`
	Credits int64  `json:"credits"`
}

type BillingService interface {
	HandleSubscription(ctx context.Context, payload *transfer.PaymentEvent) (*CreditGrant, error)
}

type billingService struct {
	cfg config.Config
	u   repository.UserRepository
	s   repository.SubscriptionRepository
}

func NewBillingService(cfg config.Config, u repository.UserRepository, s repository.SubscriptionRepository) BillingService {
	return &billingService{
		cfg: cfg,
		u:   u,
		s:   s,
	}
}

func (s *billingService) HandleSubscription(ctx context.Context, payload *transfer.PaymentEvent) (*CreditGrant, error) {
	switch payload.EventType {
	case "subscription.paid":
		customerEmail := payload.Object.Customer.Email

		user, isExist, err := s.u.GetByEmail(ctx, customerEmail)
		if err != nil {
			return nil, fmt.Errorf("fetching user by email failed: %w", err)
		}

		var userID int64
		if !isExist {
			// The coin account is created empty; the grant below is what
			// funds it, applied by the queue worker.
			userID, err = s.u.Create(ctx, &models.User{
				Email: customerEmail,
				Name:  payload.Object.Customer.Name,
			}, 0)
			if err != nil {
				return nil, err
			}
		} else {
			userID = user.ID
		}

		subscriptionInfo := &models.Subscription{
			UserID:              userID,
			SubscriptionID:      payload.Object.ID,
			PlanTier:            planTierFromProduct(payload.Object.Product.Name),
			SubscriptionEndDate: payload.Object.CurrentPeriodEndDate,
			Status:              payload.Object.Status,
		}
		if err := s.s.Upsert(ctx, subscriptionInfo); err != nil {
			return nil, err
		}

		return &CreditGrant{
			EventID: payload.ID,
			UserID:  userID,
			Credits: payload.Object.Product.Credits,
		}, nil
	}

	return nil, nil
}

func planTierFromProduct(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "business"):
		return models.PlanBusiness
	case strings.Contains(name, "pro"):
		return models.PlanPro
	case strings.Contains(name, "basic"):
		return models.PlanBasic
	default:
		return models.PlanFree
	}
}
