package service

import (
	"context"
	"fmt"
	"time"

	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/repository"
	"github.com/listforge/listforge/internal/transfer"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id int64) (*transfer.UserInfo, error)
	RemoveUser(ctx context.Context, userID int64) error
}

type userService struct {
	u      repository.UserRepository
	s      repository.SubscriptionRepository
	ledger LedgerService
}

func NewUserService(u repository.UserRepository, s repository.SubscriptionRepository, ledger LedgerService) UserService {
	return &userService{
		u:      u,
		s:      s,
		ledger: ledger,
	}
}

// GetUserInfo bundles the profile with the coin balance and effective plan
// tier, which is what the dashboard header renders.
func (s *userService) GetUserInfo(ctx context.Context, id int64) (*transfer.UserInfo, error) {
	user, isExist, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", id, err)
	}
	if !isExist {
		return nil, models.ErrNotFound
	}

	balance, err := s.ledger.Balance(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading balance for user %d: %w", id, err)
	}

	planTier := models.PlanFree
	sub, exists, err := s.s.GetByUserID(ctx, id)
	if err == nil && exists && sub.Status == "active" && sub.SubscriptionEndDate.After(time.Now()) {
		planTier = sub.PlanTier
	}

	return &transfer.UserInfo{
		User:     user,
		Balance:  balance,
		PlanTier: planTier,
	}, nil
}

func (s *userService) RemoveUser(ctx context.Context, userID int64) error {
	return s.u.Remove(ctx, userID)
}
