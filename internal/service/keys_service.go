package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/repository"
	"github.com/listforge/listforge/pkg/utils"
)

type ApiKeyService interface {
	Create(ctx context.Context, userID int64) (*models.ApiKey, error)
	List(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	GetUserID(ctx context.Context, apiKey string) (int64, error)
	RemoveAPIKey(ctx context.Context, userID, keyID int64) error
}

type apiKeyService struct {
	r repository.ApiKeyRepository
}

func NewApiKeyService(r repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{r: r}
}

// Create mints a fresh key and returns it; this response is the only place
// a caller sees the id and key together right after minting.
func (s *apiKeyService) Create(ctx context.Context, userID int64) (*models.ApiKey, error) {
	key, err := utils.GenerateRandomKey(32)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	apiKey := &models.ApiKey{
		UserID: userID,
		Key:    key,
	}
	id, err := s.r.Create(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("minting API key: %w", err)
	}
	apiKey.ID = id

	return apiKey, nil
}

func (s *apiKeyService) List(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	keys, err := s.r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing API keys: %w", err)
	}
	return keys, nil
}

func (s *apiKeyService) GetUserID(ctx context.Context, apiKey string) (int64, error) {
	userID, exists, err := s.r.GetByKey(ctx, apiKey)
	if err != nil {
		return 0, err
	}
	if !exists {
		err = errors.New("unknown API key")
		slog.Info(err.Error())
		return 0, err
	}
	return *userID, nil
}

func (s *apiKeyService) RemoveAPIKey(ctx context.Context, userID, keyID int64) error {
	isOwner, err := s.r.CheckByUserID(ctx, keyID, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		return models.ErrNotFound
	}

	return s.r.Remove(ctx, keyID)
}
