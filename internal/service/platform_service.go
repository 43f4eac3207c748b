package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/repository"
	"github.com/listforge/listforge/internal/transfer"
	"github.com/listforge/listforge/pkg/utils"
)

type PlatformService interface {
	ConnectCallback(ctx context.Context, code string, userID int64) error
	RefreshListingToken(ctx context.Context, conn *models.ListingConnection) error
	GetConnection(ctx context.Context, userID int64) (*models.ListingConnection, error)
	DeleteConnection(ctx context.Context, userID, connectionID int64) error
}

type platformService struct {
	cfg config.Config
	cr  repository.ConnectionRepository
}

func NewPlatformService(cfg config.Config, cr repository.ConnectionRepository) PlatformService {
	return &platformService{
		cfg: cfg,
		cr:  cr,
	}
}

// tokenExpiry converts the platform's relative expires_in into the absolute
// instant the refresh job queries on.
func tokenExpiry(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

func (s *platformService) ConnectCallback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}

	tokenResponse, err := s.exchangeCodeForToken(code)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedRefreshToken, err := utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	connectionInfo := &models.ListingConnection{
		UserID:         userID,
		AccountID:      tokenResponse.AccountID,
		AccountName:    tokenResponse.AccountName,
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		TokenExpiresAt: tokenExpiry(tokenResponse.ExpiresIn),
	}

	_, err = s.cr.Create(ctx, nil, connectionInfo)
	if err != nil {
		return err
	}

	return nil
}

func (s *platformService) exchangeCodeForToken(code string) (*transfer.ListingTokenResponse, error) {
	data := url.Values{}
	data.Add("client_id", s.cfg.ListingClientID)
	data.Add("client_secret", s.cfg.ListingClientSecret)
	data.Add("code", code)
	data.Add("grant_type", "authorization_code")
	data.Add("redirect_uri", s.cfg.ListingRedirectURI)

	resp, err := http.Post(
		s.cfg.ListingAPIURL+"/oauth/token",
		"application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("listing token endpoint returned non-200 status")
		return nil, errors.New("listing token endpoint returned non-200 status")
	}

	var tokenResponse transfer.ListingTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokenResponse, nil
}

func (s *platformService) RefreshListingToken(ctx context.Context, conn *models.ListingConnection) error {
	decryptedRefreshToken, err := utils.Decrypt(conn.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	data := url.Values{}
	data.Set("client_id", s.cfg.ListingClientID)
	data.Set("client_secret", s.cfg.ListingClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", decryptedRefreshToken)

	resp, err := http.Post(
		s.cfg.ListingAPIURL+"/oauth/token",
		"application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("listing token refresh returned non-200 status")
		return errors.New("listing token refresh returned non-200 status")
	}

	var tokenResponse transfer.ListingTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedRefreshToken, err := utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	updated := models.ListingConnection{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		TokenExpiresAt: tokenExpiry(tokenResponse.ExpiresIn),
	}

	return s.cr.SetToken(ctx, conn.UserID, &updated)
}

func (s *platformService) GetConnection(ctx context.Context, userID int64) (*models.ListingConnection, error) {
	return s.cr.GetByUserID(ctx, userID)
}

func (s *platformService) DeleteConnection(ctx context.Context, userID, connectionID int64) error {
	conn, err := s.cr.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if conn == nil || conn.ID != connectionID {
		return models.ErrNotFound
	}

	return s.cr.Remove(ctx, connectionID)
}
