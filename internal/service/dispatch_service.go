package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/transfer"
)

const dispatchTimeout = 30 * time.Second

type DispatchService interface {
	Dispatch(ctx context.Context, post *models.Post, targets []string, accessToken string) (*transfer.PublishResult, error)
}

type dispatchService struct {
	cfg    config.Config
	client *http.Client
}

func NewDispatchService(cfg config.Config) DispatchService {
	return &dispatchService{
		cfg:    cfg,
		client: &http.Client{Timeout: dispatchTimeout},
	}
}

// Dispatch performs exactly one outbound call. The listing platform accepts
// no idempotency key, so this never retries on its own; whether to try
// again is the caller's call, and only a human makes it for retryable
// failures.
func (s *dispatchService) Dispatch(ctx context.Context, post *models.Post, targets []string, accessToken string) (*transfer.PublishResult, error) {
	body := transfer.ListingPublishRequest{
		Locations:   targets,
		MediaURL:    post.ArtifactURL,
		Description: post.Description,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &models.PublishError{Retryable: false, Detail: fmt.Sprintf("encoding payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.ListingAPIURL+"/v1/listings/publish", bytes.NewReader(payload))
	if err != nil {
		return nil, &models.PublishError{Retryable: false, Detail: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		// Network errors and timeouts are transient from our side; the
		// outcome of the remote call is unknown.
		slog.Info(err.Error())
		return nil, &models.PublishError{Retryable: true, Detail: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		detail := readErrorDetail(resp.Body, resp.StatusCode)
		return nil, &models.PublishError{Retryable: true, Detail: detail}
	default:
		detail := readErrorDetail(resp.Body, resp.StatusCode)
		return nil, &models.PublishError{Retryable: false, Detail: detail}
	}

	var result transfer.ListingPublishResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, &models.PublishError{Retryable: false, Detail: fmt.Sprintf("decoding response: %v", err)}
	}

	return &transfer.PublishResult{ExternalRef: result.Ref}, nil
}

func readErrorDetail(body io.Reader, statusCode int) string {
	b, _ := io.ReadAll(io.LimitReader(body, 512))
	if len(b) == 0 {
		return fmt.Sprintf("listing platform returned status %d", statusCode)
	}
	return fmt.Sprintf("listing platform returned status %d: %s", statusCode, string(b))
}
