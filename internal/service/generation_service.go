package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const generationTimeout = 2 * time.Minute

type GenerationService interface {
	Generate(ctx context.Context, prompt string, logo []byte) (*transfer.GenerationResult, error)
}

type generationService struct {
	cfg      config.Config
	client   *http.Client
	uploader ArtifactUploader
}

func NewGenerationService(cfg config.Config, uploader ArtifactUploader) GenerationService {
	return &generationService{
		cfg:      cfg,
		client:   &http.Client{Timeout: generationTimeout},
		uploader: uploader,
	}
}

// Generate asks the AI endpoint for an image and caption, stores the image
// under a fresh key, and returns the stable artifact URL plus description.
func (s *generationService) Generate(ctx context.Context, prompt string, logo []byte) (*transfer.GenerationResult, error) {
	reqBody := transfer.GenerationAPIRequest{Prompt: prompt}
	if len(logo) > 0 {
		reqBody.Logo = base64.StdEncoding.EncodeToString(logo)
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GenerationAPIURL+"/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.GenerationAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info(fmt.Sprintf("generation endpoint returned status %d", resp.StatusCode))
		return nil, fmt.Errorf("generation endpoint returned status %d", resp.StatusCode)
	}

	var result transfer.GenerationAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}

	imageBytes, err := base64.StdEncoding.DecodeString(result.Image)
	if err != nil {
		return nil, fmt.Errorf("decoding generated image: %w", err)
	}

	key, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	if err := s.uploader.Upload(ctx, key, imageBytes, "image/png"); err != nil {
		return nil, fmt.Errorf("storing artifact: %w", err)
	}

	return &transfer.GenerationResult{
		ArtifactURL: fmt.Sprintf("%s/%s", s.cfg.R2.PublicURL, key),
		Description: result.Description,
	}, nil
}
