package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPost() *models.Post {
	return &models.Post{
		ID:          7,
		UserID:      1,
		ArtifactURL: "https://cdn.example.com/abc",
		Description: "A cozy two bedroom",
		Status:      models.PostStatusApproved,
	}
}

func TestDispatchSuccess(t *testing.T) {
	var gotAuth string
	var gotBody transfer.ListingPublishRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(transfer.ListingPublishResponse{Ref: "ext-42"})
	}))
	defer server.Close()

	svc := NewDispatchService(config.Config{ListingAPIURL: server.URL})

	result, err := svc.Dispatch(context.Background(), testPost(), []string{"loc-a", "loc-b"}, "token-1")
	require.NoError(t, err)

	assert.Equal(t, "ext-42", result.ExternalRef)
	assert.Equal(t, "Bearer token-1", gotAuth)
	assert.Equal(t, []string{"loc-a", "loc-b"}, gotBody.Locations)
	assert.Equal(t, "https://cdn.example.com/abc", gotBody.MediaURL)
}

func TestDispatchServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewDispatchService(config.Config{ListingAPIURL: server.URL})

	_, err := svc.Dispatch(context.Background(), testPost(), []string{"loc-a"}, "token-1")

	var pubErr *models.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.True(t, pubErr.Retryable)
	assert.Contains(t, pubErr.Detail, "502")
}

func TestDispatchRateLimitIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewDispatchService(config.Config{ListingAPIURL: server.URL})

	_, err := svc.Dispatch(context.Background(), testPost(), []string{"loc-a"}, "token-1")

	var pubErr *models.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.True(t, pubErr.Retryable)
}

func TestDispatchClientErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown location", http.StatusBadRequest)
	}))
	defer server.Close()

	svc := NewDispatchService(config.Config{ListingAPIURL: server.URL})

	_, err := svc.Dispatch(context.Background(), testPost(), []string{"loc-a"}, "token-1")

	var pubErr *models.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.False(t, pubErr.Retryable)
	assert.Contains(t, pubErr.Detail, "unknown location")
}

func TestDispatchNetworkErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	svc := NewDispatchService(config.Config{ListingAPIURL: server.URL})

	_, err := svc.Dispatch(context.Background(), testPost(), []string{"loc-a"}, "token-1")

	var pubErr *models.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.True(t, pubErr.Retryable)
}

func TestDispatchCallsOnce(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewDispatchService(config.Config{ListingAPIURL: server.URL})

	_, err := svc.Dispatch(context.Background(), testPost(), []string{"loc-a"}, "token-1")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
