package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/repository"
	"github.com/listforge/listforge/internal/service"
)

type TokenRefreshJob struct {
	cr repository.ConnectionRepository
	ps service.PlatformService
}

func NewTokenRefreshJob(cr repository.ConnectionRepository, ps service.PlatformService) *TokenRefreshJob {
	return &TokenRefreshJob{
		cr: cr,
		ps: ps,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	conns, err := c.cr.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, conn := range conns {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(conn *models.ListingConnection) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.ps.RefreshListingToken(ctx, conn); err != nil {
				slog.Info("Unable to refresh listing token", "user_id", conn.UserID)
			}
		}(conn)
	}

	wg.Wait()
}
