package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/ithesk/qraxer/internal/qraxer/store"
)

// Sweeper drops expired entries from an in-memory store.
type Sweeper interface {
	Sweep() int
}

// HousekeepingService periodically deletes expired refresh tokens and
// sweeps in-memory credential stores.
type HousekeepingService struct {
	Store    store.Store
	Sweepers []Sweeper
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to one hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration, sweepers ...Sweeper) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    store,
		Sweepers: sweepers,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs cleanup now and then on every tick. Call Stop to end it.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one pass. Each step is independent.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	n, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, s.Now())
	if err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", "error", err)
	} else {
		s.Logger.Debug("deleted expired refresh tokens", "count", n)
	}

	swept := 0
	for _, sw := range s.Sweepers {
		swept += sw.Sweep()
	}
	s.Logger.Info("housekeeping cleanup completed", "refresh_tokens", n, "swept", swept)
}
