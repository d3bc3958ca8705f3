package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/pulse/internal/pulse/store"
)

// HousekeepingService periodically removes invitations that expired without
// being accepted, together with the inactive users they created.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to one hour.
func NewHousekeepingService(s store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    s,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run once on startup
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

// Cleanup deletes every pending invitation whose expiry has passed and
// returns how many were removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	n, err := s.Store.Users().DeleteExpiredInvitations(ctx, time.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to delete expired invitations", slog.Any("error", err))
		return 0
	}
	if n > 0 {
		s.Logger.Info("deleted expired invitations", slog.Int64("count", n))
	}
	return n
}
