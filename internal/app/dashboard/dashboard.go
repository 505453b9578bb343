// Package dashboard derives per-identity summary stats. Nothing here is
// cached; every call reads the profile and watch events afresh.
package dashboard

import (
	"context"
	"time"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// Service computes dashboard stats.
type Service struct {
	store domain.StatsStore
	now   func() time.Time // injectable clock
}

// New creates the dashboard service.
func New(store domain.StatsStore) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock replaces the clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Stats returns id's dashboard. "Today" is the current UTC day.
func (s *Service) Stats(ctx context.Context, id domain.Identity) (domain.DashboardStats, error) {
	if id == "" {
		return domain.DashboardStats{}, nil
	}
	return s.store.DashboardStats(ctx, id, domain.DayKey(s.now()))
}
