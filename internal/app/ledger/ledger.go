// Package ledger records ad watches and credits their rewards.
//
// A claim is linearizable per (identity, ad, day): the identity's key lock
// is held across the store transaction that checks for an existing event,
// inserts the new one and credits the balance. The day is the UTC date of
// the service clock at claim time.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/watchearn-network/watchearn/internal/app/authority"
	"github.com/watchearn-network/watchearn/internal/domain"
	"github.com/watchearn-network/watchearn/internal/infra/keylock"
	"github.com/watchearn-network/watchearn/internal/infra/observability"
)

// Store is the persistence the ledger needs.
type Store interface {
	domain.AdStore
	domain.WatchStore
	domain.JournalStore
}

// Service handles reward claims.
type Service struct {
	store Store
	auth  *authority.Service
	locks *keylock.Locker
	log   *slog.Logger
	now   func() time.Time // injectable clock
}

// New creates the ledger service. locks must be shared with every other
// service that mutates balances.
func New(store Store, auth *authority.Service, locks *keylock.Locker, log *slog.Logger) *Service {
	return &Service{
		store: store,
		auth:  auth,
		locks: locks,
		log:   log.With("component", "ledger"),
		now:   time.Now,
	}
}

// WithClock replaces the clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Claim credits the reward of adID to id, at most once per ad per day.
func (s *Service) Claim(ctx context.Context, id domain.Identity, adID int64) (ev domain.WatchEvent, err error) {
	defer func() {
		observability.ClaimsTotal.WithLabelValues(observability.Outcome(err)).Inc()
	}()

	if _, err := s.auth.RequireProfile(ctx, id); err != nil {
		return domain.WatchEvent{}, err
	}
	ad, err := s.store.GetAd(ctx, adID)
	if err != nil {
		return domain.WatchEvent{}, fmt.Errorf("claim: %w", err)
	}
	if ad == nil {
		return domain.WatchEvent{}, domain.ErrAdNotFound
	}

	unlock, err := s.locks.Lock(ctx, string(id))
	if err != nil {
		return domain.WatchEvent{}, err
	}
	defer unlock()

	ev, balance, err := s.store.RecordWatch(ctx, id, adID, s.now())
	if err != nil {
		return domain.WatchEvent{}, err
	}

	observability.RewardsCredited.Add(float64(ev.Reward))
	s.log.Info("reward claimed",
		"identity", id, "ad_id", adID, "day", ev.Day,
		"reward", ev.Reward, "balance", balance)
	return ev, nil
}

// Watches returns every watch event recorded for id.
func (s *Service) Watches(ctx context.Context, id domain.Identity) ([]domain.WatchEvent, error) {
	if id == "" {
		return []domain.WatchEvent{}, nil
	}
	return s.store.ListWatches(ctx, id)
}

// Journal returns the balance journal for id, oldest first.
func (s *Service) Journal(ctx context.Context, id domain.Identity) ([]domain.LedgerEntry, error) {
	if id == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.ListEntries(ctx, id)
}
