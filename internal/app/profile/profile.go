// Package profile registers identities and serves their profiles.
// Balances are owned by the ledger and withdrawal packages and are never
// written here.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/watchearn-network/watchearn/internal/app/authority"
	"github.com/watchearn-network/watchearn/internal/domain"
)

// Service manages profiles.
type Service struct {
	store domain.ProfileStore
	auth  *authority.Service
	log   *slog.Logger
	now   func() time.Time // injectable clock
}

// New creates the profile service.
func New(store domain.ProfileStore, auth *authority.Service, log *slog.Logger) *Service {
	return &Service{
		store: store,
		auth:  auth,
		log:   log.With("component", "profile"),
		now:   time.Now,
	}
}

// WithClock replaces the clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create registers a profile for id with a zero balance.
func (s *Service) Create(ctx context.Context, id domain.Identity, username, email string) (domain.Profile, error) {
	if id == "" {
		return domain.Profile{}, domain.ErrUnauthenticated
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Profile{}, domain.ErrInvalidProfile
	}

	p := domain.Profile{
		Identity:         id,
		Username:         username,
		Email:            strings.TrimSpace(email),
		Balance:          0,
		RegistrationTime: s.now().UTC(),
	}
	if err := s.store.InsertProfile(ctx, p); err != nil {
		return domain.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	s.log.Info("profile created", "identity", id, "username", username)
	return p, nil
}

// Get returns the profile of id, or nil if it has none.
func (s *Service) Get(ctx context.Context, id domain.Identity) (*domain.Profile, error) {
	if id == "" {
		return nil, nil
	}
	return s.store.GetProfile(ctx, id)
}

// GetFor returns target's profile to caller. Callers may read their own
// profile; anyone else's requires admin.
func (s *Service) GetFor(ctx context.Context, caller, target domain.Identity) (*domain.Profile, error) {
	if caller == "" {
		return nil, domain.ErrUnauthenticated
	}
	if caller != target {
		if err := s.auth.RequireAdmin(ctx, caller); err != nil {
			return nil, err
		}
	}
	return s.store.GetProfile(ctx, target)
}
