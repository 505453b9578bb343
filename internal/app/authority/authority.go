// Package authority resolves caller roles and guards role-gated operations.
//
// Role resolution order:
//  1. An explicit assignment made by an admin (or the bootstrap grant)
//  2. user, when the identity has a profile
//  3. guest otherwise
package authority

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// Service answers role questions for the other modules.
type Service struct {
	roles    domain.RoleStore
	profiles domain.ProfileStore
	log      *slog.Logger
	now      func() time.Time // injectable clock
}

// New creates the authority service.
func New(roles domain.RoleStore, profiles domain.ProfileStore, log *slog.Logger) *Service {
	return &Service{
		roles:    roles,
		profiles: profiles,
		log:      log.With("component", "authority"),
		now:      time.Now,
	}
}

// WithClock replaces the clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RoleOf returns the effective role of id. The anonymous identity is
// always a guest.
func (s *Service) RoleOf(ctx context.Context, id domain.Identity) (domain.Role, error) {
	if id == "" {
		return domain.RoleGuest, nil
	}
	role, ok, err := s.roles.GetRole(ctx, id)
	if err != nil {
		return "", fmt.Errorf("role of %s: %w", id, err)
	}
	if ok {
		return role, nil
	}
	p, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		return "", fmt.Errorf("role of %s: %w", id, err)
	}
	if p != nil {
		return domain.RoleUser, nil
	}
	return domain.RoleGuest, nil
}

// IsAdmin reports whether id currently resolves to admin.
func (s *Service) IsAdmin(ctx context.Context, id domain.Identity) (bool, error) {
	role, err := s.RoleOf(ctx, id)
	if err != nil {
		return false, err
	}
	return role == domain.RoleAdmin, nil
}

// RequireAdmin fails with ErrUnauthenticated for anonymous callers and
// ErrUnauthorized for callers that are not admin.
func (s *Service) RequireAdmin(ctx context.Context, caller domain.Identity) error {
	if caller == "" {
		return domain.ErrUnauthenticated
	}
	ok, err := s.IsAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

// RequireProfile returns the profile of id or ErrProfileRequired.
func (s *Service) RequireProfile(ctx context.Context, id domain.Identity) (*domain.Profile, error) {
	if id == "" {
		return nil, domain.ErrUnauthenticated
	}
	p, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProfileRequired
	}
	return p, nil
}

// AssignRole sets target's role. Only admins may assign; no profile is
// created for target.
func (s *Service) AssignRole(ctx context.Context, caller, target domain.Identity, role domain.Role) error {
	if err := s.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}
	if target == "" {
		return fmt.Errorf("%w: target identity is empty", domain.ErrInvalidRole)
	}
	if err := s.roles.SetRole(ctx, target, role, caller, s.now()); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	s.log.Info("role assigned", "target", target, "role", role, "by", caller)
	return nil
}

// Bootstrap grants admin to id while the system has no admin. Once an
// admin exists it fails with ErrUnauthorized, except for that admin.
func (s *Service) Bootstrap(ctx context.Context, id domain.Identity) error {
	if id == "" {
		return domain.ErrUnauthenticated
	}
	granted, err := s.roles.BootstrapAdmin(ctx, id, s.now())
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if granted {
		s.log.Info("bootstrap admin granted", "identity", id)
		return nil
	}
	ok, err := s.IsAdmin(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}
