// Package withdrawal implements the withdrawal request workflow.
//
// Lifecycle: pending -> approved | rejected, exactly once.
//
// A request reserves its amount against the available balance (balance
// minus every pending request) but does not debit it. Approval debits the
// owner's balance in the same transaction that flips the status, and only
// if the balance still covers the amount.
package withdrawal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/watchearn-network/watchearn/internal/app/authority"
	"github.com/watchearn-network/watchearn/internal/domain"
	"github.com/watchearn-network/watchearn/internal/infra/keylock"
	"github.com/watchearn-network/watchearn/internal/infra/observability"
)

// Config holds withdrawal policy.
type Config struct {
	MinWithdrawal int64 `toml:"min_withdrawal"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{MinWithdrawal: 500}
}

// Service runs the workflow.
type Service struct {
	cfg   Config
	store domain.WithdrawalStore
	auth  *authority.Service
	locks *keylock.Locker
	log   *slog.Logger
	now   func() time.Time // injectable clock
	newID func() string
}

// New creates the withdrawal service. locks must be the same Locker the
// ledger uses.
func New(cfg Config, store domain.WithdrawalStore, auth *authority.Service, locks *keylock.Locker, log *slog.Logger) *Service {
	return &Service{
		cfg:   cfg,
		store: store,
		auth:  auth,
		locks: locks,
		log:   log.With("component", "withdrawal"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock replaces the clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// MinWithdrawal is the smallest amount Request accepts.
func (s *Service) MinWithdrawal() int64 { return s.cfg.MinWithdrawal }

// Request files a pending withdrawal of amount for id.
func (s *Service) Request(ctx context.Context, id domain.Identity, amount int64) (req domain.WithdrawalRequest, err error) {
	defer func() {
		observability.WithdrawalRequests.WithLabelValues(observability.Outcome(err)).Inc()
	}()

	if amount <= 0 {
		return domain.WithdrawalRequest{}, domain.ErrInvalidAmount
	}
	if amount < s.cfg.MinWithdrawal {
		return domain.WithdrawalRequest{}, fmt.Errorf("%w: %d < %d", domain.ErrBelowMinimum, amount, s.cfg.MinWithdrawal)
	}
	if _, err := s.auth.RequireProfile(ctx, id); err != nil {
		return domain.WithdrawalRequest{}, err
	}

	unlock, err := s.locks.Lock(ctx, string(id))
	if err != nil {
		return domain.WithdrawalRequest{}, err
	}
	defer unlock()

	req = domain.WithdrawalRequest{
		ID:          s.newID(),
		Identity:    id,
		Amount:      amount,
		Status:      domain.WithdrawalPending,
		RequestTime: s.now().UTC(),
	}
	if err := s.store.InsertWithdrawal(ctx, req); err != nil {
		return domain.WithdrawalRequest{}, err
	}

	s.log.Info("withdrawal requested", "id", req.ID, "identity", id, "amount", amount)
	return req, nil
}

// Approve settles a pending request as approved and debits the owner.
func (s *Service) Approve(ctx context.Context, caller domain.Identity, requestID string) (domain.WithdrawalRequest, error) {
	return s.decide(ctx, caller, requestID, domain.WithdrawalApproved)
}

// Reject settles a pending request as rejected. The balance is untouched.
func (s *Service) Reject(ctx context.Context, caller domain.Identity, requestID string) (domain.WithdrawalRequest, error) {
	return s.decide(ctx, caller, requestID, domain.WithdrawalRejected)
}

func (s *Service) decide(ctx context.Context, caller domain.Identity, requestID string, status domain.WithdrawalStatus) (settled domain.WithdrawalRequest, err error) {
	defer func() {
		observability.WithdrawalDecisions.WithLabelValues(string(status), observability.Outcome(err)).Inc()
	}()

	if err := s.auth.RequireAdmin(ctx, caller); err != nil {
		return domain.WithdrawalRequest{}, err
	}
	req, err := s.store.GetWithdrawal(ctx, requestID)
	if err != nil {
		return domain.WithdrawalRequest{}, err
	}
	if req == nil {
		return domain.WithdrawalRequest{}, domain.ErrNotFound
	}
	if !req.Status.CanTransition(status) {
		return domain.WithdrawalRequest{}, fmt.Errorf("%w: %s is %s", domain.ErrInvalidState, req.ID, req.Status)
	}

	// The owner's lock serializes the debit with that owner's claims and
	// requests. The store re-checks the status inside its transaction.
	unlock, err := s.locks.Lock(ctx, string(req.Identity))
	if err != nil {
		return domain.WithdrawalRequest{}, err
	}
	defer unlock()

	settled, err = s.store.SettleWithdrawal(ctx, requestID, status, caller, s.now())
	if err != nil {
		return domain.WithdrawalRequest{}, err
	}

	if status == domain.WithdrawalApproved {
		observability.WithdrawnAmount.Add(float64(settled.Amount))
	}
	s.log.Info("withdrawal decided",
		"id", settled.ID, "identity", settled.Identity, "amount", settled.Amount,
		"status", settled.Status, "by", caller)
	return settled, nil
}

// All lists every request for an admin, optionally narrowed to a status.
func (s *Service) All(ctx context.Context, caller domain.Identity, status domain.WithdrawalStatus) ([]domain.WithdrawalRequest, error) {
	if err := s.auth.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	return s.store.ListWithdrawals(ctx, domain.WithdrawalFilter{Status: status})
}

// History lists the caller's own requests, oldest first.
func (s *Service) History(ctx context.Context, id domain.Identity) ([]domain.WithdrawalRequest, error) {
	if id == "" {
		return []domain.WithdrawalRequest{}, nil
	}
	return s.store.ListWithdrawals(ctx, domain.WithdrawalFilter{Identity: id})
}
