package domain

import (
	"context"
	"time"
)

// ─── Store Interfaces ───────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.
// Every mutating method is all-or-nothing: it runs its invariant checks and
// its writes in a single transaction.

// ProfileStore persists one profile per identity.
type ProfileStore interface {
	// InsertProfile fails with ErrAlreadyExists if the identity has one.
	InsertProfile(ctx context.Context, p Profile) error

	// GetProfile returns nil, nil when the identity has no profile.
	GetProfile(ctx context.Context, id Identity) (*Profile, error)
}

// RoleStore persists explicit role assignments.
type RoleStore interface {
	// GetRole returns the explicitly assigned role, if any.
	GetRole(ctx context.Context, id Identity) (Role, bool, error)

	SetRole(ctx context.Context, id Identity, role Role, assignedBy Identity, at time.Time) error

	// BootstrapAdmin assigns RoleAdmin to id only if no admin exists yet.
	// Reports whether the assignment happened.
	BootstrapAdmin(ctx context.Context, id Identity, at time.Time) (bool, error)
}

// AdStore is the ad catalog as seen by the core.
type AdStore interface {
	UpsertAds(ctx context.Context, ads []Ad) error // all or nothing
	GetAd(ctx context.Context, id int64) (*Ad, error) // nil, nil when absent
	ListAds(ctx context.Context) ([]Ad, error)
}

// WatchStore records watch events and credits their reward.
type WatchStore interface {
	// RecordWatch checks the profile, the ad and the (identity, ad, day)
	// uniqueness, inserts the event and credits the reward read from the
	// catalog, all in one transaction. Returns the new balance.
	RecordWatch(ctx context.Context, id Identity, adID int64, at time.Time) (WatchEvent, int64, error)

	ListWatches(ctx context.Context, id Identity) ([]WatchEvent, error)
}

// WithdrawalFilter narrows ListWithdrawals. Zero values match everything.
type WithdrawalFilter struct {
	Identity Identity
	Status   WithdrawalStatus
}

// WithdrawalStore owns withdrawal requests and their settlement.
type WithdrawalStore interface {
	// InsertWithdrawal reserves req.Amount against the available balance
	// (balance minus pending requests) and stores req as pending.
	InsertWithdrawal(ctx context.Context, req WithdrawalRequest) error

	GetWithdrawal(ctx context.Context, id string) (*WithdrawalRequest, error) // nil, nil when absent

	// SettleWithdrawal moves a pending request to a terminal status.
	// Approval debits the owner's balance in the same transaction.
	SettleWithdrawal(ctx context.Context, id string, status WithdrawalStatus, decidedBy Identity, at time.Time) (WithdrawalRequest, error)

	ListWithdrawals(ctx context.Context, f WithdrawalFilter) ([]WithdrawalRequest, error)
}

// StatsStore reads dashboard projections in a single snapshot.
type StatsStore interface {
	DashboardStats(ctx context.Context, id Identity, day string) (DashboardStats, error)
}

// JournalStore exposes the credit journal.
type JournalStore interface {
	ListEntries(ctx context.Context, id Identity) ([]LedgerEntry, error)
}

// Store is the full persistence surface.
type Store interface {
	ProfileStore
	RoleStore
	AdStore
	WatchStore
	WithdrawalStore
	StatsStore
	JournalStore
}
