// Package domain contains pure business types with ZERO infrastructure imports.
// It depends on nothing outside the standard library.
package domain

import (
	"strings"
	"time"
)

// ─── Identity & Roles ───────────────────────────────────────────────────────

// Identity is the opaque caller reference supplied by the authentication
// layer. It is the primary key for profiles, watches and withdrawals.
type Identity string

// Role gates privileged operations.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}

// ParseRole converts a wire string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// ─── Profiles ───────────────────────────────────────────────────────────────

// Profile is the one-per-identity account record.
// Balance is in integer currency units and is never negative.
type Profile struct {
	Identity         Identity  `json:"identity"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Balance          int64     `json:"balance"`
	RegistrationTime time.Time `json:"registration_time"`
}

// ─── Ads ────────────────────────────────────────────────────────────────────

// Ad is an entry in the ad catalog. Immutable from the ledger's side.
type Ad struct {
	ID              int64  `json:"id" toml:"id"`
	Title           string `json:"title" toml:"title"`
	Description     string `json:"description" toml:"description"`
	URL             string `json:"url" toml:"url"`
	DurationSeconds int64  `json:"duration_seconds" toml:"duration_seconds"`
	RewardAmount    int64  `json:"reward_amount" toml:"reward_amount"`
}

// Duration returns the watch duration as a time.Duration.
func (a Ad) Duration() time.Duration {
	return time.Duration(a.DurationSeconds) * time.Second
}

// ─── Watch Events ───────────────────────────────────────────────────────────

// DayLayout is the calendar-day key format. Days are always computed in UTC.
const DayLayout = "2006-01-02"

// DayKey returns the UTC calendar-day key for t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// WatchEvent records one rewarded watch of an ad by an identity on a day.
// At most one exists per (Identity, AdID, Day).
type WatchEvent struct {
	Identity  Identity  `json:"identity"`
	AdID      int64     `json:"ad_id"`
	Day       string    `json:"day"`
	WatchTime time.Time `json:"watch_time"`
	Reward    int64     `json:"reward"`
}

// ─── Withdrawals ────────────────────────────────────────────────────────────

// WithdrawalStatus is the lifecycle state of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalApproved || s == WithdrawalRejected
}

// CanTransition reports whether s → next is a legal transition.
// Only pending → approved and pending → rejected exist.
func (s WithdrawalStatus) CanTransition(next WithdrawalStatus) bool {
	return s == WithdrawalPending && next.Terminal()
}

// ParseWithdrawalStatus converts a wire string into a status.
func ParseWithdrawalStatus(s string) (WithdrawalStatus, bool) {
	switch st := WithdrawalStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case WithdrawalPending, WithdrawalApproved, WithdrawalRejected:
		return st, true
	}
	return "", false
}

// WithdrawalRequest is a balance debit request adjudicated by an admin.
// Pending requests reserve funds; Balance is only debited on approval.
type WithdrawalRequest struct {
	ID          string           `json:"id"`
	Identity    Identity         `json:"identity"`
	Amount      int64            `json:"amount"`
	Status      WithdrawalStatus `json:"status"`
	RequestTime time.Time        `json:"request_time"`
	DecidedTime *time.Time       `json:"decided_time,omitempty"`
	DecidedBy   Identity         `json:"decided_by,omitempty"`
}

// ─── Dashboard ──────────────────────────────────────────────────────────────

// DashboardStats is derived at read time from the profile and watch events.
type DashboardStats struct {
	TotalBalance       int64 `json:"total_balance"`
	AvailableBalance   int64 `json:"available_balance"`
	PendingWithdrawals int64 `json:"pending_withdrawals"`
	AdsWatchedToday    int64 `json:"ads_watched_today"`
	TotalAdsWatched    int64 `json:"total_ads_watched"`
}
