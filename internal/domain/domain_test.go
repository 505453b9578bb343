package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// ─── Role Tests ─────────────────────────────────────────────────────────────

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"USER", RoleUser, false},
		{" guest ", RoleGuest, false},
		{"root", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRole) {
					t.Fatalf("ParseRole(%q) error = %v, want ErrInvalidRole", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRole(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// ─── Day Key Tests ──────────────────────────────────────────────────────────

func TestDayKey_UsesUTC(t *testing.T) {
	// 23:30 in UTC-5 on Jan 1 is already Jan 2 in UTC.
	est := time.FixedZone("EST", -5*3600)
	local := time.Date(2026, 1, 1, 23, 30, 0, 0, est)

	if got := DayKey(local); got != "2026-01-02" {
		t.Errorf("DayKey(%v) = %q, want 2026-01-02", local, got)
	}
}

func TestDayKey_MidnightBoundary(t *testing.T) {
	before := time.Date(2026, 3, 9, 23, 59, 59, 999_999_999, time.UTC)
	after := before.Add(time.Nanosecond)

	if DayKey(before) == DayKey(after) {
		t.Errorf("DayKey should change across UTC midnight: %s vs %s", DayKey(before), DayKey(after))
	}
	if DayKey(after) != "2026-03-10" {
		t.Errorf("DayKey(after) = %q, want 2026-03-10", DayKey(after))
	}
}

// ─── Withdrawal Status Tests ────────────────────────────────────────────────

func TestWithdrawalStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to WithdrawalStatus
		want     bool
	}{
		{WithdrawalPending, WithdrawalApproved, true},
		{WithdrawalPending, WithdrawalRejected, true},
		{WithdrawalPending, WithdrawalPending, false},
		{WithdrawalApproved, WithdrawalRejected, false},
		{WithdrawalApproved, WithdrawalApproved, false},
		{WithdrawalRejected, WithdrawalApproved, false},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s->%s", tt.from, tt.to)
		t.Run(name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseWithdrawalStatus(t *testing.T) {
	if st, ok := ParseWithdrawalStatus("Pending"); !ok || st != WithdrawalPending {
		t.Errorf("ParseWithdrawalStatus(Pending) = %q, %v", st, ok)
	}
	if _, ok := ParseWithdrawalStatus("paid"); ok {
		t.Error("ParseWithdrawalStatus(paid) should fail")
	}
}

// ─── Error Tests ────────────────────────────────────────────────────────────

func TestCode(t *testing.T) {
	wrapped := fmt.Errorf("claim ad 7: %w", ErrAlreadyClaimedToday)
	if got := Code(wrapped); got != "ALREADY_CLAIMED_TODAY" {
		t.Errorf("Code(wrapped) = %q, want ALREADY_CLAIMED_TODAY", got)
	}
	if got := Code(errors.New("disk on fire")); got != "INTERNAL" {
		t.Errorf("Code(unknown) = %q, want INTERNAL", got)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("lock: %w", ErrBusy)) {
		t.Error("wrapped ErrBusy should be retryable")
	}
	for _, err := range []error{ErrUnauthorized, ErrInsufficientBalance, ErrInvalidState, ErrAlreadyClaimedToday} {
		if IsRetryable(err) {
			t.Errorf("%v should not be retryable", err)
		}
	}
}

// ─── Journal Tests ──────────────────────────────────────────────────────────

func TestLedgerEntry_Signed(t *testing.T) {
	credit := LedgerEntry{EntryType: EntryCredit, Amount: 100}
	debit := LedgerEntry{EntryType: EntryDebit, Amount: 500}

	if credit.Signed() != 100 {
		t.Errorf("credit.Signed() = %d, want 100", credit.Signed())
	}
	if debit.Signed() != -500 {
		t.Errorf("debit.Signed() = %d, want -500", debit.Signed())
	}
}

func TestAd_Duration(t *testing.T) {
	ad := Ad{DurationSeconds: 45}
	if ad.Duration() != 45*time.Second {
		t.Errorf("Duration() = %v, want 45s", ad.Duration())
	}
}
