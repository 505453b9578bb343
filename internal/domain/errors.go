package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Authorization errors
	ErrUnauthenticated = errors.New("caller identity required")
	ErrUnauthorized    = errors.New("caller is not authorized for this operation")
	ErrInvalidRole     = errors.New("unknown role")

	// Profile errors
	ErrProfileRequired = errors.New("operation requires an existing profile")
	ErrAlreadyExists   = errors.New("profile already exists")
	ErrInvalidProfile  = errors.New("username must not be empty")

	// Ledger errors
	ErrAdNotFound          = errors.New("ad not found")
	ErrAlreadyClaimedToday = errors.New("ad already claimed today")

	// Withdrawal errors
	ErrInvalidAmount       = errors.New("amount must be a positive integer")
	ErrBelowMinimum        = errors.New("amount is below the minimum withdrawal")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrNotFound            = errors.New("withdrawal request not found")
	ErrInvalidState        = errors.New("withdrawal request is not pending")

	// Contention, the only retryable kind
	ErrBusy = errors.New("resource busy, retry later")
)

// codes maps each sentinel to its stable wire code.
var codes = []struct {
	err  error
	code string
}{
	{ErrUnauthenticated, "UNAUTHENTICATED"},
	{ErrUnauthorized, "UNAUTHORIZED"},
	{ErrInvalidRole, "INVALID_ROLE"},
	{ErrProfileRequired, "PROFILE_REQUIRED"},
	{ErrAlreadyExists, "ALREADY_EXISTS"},
	{ErrInvalidProfile, "INVALID_PROFILE"},
	{ErrAdNotFound, "AD_NOT_FOUND"},
	{ErrAlreadyClaimedToday, "ALREADY_CLAIMED_TODAY"},
	{ErrInvalidAmount, "INVALID_AMOUNT"},
	{ErrBelowMinimum, "BELOW_MINIMUM"},
	{ErrInsufficientBalance, "INSUFFICIENT_BALANCE"},
	{ErrNotFound, "NOT_FOUND"},
	{ErrInvalidState, "INVALID_STATE"},
	{ErrBusy, "BUSY"},
}

// Code returns the wire code of the first sentinel err wraps, or "INTERNAL".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}

// IsRetryable reports whether the caller should retry err automatically.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy)
}
