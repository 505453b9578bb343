package domain

import "time"

// ─── Credit Journal ─────────────────────────────────────────────────────────
// Every balance mutation appends one journal row in the same transaction,
// so sum(CREDIT) - sum(DEBIT) always equals the profile balance.

// EntryType represents the accounting side of a ledger entry.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// TransactionType represents the business reason for a balance change.
type TransactionType string

const (
	TxAdReward   TransactionType = "AD_REWARD"
	TxWithdrawal TransactionType = "WITHDRAWAL"
)

// LedgerEntry is a single row in the credit journal.
type LedgerEntry struct {
	ID        int64           `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      TransactionType `json:"type"`
	EntryType EntryType       `json:"entry_type"`
	Identity  Identity        `json:"identity"`
	Amount    int64           `json:"amount"`
	Reference string          `json:"reference,omitempty"` // ad id or withdrawal id
	Balance   int64           `json:"balance"`             // balance after this entry
}

// Signed returns the entry amount with its accounting sign applied.
func (e LedgerEntry) Signed() int64 {
	if e.EntryType == EntryDebit {
		return -e.Amount
	}
	return e.Amount
}
