package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// ─── Watch Event Operations ─────────────────────────────────────────────────

// RecordWatch claims the reward for (id, adID, day(at)). In one transaction:
// the profile and ad must exist, no event may exist for the key, then the
// event is inserted, the balance credited and a CREDIT entry journaled.
func (db *DB) RecordWatch(ctx context.Context, id domain.Identity, adID int64, at time.Time) (domain.WatchEvent, int64, error) {
	ev := domain.WatchEvent{
		Identity:  id,
		AdID:      adID,
		Day:       domain.DayKey(at),
		WatchTime: at.UTC(),
	}
	var newBalance int64

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		balance, err := balanceTx(ctx, tx, id)
		if err != nil {
			return err
		}

		// Reward is read here, never trusted from the caller.
		err = tx.QueryRowContext(ctx, `SELECT reward_amount FROM ads WHERE id = ?`, adID).Scan(&ev.Reward)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrAdNotFound
		}
		if err != nil {
			return fmt.Errorf("read ad: %w", err)
		}

		var claimed int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM watch_events
			WHERE identity = ? AND ad_id = ? AND day = ?
		`, string(id), adID, ev.Day).Scan(&claimed); err != nil {
			return fmt.Errorf("check claim: %w", err)
		}
		if claimed > 0 {
			return domain.ErrAlreadyClaimedToday
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO watch_events (identity, ad_id, day, watched_at, reward)
			VALUES (?, ?, ?, ?, ?)
		`, string(id), adID, ev.Day, formatTime(ev.WatchTime), ev.Reward); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyClaimedToday
			}
			return fmt.Errorf("insert watch: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE profiles SET balance = balance + ? WHERE identity = ?
		`, ev.Reward, string(id)); err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}
		newBalance = balance + ev.Reward

		return insertEntryTx(ctx, tx, domain.LedgerEntry{
			Timestamp: ev.WatchTime,
			Type:      domain.TxAdReward,
			EntryType: domain.EntryCredit,
			Identity:  id,
			Amount:    ev.Reward,
			Reference: strconv.FormatInt(adID, 10),
			Balance:   newBalance,
		})
	})
	if err != nil {
		return domain.WatchEvent{}, 0, err
	}
	return ev, newBalance, nil
}

// ListWatches returns all watch events for an identity in insertion order.
func (db *DB) ListWatches(ctx context.Context, id domain.Identity) ([]domain.WatchEvent, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT identity, ad_id, day, watched_at, reward
		FROM watch_events WHERE identity = ? ORDER BY id
	`, string(id))
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	result := []domain.WatchEvent{}
	for rows.Next() {
		var (
			ev       domain.WatchEvent
			identity string
			watched  string
		)
		if err := rows.Scan(&identity, &ev.AdID, &ev.Day, &watched, &ev.Reward); err != nil {
			return nil, err
		}
		ev.Identity = domain.Identity(identity)
		ev.WatchTime = parseTime(watched)
		result = append(result, ev)
	}
	return result, rows.Err()
}

// ─── Journal Operations ─────────────────────────────────────────────────────

func insertEntryTx(ctx context.Context, tx *sql.Tx, e domain.LedgerEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (ts, tx_type, entry_type, identity, amount, reference, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, formatTime(e.Timestamp), string(e.Type), string(e.EntryType), string(e.Identity), e.Amount, e.Reference, e.Balance)
	if err != nil {
		return fmt.Errorf("journal entry: %w", err)
	}
	return nil
}

// ListEntries returns the credit journal for an identity, oldest first.
func (db *DB) ListEntries(ctx context.Context, id domain.Identity) ([]domain.LedgerEntry, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, ts, tx_type, entry_type, identity, amount, reference, balance
		FROM ledger_entries WHERE identity = ? ORDER BY id
	`, string(id))
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	result := []domain.LedgerEntry{}
	for rows.Next() {
		var (
			e                         domain.LedgerEntry
			ts, txType, entryType, who string
		)
		if err := rows.Scan(&e.ID, &ts, &txType, &entryType, &who, &e.Amount, &e.Reference, &e.Balance); err != nil {
			return nil, err
		}
		e.Timestamp = parseTime(ts)
		e.Type = domain.TransactionType(txType)
		e.EntryType = domain.EntryType(entryType)
		e.Identity = domain.Identity(who)
		result = append(result, e)
	}
	return result, rows.Err()
}
