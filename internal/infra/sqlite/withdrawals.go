package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// ─── Withdrawal Operations ──────────────────────────────────────────────────

// InsertWithdrawal stores req as pending after checking that
// req.Amount <= balance - sum(pending amounts) for the owner.
// The balance itself is not touched.
func (db *DB) InsertWithdrawal(ctx context.Context, req domain.WithdrawalRequest) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		balance, err := balanceTx(ctx, tx, req.Identity)
		if err != nil {
			return err
		}
		reserved, err := pendingTotalTx(ctx, tx, req.Identity)
		if err != nil {
			return err
		}
		if req.Amount > balance-reserved {
			return domain.ErrInsufficientBalance
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO withdrawal_requests (id, identity, amount, status, requested_at)
			VALUES (?, ?, ?, 'pending', ?)
		`, req.ID, string(req.Identity), req.Amount, formatTime(req.RequestTime)); err != nil {
			return fmt.Errorf("insert withdrawal: %w", err)
		}
		return nil
	})
}

// GetWithdrawal retrieves a request by id. Returns nil, nil when absent.
func (db *DB) GetWithdrawal(ctx context.Context, id string) (*domain.WithdrawalRequest, error) {
	req, err := scanWithdrawal(db.db.QueryRowContext(ctx, `
		SELECT id, identity, amount, status, requested_at, decided_at, decided_by
		FROM withdrawal_requests WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return req, nil
}

// SettleWithdrawal moves a pending request to status. Approval debits the
// owner's balance only if it still covers the amount; otherwise the request
// stays pending and domain.ErrInsufficientBalance is returned.
func (db *DB) SettleWithdrawal(ctx context.Context, id string, status domain.WithdrawalStatus, decidedBy domain.Identity, at time.Time) (domain.WithdrawalRequest, error) {
	if !status.Terminal() {
		return domain.WithdrawalRequest{}, fmt.Errorf("settle to %q: %w", status, domain.ErrInvalidState)
	}

	var settled domain.WithdrawalRequest
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		req, err := scanWithdrawal(tx.QueryRowContext(ctx, `
			SELECT id, identity, amount, status, requested_at, decided_at, decided_by
			FROM withdrawal_requests WHERE id = ?
		`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read withdrawal: %w", err)
		}
		if !req.Status.CanTransition(status) {
			return domain.ErrInvalidState
		}

		if status == domain.WithdrawalApproved {
			res, err := tx.ExecContext(ctx, `
				UPDATE profiles SET balance = balance - ?
				WHERE identity = ? AND balance >= ?
			`, req.Amount, string(req.Identity), req.Amount)
			if err != nil {
				return fmt.Errorf("debit balance: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return domain.ErrInsufficientBalance
			}
			balance, err := balanceTx(ctx, tx, req.Identity)
			if err != nil {
				return err
			}
			if err := insertEntryTx(ctx, tx, domain.LedgerEntry{
				Timestamp: at,
				Type:      domain.TxWithdrawal,
				EntryType: domain.EntryDebit,
				Identity:  req.Identity,
				Amount:    req.Amount,
				Reference: req.ID,
				Balance:   balance,
			}); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE withdrawal_requests SET status = ?, decided_at = ?, decided_by = ?
			WHERE id = ? AND status = 'pending'
		`, string(status), formatTime(at), string(decidedBy), id)
		if err != nil {
			return fmt.Errorf("update withdrawal: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrInvalidState
		}

		decided := at.UTC()
		req.Status = status
		req.DecidedTime = &decided
		req.DecidedBy = decidedBy
		settled = *req
		return nil
	})
	if err != nil {
		return domain.WithdrawalRequest{}, err
	}
	return settled, nil
}

// ListWithdrawals returns requests matching f, oldest first.
func (db *DB) ListWithdrawals(ctx context.Context, f domain.WithdrawalFilter) ([]domain.WithdrawalRequest, error) {
	var (
		where []string
		args  []any
	)
	if f.Identity != "" {
		where = append(where, "identity = ?")
		args = append(args, string(f.Identity))
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	query := `SELECT id, identity, amount, status, requested_at, decided_at, decided_by FROM withdrawal_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY requested_at, id"

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	result := []domain.WithdrawalRequest{}
	for rows.Next() {
		req, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func pendingTotalTx(ctx context.Context, tx *sql.Tx, id domain.Identity) (int64, error) {
	var total int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM withdrawal_requests
		WHERE identity = ? AND status = 'pending'
	`, string(id)).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum pending: %w", err)
	}
	return total, nil
}

func scanWithdrawal(row rowScanner) (*domain.WithdrawalRequest, error) {
	var (
		req       domain.WithdrawalRequest
		identity  string
		status    string
		requested string
		decided   sql.NullString
		decidedBy string
	)
	if err := row.Scan(&req.ID, &identity, &req.Amount, &status, &requested, &decided, &decidedBy); err != nil {
		return nil, err
	}
	req.Identity = domain.Identity(identity)
	req.Status = domain.WithdrawalStatus(status)
	req.RequestTime = parseTime(requested)
	req.DecidedBy = domain.Identity(decidedBy)
	if decided.Valid {
		t := parseTime(decided.String)
		req.DecidedTime = &t
	}
	return &req, nil
}
