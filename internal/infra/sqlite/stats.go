package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// ─── Dashboard Projection ───────────────────────────────────────────────────

// DashboardStats derives the caller's dashboard in a single transaction so
// balance, reservations and watch counts come from the same snapshot.
// An identity without a profile reads as all zeros.
func (db *DB) DashboardStats(ctx context.Context, id domain.Identity, day string) (domain.DashboardStats, error) {
	var s domain.DashboardStats
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT balance FROM profiles WHERE identity = ?`, string(id)).Scan(&s.TotalBalance)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read balance: %w", err)
		}

		if err := tx.QueryRowContext(ctx, `
			SELECT
				COUNT(*),
				COALESCE(SUM(CASE WHEN day = ? THEN 1 ELSE 0 END), 0)
			FROM watch_events WHERE identity = ?
		`, day, string(id)).Scan(&s.TotalAdsWatched, &s.AdsWatchedToday); err != nil {
			return fmt.Errorf("count watches: %w", err)
		}

		reserved, err := pendingTotalTx(ctx, tx, id)
		if err != nil {
			return err
		}
		s.PendingWithdrawals = reserved
		s.AvailableBalance = s.TotalBalance - reserved
		if s.AvailableBalance < 0 {
			s.AvailableBalance = 0
		}
		return nil
	})
	return s, err
}
