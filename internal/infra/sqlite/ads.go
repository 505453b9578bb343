package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// ─── Ad Catalog Operations ──────────────────────────────────────────────────

// UpsertAds inserts or updates catalog entries in one transaction. Either
// every ad is written or none is.
func (db *DB) UpsertAds(ctx context.Context, ads []domain.Ad) error {
	now := formatTime(time.Now())
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, ad := range ads {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO ads (id, title, description, url, duration_seconds, reward_amount, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					title            = excluded.title,
					description      = excluded.description,
					url              = excluded.url,
					duration_seconds = excluded.duration_seconds,
					reward_amount    = excluded.reward_amount,
					updated_at       = excluded.updated_at
			`, ad.ID, ad.Title, ad.Description, ad.URL, ad.DurationSeconds, ad.RewardAmount, now); err != nil {
				return fmt.Errorf("upsert ad %d: %w", ad.ID, err)
			}
		}
		return nil
	})
}

// GetAd retrieves an ad by id. Returns nil, nil when absent.
func (db *DB) GetAd(ctx context.Context, id int64) (*domain.Ad, error) {
	ad, err := scanAd(db.db.QueryRowContext(ctx, `
		SELECT id, title, description, url, duration_seconds, reward_amount
		FROM ads WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return ad, nil
}

// ListAds returns the full catalog ordered by id.
func (db *DB) ListAds(ctx context.Context) ([]domain.Ad, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, title, description, url, duration_seconds, reward_amount
		FROM ads ORDER BY id
	`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	result := []domain.Ad{}
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ad)
	}
	return result, rows.Err()
}

func scanAd(row rowScanner) (*domain.Ad, error) {
	var ad domain.Ad
	if err := row.Scan(&ad.ID, &ad.Title, &ad.Description, &ad.URL, &ad.DurationSeconds, &ad.RewardAmount); err != nil {
		return nil, err
	}
	return &ad, nil
}
