package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// ─── Profile Operations ─────────────────────────────────────────────────────

// InsertProfile creates a profile. Fails with domain.ErrAlreadyExists if the
// identity already has one.
func (db *DB) InsertProfile(ctx context.Context, p domain.Profile) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO profiles (identity, username, email, balance, registered_at)
		VALUES (?, ?, ?, ?, ?)
	`, string(p.Identity), p.Username, p.Email, p.Balance, formatTime(p.RegistrationTime))
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return mapErr(err)
}

// GetProfile retrieves a profile. Returns nil, nil when absent.
func (db *DB) GetProfile(ctx context.Context, id domain.Identity) (*domain.Profile, error) {
	p, err := scanProfile(db.db.QueryRowContext(ctx, `
		SELECT identity, username, email, balance, registered_at
		FROM profiles WHERE identity = ?
	`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var (
		p          domain.Profile
		identity   string
		registered string
	)
	if err := row.Scan(&identity, &p.Username, &p.Email, &p.Balance, &registered); err != nil {
		return nil, err
	}
	p.Identity = domain.Identity(identity)
	p.RegistrationTime = parseTime(registered)
	return &p, nil
}

// balanceTx reads the balance inside tx. Fails with domain.ErrProfileRequired
// when the identity has no profile.
func balanceTx(ctx context.Context, tx *sql.Tx, id domain.Identity) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx, `SELECT balance FROM profiles WHERE identity = ?`, string(id)).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrProfileRequired
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

// ─── Role Operations ────────────────────────────────────────────────────────

// GetRole returns the explicitly assigned role for an identity.
func (db *DB) GetRole(ctx context.Context, id domain.Identity) (domain.Role, bool, error) {
	var role string
	err := db.db.QueryRowContext(ctx, `SELECT role FROM roles WHERE identity = ?`, string(id)).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, mapErr(err)
	}
	return domain.Role(role), true, nil
}

// SetRole inserts or replaces an explicit role assignment.
func (db *DB) SetRole(ctx context.Context, id domain.Identity, role domain.Role, assignedBy domain.Identity, at time.Time) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO roles (identity, role, assigned_by, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			role        = excluded.role,
			assigned_by = excluded.assigned_by,
			updated_at  = excluded.updated_at
	`, string(id), string(role), string(assignedBy), formatTime(at))
	return mapErr(err)
}

// BootstrapAdmin grants admin to id only while no admin exists.
func (db *DB) BootstrapAdmin(ctx context.Context, id domain.Identity, at time.Time) (bool, error) {
	granted := false
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var admins int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles WHERE role = 'admin'`).Scan(&admins); err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins > 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO roles (identity, role, assigned_by, updated_at)
			VALUES (?, 'admin', 'bootstrap', ?)
			ON CONFLICT(identity) DO UPDATE SET
				role        = 'admin',
				assigned_by = 'bootstrap',
				updated_at  = excluded.updated_at
		`, string(id), formatTime(at)); err != nil {
			return fmt.Errorf("grant admin: %w", err)
		}
		granted = true
		return nil
	})
	return granted, err
}
