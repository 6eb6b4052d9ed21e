package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// RevokedTokenRepository is a SQL-backed token denylist, used when no Redis is configured.
type RevokedTokenRepository struct {
	db    *sqlx.DB
	clock Clock
}

// NewRevokedTokenRepository creates a new RevokedTokenRepository.
func NewRevokedTokenRepository(db *sqlx.DB, clock Clock) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db, clock: clock}
}

// Revoke denies jti until the given time. Revoking twice is not an error.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, jti string, until time.Time) error {
	q := r.db.Rebind(`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`)
	if _, err := r.db.ExecContext(ctx, q, jti, until.UTC().Truncate(time.Second)); err != nil {
		if isDuplicateEntryError(err) {
			return nil
		}
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti is on the denylist.
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	q := r.db.Rebind(`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`)
	if err := r.db.GetContext(ctx, &n, q, jti); err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// Purge removes entries whose tokens can no longer be used anyway.
func (r *RevokedTokenRepository) Purge(ctx context.Context) (int64, error) {
	q := r.db.Rebind(`DELETE FROM revoked_tokens WHERE expires_at < ?`)
	res, err := r.db.ExecContext(ctx, q, r.clock.now())
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	return res.RowsAffected()
}
