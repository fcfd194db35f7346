package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// TokenRepo is the SQL revocation list.  A logged-out session token is
// recorded by its id (jti) until it would have expired anyway.
type TokenRepo struct{ DB *sqlx.DB }

func NewTokenRepo(db *sqlx.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Revoke records tokenID as revoked.  Revoking the same token twice is not
// an error.
func (r *TokenRepo) Revoke(ctx context.Context, tokenID string, userID uint64, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO revoked_tokens (token_id, user_id, expires_at, created_at) VALUES (?,?,?,?)",
		tokenID, userID, exp.UTC(), time.Now().UTC())
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

// IsRevoked reports whether tokenID has been revoked.
func (r *TokenRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM revoked_tokens WHERE token_id = ?", tokenID); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired prunes entries whose token has expired by now.
func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM revoked_tokens WHERE expires_at < ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
