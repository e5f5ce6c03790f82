package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diamond-electronics/storefront-api/internal/model"
)

// TokenRepository is the refresh-token ledger. Rows are only ever inserted
// and marked revoked, never deleted, so every rotation chain stays auditable.
type TokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	GetByJTI(ctx context.Context, jti uuid.UUID) (*model.RefreshToken, error)
	MarkRotated(ctx context.Context, jti, successor uuid.UUID) (bool, error)
	Revoke(ctx context.Context, jti uuid.UUID) (bool, error)
}

type pgTokenRepo struct{ pool *pgxpool.Pool }

func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &pgTokenRepo{pool: pool}
}

func (r *pgTokenRepo) Create(ctx context.Context, token *model.RefreshToken) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO refresh_tokens (jti, user_id, created_at) VALUES ($1, $2, NOW()) RETURNING created_at`,
		token.JTI, token.UserID,
	).Scan(&token.CreatedAt)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (r *pgTokenRepo) GetByJTI(ctx context.Context, jti uuid.UUID) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	err := r.pool.QueryRow(ctx,
		`SELECT jti, user_id, revoked_at, replaced_by, created_at FROM refresh_tokens WHERE jti = $1`, jti,
	).Scan(&token.JTI, &token.UserID, &token.RevokedAt, &token.ReplacedBy, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return token, nil
}

// MarkRotated revokes the token and links its successor in one conditional
// update. A false return means the token was already revoked or rotated,
// which the caller must treat as a replay.
func (r *pgTokenRepo) MarkRotated(ctx context.Context, jti, successor uuid.UUID) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW(), replaced_by = $2 WHERE jti = $1 AND revoked_at IS NULL`,
		jti, successor,
	)
	if err != nil {
		return false, fmt.Errorf("mark token rotated: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgTokenRepo) Revoke(ctx context.Context, jti uuid.UUID) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE jti = $1 AND revoked_at IS NULL`,
		jti,
	)
	if err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
