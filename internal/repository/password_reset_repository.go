package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"

	"authapi/internal/models"
)

type passwordResetRepository struct {
	db DBTX
}

func NewPasswordResetRepository(db DBTX) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (user_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, token.UserID, token.TokenHash, token.ExpiresAt, token.Used, token.CreatedAt).Scan(&token.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		if dup := duplicateFromPQ(err); dup != nil {
			return dup
		}
		return oops.Code("RESET_CREATE_FAILED").
			With("operation", "insert password_reset_token").
			With("user_id", token.UserID).
			Wrap(err)
	}
	return nil
}

func (r *passwordResetRepository) GetPasswordResetToken(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`

	var t models.PasswordResetToken
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, oops.Code("RESET_QUERY_FAILED").
			With("operation", "select password_reset_token").
			Wrap(err)
	}
	return &t, nil
}

func (r *passwordResetRepository) MarkTokenAsUsed(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE password_reset_tokens SET used = TRUE WHERE id = $1 AND used = FALSE`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, oops.Code("RESET_MARK_USED_FAILED").
			With("operation", "update password_reset_token").
			With("token_id", id).
			Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, oops.Code("RESET_MARK_USED_FAILED").
			With("operation", "rows affected").
			Wrap(err)
	}
	if n == 1 {
		return true, nil
	}

	// Zero rows: either already used or no such token.
	var exists bool
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM password_reset_tokens WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, oops.Code("RESET_MARK_USED_FAILED").
			With("operation", "select password_reset_token exists").
			Wrap(err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}
