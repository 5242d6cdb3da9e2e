package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"

	"authapi/internal/models"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		if dup := duplicateFromPQ(err); dup != nil {
			return dup
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}
	return nil
}

func (r *userRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, email, password
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, "select user by id", query, id)
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, password
		FROM users
		WHERE username = $1
	`
	return r.getOne(ctx, "select user by username", query, username)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, email, password
		FROM users
		WHERE email = $1
	`
	return r.getOne(ctx, "select user by email", query, email)
}

func (r *userRepository) getOne(ctx context.Context, operation, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, oops.Code("USER_QUERY_FAILED").
			With("operation", operation).
			Wrap(err)
	}
	return &u, nil
}

func (r *userRepository) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error {
	query := `UPDATE users SET password = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update password").
			With("user_id", userID).
			Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "rows affected").
			Wrap(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
