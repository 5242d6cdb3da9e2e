package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"authapi/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DuplicateError reports a write rejected by a uniqueness constraint.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return e.Field + " already exists"
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateUser inserts user and sets its ID. A taken username or email
	// yields a *DuplicateError naming the field.
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error
}

type PasswordResetRepository interface {
	// CreatePasswordResetToken inserts token and sets its ID. It returns
	// ErrNotFound when token.UserID references no user.
	CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error
	GetPasswordResetToken(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	// MarkTokenAsUsed sets used=true only if it is still false and reports
	// whether this call made the transition.
	MarkTokenAsUsed(ctx context.Context, id int64) (bool, error)
}

// Storage is the relational store the auth flows run against.
type Storage interface {
	UserRepository
	PasswordResetRepository

	// WithinTx runs fn against a transactional view of the store. Writes made
	// through tx are discarded if fn returns an error.
	WithinTx(ctx context.Context, fn func(tx Storage) error) error
	Ping(ctx context.Context) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	// DeleteSession is a no-op for unknown ids.
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
