package repository

import (
	"context"
	"database/sql"

	"github.com/samber/oops"
)

type postgresStorage struct {
	UserRepository
	PasswordResetRepository

	db *sql.DB // nil when bound to a transaction
}

// NewPostgresStorage returns a Storage backed by db.
func NewPostgresStorage(db *sql.DB) Storage {
	return &postgresStorage{
		UserRepository:          NewUserRepository(db),
		PasswordResetRepository: NewPasswordResetRepository(db),
		db:                      db,
	}
}

func (s *postgresStorage) WithinTx(ctx context.Context, fn func(tx Storage) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback()

	txStorage := &postgresStorage{
		UserRepository:          NewUserRepository(tx),
		PasswordResetRepository: NewPasswordResetRepository(tx),
	}
	if err := fn(txStorage); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

func (s *postgresStorage) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}
