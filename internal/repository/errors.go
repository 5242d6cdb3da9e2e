package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

var constraintFields = map[string]string{
	"users_username_key":              "username",
	"users_email_key":                 "email",
	"password_reset_tokens_token_key": "token",
	"sessions_token_hash_key":         "token_hash",
}

// duplicateFromPQ converts a unique violation into a *DuplicateError, or
// returns nil for any other error.
func duplicateFromPQ(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pgerrcode.UniqueViolation {
		return nil
	}
	if field, ok := constraintFields[pqErr.Constraint]; ok {
		return &DuplicateError{Field: field}
	}
	return &DuplicateError{Field: pqErr.Constraint}
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.ForeignKeyViolation
}
