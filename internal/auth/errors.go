package auth

import (
	"errors"
	"fmt"
	"strings"
)

// AuthenticationMessage is shown for every failed login.
const AuthenticationMessage = "Invalid username or password"

var (
	// ErrAuthentication is the single failure for bad credentials. It does
	// not say whether the username or the password was wrong.
	ErrAuthentication = errors.New("invalid username or password")

	// ErrUnauthenticated means the request carries no valid session.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrNotFound reports an internal precondition failure, such as issuing a
	// reset token for a user that does not exist.
	ErrNotFound = errors.New("not found")
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Message is the first field message, suitable as a one-line summary.
func (e *ValidationError) Message() string {
	if len(e.Fields) == 0 {
		return "Invalid request"
	}
	return e.Fields[0].Message
}

// ConflictError reports a unique field that is already taken.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return e.Field + " conflict"
}

func (e *ConflictError) Message() string {
	switch e.Field {
	case "username":
		return "Username already exists"
	case "email":
		return "Email already in use"
	default:
		return fmt.Sprintf("%s already exists", e.Field)
	}
}

type InvalidTokenReason string

const (
	TokenNotFound InvalidTokenReason = "not_found"
	TokenUsed     InvalidTokenReason = "used"
	TokenExpired  InvalidTokenReason = "expired"
)

// InvalidTokenError rejects a presented password reset token.
type InvalidTokenError struct {
	Reason InvalidTokenReason
}

func (e *InvalidTokenError) Error() string {
	return "invalid reset token: " + string(e.Reason)
}

func (e *InvalidTokenError) Message() string {
	switch e.Reason {
	case TokenUsed:
		return "This reset token has already been used"
	case TokenExpired:
		return "Reset token has expired"
	default:
		return "Invalid or expired reset token"
	}
}
