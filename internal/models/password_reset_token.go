package models

import "time"

// PasswordResetToken is a single-use credential for resetting a password.
// TokenHash is the SHA-256 hex digest of the token mailed to the user; the
// plaintext is never stored.
type PasswordResetToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// IsExpiredAt reports whether the token is past its expiry at now.
func (t *PasswordResetToken) IsExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
