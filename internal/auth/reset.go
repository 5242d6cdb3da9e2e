package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/samber/oops"

	"authapi/internal/models"
	"authapi/internal/repository"
)

const (
	ResetTokenBytes  = 32
	ResetTokenExpiry = time.Hour
)

// ResetTokenManager issues, validates and consumes single-use password reset
// tokens. Only the SHA-256 digest of a token is persisted.
type ResetTokenManager struct {
	store repository.PasswordResetRepository
	ttl   time.Duration
	now   func() time.Time
}

type ResetOption func(*ResetTokenManager)

// WithResetClock replaces time.Now for expiry decisions.
func WithResetClock(now func() time.Time) ResetOption {
	return func(m *ResetTokenManager) { m.now = now }
}

func NewResetTokenManager(store repository.PasswordResetRepository, ttl time.Duration, opts ...ResetOption) *ResetTokenManager {
	if ttl <= 0 {
		ttl = ResetTokenExpiry
	}
	m := &ResetTokenManager{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *ResetTokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a token for userID and returns its plaintext. This is the
// only place the plaintext is available.
func (m *ResetTokenManager) Issue(ctx context.Context, userID int64) (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}
	token := hex.EncodeToString(buf)

	now := m.now().UTC()
	record := &models.PasswordResetToken{
		UserID:    userID,
		TokenHash: HashResetToken(token),
		ExpiresAt: now.Add(m.ttl),
		Used:      false,
		CreatedAt: now,
	}
	if err := m.store.CreatePasswordResetToken(ctx, record); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", oops.Code("RESET_TOKEN_CREATE_FAILED").
			With("operation", "CreatePasswordResetToken").
			With("user_id", userID).
			Wrap(err)
	}
	return token, nil
}

// Validate looks up token and checks, in order, that it exists, that it has
// not been used and that it has not expired.
func (m *ResetTokenManager) Validate(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	record, err := m.store.GetPasswordResetToken(ctx, HashResetToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &InvalidTokenError{Reason: TokenNotFound}
		}
		return nil, oops.Code("RESET_VALIDATE_FAILED").
			With("operation", "GetPasswordResetToken").
			Wrap(err)
	}
	if record.Used {
		return nil, &InvalidTokenError{Reason: TokenUsed}
	}
	if record.IsExpiredAt(m.now()) {
		return nil, &InvalidTokenError{Reason: TokenExpired}
	}
	return record, nil
}

// Consume marks the token used. Consuming an already used token is not an
// error.
func (m *ResetTokenManager) Consume(ctx context.Context, tokenID int64) error {
	_, err := m.consume(ctx, m.store, tokenID)
	return err
}

// consume runs the conditional update against repo and reports whether this
// call made the transition.
func (m *ResetTokenManager) consume(ctx context.Context, repo repository.PasswordResetRepository, tokenID int64) (bool, error) {
	ok, err := repo.MarkTokenAsUsed(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, oops.Code("RESET_CONSUME_FAILED").
			With("operation", "MarkTokenAsUsed").
			With("token_id", tokenID).
			Wrap(err)
	}
	return ok, nil
}

// HashResetToken is the at-rest form of a reset token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
