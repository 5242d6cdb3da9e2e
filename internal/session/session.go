// Package session binds HTTP requests to server-side session records. The
// browser holds an HS256-signed cookie whose jti is a random token; the
// store keeps only the token's SHA-256 digest.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/oops"

	"authapi/internal/models"
	"authapi/internal/repository"
)

const (
	DefaultCookieName = "sid"
	DefaultTTL        = 24 * time.Hour
	tokenBytes        = 32
)

type Options struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
	Now        func() time.Time
	Logger     *slog.Logger
}

type Manager struct {
	store  repository.SessionRepository
	secret []byte
	ttl    time.Duration
	cookie string
	secure bool
	now    func() time.Time
	logger *slog.Logger
}

func NewManager(store repository.SessionRepository, opts Options) *Manager {
	m := &Manager{
		store:  store,
		secret: []byte(opts.Secret),
		ttl:    opts.TTL,
		cookie: opts.CookieName,
		secure: opts.Secure,
		now:    opts.Now,
		logger: opts.Logger,
	}
	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	if m.cookie == "" {
		m.cookie = DefaultCookieName
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

func (m *Manager) CookieName() string {
	return m.cookie
}

// Session is the session state of one request. It is not safe for
// concurrent use.
type Session struct {
	m      *Manager
	w      http.ResponseWriter
	record *models.Session
}

// Load resolves the session carried by r. Missing, tampered and expired
// cookies yield an anonymous session; only store faults are errors.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	s := &Session{m: m, w: w}

	c, err := r.Cookie(m.cookie)
	if err != nil || c.Value == "" {
		return s, nil
	}

	token, ok := m.parseCookie(c.Value)
	if !ok {
		m.clearCookie(w)
		return s, nil
	}

	record, err := m.store.GetSessionByTokenHash(r.Context(), hashToken(token))
	if errors.Is(err, repository.ErrNotFound) {
		m.clearCookie(w)
		return s, nil
	}
	if err != nil {
		return nil, oops.Code("SESSION_LOAD_FAILED").With("operation", "GetSessionByTokenHash").Wrap(err)
	}

	if record.IsExpiredAt(m.now()) {
		if err := m.store.DeleteSession(r.Context(), record.ID); err != nil {
			m.logger.WarnContext(r.Context(), "delete expired session", "session_id", record.ID, "error", err)
		}
		m.clearCookie(w)
		return s, nil
	}

	s.record = record
	return s, nil
}

func (s *Session) UserID() (int64, bool) {
	if s.record == nil {
		return 0, false
	}
	return s.record.UserID, true
}

// Login replaces any current session with a new one bound to userID.
func (s *Session) Login(ctx context.Context, userID int64) error {
	if s.record != nil {
		if err := s.m.store.DeleteSession(ctx, s.record.ID); err != nil {
			return oops.Code("SESSION_ROTATE_FAILED").With("session_id", s.record.ID).Wrap(err)
		}
		s.record = nil
	}

	token, err := newToken()
	if err != nil {
		return oops.Code("SESSION_TOKEN_FAILED").Wrap(err)
	}

	now := s.m.now().UTC()
	record := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(s.m.ttl),
		CreatedAt: now,
	}
	if err := s.m.store.CreateSession(ctx, record); err != nil {
		return oops.Code("SESSION_CREATE_FAILED").With("user_id", userID).Wrap(err)
	}

	signed, err := s.m.signCookie(token, record)
	if err != nil {
		return oops.Code("SESSION_SIGN_FAILED").Wrap(err)
	}

	http.SetCookie(s.w, s.m.newCookie(signed, record.ExpiresAt))
	s.record = record
	return nil
}

// Logout deletes the session record, if any, and expires the cookie.
func (s *Session) Logout(ctx context.Context) error {
	if s.record != nil {
		if err := s.m.store.DeleteSession(ctx, s.record.ID); err != nil {
			return oops.Code("SESSION_DELETE_FAILED").With("session_id", s.record.ID).Wrap(err)
		}
		s.record = nil
	}
	s.m.clearCookie(s.w)
	return nil
}

// Prune removes expired session records.
func (m *Manager) Prune(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpiredSessions(ctx, m.now())
	if err != nil {
		return 0, oops.Code("SESSION_PRUNE_FAILED").Wrap(err)
	}
	return n, nil
}

func (m *Manager) signCookie(token string, record *models.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        token,
		IssuedAt:  jwt.NewNumericDate(record.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) parseCookie(value string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || token == nil || !token.Valid || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}

func (m *Manager) newCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
