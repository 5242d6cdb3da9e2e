package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authapi/internal/models"
	"authapi/internal/repository"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setup(t *testing.T) (*Manager, *repository.MemoryStorage, *clock, int64) {
	t.Helper()
	store := repository.NewMemoryStorage()
	u := &models.User{Username: "alice123", Email: "a@x.com", PasswordHash: "h"}
	require.NoError(t, store.CreateUser(context.Background(), u))

	c := &clock{t: time.Now()}
	m := NewManager(store, Options{Secret: "test-secret", TTL: time.Hour, Now: c.now})
	return m, store, c, u.ID
}

func sessionCookie(t *testing.T, m *Manager, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == m.CookieName() {
			return c
		}
	}
	t.Fatalf("no %s cookie set", m.CookieName())
	return nil
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func login(t *testing.T, m *Manager, userID int64) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	s, err := m.Load(rec, requestWith(nil))
	require.NoError(t, err)
	require.NoError(t, s.Login(context.Background(), userID))
	return sessionCookie(t, m, rec)
}

func TestLoad_NoCookieIsAnonymous(t *testing.T) {
	m, _, _, _ := setup(t)

	s, err := m.Load(httptest.NewRecorder(), requestWith(nil))
	require.NoError(t, err)
	_, ok := s.UserID()
	assert.False(t, ok)
}

func TestLogin_SetsCookieAndRecord(t *testing.T) {
	m, store, c, userID := setup(t)

	rec := httptest.NewRecorder()
	s, err := m.Load(rec, requestWith(nil))
	require.NoError(t, err)
	require.NoError(t, s.Login(context.Background(), userID))

	id, ok := s.UserID()
	require.True(t, ok)
	assert.Equal(t, userID, id)

	cookie := sessionCookie(t, m, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.False(t, cookie.Secure)

	n, err := store.DeleteExpiredSessions(context.Background(), c.t)
	require.NoError(t, err)
	assert.Zero(t, n, "fresh session must not be expired")
}

func TestLoad_ResolvesLoggedInUser(t *testing.T) {
	m, _, _, userID := setup(t)
	cookie := login(t, m, userID)

	s, err := m.Load(httptest.NewRecorder(), requestWith(cookie))
	require.NoError(t, err)
	id, ok := s.UserID()
	require.True(t, ok)
	assert.Equal(t, userID, id)
}

func TestLogin_RotatesSession(t *testing.T) {
	m, _, _, userID := setup(t)
	first := login(t, m, userID)

	rec := httptest.NewRecorder()
	s, err := m.Load(rec, requestWith(first))
	require.NoError(t, err)
	require.NoError(t, s.Login(context.Background(), userID))
	second := sessionCookie(t, m, rec)
	assert.NotEqual(t, first.Value, second.Value)

	old, err := m.Load(httptest.NewRecorder(), requestWith(first))
	require.NoError(t, err)
	_, ok := old.UserID()
	assert.False(t, ok, "the replaced session must no longer resolve")

	current, err := m.Load(httptest.NewRecorder(), requestWith(second))
	require.NoError(t, err)
	_, ok = current.UserID()
	assert.True(t, ok)
}

func TestLogout(t *testing.T) {
	m, _, _, userID := setup(t)
	cookie := login(t, m, userID)

	rec := httptest.NewRecorder()
	s, err := m.Load(rec, requestWith(cookie))
	require.NoError(t, err)
	require.NoError(t, s.Logout(context.Background()))

	cleared := sessionCookie(t, m, rec)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)

	after, err := m.Load(httptest.NewRecorder(), requestWith(cookie))
	require.NoError(t, err)
	_, ok := after.UserID()
	assert.False(t, ok, "a logged out cookie must not resolve")
}

func TestLogout_WithoutSession(t *testing.T) {
	m, _, _, _ := setup(t)

	s, err := m.Load(httptest.NewRecorder(), requestWith(nil))
	require.NoError(t, err)
	assert.NoError(t, s.Logout(context.Background()))
}

func TestLoad_ExpiredSession(t *testing.T) {
	m, _, c, userID := setup(t)
	cookie := login(t, m, userID)

	c.t = c.t.Add(2 * time.Hour)
	s, err := m.Load(httptest.NewRecorder(), requestWith(cookie))
	require.NoError(t, err)
	_, ok := s.UserID()
	assert.False(t, ok)
}

func TestLoad_TamperedCookie(t *testing.T) {
	m, _, _, userID := setup(t)
	cookie := login(t, m, userID)

	other := NewManager(repository.NewMemoryStorage(), Options{Secret: "other-secret"})
	forged := *cookie
	dot := strings.LastIndexByte(cookie.Value, '.')
	flipped := byte('A')
	if cookie.Value[dot+1] == 'A' {
		flipped = 'B'
	}
	forged.Value = cookie.Value[:dot+1] + string(flipped) + cookie.Value[dot+2:]

	for _, c := range []*http.Cookie{&forged, {Name: m.CookieName(), Value: "garbage"}} {
		rec := httptest.NewRecorder()
		s, err := m.Load(rec, requestWith(c))
		require.NoError(t, err)
		_, ok := s.UserID()
		assert.False(t, ok)
	}

	s, err := other.Load(httptest.NewRecorder(), requestWith(cookie))
	require.NoError(t, err)
	_, ok := s.UserID()
	assert.False(t, ok, "cookie signed with another secret must not resolve")
}

func TestPrune(t *testing.T) {
	m, _, c, userID := setup(t)
	login(t, m, userID)
	login(t, m, userID)

	n, err := m.Prune(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	c.t = c.t.Add(2 * time.Hour)
	n, err = m.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

type failingStore struct {
	repository.SessionRepository
}

func (failingStore) GetSessionByTokenHash(context.Context, string) (*models.Session, error) {
	return nil, errors.New("connection refused")
}

func TestLoad_StoreFailure(t *testing.T) {
	m, _, _, userID := setup(t)
	cookie := login(t, m, userID)

	broken := NewManager(failingStore{}, Options{Secret: "test-secret", Now: m.now})
	_, err := broken.Load(httptest.NewRecorder(), requestWith(cookie))
	assert.Error(t, err)
}
