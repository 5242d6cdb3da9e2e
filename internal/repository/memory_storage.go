package repository

import (
	"context"
	"maps"
	"sync"
	"time"

	"authapi/internal/models"
)

// MemoryStorage keeps users, reset tokens and sessions in process memory.
// Records are keyed by monotonically increasing integer ids. It implements
// both Storage and SessionRepository.
type MemoryStorage struct {
	mu sync.RWMutex

	users       map[int64]models.User
	tokens      map[int64]models.PasswordResetToken
	sessions    map[string]models.Session
	nextUserID  int64
	nextTokenID int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:       make(map[int64]models.User),
		tokens:      make(map[int64]models.PasswordResetToken),
		sessions:    make(map[string]models.Session),
		nextUserID:  1,
		nextTokenID: 1,
	}
}

func (s *MemoryStorage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getUserLocked(id)
}

func (s *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUserLocked(func(u models.User) bool { return u.Username == username })
}

func (s *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUserLocked(func(u models.User) bool { return u.Email == email })
}

func (s *MemoryStorage) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUserLocked(user)
}

func (s *MemoryStorage) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateUserPasswordLocked(userID, passwordHash)
}

func (s *MemoryStorage) CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTokenLocked(token)
}

func (s *MemoryStorage) GetPasswordResetToken(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTokenLocked(tokenHash)
}

func (s *MemoryStorage) MarkTokenAsUsed(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markTokenUsedLocked(id)
}

// WithinTx holds the write lock for the duration of fn and restores the
// previous user and token state if fn fails.
func (s *MemoryStorage) WithinTx(ctx context.Context, fn func(tx Storage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := maps.Clone(s.users)
	tokens := maps.Clone(s.tokens)
	nextUserID, nextTokenID := s.nextUserID, s.nextTokenID

	if err := fn(&memoryTx{s: s}); err != nil {
		s.users, s.tokens = users, tokens
		s.nextUserID, s.nextTokenID = nextUserID, nextTokenID
		return err
	}
	return nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) CreateSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[session.UserID]; !ok {
		return ErrNotFound
	}
	for _, existing := range s.sessions {
		if existing.TokenHash == session.TokenHash {
			return &DuplicateError{Field: "token_hash"}
		}
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *MemoryStorage) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.TokenHash == tokenHash {
			out := session
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStorage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, session := range s.sessions {
		if session.IsExpiredAt(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) getUserLocked(id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStorage) findUserLocked(match func(models.User) bool) (*models.User, error) {
	for _, u := range s.users {
		if match(u) {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) createUserLocked(user *models.User) error {
	if _, err := s.findUserLocked(func(u models.User) bool { return u.Username == user.Username }); err == nil {
		return &DuplicateError{Field: "username"}
	}
	if _, err := s.findUserLocked(func(u models.User) bool { return u.Email == user.Email }); err == nil {
		return &DuplicateError{Field: "email"}
	}
	user.ID = s.nextUserID
	s.nextUserID++
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStorage) updateUserPasswordLocked(userID int64, passwordHash string) error {
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	s.users[userID] = u
	return nil
}

func (s *MemoryStorage) createTokenLocked(token *models.PasswordResetToken) error {
	if _, ok := s.users[token.UserID]; !ok {
		return ErrNotFound
	}
	for _, t := range s.tokens {
		if t.TokenHash == token.TokenHash {
			return &DuplicateError{Field: "token"}
		}
	}
	token.ID = s.nextTokenID
	s.nextTokenID++
	s.tokens[token.ID] = *token
	return nil
}

func (s *MemoryStorage) getTokenLocked(tokenHash string) (*models.PasswordResetToken, error) {
	for _, t := range s.tokens {
		if t.TokenHash == tokenHash {
			out := t
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) markTokenUsedLocked(id int64) (bool, error) {
	t, ok := s.tokens[id]
	if !ok {
		return false, ErrNotFound
	}
	if t.Used {
		return false, nil
	}
	t.Used = true
	s.tokens[id] = t
	return true, nil
}

// memoryTx is the Storage view handed to WithinTx callbacks. The parent's
// write lock is already held.
type memoryTx struct {
	s *MemoryStorage
}

func (tx *memoryTx) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return tx.s.getUserLocked(id)
}

func (tx *memoryTx) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return tx.s.findUserLocked(func(u models.User) bool { return u.Username == username })
}

func (tx *memoryTx) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return tx.s.findUserLocked(func(u models.User) bool { return u.Email == email })
}

func (tx *memoryTx) CreateUser(ctx context.Context, user *models.User) error {
	return tx.s.createUserLocked(user)
}

func (tx *memoryTx) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error {
	return tx.s.updateUserPasswordLocked(userID, passwordHash)
}

func (tx *memoryTx) CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	return tx.s.createTokenLocked(token)
}

func (tx *memoryTx) GetPasswordResetToken(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	return tx.s.getTokenLocked(tokenHash)
}

func (tx *memoryTx) MarkTokenAsUsed(ctx context.Context, id int64) (bool, error) {
	return tx.s.markTokenUsedLocked(id)
}

func (tx *memoryTx) WithinTx(ctx context.Context, fn func(tx Storage) error) error {
	return fn(tx)
}

func (tx *memoryTx) Ping(ctx context.Context) error {
	return nil
}
