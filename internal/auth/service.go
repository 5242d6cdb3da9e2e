package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/samber/oops"

	"authapi/internal/logging"
	"authapi/internal/models"
	"authapi/internal/repository"
	"authapi/internal/services"
)

// Session is the request-scoped session state a flow runs against.
type Session interface {
	// UserID returns the authenticated user, if any.
	UserID() (int64, bool)
	// Login binds userID to a fresh session.
	Login(ctx context.Context, userID int64) error
	// Logout destroys the session. It succeeds when there is none.
	Logout(ctx context.Context) error
}

type Options struct {
	// AppURL is the base for reset links. When empty the request origin is
	// used.
	AppURL        string
	ResetTokenTTL time.Duration
	Hasher        PasswordHasher
	Now           func() time.Time
}

type Service struct {
	store     repository.Storage
	mailer    services.EmailSender
	logger    *slog.Logger
	hasher    PasswordHasher
	resets    *ResetTokenManager
	validator *Validator
	appURL    string

	dummyOnce sync.Once
	dummyHash string
}

func NewService(store repository.Storage, mailer services.EmailSender, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	hasher := opts.Hasher
	if hasher == nil {
		hasher = NewScryptHasher()
	}
	var resetOpts []ResetOption
	if opts.Now != nil {
		resetOpts = append(resetOpts, WithResetClock(opts.Now))
	}
	return &Service{
		store:     store,
		mailer:    mailer,
		logger:    logger.With("component", "auth"),
		hasher:    hasher,
		resets:    NewResetTokenManager(store, opts.ResetTokenTTL, resetOpts...),
		validator: NewValidator(),
		appURL:    opts.AppURL,
	}
}

func (s *Service) Register(ctx context.Context, sess Session, req models.RegisterRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.ensureFree(ctx, "username", s.store.GetUserByUsername, req.Username); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, "email", s.store.GetUserByEmail, req.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "Hash").Wrap(err)
	}

	user := &models.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			return nil, &ConflictError{Field: dup.Field}
		}
		return nil, oops.Code("REGISTER_FAILED").With("operation", "CreateUser").Wrap(err)
	}

	if err := sess.Login(ctx, user.ID); err != nil {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "Login").With("user_id", user.ID).Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user.Public(), nil
}

func (s *Service) ensureFree(ctx context.Context, field string, lookup func(context.Context, string) (*models.User, error), value string) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return &ConflictError{Field: field}
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return oops.Code("REGISTER_FAILED").With("operation", "lookup "+field).Wrap(err)
	}
}

func (s *Service) Login(ctx context.Context, sess Session, req models.LoginRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a verify so unknown usernames cost the same as wrong passwords.
			s.hasher.Verify(req.Password, s.placeholderHash())
			return nil, ErrAuthentication
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "GetUserByUsername").Wrap(err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, ErrAuthentication
	}

	if err := sess.Login(ctx, user.ID); err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "Login").With("user_id", user.ID).Wrap(err)
	}
	return user.Public(), nil
}

func (s *Service) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("placeholder-password-1!")
	})
	return s.dummyHash
}

func (s *Service) Logout(ctx context.Context, sess Session) error {
	if err := sess.Logout(ctx); err != nil {
		return oops.Code("AUTH_LOGOUT_FAILED").Wrap(err)
	}
	return nil
}

func (s *Service) CurrentUser(ctx context.Context, sess Session) (*models.User, error) {
	id, ok := sess.UserID()
	if !ok {
		return nil, ErrUnauthenticated
	}
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, oops.Code("CURRENT_USER_FAILED").With("operation", "GetUser").With("user_id", id).Wrap(err)
	}
	return user.Public(), nil
}

// RequestPasswordReset mails a reset link when req.Email belongs to a user.
// The result does not depend on whether it does. Mail delivery failures are
// logged and not returned.
func (s *Service) RequestPasswordReset(ctx context.Context, req models.PasswordResetRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return oops.Code("RESET_REQUEST_FAILED").With("operation", "GetUserByEmail").Wrap(err)
	}

	token, err := s.resets.Issue(ctx, user.ID)
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").With("operation", "Issue").With("user_id", user.ID).Wrap(err)
	}

	link, err := resetLink(s.baseURL(req.Origin), token)
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").With("operation", "resetLink").Wrap(err)
	}

	msg := services.PasswordResetEmail(user.Email, link, s.resets.TTL())
	if err := s.mailer.Send(ctx, msg); err != nil {
		logging.LogError(ctx, s.logger, "password reset email not sent", oops.With("user_id", user.ID).Wrap(err))
		return nil
	}

	s.logger.InfoContext(ctx, "password reset email sent", "user_id", user.ID)
	return nil
}

func (s *Service) baseURL(origin string) string {
	if s.appURL != "" {
		return s.appURL
	}
	return origin
}

func resetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u = u.JoinPath("reset-password")
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ResetPassword sets a new password for the owner of req.Token and burns the
// token. The password update and the consume commit together; if another
// request consumes the token first the update is rolled back.
func (s *Service) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	record, err := s.resets.Validate(ctx, req.Token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").With("operation", "Hash").Wrap(err)
	}

	err = s.store.WithinTx(ctx, func(tx repository.Storage) error {
		if err := tx.UpdateUserPassword(ctx, record.UserID, hash); err != nil {
			return oops.Code("RESET_PASSWORD_FAILED").
				With("operation", "UpdateUserPassword").
				With("user_id", record.UserID).
				Wrap(err)
		}
		consumed, err := s.resets.consume(ctx, tx, record.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return &InvalidTokenError{Reason: TokenUsed}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset completed", "user_id", record.UserID)
	return nil
}
