package models

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Public returns a copy of u that is safe to put in a response body.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.PasswordHash = ""
	return &out
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,digit,symbol"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`

	// Origin is the scheme and host the request arrived on. It is used for
	// reset links when no application URL is configured.
	Origin string `json:"-"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required,min=10"`
	Password        string `json:"password" validate:"required,min=8,digit,symbol"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}
