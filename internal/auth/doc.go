// Package auth implements username/email/password authentication:
// registration, login, logout, current-user resolution and email based
// password reset.
package auth
