package routes

import (
	"github.com/go-chi/chi/v5"

	"authapi/internal/handlers"
)

func RegisterAuthRoutes(router chi.Router, authHandler *handlers.AuthHandler) {
	router.Post("/register", authHandler.Register)
	router.Post("/login", authHandler.Login)
	router.Post("/logout", authHandler.Logout)
	router.Get("/user", authHandler.User)
	router.Post("/request-password-reset", authHandler.RequestPasswordReset)
	router.Post("/reset-password", authHandler.ResetPassword)
}
