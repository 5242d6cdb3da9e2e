// internal/routes/routes.go
package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"authapi/internal/auth"
	"authapi/internal/config"
	"authapi/internal/handlers"
	"authapi/internal/middleware"
	"authapi/internal/repository"
	"authapi/internal/services"
	"authapi/internal/session"
)

type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    repository.Storage
	Sessions *session.Manager
	Mailer   services.EmailSender
}

func SetupRoutes(deps Dependencies) *chi.Mux {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           int((5 * time.Minute).Seconds()),
		}))
	}

	health := handlers.NewHealthHandler(deps.Store)
	r.Get("/", health.Root)
	r.Get("/health", health.Health)

	RegisterSwaggerRoutes(r)

	svc := auth.NewService(deps.Store, deps.Mailer, logger, auth.Options{
		AppURL:        cfg.AppURL,
		ResetTokenTTL: cfg.ResetTokenTTL,
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Sessions(deps.Sessions, logger))
		RegisterAuthRoutes(r, handlers.NewAuthHandler(svc, logger))
	})

	return r
}
