package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"authapi/internal/routes"
	"authapi/internal/session"
)

const shutdownTimeout = 5 * time.Second

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. With the postgres driver the database is created
when missing and pending migrations are applied before listening.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer st.close()

	router := routes.SetupRoutes(routes.Dependencies{
		Config: cfg,
		Logger: logger,
		Store:  st.storage,
		Sessions: session.NewManager(st.sessions, session.Options{
			Secret:     cfg.SessionSecret,
			TTL:        cfg.SessionTTL,
			CookieName: cfg.SessionCookieName,
			Secure:     cfg.IsProduction(),
			Logger:     logger,
		}),
		Mailer: newMailer(cfg, logger),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "storage", cfg.StorageDriver, "mail_provider", cfg.MailProvider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SERVER_SHUTDOWN_FAILED").Wrap(err)
	}
	logger.Info("server exiting")
	return nil
}
