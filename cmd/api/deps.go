package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"authapi/internal/config"
	"authapi/internal/db"
	"authapi/internal/db/migrations"
	"authapi/internal/logging"
	"authapi/internal/repository"
	"authapi/internal/services"
)

const serviceName = "authapi"

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	logger := logging.Setup(serviceName, cfg.Environment, cfg.LogFormat, cfg.LogLevel, nil)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// stores bundles the backing stores chosen by STORAGE_DRIVER. close is never
// nil.
type stores struct {
	storage  repository.Storage
	sessions repository.SessionRepository
	close    func() error
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (*stores, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.WarnContext(ctx, "using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStorage()
		return &stores{storage: mem, sessions: mem, close: func() error { return nil }}, nil
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := runMigrations(ctx, database, logger); err != nil {
			database.Close()
			return nil, err
		}
	}
	return &stores{
		storage:  repository.NewPostgresStorage(database.DB),
		sessions: repository.NewSessionRepository(database.DB),
		close:    database.Close,
	}, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*db.Database, error) {
	if err := db.CreateDatabaseIfNotExists(ctx, cfg.DatabaseURL); err != nil {
		return nil, oops.Code("DB_CREATE_FAILED").With("operation", "ensure database exists").Wrap(err)
	}
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	return database, nil
}

func runMigrations(ctx context.Context, database *db.Database, logger *slog.Logger) error {
	applied, err := migrations.RunMigrations(ctx, database.DB)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	logger.InfoContext(ctx, "migrations applied", "count", applied)
	return nil
}

func newMailer(cfg *config.Config, logger *slog.Logger) services.EmailSender {
	switch cfg.MailProvider {
	case config.MailProviderMailgun:
		return services.NewMailgunSender(cfg.MailgunAPIBase, cfg.MailgunAPIKey, cfg.MailgunDomain, cfg.MailgunFromEmail)
	case config.MailProviderSMTP:
		return &services.SMTPSender{
			Host:   cfg.SMTPHost,
			Port:   cfg.SMTPPort,
			User:   cfg.SMTPUser,
			Pass:   cfg.SMTPPassword,
			From:   cfg.SMTPFrom,
			UseTLS: cfg.SMTPUseTLS,
		}
	default:
		return &services.LogSender{Logger: logger}
	}
}
