// Package app wires configuration to concrete repositories and collaborators
// for the server and the admin CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"ministry-admin-backend/internal/clock"
	"ministry-admin-backend/internal/config"
	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/repository"
	"ministry-admin-backend/internal/repository/memory"
	"ministry-admin-backend/internal/repository/postgres"
	"ministry-admin-backend/internal/service"
)

// Store is the persistence surface shared by the postgres and memory backends.
type Store interface {
	repository.Transactor
	repository.Pinger
	Requests() repository.RegistrationRequestRepository
	Accounts() repository.AccountRepository
}

// OpenStore connects to the configured backend. For postgres, pending
// migrations are applied when migrate is true. The returned func releases
// the connection.
func OpenStore(ctx context.Context, cfg *config.Config, clk clock.Clock, migrate bool) (Store, *sql.DB, func(), error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using in-memory repository; data is lost on restart")
		return memory.NewStore(clk), nil, func() {}, nil
	}

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := postgres.Connect(ctx, cfg.Database.DSN(), cfg.Database.ConnectAttempts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	logger.Info("Database connection established")

	return postgres.NewStore(db), db, func() { db.Close() }, nil
}

func NewDispatcher(cfg *config.EmailConfig) service.NotificationDispatcher {
	if cfg.Provider == "sendgrid" {
		logger.Info("Using SendGrid notification dispatcher", "from", cfg.From)
		return service.NewSendGridDispatcher(cfg.APIKey, cfg.From, cfg.FromName)
	}
	logger.Info("Using log notification dispatcher")
	return service.NewLogDispatcher()
}

func InitLogger(cfg *config.LogConfig) {
	logger.InitializeWithFile(cfg.Level, cfg.Format, logger.FileOptions{
		Path:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
	})
}
