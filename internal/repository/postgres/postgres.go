package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/lib/pq"

	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/repository"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so repositories can run inside
// or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.RegistrationRequestRepository
	repository.AccountRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                            db,
		RegistrationRequestRepository: NewRegistrationRequestRepository(db),
		AccountRepository:             NewAccountRepository(db),
	}
}

// Requests returns the registration request repository (disambiguates the embedded Create/GetByID).
func (s *Store) Requests() repository.RegistrationRequestRepository {
	return s.RegistrationRequestRepository
}

func (s *Store) Accounts() repository.AccountRepository {
	return s.AccountRepository
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) WithinTx(ctx context.Context, fn func(requests repository.RegistrationRequestRepository, accounts repository.AccountRepository) error) error {
	logger.DatabaseCall("BEGIN", "transaction")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.DatabaseResult("BEGIN", 0, err)
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&registrationRequestRepository{db: tx}, &accountRepository{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.DatabaseResult("COMMIT", 0, err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Connect opens the database and waits for it to accept connections.
func Connect(ctx context.Context, dsn string, attempts uint) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if attempts == 0 {
		attempts = 1
	}
	err = retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("Database not ready, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
