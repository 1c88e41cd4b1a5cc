package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/repository"
)

type accountRepository struct {
	db dbtx
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *domain.AdminAccount) error {
	query := `INSERT INTO admin_accounts (id, name, email, password_hash, role, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING created_at`
	logger.DatabaseCall("INSERT", "admin_accounts", "id", a.ID)

	err := r.db.QueryRowContext(ctx, query, a.ID, a.Name, a.Email, a.PasswordHash, a.Role).Scan(&a.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "id", a.ID)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *accountRepository) get(ctx context.Context, where string, arg any) (*domain.AdminAccount, error) {
	a := &domain.AdminAccount{}
	query := `SELECT id, name, email, password_hash, role, created_at FROM admin_accounts WHERE ` + where
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin account: %w", err)
	}
	return a, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.AdminAccount, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	return r.get(ctx, "LOWER(email) = LOWER($1)", email)
}

func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admin accounts: %w", err)
	}
	return count, nil
}
