package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/repository"
)

const requestColumns = `id, name, email, message, status, approved_by, approval_token, approval_expires,
	rejection_reason, completed_at, account_id, created_at, updated_at`

type registrationRequestRepository struct {
	db dbtx
}

func NewRegistrationRequestRepository(db *sql.DB) repository.RegistrationRequestRepository {
	return &registrationRequestRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.RegistrationRequest, error) {
	var (
		req             domain.RegistrationRequest
		approvedBy      sql.NullString
		approvalToken   sql.NullString
		approvalExpires sql.NullTime
		rejectionReason sql.NullString
		completedAt     sql.NullTime
		accountID       sql.NullString
	)
	err := row.Scan(
		&req.ID, &req.Name, &req.Email, &req.Message, &req.Status,
		&approvedBy, &approvalToken, &approvalExpires,
		&rejectionReason, &completedAt, &accountID,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if approvedBy.Valid {
		req.ApprovedBy = &approvedBy.String
	}
	if approvalToken.Valid {
		req.ApprovalToken = &approvalToken.String
	}
	if approvalExpires.Valid {
		t := approvalExpires.Time.UTC()
		req.ApprovalExpires = &t
	}
	if rejectionReason.Valid {
		req.RejectionReason = &rejectionReason.String
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		req.CompletedAt = &t
	}
	if accountID.Valid {
		req.AccountID = &accountID.String
	}
	return &req, nil
}

func (r *registrationRequestRepository) Create(ctx context.Context, req *domain.RegistrationRequest) error {
	query := `INSERT INTO registration_requests (id, name, email, message, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING created_at, updated_at`
	logger.DatabaseCall("INSERT", "registration_requests", "id", req.ID)

	err := r.db.QueryRowContext(ctx, query, req.ID, req.Name, req.Email, req.Message, req.Status).
		Scan(&req.CreatedAt, &req.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "id", req.ID)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *registrationRequestRepository) getOne(ctx context.Context, where string, arg any) (*domain.RegistrationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM registration_requests WHERE ` + where
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get registration request: %w", err)
	}
	return req, nil
}

func (r *registrationRequestRepository) GetByID(ctx context.Context, id string) (*domain.RegistrationRequest, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *registrationRequestRepository) GetByToken(ctx context.Context, token string) (*domain.RegistrationRequest, error) {
	return r.getOne(ctx, "approval_token = $1", token)
}

func (r *registrationRequestRepository) FindByEmailAndStatus(ctx context.Context, email string, status domain.RequestStatus) (*domain.RegistrationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM registration_requests
	          WHERE email = $1 AND status = $2 ORDER BY created_at DESC LIMIT 1`
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, email, status))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find registration request: %w", err)
	}
	return req, nil
}

func (r *registrationRequestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.RegistrationRequest, error) {
	logger.EnterMethod("registrationRequestRepository.ListByStatus", "status", status)

	query := `SELECT ` + requestColumns + ` FROM registration_requests
	          WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC`
	logger.DatabaseCall("SELECT", "registration_requests", "status", status)

	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "status", status)
		logger.ExitMethodWithError("registrationRequestRepository.ListByStatus", err)
		return nil, fmt.Errorf("list registration requests: %w", err)
	}
	defer rows.Close()

	reqs := []domain.RegistrationRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration request: %w", err)
		}
		reqs = append(reqs, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registration requests: %w", err)
	}

	logger.DatabaseResult("SELECT", int64(len(reqs)), nil, "status", status)
	logger.ExitMethod("registrationRequestRepository.ListByStatus", "count", len(reqs))
	return reqs, nil
}

func (r *registrationRequestRepository) UpdateIfStatus(ctx context.Context, req *domain.RegistrationRequest, expected domain.RequestStatus) error {
	query := `UPDATE registration_requests
	          SET status = $1, approved_by = $2, approval_token = $3, approval_expires = $4,
	              rejection_reason = $5, updated_at = NOW()
	          WHERE id = $6 AND status = $7
	          RETURNING updated_at`
	logger.DatabaseCall("UPDATE", "registration_requests", "id", req.ID, "status", req.Status, "expected", expected)

	err := r.db.QueryRowContext(ctx, query,
		req.Status, req.ApprovedBy, req.ApprovalToken, req.ApprovalExpires, req.RejectionReason,
		req.ID, expected,
	).Scan(&req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("UPDATE", 0, nil, "id", req.ID)
		return repository.ErrConflict
	}
	logger.DatabaseResult("UPDATE", 1, err, "id", req.ID)
	if err != nil {
		return fmt.Errorf("update registration request: %w", mapError(err))
	}
	return nil
}

func (r *registrationRequestRepository) ConsumeToken(ctx context.Context, id, token, accountID string, completedAt time.Time) error {
	query := `UPDATE registration_requests
	          SET approval_token = NULL, approval_expires = NULL, completed_at = $1, account_id = $2, updated_at = NOW()
	          WHERE id = $3 AND approval_token = $4 AND status = 'approved'`
	logger.DatabaseCall("UPDATE", "registration_requests", "id", id, "operation", "consume_token")

	result, err := r.db.ExecContext(ctx, query, completedAt, accountID, id, token)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "id", id)
		return fmt.Errorf("consume approval token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", rows, nil, "id", id)
	if rows == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (r *registrationRequestRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM registration_requests WHERE id = $1`
	logger.DatabaseCall("DELETE", "registration_requests", "id", id)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "id", id)
		return fmt.Errorf("delete registration request: %w", err)
	}
	rows, _ := result.RowsAffected()
	logger.DatabaseResult("DELETE", rows, nil, "id", id)
	return nil
}

func (r *registrationRequestRepository) DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM registration_requests WHERE status = 'rejected' AND updated_at < $1`
	logger.DatabaseCall("DELETE", "registration_requests", "cutoff", cutoff)

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err)
		return 0, fmt.Errorf("purge rejected requests: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	logger.DatabaseResult("DELETE", rows, nil)
	return rows, nil
}
