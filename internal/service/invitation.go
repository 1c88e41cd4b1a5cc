package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"ministry-admin-backend/internal/clock"
	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/metrics"
	"ministry-admin-backend/internal/repository"
	"ministry-admin-backend/internal/security"
)

const (
	ApprovalTTL           = 7 * 24 * time.Hour
	MinPasswordLength     = 6
	MaxPasswordBytes      = 72 // bcrypt input limit
	DefaultCompletionPath = "/registration-complete"
)

type WorkflowOptions struct {
	// PublicBaseURL is used for completion links when the request context carries no base URL.
	PublicBaseURL  string
	CompletionPath string
}

type invitationWorkflow struct {
	requests repository.RegistrationRequestRepository
	accounts repository.AccountRepository
	tx       repository.Transactor
	tokens   security.TokenGenerator
	hasher   security.PasswordHasher
	notifier NotificationDispatcher
	clock    clock.Clock
	metrics  *metrics.Metrics
	opts     WorkflowOptions
}

func NewInvitationWorkflow(
	requests repository.RegistrationRequestRepository,
	accounts repository.AccountRepository,
	tx repository.Transactor,
	tokens security.TokenGenerator,
	hasher security.PasswordHasher,
	notifier NotificationDispatcher,
	clk clock.Clock,
	m *metrics.Metrics,
	opts WorkflowOptions,
) InvitationWorkflow {
	if clk == nil {
		clk = clock.System()
	}
	if opts.CompletionPath == "" {
		opts.CompletionPath = DefaultCompletionPath
	}
	return &invitationWorkflow{
		requests: requests,
		accounts: accounts,
		tx:       tx,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
		clock:    clk,
		metrics:  m,
		opts:     opts,
	}
}

type submission struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=320"`
	Message string `json:"message" validate:"max=5000"`
}

func (w *invitationWorkflow) Submit(ctx context.Context, name, email, message string) (*domain.RegistrationRequest, error) {
	logger.EnterMethod("invitationWorkflow.Submit", "email", email)

	req, err := w.submit(ctx, name, email, message)
	w.metrics.Transition("submit", err)
	if err != nil {
		logger.ExitMethodWithError("invitationWorkflow.Submit", err, "email", email)
		return nil, err
	}

	logger.Info("Registration request submitted", "requestID", req.ID, "email", req.Email)
	logger.ExitMethod("invitationWorkflow.Submit", "requestID", req.ID)
	return req, nil
}

func (w *invitationWorkflow) submit(ctx context.Context, name, email, message string) (*domain.RegistrationRequest, error) {
	in := submission{
		Name:    strings.TrimSpace(name),
		Email:   domain.NormalizeEmail(email),
		Message: strings.TrimSpace(message),
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if err := w.ensureNoAccount(ctx, in.Email); err != nil {
		return nil, err
	}

	_, err := w.requests.FindByEmailAndStatus(ctx, in.Email, domain.RequestStatusPending)
	if err == nil {
		return nil, ErrDuplicatePending
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}

	req := &domain.RegistrationRequest{
		ID:      uuid.NewString(),
		Name:    in.Name,
		Email:   in.Email,
		Message: in.Message,
		Status:  domain.RequestStatusPending,
	}
	if err := w.requests.Create(ctx, req); err != nil {
		// Lost a race against a concurrent submission for the same email.
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, ErrDuplicatePending
		}
		return nil, fmt.Errorf("failed to create registration request: %w", err)
	}
	return req, nil
}

func (w *invitationWorkflow) ensureNoAccount(ctx context.Context, email string) error {
	_, err := w.accounts.GetByEmail(ctx, email)
	if err == nil {
		return ErrAlreadyRegistered
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check existing accounts: %w", err)
	}
	return nil
}

func (w *invitationWorkflow) Get(ctx context.Context, id string) (*domain.RegistrationRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, validationErrorf("id is required")
	}
	req, err := w.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registration request: %w", err)
	}
	return req, nil
}

func (w *invitationWorkflow) List(ctx context.Context, status domain.RequestStatus) ([]domain.RegistrationRequest, error) {
	if status != "" && !status.Valid() {
		return nil, validationErrorf("unknown status %q", status)
	}
	reqs, err := w.requests.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list registration requests: %w", err)
	}
	return reqs, nil
}

func (w *invitationWorkflow) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return validationErrorf("id is required")
	}
	if err := w.requests.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete registration request: %w", err)
	}
	logger.Info("Registration request deleted", "requestID", id)
	return nil
}

func (w *invitationWorkflow) Approve(ctx context.Context, requestID, approverID string) (*ApprovalResult, error) {
	logger.EnterMethod("invitationWorkflow.Approve", "requestID", requestID, "approverID", approverID)

	result, err := w.approve(ctx, requestID, approverID)
	w.metrics.Transition("approve", err)
	if err != nil {
		logger.ExitMethodWithError("invitationWorkflow.Approve", err, "requestID", requestID)
		return nil, err
	}

	logger.ExitMethod("invitationWorkflow.Approve", "requestID", requestID, "emailSent", result.EmailSent)
	return result, nil
}

func (w *invitationWorkflow) approve(ctx context.Context, requestID, approverID string) (*ApprovalResult, error) {
	req, err := w.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequestStatusPending {
		return nil, ErrAlreadyProcessed
	}

	token, err := w.tokens.Generate()
	if err != nil {
		return nil, err
	}
	expires := w.clock.Now().Add(ApprovalTTL).Truncate(time.Microsecond)

	req.Status = domain.RequestStatusApproved
	req.ApprovedBy = &approverID
	req.ApprovalToken = &token
	req.ApprovalExpires = &expires
	if err := w.requests.UpdateIfStatus(ctx, req, domain.RequestStatusPending); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("failed to approve registration request: %w", err)
	}
	logger.Info("Registration request approved", "requestID", req.ID, "approverID", approverID, "expiresAt", expires)

	result := &ApprovalResult{
		Request:      req,
		Token:        token,
		ExpiresAt:    expires,
		ApprovalLink: w.completionLink(ctx, token),
	}

	err = w.notifier.NotifyApproved(ctx, req, result.ApprovalLink, expires)
	w.metrics.Notification("approved", err)
	if err != nil {
		logger.Warn("Approval notification failed", "requestID", req.ID, "error", err)
		result.Warning = "approval succeeded but the invitation email could not be sent; share the link manually"
	} else {
		result.EmailSent = true
	}
	return result, nil
}

func (w *invitationWorkflow) Reject(ctx context.Context, requestID, reason string) (*domain.RegistrationRequest, error) {
	logger.EnterMethod("invitationWorkflow.Reject", "requestID", requestID)

	req, err := w.reject(ctx, requestID, reason)
	w.metrics.Transition("reject", err)
	if err != nil {
		logger.ExitMethodWithError("invitationWorkflow.Reject", err, "requestID", requestID)
		return nil, err
	}

	logger.ExitMethod("invitationWorkflow.Reject", "requestID", requestID)
	return req, nil
}

func (w *invitationWorkflow) reject(ctx context.Context, requestID, reason string) (*domain.RegistrationRequest, error) {
	req, err := w.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequestStatusPending {
		return nil, ErrAlreadyProcessed
	}

	reason = strings.TrimSpace(reason)
	req.Status = domain.RequestStatusRejected
	req.RejectionReason = &reason
	if err := w.requests.UpdateIfStatus(ctx, req, domain.RequestStatusPending); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("failed to reject registration request: %w", err)
	}
	logger.Info("Registration request rejected", "requestID", req.ID)

	err = w.notifier.NotifyRejected(ctx, req)
	w.metrics.Notification("rejected", err)
	if err != nil {
		logger.Warn("Rejection notification failed", "requestID", req.ID, "error", err)
	}
	return req, nil
}

func (w *invitationWorkflow) VerifyToken(ctx context.Context, token string) (*Invitee, error) {
	req, err := w.lookupToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Invitee{Name: req.Name, Email: req.Email}, nil
}

// lookupToken always reads from the repository; a prior verification is never reused.
func (w *invitationWorkflow) lookupToken(ctx context.Context, token string) (*domain.RegistrationRequest, error) {
	if token == "" {
		return nil, validationErrorf("token is required")
	}
	req, err := w.requests.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if req.Status != domain.RequestStatusApproved || req.ApprovalExpires == nil {
		return nil, ErrInvalidToken
	}
	if w.clock.Now().After(*req.ApprovalExpires) {
		return nil, ErrTokenExpired
	}
	return req, nil
}

func (w *invitationWorkflow) Complete(ctx context.Context, token, password string) (*domain.AdminAccount, error) {
	logger.EnterMethod("invitationWorkflow.Complete")

	account, err := w.complete(ctx, token, password)
	w.metrics.Transition("complete", err)
	if err != nil {
		logger.ExitMethodWithError("invitationWorkflow.Complete", err)
		return nil, err
	}

	logger.Info("Registration completed", "accountID", account.ID, "email", account.Email)
	logger.ExitMethod("invitationWorkflow.Complete", "accountID", account.ID)
	return account, nil
}

func (w *invitationWorkflow) complete(ctx context.Context, token, password string) (*domain.AdminAccount, error) {
	req, err := w.lookupToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	if err := w.ensureNoAccount(ctx, req.Email); err != nil {
		// The account may belong to a concurrent completion of this same token.
		if errors.Is(err, ErrAlreadyRegistered) {
			if _, lerr := w.lookupToken(ctx, token); lerr != nil {
				return nil, lerr
			}
		}
		return nil, err
	}

	hash, err := w.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account := &domain.AdminAccount{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domain.AccountRoleAdmin,
	}

	// Token invalidation and account creation commit together or not at all.
	err = w.tx.WithinTx(ctx, func(requests repository.RegistrationRequestRepository, accounts repository.AccountRepository) error {
		if err := requests.ConsumeToken(ctx, req.ID, token, account.ID, w.clock.Now()); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrInvalidToken
			}
			return err
		}
		if err := accounts.Create(ctx, account); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to complete registration: %w", err)
	}
	return account, nil
}

type baseURLKey struct{}

// WithBaseURL attaches the externally visible origin of the current request,
// e.g. "https://admin.example.org", for building completion links.
func WithBaseURL(ctx context.Context, base string) context.Context {
	return context.WithValue(ctx, baseURLKey{}, base)
}

func (w *invitationWorkflow) completionLink(ctx context.Context, token string) string {
	base, _ := ctx.Value(baseURLKey{}).(string)
	if base == "" {
		base = w.opts.PublicBaseURL
	}
	path := w.opts.CompletionPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + path + "?token=" + url.QueryEscape(token)
}
