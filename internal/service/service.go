package service

import (
	"context"
	"time"

	"ministry-admin-backend/internal/domain"
)

type InvitationWorkflow interface {
	Submit(ctx context.Context, name, email, message string) (*domain.RegistrationRequest, error)
	Get(ctx context.Context, id string) (*domain.RegistrationRequest, error)
	List(ctx context.Context, status domain.RequestStatus) ([]domain.RegistrationRequest, error)
	Delete(ctx context.Context, id string) error
	Approve(ctx context.Context, requestID, approverID string) (*ApprovalResult, error)
	Reject(ctx context.Context, requestID, reason string) (*domain.RegistrationRequest, error)
	VerifyToken(ctx context.Context, token string) (*Invitee, error)
	Complete(ctx context.Context, token, password string) (*domain.AdminAccount, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.AdminAccount, string, error) // account, session token
	IssueSession(ctx context.Context, account *domain.AdminAccount) (string, error)
	Bootstrap(ctx context.Context, name, email, password string) (*domain.AdminAccount, error)
}

// NotificationDispatcher delivers workflow messages. Callers treat every error
// as non-fatal.
type NotificationDispatcher interface {
	NotifyApproved(ctx context.Context, req *domain.RegistrationRequest, link string, expiresAt time.Time) error
	NotifyRejected(ctx context.Context, req *domain.RegistrationRequest) error
	SendPendingDigest(ctx context.Context, recipient string, pending []domain.RegistrationRequest) error
}

type ApprovalResult struct {
	Request      *domain.RegistrationRequest `json:"request"`
	Token        string                      `json:"token"`
	ExpiresAt    time.Time                   `json:"expiresAt"`
	ApprovalLink string                      `json:"approvalLink"`
	EmailSent    bool                        `json:"emailSent"`
	Warning      string                      `json:"warning,omitempty"`
}

// Invitee is what a valid token reveals about its holder.
type Invitee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
