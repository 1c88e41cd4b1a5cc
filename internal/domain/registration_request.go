package domain

import (
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Valid reports whether s is one of the known request statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// RegistrationRequest is a prospective administrator's request for an account.
// ApprovalToken and ApprovalExpires are set together, only while the request is
// approved and the invitation has not been redeemed yet.
type RegistrationRequest struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Message         string        `json:"message"`
	Status          RequestStatus `json:"status"`
	ApprovedBy      *string       `json:"approvedBy,omitempty"`
	ApprovalToken   *string       `json:"-"`
	ApprovalExpires *time.Time    `json:"approvalExpires,omitempty"`
	RejectionReason *string       `json:"rejectionReason,omitempty"`
	CompletedAt     *time.Time    `json:"completedAt,omitempty"`
	AccountID       *string       `json:"accountId,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Completed reports whether the invitation minted for this request was redeemed.
func (r *RegistrationRequest) Completed() bool {
	return r.CompletedAt != nil
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
