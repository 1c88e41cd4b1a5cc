package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"ministry-admin-backend/internal/domain"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) NotifyApproved(ctx context.Context, req *domain.RegistrationRequest, link string, expiresAt time.Time) error {
	args := m.Called(ctx, req, link, expiresAt)
	return args.Error(0)
}

func (m *MockDispatcher) NotifyRejected(ctx context.Context, req *domain.RegistrationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockDispatcher) SendPendingDigest(ctx context.Context, recipient string, pending []domain.RegistrationRequest) error {
	args := m.Called(ctx, recipient, pending)
	return args.Error(0)
}

type MockTokenGenerator struct {
	mock.Mock
}

func (m *MockTokenGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}
