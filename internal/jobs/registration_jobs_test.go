package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ministry-admin-backend/internal/clock"
	"ministry-admin-backend/internal/config"
	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/repository/memory"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) NotifyApproved(ctx context.Context, req *domain.RegistrationRequest, link string, expiresAt time.Time) error {
	return m.Called(ctx, req, link, expiresAt).Error(0)
}

func (m *MockDispatcher) NotifyRejected(ctx context.Context, req *domain.RegistrationRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockDispatcher) SendPendingDigest(ctx context.Context, recipient string, pending []domain.RegistrationRequest) error {
	return m.Called(ctx, recipient, pending).Error(0)
}

type fakeHealth struct {
	serving *bool
}

func (f *fakeHealth) SetServing(serving bool) {
	f.serving = &serving
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newRunner(t *testing.T, recipients ...string) (*JobRunner, *memory.Store, *clock.Manual, *MockDispatcher) {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := memory.NewStore(clk)
	notifier := new(MockDispatcher)
	cfg := &config.Config{
		Email:     config.EmailConfig{AdminRecipients: recipients},
		Scheduler: config.SchedulerConfig{RejectedRetentionDays: 90},
	}
	jr := NewJobRunner(Deps{
		Requests: store.Requests(),
		Pinger:   store,
		Notifier: notifier,
		Clock:    clk,
	}, cfg)
	return jr, store, clk, notifier
}

func seed(t *testing.T, store *memory.Store, id, email string, status domain.RequestStatus) {
	t.Helper()
	ctx := context.Background()
	req := &domain.RegistrationRequest{ID: id, Name: id, Email: email, Status: domain.RequestStatusPending}
	require.NoError(t, store.Requests().Create(ctx, req))
	if status != domain.RequestStatusPending {
		req.Status = status
		require.NoError(t, store.Requests().UpdateIfStatus(ctx, req, domain.RequestStatusPending))
	}
}

func TestPurgeRejected(t *testing.T) {
	ctx := context.Background()
	jr, store, clk, _ := newRunner(t)

	seed(t, store, "old", "old@x.org", domain.RequestStatusRejected)
	seed(t, store, "kept", "kept@x.org", domain.RequestStatusPending)
	clk.Advance(91 * 24 * time.Hour)
	seed(t, store, "recent", "recent@x.org", domain.RequestStatusRejected)

	n, err := jr.purgeRejected(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := store.Requests().ListByStatus(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.NotPanics(t, jr.PurgeRejectedRequests)
}

func TestSendPendingDigest(t *testing.T) {
	ctx := context.Background()

	t.Run("Fans Out To Every Recipient", func(t *testing.T) {
		jr, store, _, notifier := newRunner(t, "a@x.org", "b@x.org", "c@x.org")
		seed(t, store, "r1", "one@x.org", domain.RequestStatusPending)
		seed(t, store, "r2", "two@x.org", domain.RequestStatusRejected)

		notifier.On("SendPendingDigest", mock.Anything, mock.Anything, mock.MatchedBy(func(p []domain.RegistrationRequest) bool {
			return len(p) == 1 && p[0].ID == "r1"
		})).Return(nil).Times(3)

		require.NoError(t, jr.sendPendingDigest(ctx))
		notifier.AssertExpectations(t)
	})

	t.Run("Collects Failures", func(t *testing.T) {
		jr, store, _, notifier := newRunner(t, "a@x.org", "b@x.org")
		seed(t, store, "r1", "one@x.org", domain.RequestStatusPending)

		notifier.On("SendPendingDigest", mock.Anything, "a@x.org", mock.Anything).Return(nil)
		notifier.On("SendPendingDigest", mock.Anything, "b@x.org", mock.Anything).Return(errors.New("bounce"))

		err := jr.sendPendingDigest(ctx)
		assert.ErrorContains(t, err, "b@x.org")
	})

	t.Run("Nothing Pending", func(t *testing.T) {
		jr, _, _, notifier := newRunner(t, "a@x.org")
		require.NoError(t, jr.sendPendingDigest(ctx))
		notifier.AssertNotCalled(t, "SendPendingDigest", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProbeHealth(t *testing.T) {
	jr, _, _, _ := newRunner(t)
	health := &fakeHealth{}
	jr.health = health

	jr.ProbeHealth()
	require.NotNil(t, health.serving)
	assert.True(t, *health.serving)

	jr.pinger = failingPinger{}
	jr.ProbeHealth()
	assert.False(t, *health.serving)
}
