package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ministry-admin-backend/internal/clock"
	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/repository"
)

func newTestStore() (*Store, *clock.Manual) {
	clk := clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewStore(clk), clk
}

func pendingRequest(id, email string) *domain.RegistrationRequest {
	return &domain.RegistrationRequest{ID: id, Name: "Jane", Email: email, Status: domain.RequestStatusPending}
}

func TestRequestRepository_CreateRejectsSecondPending(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	repo := store.Requests()

	require.NoError(t, repo.Create(ctx, pendingRequest("r1", "jane@x.org")))
	err := repo.Create(ctx, pendingRequest("r2", "jane@x.org"))
	assert.ErrorIs(t, err, repository.ErrDuplicatePending)

	require.NoError(t, repo.Create(ctx, pendingRequest("r3", "other@x.org")))
}

func TestRequestRepository_UpdateIfStatus(t *testing.T) {
	store, clk := newTestStore()
	ctx := context.Background()
	repo := store.Requests()
	require.NoError(t, repo.Create(ctx, pendingRequest("r1", "jane@x.org")))

	t.Run("Success", func(t *testing.T) {
		clk.Advance(time.Minute)
		token := "tok"
		expires := clk.Now().Add(time.Hour)
		req, err := repo.GetByID(ctx, "r1")
		require.NoError(t, err)
		req.Status = domain.RequestStatusApproved
		req.ApprovalToken = &token
		req.ApprovalExpires = &expires

		require.NoError(t, repo.UpdateIfStatus(ctx, req, domain.RequestStatusPending))
		assert.Equal(t, clk.Now(), req.UpdatedAt)

		stored, err := repo.GetByToken(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "r1", stored.ID)
		assert.Equal(t, domain.RequestStatusApproved, stored.Status)
	})

	t.Run("Conflict", func(t *testing.T) {
		req, err := repo.GetByID(ctx, "r1")
		require.NoError(t, err)
		req.Status = domain.RequestStatusRejected
		err = repo.UpdateIfStatus(ctx, req, domain.RequestStatusPending)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("Missing", func(t *testing.T) {
		err := repo.UpdateIfStatus(ctx, pendingRequest("nope", "x@x.org"), domain.RequestStatusPending)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})
}

func TestRequestRepository_ConsumeTokenOnce(t *testing.T) {
	store, clk := newTestStore()
	ctx := context.Background()
	repo := store.Requests()

	token := "secret-token"
	expires := clk.Now().Add(time.Hour)
	req := pendingRequest("r1", "jane@x.org")
	require.NoError(t, repo.Create(ctx, req))
	req.Status = domain.RequestStatusApproved
	req.ApprovalToken = &token
	req.ApprovalExpires = &expires
	require.NoError(t, repo.UpdateIfStatus(ctx, req, domain.RequestStatusPending))

	var wg conc.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Go(func() {
			results <- repo.ConsumeToken(ctx, "r1", token, "acct-1", clk.Now())
		})
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, repository.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, conflicts)

	stored, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, stored.ApprovalToken)
	assert.Nil(t, stored.ApprovalExpires)
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, "acct-1", *stored.AccountID)
	assert.Equal(t, domain.RequestStatusApproved, stored.Status)

	_, err = repo.GetByToken(ctx, token)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRequestRepository_ListByStatusNewestFirst(t *testing.T) {
	store, clk := newTestStore()
	ctx := context.Background()
	repo := store.Requests()

	require.NoError(t, repo.Create(ctx, pendingRequest("r1", "a@x.org")))
	clk.Advance(time.Second)
	require.NoError(t, repo.Create(ctx, pendingRequest("r2", "b@x.org")))
	clk.Advance(time.Second)
	rejected := pendingRequest("r3", "c@x.org")
	rejected.Status = domain.RequestStatusRejected
	require.NoError(t, repo.Create(ctx, rejected))

	pending, err := repo.ListByStatus(ctx, domain.RequestStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "r2", pending[0].ID)
	assert.Equal(t, "r1", pending[1].ID)

	all, err := repo.ListByStatus(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRequestRepository_DeleteRejectedBefore(t *testing.T) {
	store, clk := newTestStore()
	ctx := context.Background()
	repo := store.Requests()

	old := pendingRequest("old", "a@x.org")
	old.Status = domain.RequestStatusRejected
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, pendingRequest("pending", "b@x.org")))
	clk.Advance(48 * time.Hour)
	recent := pendingRequest("recent", "c@x.org")
	recent.Status = domain.RequestStatusRejected
	require.NoError(t, repo.Create(ctx, recent))

	n, err := repo.DeleteRejectedBefore(ctx, clk.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByID(ctx, "old")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetByID(ctx, "pending")
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, "recent")
	assert.NoError(t, err)
}

func TestAccountRepository_EmailUniqueCaseInsensitive(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	repo := store.Accounts()

	require.NoError(t, repo.Create(ctx, &domain.AdminAccount{ID: "a1", Email: "jane@x.org", Role: domain.AccountRoleAdmin}))
	err := repo.Create(ctx, &domain.AdminAccount{ID: "a2", Email: "JANE@x.org", Role: domain.AccountRoleAdmin})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	found, err := repo.GetByEmail(ctx, " Jane@X.org ")
	require.NoError(t, err)
	assert.Equal(t, "a1", found.ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	require.NoError(t, store.Accounts().Create(ctx, &domain.AdminAccount{ID: "a1", Email: "taken@x.org"}))
	require.NoError(t, store.Requests().Create(ctx, pendingRequest("r1", "x@x.org")))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(requests repository.RegistrationRequestRepository, accounts repository.AccountRepository) error {
		if err := requests.Delete(ctx, "r1"); err != nil {
			return err
		}
		if err := accounts.Create(ctx, &domain.AdminAccount{ID: "a2", Email: "new@x.org"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Requests().GetByID(ctx, "r1")
	assert.NoError(t, err, "delete inside failed tx must be rolled back")
	_, err = store.Accounts().GetByID(ctx, "a2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_WithinTxCommits(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(_ repository.RegistrationRequestRepository, accounts repository.AccountRepository) error {
		return accounts.Create(ctx, &domain.AdminAccount{ID: "a1", Email: "new@x.org"})
	})
	require.NoError(t, err)

	_, err = store.Accounts().GetByID(ctx, "a1")
	assert.NoError(t, err)
}
