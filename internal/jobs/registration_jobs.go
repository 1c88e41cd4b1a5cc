package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/logger"
)

const digestConcurrency = 4

// PurgeRejectedRequests deletes rejected requests older than the retention window
func (jr *JobRunner) PurgeRejectedRequests() {
	jr.runWithRecovery("PurgeRejectedRequests", func() {
		n, err := jr.purgeRejected(context.Background())
		if err != nil {
			logger.Error("Failed to purge rejected requests", "error", err)
			return
		}
		logger.Info("Purged rejected requests", "count", n)
	})
}

func (jr *JobRunner) purgeRejected(ctx context.Context) (int64, error) {
	cutoff := jr.clock.Now().Add(-jr.config.Scheduler.RejectedRetention())
	return jr.requests.DeleteRejectedBefore(ctx, cutoff)
}

// SendPendingDigest emails the configured administrators a list of requests
// awaiting review
func (jr *JobRunner) SendPendingDigest() {
	jr.runWithRecovery("SendPendingDigest", func() {
		if err := jr.sendPendingDigest(context.Background()); err != nil {
			logger.Error("Failed to send pending digest", "error", err)
		}
	})
}

func (jr *JobRunner) sendPendingDigest(ctx context.Context) error {
	pending, err := jr.requests.ListByStatus(ctx, domain.RequestStatusPending)
	if err != nil {
		return fmt.Errorf("failed to list pending requests: %w", err)
	}
	jr.metrics.SetPending(len(pending))

	recipients := jr.config.Email.AdminRecipients
	if len(pending) == 0 || len(recipients) == 0 {
		logger.Debug("No pending digest to send", "pending", len(pending), "recipients", len(recipients))
		return nil
	}

	p := pool.New().WithMaxGoroutines(digestConcurrency).WithContext(ctx)
	for _, recipient := range recipients {
		p.Go(func(ctx context.Context) error {
			err := jr.notifier.SendPendingDigest(ctx, recipient, pending)
			jr.metrics.Notification("digest", err)
			if err != nil {
				logger.Warn("Pending digest delivery failed", "to", recipient, "error", err)
				return fmt.Errorf("%s: %w", recipient, err)
			}
			return nil
		})
	}
	return p.Wait()
}

// ProbeHealth pings the repository and reports the result to the gRPC health service
func (jr *JobRunner) ProbeHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := jr.pinger.Ping(ctx)
	if err != nil {
		logger.Warn("Health probe failed", "error", err)
	}
	if jr.health != nil {
		jr.health.SetServing(err == nil)
	}
}
