package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ministry-admin-backend/internal/config"
	"ministry-admin-backend/internal/jobs"
	"ministry-admin-backend/internal/repository/memory"
)

func TestNewScheduler(t *testing.T) {
	store := memory.NewStore(nil)
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		PurgeRejectedRequests: "0 0 3 * * *",
		SendPendingDigest:     "0 0 8 * * *",
		ProbeHealth:           "*/30 * * * * *",
	}}

	s, err := NewScheduler(jobs.NewJobRunner(jobs.Deps{Requests: store.Requests(), Pinger: store}, cfg))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Entries())

	s.Start()
	s.Stop()
}

func TestNewScheduler_BadSpec(t *testing.T) {
	store := memory.NewStore(nil)
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		PurgeRejectedRequests: "every tuesday",
		SendPendingDigest:     "0 0 8 * * *",
		ProbeHealth:           "*/30 * * * * *",
	}}

	_, err := NewScheduler(jobs.NewJobRunner(jobs.Deps{Requests: store.Requests(), Pinger: store}, cfg))
	assert.Error(t, err)
}
