package jobs

import (
	"ministry-admin-backend/internal/clock"
	"ministry-admin-backend/internal/config"
	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/metrics"
	"ministry-admin-backend/internal/repository"
	"ministry-admin-backend/internal/service"
)

// HealthReporter receives the outcome of each health probe.
type HealthReporter interface {
	SetServing(serving bool)
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	requests repository.RegistrationRequestRepository
	pinger   repository.Pinger
	notifier service.NotificationDispatcher
	health   HealthReporter
	metrics  *metrics.Metrics
	clock    clock.Clock
	config   *config.Config
}

// Deps holds everything the jobs need
type Deps struct {
	Requests repository.RegistrationRequestRepository
	Pinger   repository.Pinger
	Notifier service.NotificationDispatcher
	Health   HealthReporter
	Metrics  *metrics.Metrics
	Clock    clock.Clock
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(deps Deps, cfg *config.Config) *JobRunner {
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	return &JobRunner{
		requests: deps.Requests,
		pinger:   deps.Pinger,
		notifier: deps.Notifier,
		health:   deps.Health,
		metrics:  deps.Metrics,
		clock:    deps.Clock,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every housekeeping job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ProbeHealth()
	jr.PurgeRejectedRequests()
	jr.SendPendingDigest()
}
