package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "ministry-admin-backend/internal/api/grpc"
	httpapi "ministry-admin-backend/internal/api/http"
	"ministry-admin-backend/internal/app"
	"ministry-admin-backend/internal/clock"
	"ministry-admin-backend/internal/config"
	"ministry-admin-backend/internal/jobs"
	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/metrics"
	"ministry-admin-backend/internal/scheduler"
	"ministry-admin-backend/internal/security"
	"ministry-admin-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	app.InitLogger(&cfg.Log)
	logger.Info("Starting Ministry Admin Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.Address(), "grpc_address", cfg.GRPCAddress(), "database_driver", cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.System()

	// Initialize Repositories
	store, _, closeStore, err := app.OpenStore(ctx, cfg, clk, true)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTTL(), clk)
	hasher := security.NewBcryptHasher(0)

	// Initialize Services
	m := metrics.New()
	notifier := app.NewDispatcher(&cfg.Email)
	workflow := service.NewInvitationWorkflow(
		store.Requests(),
		store.Accounts(),
		store,
		security.NewTokenGenerator(),
		hasher,
		notifier,
		clk,
		m,
		service.WorkflowOptions{
			PublicBaseURL:  cfg.Server.PublicBaseURL,
			CompletionPath: cfg.Workflow.CompletionPath,
		},
	)
	authSvc := service.NewAuthService(store.Accounts(), hasher, tokenManager)

	// gRPC health server
	healthServer := grpcapi.NewHealthServer()
	if addr := cfg.GRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		go func() {
			if err := healthServer.Serve(lis); err != nil {
				logger.Error("gRPC health server error", "error", err)
			}
		}()
	}

	// Scheduled jobs
	jobRunner := jobs.NewJobRunner(jobs.Deps{
		Requests: store.Requests(),
		Pinger:   store,
		Notifier: notifier,
		Health:   healthServer,
		Metrics:  m,
		Clock:    clk,
	}, cfg)
	jobRunner.ProbeHealth()

	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to configure scheduler: %v", err)
	}
	cronScheduler.Start()

	// HTTP API
	srv := &http.Server{
		Addr: cfg.Address(),
		Handler: httpapi.NewRouter(httpapi.RouterDeps{
			Workflow:       workflow,
			Auth:           authSvc,
			Tokens:         tokenManager,
			Health:         store,
			Metrics:        m,
			AllowedOrigins: cfg.Server.CORSAllowedOrigins,
			PublicBaseURL:  cfg.Server.PublicBaseURL,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	cronScheduler.Stop()
	healthServer.GracefulStop()
	logger.Info("Server stopped. Goodbye!")
}
