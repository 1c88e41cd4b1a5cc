// Package grpc exposes the standard gRPC health checking service so
// orchestrators can probe the backend without going through HTTP.
package grpc

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"ministry-admin-backend/internal/api/grpc/interceptor"
	"ministry-admin-backend/internal/logger"
)

// RegistrationService is the health-check service name for the invitation workflow.
const RegistrationService = "ministry.admin.v1.Registration"

type HealthServer struct {
	server *grpc.Server
	health *health.Server
}

func NewHealthServer() *HealthServer {
	s := grpc.NewServer(grpc.UnaryInterceptor(interceptor.UnaryLogging()))
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)

	// Register reflection service for grpcurl
	reflection.Register(s)

	hs := &HealthServer{server: s, health: h}
	hs.SetServing(false)
	return hs
}

// SetServing flips both the overall and the registration service status.
func (s *HealthServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(RegistrationService, st)
}

func (s *HealthServer) Serve(lis net.Listener) error {
	logger.Info("gRPC health server listening", "address", lis.Addr().String())
	return s.server.Serve(lis)
}

func (s *HealthServer) GracefulStop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
