package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"fleet-booking-backend/internal/api/grpc/interceptor"
	"fleet-booking-backend/internal/logger"
	"fleet-booking-backend/internal/security"
)

// ReservationServiceName is the gRPC service name of the reservation API, also reported
// by the health service.
const ReservationServiceName = "fleet.booking.v1.ReservationService"

// Pinger is satisfied by the postgres store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewServer builds the gRPC server with the reservation service, the health service
// and reflection registered.
func NewServer(tm security.TokenManager, hs *health.Server, reservations ReservationServer) *grpc.Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptor.NewAuthInterceptor(tm).Unary(),
			interceptor.LoggingUnary(),
		),
	)
	RegisterReservationServer(s, reservations)
	healthpb.RegisterHealthServer(s, hs)

	// Register reflection service for grpcurl
	reflection.Register(s)
	return s
}

// HealthReporter keeps the health server in line with database reachability.
type HealthReporter struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
}

func NewHealthReporter(server *health.Server, pinger Pinger, interval time.Duration) *HealthReporter {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &HealthReporter{server: server, pinger: pinger, interval: interval, timeout: 2 * time.Second}
}

// CheckOnce pings the database once and publishes the result.
func (h *HealthReporter) CheckOnce(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := h.pinger.Ping(ctx); err != nil {
		logger.Warn("Health check failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", st)
	h.server.SetServingStatus(ReservationServiceName, st)
	return st
}

// Run checks the database until ctx is done, then marks every service as shutting down.
func (h *HealthReporter) Run(ctx context.Context) {
	h.CheckOnce(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.CheckOnce(ctx)
		}
	}
}
