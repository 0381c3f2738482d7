package infrastructure

import (
	"context"
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the service name reported by the health server
const HealthService = "drawbot.lottery"

// HealthServer exposes grpc health checks. It reports NOT_SERVING until
// MarkServing is called after recovery has scheduled every lottery.
type HealthServer struct {
	addr     string
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

// NewHealthServer creates a health server bound to addr once started
func NewHealthServer(addr string) *HealthServer {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)

	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	return &HealthServer{
		addr:   addr,
		server: server,
		health: hs,
	}
}

// Start begins serving in the background and returns a stop function
func (h *HealthServer) Start(ctx context.Context) (func(), error) {
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", h.addr, err)
	}
	h.listener = lis

	go func() {
		log.WithField("addr", lis.Addr().String()).Info("Health server listening")
		if err := h.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
			log.WithError(err).Error("Health server stopped unexpectedly")
		}
	}()

	return func() {
		h.health.Shutdown()
		h.server.GracefulStop()
	}, nil
}

// Addr returns the bound address, useful when started on port 0
func (h *HealthServer) Addr() string {
	if h.listener == nil {
		return h.addr
	}
	return h.listener.Addr().String()
}

// MarkServing flips every service to SERVING
func (h *HealthServer) MarkServing() {
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.health.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
}

// MarkNotServing flips every service to NOT_SERVING
func (h *HealthServer) MarkNotServing() {
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.health.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)
}
