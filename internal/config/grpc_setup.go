package config

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ReportServiceName is the service name reported by the health server.
const ReportServiceName = "report.ReportService"

type Pinger interface {
	Ping(ctx context.Context) error
}

// GRPCSetup listens on addr and returns a server carrying the health and
// reflection services. Every service starts NOT_SERVING until WatchHealth
// runs its first check.
func GRPCSetup(addr string) (net.Listener, *grpc.Server, *health.Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	server := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(ReportServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	reflection.Register(server)

	return listener, server, healthServer, nil
}

// WatchHealth pings the store every interval and mirrors the result on the
// health server until ctx is done.
func WatchHealth(ctx context.Context, hs *health.Server, store Pinger, interval time.Duration, logger *logrus.Logger) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		status := healthpb.HealthCheckResponse_SERVING
		if err := store.Ping(pingCtx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			logger.WithFields(logrus.Fields{
				"Function": "WatchHealth",
				"Error":    err,
			}).Warn("Record store is unreachable")
		}
		hs.SetServingStatus("", status)
		hs.SetServingStatus(ReportServiceName, status)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			check()
		}
	}
}
