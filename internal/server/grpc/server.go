// Package grpc serves the standard gRPC health service that mirror clients
// probe before they enroll.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Checker reports whether the backing store is usable.
type Checker func(ctx context.Context) error

type HealthServer struct {
	address  string
	logger   logging.Logger
	health   *health.Server
	check    Checker
	interval time.Duration
}

// NewHealthServer reports SERVING while check succeeds. check runs every
// interval; a nil check always succeeds.
func NewHealthServer(a string, l logging.Logger, check Checker, interval time.Duration) *HealthServer {
	return &HealthServer{
		address:  a,
		logger:   l.With("module", "grpc_health"),
		health:   health.NewServer(),
		check:    check,
		interval: interval,
	}
}

func (s *HealthServer) setStatus(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.check != nil {
		if err := s.check(ctx); err != nil {
			s.logger.Warn(ctx, "storage check failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
}

func (s *HealthServer) watch(ctx context.Context) {
	if s.check == nil || s.interval <= 0 {
		return
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.setStatus(ctx)
		}
	}
}

func (s *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.setStatus(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		// Shutdown flips every service to NOT_SERVING for clients that
		// are still connected.
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
