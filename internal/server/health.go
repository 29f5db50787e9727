package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/cory-johannsen/pokebattle/internal/config"
)

// Checker reports whether a dependency is usable.
type Checker interface {
	Health(ctx context.Context) error
}

// HealthService exposes the standard gRPC health protocol and keeps the
// overall status in step with a dependency probe.
type HealthService struct {
	addr     string
	grpc     *grpc.Server
	health   *health.Server
	checker  Checker
	interval time.Duration
	logger   *zap.Logger
	done     chan struct{}
	listener net.Listener
}

// NewHealthService creates the health server. A nil checker leaves the
// status SERVING.
//
// Precondition: logger must be non-nil; interval must be positive.
func NewHealthService(cfg config.GRPCConfig, checker Checker, interval time.Duration, logger *zap.Logger) *HealthService {
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)
	return &HealthService{
		addr:     cfg.Addr(),
		grpc:     gs,
		health:   hs,
		checker:  checker,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Listen binds the listen address ahead of Start.
func (s *HealthService) Listen() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.listener = lis
	return nil
}

// Addr returns the bound address once Listen has run, or the configured one.
func (s *HealthService) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Probe runs the checker once and publishes the result.
//
// Postcondition: Returns the status that was set.
func (s *HealthService) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if s.checker != nil {
		if err := s.checker.Health(ctx); err != nil {
			s.logger.Warn("health probe failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	return status
}

func (s *HealthService) probeLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			s.Probe(ctx)
			cancel()
		}
	}
}

// Start serves gRPC until Stop is called.
func (s *HealthService) Start() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	s.Probe(ctx)
	cancel()
	go s.probeLoop()

	s.logger.Info("grpc health listening", zap.String("addr", s.Addr()))
	if err := s.grpc.Serve(s.listener); err != nil {
		return fmt.Errorf("serving grpc: %w", err)
	}
	return nil
}

// Stop marks the service NOT_SERVING and drains open streams.
func (s *HealthService) Stop() {
	close(s.done)
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
