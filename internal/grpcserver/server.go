// Package grpcserver поднимает gRPC-сервер со стандартной проверкой
// здоровья grpc.health.v1 и reflection.
package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName используется как имя сервиса в ответах Health/Check.
const ServiceName = "personalaccount.Account"

// DefaultCheckInterval задаёт период проверки хранилища.
const DefaultCheckInterval = 10 * time.Second

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server представляет gRPC-сервер, статус которого следует за доступностью хранилища.
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	pinger   Pinger
	interval time.Duration
	logger   *zap.Logger
}

// New создаёт сервер. Пока хранилище не проверено, статус NOT_SERVING.
func New(pinger Pinger, interval time.Duration, logger *zap.Logger) *Server {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}

	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{grpc: srv, health: hs, pinger: pinger, interval: interval, logger: logger}
}

// Serve принимает соединения на lis до вызова Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC сервер запущен", zap.String("address", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Watch проверяет хранилище сразу и затем каждые interval, пока не
// отменён ctx.
func (s *Server) Watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *Server) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn("Хранилище недоступно", zap.Error(err))
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Stop переводит сервис в NOT_SERVING и дожидается завершения вызовов.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
