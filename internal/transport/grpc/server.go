package grpc

import (
	"fmt"
	"net"

	"mealplan-service/internal/config"
	"mealplan-service/pkg/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// Server represents a gRPC server
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	port       int
	log        *logger.Logger
}

// NewServer creates a new gRPC server
func NewServer(handler MealPlanServer, cfg *config.GRPCConfig, log *logger.Logger) *Server {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor(log),
			loggingInterceptor(log),
			timeoutInterceptor(cfg.Timeout),
		),
	}
	if cfg.MaxConnectionIdle > 0 || cfg.MaxConnectionAge > 0 {
		opts = append(opts, grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: cfg.MaxConnectionIdle,
			MaxConnectionAge:  cfg.MaxConnectionAge,
		}))
	}

	grpcServer := grpc.NewServer(opts...)

	RegisterMealPlanServer(grpcServer, handler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		port:       cfg.Port,
		log:        log,
	}
}

// Start listens on the configured port and serves until stopped
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	s.log.Info("gRPC server listening", "port", s.port)

	return s.Serve(listener)
}

// Serve serves on an existing listener
func (s *Server) Serve(listener net.Listener) error {
	if err := s.grpcServer.Serve(listener); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop gracefully stops the gRPC server
func (s *Server) Stop() {
	s.log.Info("gracefully stopping gRPC server")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	s.log.Info("gRPC server stopped")
}
