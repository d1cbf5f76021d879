package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/furniture-factory/internal/application/common"
)

// Server exposes the factory service and the standard health service
type Server struct {
	listener net.Listener
	grpc     *grpc.Server
	health   *health.Server
}

// ListenUnix replaces any stale socket at socketPath and listens on it (owner only)
func ListenUnix(socketPath string) (net.Listener, error) {
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}
	return listener, nil
}

// NewServer registers svc on a new gRPC server bound to listener.
// logger is injected into every request context.
func NewServer(listener net.Listener, svc FactoryServiceServer, logger common.ContainerLogger) *Server {
	if logger == nil {
		logger = common.Discard
	}
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	RegisterFactoryServiceServer(s, svc)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{listener: listener, grpc: s, health: hs}
}

// Serve blocks until ctx is done, then drains in-flight calls
func (s *Server) Serve(ctx context.Context) error {
	logger := common.LoggerFromContext(ctx)
	logger.Log(common.LevelInfo, fmt.Sprintf("[FactoryService] Listening on %s", s.listener.Addr()), nil)

	errChan := make(chan error, 1)
	go func() {
		if err := s.grpc.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		logger.Log(common.LevelInfo, "[FactoryService] Stopped", nil)
		return nil
	}
}

func loggingInterceptor(logger common.ContainerLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if logger != nil {
			ctx = common.WithLogger(ctx, logger)
		}
		start := time.Now()
		resp, err := handler(ctx, req)

		level := common.LevelDebug
		if err != nil {
			level = common.LevelWarn
		}
		common.LoggerFromContext(ctx).Log(level, fmt.Sprintf("[FactoryService] %s", info.FullMethod), map[string]interface{}{
			"code":     status.Code(err).String(),
			"duration": time.Since(start).String(),
		})
		return resp, err
	}
}
