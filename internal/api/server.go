// Package api hosts the sentidash HTTP and gRPC listeners and implements the
// gRPC Dashboard service.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"sentidash/internal/config"
)

// Server is the main API server that hosts HTTP and gRPC endpoints.
type Server struct {
	cfg             *config.Config
	httpServer      *http.Server
	grpcServer      *grpc.Server
	log             *slog.Logger
	shutdownTimeout time.Duration
}

// NewServer creates a Server serving handler over HTTP and dash over gRPC.
func NewServer(cfg *config.Config, handler http.Handler, dash *DashboardService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	gs := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(log)))
	dash.RegisterGRPC(gs)

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpcServer:      gs,
		log:             log,
		shutdownTimeout: 10 * time.Second,
	}
}

// ListenAndServe starts the HTTP and gRPC listeners and blocks until the
// context is cancelled or a fatal error occurs. A zero gRPC port disables
// the gRPC listener.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.cfg.HTTPAddr())
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}

	var grpcLis net.Listener
	if s.cfg.Server.GRPCPort != 0 {
		grpcLis, err = net.Listen("tcp", s.cfg.GRPCAddr())
		if err != nil {
			httpLis.Close()
			return fmt.Errorf("grpc listen: %w", err)
		}
	}
	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve runs both servers on the given listeners until ctx is cancelled,
// then shuts them down gracefully. grpcLis may be nil.
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("http server listening", "addr", httpLis.Addr().String())
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if grpcLis != nil {
		g.Go(func() error {
			s.log.Info("grpc server listening", "addr", grpcLis.Addr().String())
			if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown performs a graceful shutdown of the HTTP and gRPC servers. gRPC
// connections still open when ctx expires are closed forcibly.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down servers")

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	err := s.httpServer.Shutdown(ctx)

	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
		<-stopped
	}
	if err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
