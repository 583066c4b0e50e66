package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/proof-extractor/internal/app"
	"github.com/joseph-ayodele/proof-extractor/internal/common"
	"github.com/joseph-ayodele/proof-extractor/internal/server"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		common.NewLogger(common.LogConfig{}, os.Stderr).Error("failed to load config", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if a.DB != nil {
		if err := a.DB.HealthCheck(ctx, 5*time.Second, logger); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
	}

	errCh := make(chan error, 2)

	// gRPC
	var grpcServer *grpc.Server
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		maxMsg := (cfg.Server.MaxUploadMB + 1) * 2 << 20 // base64 inflates uploads
		grpcServer = grpc.NewServer(
			grpc.UnaryInterceptor(server.LoggingInterceptor(logger)),
			grpc.MaxRecvMsgSize(maxMsg),
		)
		hs := health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, hs)
		hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		hs.SetServingStatus(server.ExtractionServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
		reflection.Register(grpcServer)
		server.RegisterExtractionServiceServer(grpcServer, server.NewExtractionService(a.Service, logger))

		go func() {
			logger.Info("gRPC server listening", "addr", cfg.Server.GRPCAddr)
			errCh <- grpcServer.Serve(lis)
		}()
	}

	// HTTP
	var httpServer *http.Server
	if cfg.Server.HTTPAddr != "" {
		httpServer = &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           server.NewHTTPHandler(a.Service, cfg.Server.MaxUploadMB, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("server stopped unexpectedly", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	logger.Info("stopped")
}
