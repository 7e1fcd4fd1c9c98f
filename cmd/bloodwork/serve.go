package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/bloodwork/internal/async"
	"github.com/joseph-ayodele/bloodwork/internal/pipeline"
	"github.com/joseph-ayodele/bloodwork/internal/server"
)

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over gRPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			assets, err := pipeline.LoadAssets(cfg, logger)
			if err != nil {
				logger.Error("failed to load model artifacts", "error", err)
				return err
			}
			defer assets.Close()

			loader, err := pipeline.NewTextExtractor(cfg, logger)
			if err != nil {
				logger.Error("failed to build document loader", "error", err)
				return err
			}
			processor := pipeline.NewProcessor(logger, loader, assets)

			queue := async.NewProcessorQueue(processor, logger,
				async.WithWorkers(cfg.Server.Workers),
				async.WithQueueSize(cfg.Server.QueueSize),
			)

			svc := server.NewPredictionService(queue, cfg.Server.RequestTimeout, logger)
			grpcServer, healthServer := server.NewGRPCServer(svc, logger)

			lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
			if err != nil {
				logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
				return err
			}

			logger.Info("bloodwork listening", "addr", cfg.Server.GRPCAddr, "workers", cfg.Server.Workers)
			serveErr := make(chan error, 1)
			go func() { serveErr <- grpcServer.Serve(lis) }()

			select {
			case <-ctx.Done():
			case err := <-serveErr:
				logger.Error("gRPC serve error", "error", err)
				return err
			}

			logger.Info("shutting down")
			healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			grpcServer.GracefulStop()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			queue.Shutdown(shutdownCtx)
			return nil
		},
	}
}
