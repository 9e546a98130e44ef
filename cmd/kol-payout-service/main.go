package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/app/background"
	"github.com/LavaJover/kol-payout-service/internal/app/setup"
	"github.com/LavaJover/kol-payout-service/internal/config"
	"github.com/LavaJover/kol-payout-service/internal/delivery/grpcapi"
	"github.com/LavaJover/kol-payout-service/internal/delivery/httpapi"
	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/logger"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/postgres"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	_, logCloser, err := logger.Setup(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(ctx, cfg)
	if err != nil {
		slog.Error("failed to init dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		slog.Error("failed to init usecases", "error", err)
		os.Exit(1)
	}
	defer ucs.PayoutUsecase.WaitEvents()

	// Settlement consumer and eligibility snapshots
	var subscriber domain.SubscriberPort
	if deps.Subscriber != nil {
		subscriber = deps.Subscriber
	}
	tasks := background.NewBackgroundTasks(ucs.PayoutUsecase, subscriber, cfg.KafkaService.StatusTopic, cfg.KafkaService.GroupID)
	tasks.StartAll(ctx)

	// Creating gRPC server
	grpcServer := grpc.NewServer()
	grpcapi.Register(grpcServer, grpcapi.NewPayoutHandler(ucs.PayoutUsecase))

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		slog.Error("failed to listen", "error", err)
		os.Exit(1)
	}

	router := httpapi.NewRouter(
		httpapi.NewHandler(ucs.PayoutUsecase, func(ctx context.Context) error { return postgres.Ping(ctx, deps.DB) }),
		deps.Registry,
	)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 2)
	go func() {
		slog.Info("gRPC server started", "addr", lis.Addr().String())
		serveErr <- grpcServer.Serve(lis)
	}()
	go func() {
		slog.Info("HTTP server started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		slog.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
	grpcServer.GracefulStop()

	// background tasks must be gone before the deferred WaitEvents and deps.Close
	stop()
	tasks.Wait()
}
