package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/credit-ledger/internal/app/background"
	"github.com/LavaJover/credit-ledger/internal/app/setup"
	"github.com/LavaJover/credit-ledger/internal/delivery/grpcapi"
	"github.com/LavaJover/credit-ledger/internal/delivery/http/handlers"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/migrate"
	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var migrateOnStart bool

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Restore the ledger and serve the gRPC and HTTP APIs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		deps, err := setup.InitializeDependencies(cfg, log)
		if err != nil {
			return err
		}
		defer deps.Close()

		if migrateOnStart {
			if err := migrate.RunMigrations(deps.DB, cfg.LedgerDB.MigrationsPath, log); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := deps.Usecase.Restore(ctx); err != nil {
			return fmt.Errorf("restore ledger: %w", err)
		}

		tasks := background.NewBackgroundTasks(deps.Usecase, deps.Dispatcher, cfg.Snapshot.Schedule, log.WithField("component", "background"))
		if err := tasks.StartAll(ctx); err != nil {
			return err
		}

		grpcServer, healthServer := grpcapi.NewServer(grpcapi.NewLedgerHandler(deps.Usecase), deps.Tokens, log.WithField("component", "grpc"))
		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}

		httpServer := &http.Server{
			Addr:         fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
			Handler:      handlers.NewHTTPQueryHandler(deps.Usecase, deps.Registry, log.WithField("component", "http")).Router(),
			ReadTimeout:  cfg.HTTPServer.ReadTimeout,
			WriteTimeout: cfg.HTTPServer.WriteTimeout,
		}

		errc := make(chan error, 2)
		go func() {
			log.Infof("gRPC server listening on %s", lis.Addr())
			errc <- grpcServer.Serve(lis)
		}()
		go func() {
			log.Infof("HTTP server listening on %s", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()

		select {
		case <-ctx.Done():
			log.Info("shutting down")
		case err = <-errc:
			log.WithError(err).Error("server failed")
			stop()
		}

		healthServer.SetServingStatus(grpcapi.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http shutdown")
		}

		tasks.Wait()
		if err := deps.Usecase.TakeSnapshot(shutdownCtx); err != nil {
			log.WithError(err).Warn("final snapshot failed")
		}
		return err
	},
}
