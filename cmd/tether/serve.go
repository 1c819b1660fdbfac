package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/tether/internal/config"
	"github.com/alfredjeanlab/tether/internal/credential"
	"github.com/alfredjeanlab/tether/internal/directory"
	"github.com/alfredjeanlab/tether/internal/events"
	"github.com/alfredjeanlab/tether/internal/reconcile"
	"github.com/alfredjeanlab/tether/internal/registry"
	"github.com/alfredjeanlab/tether/internal/snapshot"
	"github.com/alfredjeanlab/tether/internal/store/postgres"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the Tether registry server",
	GroupID: "system",
	// The server has no use for an API client connection.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		return runServe(cfg, logger)
	},
}

func runServe(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	var publisher events.Publisher = &events.NoopPublisher{}
	if cfg.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		publisher = pub
		logger.Info("event publishing enabled", "nats_url", cfg.NATSURL)
	} else {
		logger.Info("event publishing disabled; set TETHER_NATS_URL to enable")
	}
	defer publisher.Close()

	var dir directory.Directory = directory.PermissiveDirectory{}
	if cfg.DirectoryAddr != "" {
		d, err := directory.NewGRPCDirectory(cfg.DirectoryAddr)
		if err != nil {
			return err
		}
		dir = d
		logger.Info("account directory enabled", "addr", cfg.DirectoryAddr)
	} else {
		logger.Warn("no account directory configured; every account is treated as active")
	}
	defer dir.Close()

	svc := registry.NewService(store, dir, credential.Default(), publisher, logger)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: svc.NewHTTPHandler(cfg.AuthToken),
	}
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "err", err)
		}
	}()

	if scheduler := startSnapshots(ctx, cfg, store, logger); scheduler != nil {
		defer scheduler.Stop()
	}
	startReconciler(ctx, cfg, store, logger)

	logger.Info("tether server started", "http_addr", cfg.HTTPAddr)
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "err", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// startSnapshots wires the configured snapshot destinations and starts the
// scheduler. Returns nil when snapshots are disabled or no destination is
// usable.
func startSnapshots(ctx context.Context, cfg *config.Config, store *postgres.PostgresStore, logger *slog.Logger) *snapshot.Scheduler {
	if cfg.SnapshotInterval <= 0 {
		return nil
	}

	var dests []snapshot.Destination
	if cfg.SnapshotS3Bucket != "" {
		dest, err := snapshot.NewS3Destination(ctx, cfg.SnapshotS3Bucket, cfg.SnapshotS3Key, cfg.SnapshotS3Region, cfg.SnapshotS3Endpoint)
		if err != nil {
			logger.Error("S3 snapshot destination unavailable", "err", err)
		} else {
			dests = append(dests, dest)
			logger.Info("snapshotting to S3", "bucket", cfg.SnapshotS3Bucket, "key", cfg.SnapshotS3Key)
		}
	}
	if cfg.SnapshotFile != "" {
		dests = append(dests, snapshot.NewFileDestination(cfg.SnapshotFile))
		logger.Info("snapshotting to file", "path", cfg.SnapshotFile)
	}
	if len(dests) == 0 {
		return nil
	}

	scheduler := snapshot.NewScheduler(store, dests, cfg.SnapshotInterval, logger)
	scheduler.Start()
	logger.Info("snapshot scheduler started", "interval", cfg.SnapshotInterval)
	return scheduler
}

// startReconciler subscribes to account lifecycle events when NATS is
// configured. The subscriber stops when ctx is cancelled.
func startReconciler(ctx context.Context, cfg *config.Config, store *postgres.PostgresStore, logger *slog.Logger) {
	if cfg.NATSURL == "" {
		return
	}
	sub, err := events.NewNATSSubscriber(cfg.NATSURL)
	if err != nil {
		logger.Error("lifecycle subscriber unavailable", "err", err)
		return
	}

	reconciler := reconcile.New(store, logger)
	go func() {
		defer sub.Close()
		if err := reconciler.StartSubscriber(ctx, sub); err != nil {
			logger.Error("lifecycle subscriber error", "err", err)
		}
	}()
	logger.Info("lifecycle reconciler started")
}
