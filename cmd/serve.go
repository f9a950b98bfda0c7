package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/spf13/cobra"

	"github.com/crawlctl/coordinator/internal/api"
	"github.com/crawlctl/coordinator/internal/blob"
	"github.com/crawlctl/coordinator/internal/config"
	"github.com/crawlctl/coordinator/internal/coordinator"
	"github.com/crawlctl/coordinator/internal/health"
	"github.com/crawlctl/coordinator/internal/job"
	"github.com/crawlctl/coordinator/internal/logger"
	"github.com/crawlctl/coordinator/internal/metadata"
	"github.com/crawlctl/coordinator/internal/metrics"
	"github.com/crawlctl/coordinator/internal/store"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the coordinator HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	redisClient, err := store.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	snapshotStore := store.NewRedisStore(redisClient)

	var blobStore blob.Store
	minioStore, err := blob.NewMinioStore(cfg.Minio)
	if err != nil {
		log.WithError(err).Warn("minio unavailable, content blobs will not be stored")
	} else {
		blobStore = minioStore
	}

	var metadataStore metadata.Store
	esClient, err := es.NewClient(es.Config{Addresses: cfg.Elasticsearch.Addresses})
	if err != nil {
		log.WithError(err).Warn("elasticsearch client unavailable, page metadata will not be stored")
	} else {
		metadataStore = metadata.NewElasticsearchStore(esClient, cfg.Elasticsearch.Index, log)
	}

	manager := coordinator.NewManager(snapshotStore, coordinator.SystemClock{}, log)
	reg := metrics.New(nil)
	manager.SetMetrics(reg)

	checker := health.NewChecker()
	checker.RegisterFunc("redis", func(checkCtx context.Context) error {
		return redisClient.Ping(checkCtx).Err()
	})

	maintenance := job.NewMaintenanceScheduler(manager, log)
	if err := maintenance.Start(cfg.MaintenanceSpec); err != nil {
		return fmt.Errorf("start maintenance scheduler: %w", err)
	}
	defer maintenance.Stop()

	srv := api.NewServer(api.Params{
		Manager:      manager,
		Blob:         blobStore,
		Metadata:     metadataStore,
		Metrics:      reg,
		Health:       checker,
		Log:          log,
		JWTSecret:    authSecret(cfg),
		Address:      cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func authSecret(cfg *config.Config) string {
	if !cfg.Auth.Enabled {
		return ""
	}
	return cfg.Auth.JWTSecret
}
