package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mariaquintana/insurecrm-backend/internal/offlinequeue"
	"github.com/mariaquintana/insurecrm-backend/pkg/config"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
	"github.com/mariaquintana/insurecrm-backend/pkg/metrics"
	"github.com/mariaquintana/insurecrm-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "field-sync"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "field-sync"

	logg = logger.New(logger.Options{
		ServiceName: "field-sync",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var store offlinequeue.DurableStore
	if cfg.Sync.SharedQueue {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to connect to redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "failed to close redis client", err)
			}
		}()
		store, err = offlinequeue.NewRedisStore(redisClient)
		if err != nil {
			logg.Error(context.Background(), "failed to open shared queue store", err)
			os.Exit(1)
		}
	} else {
		fileStore, err := offlinequeue.NewFileStore(cfg.Sync.QueueDir)
		if err != nil {
			logg.Error(context.Background(), "failed to open queue store", err)
			os.Exit(1)
		}
		store = fileStore
	}

	remote, err := offlinequeue.NewHTTPRemote(offlinequeue.HTTPRemoteParams{
		BaseURL: cfg.Sync.APIBaseURL,
		Token:   cfg.Sync.APIToken,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build remote store", err)
		os.Exit(1)
	}

	monitor := offlinequeue.NewProbeMonitor(remote.Probe, cfg.Sync.ProbeInterval, logg)

	manager, err := offlinequeue.NewManager(offlinequeue.ManagerParams{
		Store:   store,
		Remote:  remote,
		Monitor: monitor,
		Logger:  logg,
		Metrics: metrics.NewSyncMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create queue manager", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"queue_dir": cfg.Sync.QueueDir,
		"api":       cfg.Sync.APIBaseURL,
	})
	logg.Info(ctx, "starting field sync daemon")

	monitor.Start(ctx)
	defer monitor.Stop()

	if err := manager.Start(ctx); err != nil {
		logg.Error(ctx, "failed to start queue manager", err)
		os.Exit(1)
	}
	defer manager.Close()

	// Reconnects trigger a pass through the monitor; the ticker retries
	// entries that failed while the link stayed up.
	resyncInterval := 4 * cfg.Sync.ProbeInterval
	if resyncInterval <= 0 {
		resyncInterval = 2 * time.Minute
	}
	ticker := time.NewTicker(resyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			pendingCtx := logg.WithField(ctx, "pending", manager.PendingSyncCount())
			logg.Info(pendingCtx, "field sync daemon shutting down gracefully")
			return
		case <-ticker.C:
			if manager.PendingSyncCount() > 0 {
				manager.SyncAll(ctx)
			}
		}
	}
}
