package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"fightworker/internal/config"
	"fightworker/internal/db"
	"fightworker/internal/logging"
	"fightworker/internal/metrics"
	"fightworker/internal/processor"
	"fightworker/internal/pubg"
	"fightworker/internal/queue"
	"fightworker/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config load failed: %v", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Errorf("db connection failed: %v", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Errorf("invalid redis url: %v", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	apiClient := pubg.NewClient(cfg.PUBGAPIKey, cfg.PUBGShard, cfg.PUBGRateLimitRPM)

	var cache *store.TelemetryCache
	if cfg.TelemetryBucket != "" {
		cache, err = store.NewTelemetryCache(ctx, cfg.TelemetryBucket, cfg.AWSRegion)
		if err != nil {
			logger.Errorf("telemetry cache init failed: %v", err)
			os.Exit(1)
		}
	} else {
		logger.Warnf("no TELEMETRY_BUCKET configured, telemetry cache disabled")
	}

	metricsServer := metrics.NewServer(cfg.MetricsAddr)
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server failed: %v", err)
		}
	}()
	defer metricsServer.Close()

	matchReader := db.NewMatchReader(pool)
	fightWriter := db.NewFightWriter(pool)
	refresher := db.NewSummaryRefresher(pool)

	proc := processor.NewFightProcessor(ctx, matchReader, fightWriter, refresher, apiClient, cache)
	q := queue.NewRedisQueue(redisClient)

	handler := func(payload []byte) error {
		return proc.Handle(payload)
	}

	// Use concurrent processing if worker count > 1
	if cfg.WorkerCount > 1 {
		logger.Infof("starting concurrent consumption with %d workers", cfg.WorkerCount)
		if err := q.ConsumeConcurrent(ctx, cfg.RedisQueue, cfg.WorkerCount, cfg.JobBufferSize, handler); err != nil && ctx.Err() == nil {
			logger.Errorf("queue consumption ended: %v", err)
			os.Exit(1)
		}
	} else {
		logger.Infof("starting single-threaded consumption")
		if err := q.Consume(ctx, cfg.RedisQueue, handler); err != nil && ctx.Err() == nil {
			logger.Errorf("queue consumption ended: %v", err)
			os.Exit(1)
		}
	}
}
