package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/taskflow/core/queue"
	"github.com/dmitrymomot/taskflow/core/task"
	"github.com/dmitrymomot/taskflow/core/worker"
	"github.com/dmitrymomot/taskflow/handlers"
	"github.com/dmitrymomot/taskflow/pkg/config"
	"github.com/dmitrymomot/taskflow/pkg/logger"
	"github.com/dmitrymomot/taskflow/pkg/metrics"
	"github.com/dmitrymomot/taskflow/pkg/pg"
	"github.com/dmitrymomot/taskflow/pkg/redis"
	"github.com/dmitrymomot/taskflow/storage/postgres"
)

type appConfig struct {
	Log   logger.Config
	PG    pg.Config
	Redis redis.Config
	Queue queue.Config
	Task  task.Config
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg appConfig
	config.MustLoad(&cfg)

	log, err := logger.New(cfg.Log, "worker")
	if err != nil {
		slog.Error("failed to build logger", logger.Error(err))
		os.Exit(1)
	}
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		log.Error("failed to apply migrations", logger.Error(err))
		os.Exit(1)
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer redisClient.Close()

	q, err := queue.New(redisClient, cfg.Queue.QueueName)
	if err != nil {
		log.Error("failed to build queue", logger.Error(err))
		os.Exit(1)
	}

	locks, err := queue.NewLock(redisClient, cfg.Queue.LockTTL())
	if err != nil {
		log.Error("failed to build task lock", logger.Error(err))
		os.Exit(1)
	}

	registry := worker.NewRegistry()
	registry.MustRegister(handlers.NewCPUBurn())
	registry.MustRegister(handlers.NewDataTransform())
	registry.MustRegister(handlers.NewHTTPFetch(nil))

	w, err := worker.NewWorker(postgres.NewStore(pool), q, locks, registry,
		worker.WithPollTimeout(cfg.Queue.PollTimeout()),
		worker.WithRetryPolicy(cfg.Task.RetryPolicy()),
		worker.WithMetrics(metrics.New()),
		worker.WithLogger(log),
	)
	if err != nil {
		log.Error("failed to build worker", logger.Error(err))
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(w.Run(gctx))
	if err := g.Wait(); err != nil {
		log.Error("worker failed", logger.Error(err))
		os.Exit(1)
	}
}
