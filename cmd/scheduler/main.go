package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/taskflow/core/queue"
	"github.com/dmitrymomot/taskflow/core/scheduler"
	"github.com/dmitrymomot/taskflow/pkg/config"
	"github.com/dmitrymomot/taskflow/pkg/logger"
	"github.com/dmitrymomot/taskflow/pkg/pg"
	"github.com/dmitrymomot/taskflow/pkg/redis"
	"github.com/dmitrymomot/taskflow/storage/postgres"
)

type appConfig struct {
	Log       logger.Config
	PG        pg.Config
	Redis     redis.Config
	Queue     queue.Config
	Scheduler scheduler.Config
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg appConfig
	config.MustLoad(&cfg)

	log, err := logger.New(cfg.Log, "scheduler")
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

	// A stale RUNNING record only means a crashed worker once the lock
	// has long expired; five lock lifetimes keeps false positives out.
	sched, err := scheduler.New(postgres.NewStore(pool), q,
		scheduler.WithInterval(cfg.Scheduler.Interval()),
		scheduler.WithStaleAge(5*cfg.Queue.LockTTL()),
		scheduler.WithLogger(log),
	)
	if err != nil {
		log.Error("failed to build scheduler", logger.Error(err))
		os.Exit(1)
	}

	if err := sched.Run(ctx)(); err != nil {
		log.Error("scheduler failed", logger.Error(err))
		os.Exit(1)
	}
}
