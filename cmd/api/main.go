package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/taskflow/api"
	"github.com/dmitrymomot/taskflow/core/queue"
	"github.com/dmitrymomot/taskflow/core/task"
	"github.com/dmitrymomot/taskflow/pkg/config"
	"github.com/dmitrymomot/taskflow/pkg/httpserver"
	"github.com/dmitrymomot/taskflow/pkg/logger"
	"github.com/dmitrymomot/taskflow/pkg/metrics"
	"github.com/dmitrymomot/taskflow/pkg/pg"
	"github.com/dmitrymomot/taskflow/pkg/redis"
	"github.com/dmitrymomot/taskflow/storage/postgres"
)

type appConfig struct {
	API   api.Config
	HTTP  httpserver.Config
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

	log, err := logger.New(cfg.Log, "api")
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

	m := metrics.New()
	store := postgres.NewStore(pool)

	svc, err := task.NewService(store, q,
		task.WithMaxAttempts(cfg.Task.DefaultMaxAttempts),
		task.WithMetrics(m),
		task.WithLogger(log),
	)
	if err != nil {
		log.Error("failed to build task service", logger.Error(err))
		os.Exit(1)
	}

	router := api.Router(cfg.API, svc, redis.Healthcheck(redisClient), m.Handler(), log)

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	if err := srv.Run(ctx, router); err != nil {
		log.Error("http server failed", logger.Error(err))
		os.Exit(1)
	}
}
